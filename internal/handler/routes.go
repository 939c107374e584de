package handler

import (
	"net/http"

	"github.com/uxdj/backend/internal/intake"
	"github.com/uxdj/backend/pkg/auth"
)

// Routes holds every handler of the API together with the settings needed
// to mount them.
type Routes struct {
	Health      *HealthHandler
	Public      *PublicHandler
	Subscribers *SubscriberHandler
	Contacts    *ContactHandler
	Popups      *PopupHandler
	Articles    *ArticleHandler
	Ads         *AdHandler
	Users       *AdminUserHandler
	Auth        *AuthHandler
	Stats       *StatsHandler
	Images      *ImageHandler
	AI          *AIHandler

	SessionSecret []byte
	// PublicLimiter throttles public form posts per client IP. Nil
	// disables it.
	PublicLimiter  *intake.RateLimiter
	TrustedProxies int
}

// Register mounts the API on mux.
func (rt *Routes) Register(mux *http.ServeMux) {
	throttle := RateLimit(rt.PublicLimiter, "public", rt.TrustedProxies)
	requireAuth := auth.RequireAuth(rt.SessionSecret)
	admin := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, requireAuth(h))
	}

	mux.HandleFunc("GET /{$}", rt.Health.Root)
	mux.HandleFunc("GET /health", rt.Health.Health)
	mux.HandleFunc("GET /api/health", rt.Health.Health)
	mux.HandleFunc("GET /api/public/version", rt.Health.Version)

	// Reader site
	mux.HandleFunc("GET /api/public/categories", rt.Public.Categories)
	mux.HandleFunc("GET /api/public/homepage", rt.Public.Homepage)
	mux.HandleFunc("GET /api/public/category/{slug}", rt.Public.Category)
	mux.HandleFunc("GET /api/public/article/{slug}", rt.Public.Article)
	mux.HandleFunc("GET /api/public/archive", rt.Public.Archive)
	mux.HandleFunc("GET /api/public/search", rt.Public.Search)
	mux.HandleFunc("GET /api/public/popup/active", rt.Popups.Active)

	// Public submissions
	mux.Handle("POST /api/public/subscribe", throttle(http.HandlerFunc(rt.Subscribers.Subscribe)))
	mux.Handle("POST /api/public/contact", throttle(http.HandlerFunc(rt.Contacts.Submit)))
	mux.Handle("POST /api/public/popup/submit", throttle(http.HandlerFunc(rt.Popups.Submit)))

	// Session
	mux.Handle("POST /api/admin/login", throttle(http.HandlerFunc(rt.Auth.Login)))
	mux.HandleFunc("POST /api/admin/logout", rt.Auth.Logout)
	admin("GET /api/admin/me", rt.Auth.Me)

	admin("GET /api/admin/users", rt.Users.List)
	admin("POST /api/admin/users", rt.Users.Create)
	admin("PATCH /api/admin/users/{id}/status", rt.Users.SetStatus)
	admin("DELETE /api/admin/users/{id}", rt.Users.Delete)

	admin("GET /api/admin/articles", rt.Articles.List)
	admin("GET /api/admin/articles/{slug}", rt.Articles.Get)
	admin("POST /api/admin/articles", rt.Articles.Create)
	admin("PUT /api/admin/articles/{slug}", rt.Articles.Update)
	admin("DELETE /api/admin/articles/{slug}", rt.Articles.Delete)

	admin("GET /api/admin/ads", rt.Ads.List)
	admin("POST /api/admin/ads", rt.Ads.Create)
	admin("PUT /api/admin/ads/{id}", rt.Ads.Update)
	admin("DELETE /api/admin/ads/{id}", rt.Ads.Delete)

	admin("GET /api/admin/stats", rt.Stats.Dashboard)

	admin("GET /api/admin/subscribers", rt.Subscribers.List)
	admin("PUT /api/admin/subscribers/{email}", rt.Subscribers.UpdateStatus)
	admin("DELETE /api/admin/subscribers/{email}", rt.Subscribers.Delete)
	admin("POST /api/admin/subscribers/bulk-delete", rt.Subscribers.BulkDelete)

	admin("GET /api/admin/contacts", rt.Contacts.AdminList)
	admin("PUT /api/admin/contacts/{id}", rt.Contacts.UpdateStatus)
	admin("DELETE /api/admin/contacts/{id}", rt.Contacts.Delete)

	admin("GET /api/admin/popups", rt.Popups.List)
	admin("GET /api/admin/popups/{id}", rt.Popups.Get)
	admin("POST /api/admin/popups", rt.Popups.Create)
	admin("PUT /api/admin/popups/{id}", rt.Popups.Update)
	admin("DELETE /api/admin/popups/{id}", rt.Popups.Delete)

	admin("GET /api/admin/popup-leads", rt.Popups.ListLeads)
	admin("GET /api/admin/popup-leads/export", rt.Popups.ExportLeads)
	admin("DELETE /api/admin/popup-leads/{id}", rt.Popups.DeleteLead)

	admin("POST /api/admin/uploads", rt.Images.Upload)

	admin("POST /api/admin/ai/generate", rt.AI.Generate)
	admin("POST /api/admin/ai/regenerate-image/{slug}", rt.AI.RegenerateImage)
}
