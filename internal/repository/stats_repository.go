package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uxdj/backend/internal/model"
	"golang.org/x/sync/errgroup"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// StatsRepository reads the aggregate counters of the admin dashboard.
type StatsRepository interface {
	Counts(ctx context.Context) (*model.Stats, error)
	RecentArticles(ctx context.Context, limit int) ([]model.RecentEvent, error)
	RecentSubscribers(ctx context.Context, limit int) ([]model.RecentEvent, error)
	// Trends compares the 7 days before now with the 7 days before that.
	Trends(ctx context.Context, now time.Time) (model.Trends, error)
}

// SqlxStatsRepository implements StatsRepository over database/sql so the
// dashboard queries can fan out on plain connections.
type SqlxStatsRepository struct {
	db *sqlx.DB
}

// OpenStatsDB opens a sqlx handle on the pgx database/sql driver.
func OpenStatsDB(ctx context.Context, connString string) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// NewSqlxStatsRepository creates a SqlxStatsRepository.
func NewSqlxStatsRepository(db *sqlx.DB) *SqlxStatsRepository {
	return &SqlxStatsRepository{db: db}
}

var _ StatsRepository = (*SqlxStatsRepository)(nil)

// Counts runs the total counters concurrently.
func (r *SqlxStatsRepository) Counts(ctx context.Context) (*model.Stats, error) {
	var s model.Stats
	counters := []struct {
		dst   *int
		query string
	}{
		{&s.Subscribers, `SELECT COUNT(*) FROM subscribers WHERE status = 'active'`},
		{&s.Articles, `SELECT COUNT(*) FROM articles`},
		{&s.Ads, `SELECT COUNT(*) FROM ads`},
		{&s.Admins, `SELECT COUNT(*) FROM users WHERE role = 'admin'`},
		{&s.Contacts, `SELECT COUNT(*) FROM contacts`},
		{&s.PopupLeads, `SELECT COUNT(*) FROM popup_leads`},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range counters {
		g.Go(func() error {
			return r.db.GetContext(gctx, c.dst, c.query)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &s, nil
}

type recentArticleRow struct {
	Title     string    `db:"title"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *SqlxStatsRepository) RecentArticles(ctx context.Context, limit int) ([]model.RecentEvent, error) {
	var rows []recentArticleRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT title, slug, created_at FROM articles ORDER BY created_at DESC LIMIT $1`, limit); err != nil {
		return nil, err
	}
	events := make([]model.RecentEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, model.RecentEvent{Type: "article", Title: row.Title, Slug: row.Slug, Date: row.CreatedAt})
	}
	return events, nil
}

type recentSubscriberRow struct {
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *SqlxStatsRepository) RecentSubscribers(ctx context.Context, limit int) ([]model.RecentEvent, error) {
	var rows []recentSubscriberRow
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT email, created_at FROM subscribers ORDER BY created_at DESC LIMIT $1`, limit); err != nil {
		return nil, err
	}
	events := make([]model.RecentEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, model.RecentEvent{Type: "subscriber", Email: row.Email, Date: row.CreatedAt})
	}
	return events, nil
}

type trendRow struct {
	Current  int `db:"current"`
	Previous int `db:"previous"`
}

const trendQuery = `SELECT
	COUNT(*) FILTER (WHERE created_at >= $1) AS current,
	COUNT(*) FILTER (WHERE created_at >= $2 AND created_at < $1) AS previous
	FROM `

func (r *SqlxStatsRepository) Trends(ctx context.Context, now time.Time) (model.Trends, error) {
	weekAgo := now.Add(-7 * 24 * time.Hour)
	twoWeeksAgo := now.Add(-14 * 24 * time.Hour)

	var subs, arts trendRow
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.db.GetContext(gctx, &subs, trendQuery+`subscribers`, weekAgo, twoWeeksAgo)
	})
	g.Go(func() error {
		return r.db.GetContext(gctx, &arts, trendQuery+`articles`, weekAgo, twoWeeksAgo)
	})
	if err := g.Wait(); err != nil {
		return model.Trends{}, err
	}
	return model.Trends{
		Subscribers: model.Trend{Current: subs.Current, Previous: subs.Previous},
		Articles:    model.Trend{Current: arts.Current, Previous: arts.Previous},
	}, nil
}
