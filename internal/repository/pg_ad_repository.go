package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uxdj/backend/internal/model"
)

// AdRepository defines the persistence interface for ads.
type AdRepository interface {
	List(ctx context.Context, placement string) ([]*model.Ad, error)
	ListActive(ctx context.Context, placements []string) (map[string][]*model.Ad, error)
	Create(ctx context.Context, ad *model.Ad) error
	Update(ctx context.Context, ad *model.Ad) error
	Delete(ctx context.Context, id string) error
}

// PgAdRepository is the PostgreSQL implementation of AdRepository.
type PgAdRepository struct {
	pool *pgxpool.Pool
}

// NewPgAdRepository creates a PgAdRepository backed by the given pool.
func NewPgAdRepository(pool *pgxpool.Pool) *PgAdRepository {
	return &PgAdRepository{pool: pool}
}

var _ AdRepository = (*PgAdRepository)(nil)

const adSelectCols = `id, placement, size, type, image_url, href, alt, html, label, active, "order", created_at, updated_at`

func scanAd(scan func(...any) error) (*model.Ad, error) {
	var a model.Ad
	if err := scan(&a.ID, &a.Placement, &a.Size, &a.Type, &a.ImageURL, &a.Href, &a.Alt, &a.HTML, &a.Label,
		&a.Active, &a.Order, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

// List returns all ads, optionally restricted to one placement.
func (r *PgAdRepository) List(ctx context.Context, placement string) ([]*model.Ad, error) {
	var w where
	if placement != "" {
		w.add(`placement = ?`, placement)
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+adSelectCols+` FROM ads`+w.String()+` ORDER BY placement, "order", updated_at DESC`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ads []*model.Ad
	for rows.Next() {
		a, err := scanAd(rows.Scan)
		if err != nil {
			return nil, err
		}
		ads = append(ads, a)
	}
	return ads, rows.Err()
}

// ListActive returns the active ads of each placement in display order.
func (r *PgAdRepository) ListActive(ctx context.Context, placements []string) (map[string][]*model.Ad, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+adSelectCols+` FROM ads WHERE active AND placement = ANY($1)
		 ORDER BY placement, "order", updated_at DESC`, placements)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]*model.Ad, len(placements))
	for rows.Next() {
		a, err := scanAd(rows.Scan)
		if err != nil {
			return nil, err
		}
		out[a.Placement] = append(out[a.Placement], a)
	}
	return out, rows.Err()
}

// Create inserts ad and populates ID and timestamps.
func (r *PgAdRepository) Create(ctx context.Context, ad *model.Ad) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO ads (placement, size, type, image_url, href, alt, html, label, active, "order")
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		ad.Placement, ad.Size, ad.Type, ad.ImageURL, ad.Href, ad.Alt, ad.HTML, ad.Label, ad.Active, ad.Order,
	).Scan(&ad.ID, &ad.CreatedAt, &ad.UpdatedAt)
	return mapErr(err)
}

// Update replaces every editable field of the ad with ad.ID.
func (r *PgAdRepository) Update(ctx context.Context, ad *model.Ad) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE ads SET placement = $1, size = $2, type = $3, image_url = $4, href = $5, alt = $6,
		   html = $7, label = $8, active = $9, "order" = $10, updated_at = NOW()
		 WHERE id = $11
		 RETURNING created_at, updated_at`,
		ad.Placement, ad.Size, ad.Type, ad.ImageURL, ad.Href, ad.Alt, ad.HTML, ad.Label, ad.Active, ad.Order, ad.ID,
	).Scan(&ad.CreatedAt, &ad.UpdatedAt)
	return mapErr(err)
}

// Delete removes the ad with id.
func (r *PgAdRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM ads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
