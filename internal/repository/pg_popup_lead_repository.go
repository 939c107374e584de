package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uxdj/backend/internal/model"
)

// PopupLeadRepository defines the persistence interface for captured leads.
type PopupLeadRepository interface {
	// RecentExists reports whether email was captured by popupID after since.
	RecentExists(ctx context.Context, popupID, email string, since time.Time) (bool, error)
	Create(ctx context.Context, lead *model.PopupLead) error
	List(ctx context.Context, opts model.PopupLeadListOptions) ([]*model.PopupLead, int, error)
	Delete(ctx context.Context, id string) error
}

// PgPopupLeadRepository is the PostgreSQL implementation of PopupLeadRepository.
type PgPopupLeadRepository struct {
	pool *pgxpool.Pool
}

// NewPgPopupLeadRepository creates a PgPopupLeadRepository backed by the given pool.
func NewPgPopupLeadRepository(pool *pgxpool.Pool) *PgPopupLeadRepository {
	return &PgPopupLeadRepository{pool: pool}
}

var _ PopupLeadRepository = (*PgPopupLeadRepository)(nil)

const leadSelectCols = `l.id, l.popup_config_id, COALESCE(p.name, ''), COALESCE(p.title, ''), l.email, l.status,
	l.ip_address, l.user_agent, l.device, l.created_at`

func scanLead(scan func(...any) error) (*model.PopupLead, error) {
	var l model.PopupLead
	if err := scan(&l.ID, &l.PopupID, &l.PopupName, &l.PopupTitle, &l.Email, &l.Status,
		&l.IPAddress, &l.UserAgent, &l.Device, &l.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &l, nil
}

func (r *PgPopupLeadRepository) RecentExists(ctx context.Context, popupID, email string, since time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM popup_leads WHERE popup_config_id = $1 AND email = $2 AND created_at > $3)`,
		popupID, email, since).Scan(&exists)
	return exists, mapErr(err)
}

func (r *PgPopupLeadRepository) Create(ctx context.Context, lead *model.PopupLead) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO popup_leads (popup_config_id, email, status, ip_address, user_agent, device)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		lead.PopupID, lead.Email, lead.Status, lead.IPAddress, lead.UserAgent, lead.Device,
	).Scan(&lead.ID, &lead.CreatedAt)
	return mapErr(err)
}

// List returns leads joined with their popup, newest first. A zero Limit
// returns every matching lead.
func (r *PgPopupLeadRepository) List(ctx context.Context, opts model.PopupLeadListOptions) ([]*model.PopupLead, int, error) {
	var w where
	if opts.PopupID != "" {
		w.add(`l.popup_config_id = ?`, opts.PopupID)
	}
	if s := strings.TrimSpace(opts.Search); s != "" {
		w.add(`l.email ILIKE ?`, likePattern(s))
	}

	const from = ` FROM popup_leads l LEFT JOIN popup_configs p ON p.id = l.popup_config_id`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+from+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	query := `SELECT ` + leadSelectCols + from + w.String() + ` ORDER BY l.created_at DESC`
	args := w.args
	if opts.Limit > 0 {
		var limitClause string
		limitClause, args = w.page(opts.Limit, opts.Offset)
		query += limitClause
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	var leads []*model.PopupLead
	for rows.Next() {
		l, err := scanLead(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, l)
	}
	return leads, total, rows.Err()
}

func (r *PgPopupLeadRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM popup_leads WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
