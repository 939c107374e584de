package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uxdj/backend/internal/model"
)

// ContactRepository defines the persistence interface for contact messages.
// It is defined here (in repository) to avoid an import cycle with service.
type ContactRepository interface {
	Save(ctx context.Context, msg *model.ContactMessage) error
	List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, int, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.ContactMessage, error)
	Delete(ctx context.Context, id string) error
}

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

// Ensure PgContactRepository implements ContactRepository at compile time.
var _ ContactRepository = (*PgContactRepository)(nil)

const contactSelectCols = `id, name, email, phone, subject, message, status, ip_address, created_at, updated_at`

func scanContact(scan func(...any) error) (*model.ContactMessage, error) {
	var m model.ContactMessage
	if err := scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &m.Status, &m.IPAddress,
		&m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

// Save inserts a new contacts row and populates msg.ID and timestamps
// from the database RETURNING clause.
func (r *PgContactRepository) Save(ctx context.Context, msg *model.ContactMessage) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO contacts (name, email, phone, subject, message, status, ip_address)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		msg.Name, msg.Email, msg.Phone, msg.Subject, msg.Message, msg.Status, msg.IPAddress,
	).Scan(&msg.ID, &msg.CreatedAt, &msg.UpdatedAt)
}

// List returns contact messages filtered by status and search text, newest
// first, with the total match count. Status "" or "all" matches every message.
func (r *PgContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, int, error) {
	var w where
	if status := strings.TrimSpace(opts.Status); status != "" && status != "all" {
		w.add(`status = ?`, status)
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		w.add(`(name ILIKE ? OR email ILIKE ? OR subject ILIKE ?)`, likePattern(q))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitClause, args := w.page(opts.Limit, opts.Offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+contactSelectCols+` FROM contacts`+w.String()+` ORDER BY created_at DESC`+limitClause, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []*model.ContactMessage
	for rows.Next() {
		m, err := scanContact(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, m)
	}
	return messages, total, rows.Err()
}

// UpdateStatus changes the status of a contact message.
func (r *PgContactRepository) UpdateStatus(ctx context.Context, id, status string) (*model.ContactMessage, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE contacts SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING `+contactSelectCols,
		id, status)
	return scanContact(row.Scan)
}

// Delete removes a contact message.
func (r *PgContactRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
