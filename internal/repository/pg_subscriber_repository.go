package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uxdj/backend/internal/model"
)

// SubscriberRepository defines the persistence interface for subscribers.
type SubscriberRepository interface {
	Get(ctx context.Context, email string) (*model.Subscriber, error)
	// Insert adds a new subscriber. It returns ErrDuplicate when the email exists.
	Insert(ctx context.Context, s *model.Subscriber) error
	// Activate marks an existing subscriber active, optionally replacing its source.
	Activate(ctx context.Context, email, source string) error
	// Upsert inserts an active subscriber or reactivates an unsubscribed one.
	// Active rows keep their original source.
	Upsert(ctx context.Context, email, source string) error
	UpdateStatus(ctx context.Context, email, status string) (*model.Subscriber, error)
	List(ctx context.Context, opts model.SubscriberListOptions) ([]*model.Subscriber, int, error)
	Delete(ctx context.Context, email string) error
	DeleteMany(ctx context.Context, emails []string) (int64, error)
}

// PgSubscriberRepository is the PostgreSQL implementation of SubscriberRepository.
type PgSubscriberRepository struct {
	pool *pgxpool.Pool
}

// NewPgSubscriberRepository creates a PgSubscriberRepository backed by the given pool.
func NewPgSubscriberRepository(pool *pgxpool.Pool) *PgSubscriberRepository {
	return &PgSubscriberRepository{pool: pool}
}

var _ SubscriberRepository = (*PgSubscriberRepository)(nil)

const subscriberSelectCols = `email, source, status, created_at, updated_at`

func scanSubscriber(scan func(...any) error) (*model.Subscriber, error) {
	var s model.Subscriber
	if err := scan(&s.Email, &s.Source, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *PgSubscriberRepository) Get(ctx context.Context, email string) (*model.Subscriber, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+subscriberSelectCols+` FROM subscribers WHERE email = $1`, email)
	return scanSubscriber(row.Scan)
}

func (r *PgSubscriberRepository) Insert(ctx context.Context, s *model.Subscriber) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO subscribers (email, source, status) VALUES ($1, $2, $3)
		 RETURNING created_at, updated_at`,
		s.Email, s.Source, s.Status,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return mapErr(err)
}

func (r *PgSubscriberRepository) Activate(ctx context.Context, email, source string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE subscribers SET status = 'active', source = COALESCE(NULLIF($2, ''), source), updated_at = NOW()
		 WHERE email = $1`, email, source)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgSubscriberRepository) Upsert(ctx context.Context, email, source string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO subscribers (email, source, status) VALUES ($1, $2, 'active')
		 ON CONFLICT (email) DO UPDATE SET status = 'active', source = EXCLUDED.source, updated_at = NOW()
		 WHERE subscribers.status = 'unsubscribed'`,
		email, source)
	return err
}

func (r *PgSubscriberRepository) UpdateStatus(ctx context.Context, email, status string) (*model.Subscriber, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE subscribers SET status = $2, updated_at = NOW() WHERE email = $1
		 RETURNING `+subscriberSelectCols, email, status)
	return scanSubscriber(row.Scan)
}

// List returns a page of subscribers, newest first, and the total match count.
func (r *PgSubscriberRepository) List(ctx context.Context, opts model.SubscriberListOptions) ([]*model.Subscriber, int, error) {
	var w where
	if q := strings.TrimSpace(opts.Query); q != "" {
		w.add(`email ILIKE ?`, likePattern(q))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM subscribers`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitClause, args := w.page(opts.Limit, opts.Offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+subscriberSelectCols+` FROM subscribers`+w.String()+` ORDER BY created_at DESC`+limitClause, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*model.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *PgSubscriberRepository) Delete(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subscribers WHERE email = $1`, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgSubscriberRepository) DeleteMany(ctx context.Context, emails []string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subscribers WHERE email = ANY($1)`, emails)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
