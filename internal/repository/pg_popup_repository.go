package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uxdj/backend/internal/model"
)

// PopupRepository defines the persistence interface for lead-capture popups.
type PopupRepository interface {
	GetActive(ctx context.Context) (*model.Popup, error)
	GetByID(ctx context.Context, id string) (*model.Popup, error)
	List(ctx context.Context) ([]*model.Popup, error)
	// Create inserts p. When p.Active is set every other popup is deactivated
	// in the same transaction.
	Create(ctx context.Context, p *model.Popup) error
	Update(ctx context.Context, id string, patch model.PopupPatch) (*model.Popup, error)
	// Delete removes the popup and its leads.
	Delete(ctx context.Context, id string) error
}

// PgPopupRepository is the PostgreSQL implementation of PopupRepository.
type PgPopupRepository struct {
	pool *pgxpool.Pool
}

// NewPgPopupRepository creates a PgPopupRepository backed by the given pool.
func NewPgPopupRepository(pool *pgxpool.Pool) *PgPopupRepository {
	return &PgPopupRepository{pool: pool}
}

var _ PopupRepository = (*PgPopupRepository)(nil)

const popupSelectCols = `p.id, p.name, p.title, p.description, p.image_url, p.image_caption, p.pdf_url, p.pdf_title,
	p.button_text, p.delay_seconds, p.active, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM popup_leads l WHERE l.popup_config_id = p.id)`

func scanPopup(scan func(...any) error) (*model.Popup, error) {
	var p model.Popup
	if err := scan(&p.ID, &p.Name, &p.Title, &p.Description, &p.ImageURL, &p.ImageCaption, &p.PDFURL, &p.PDFTitle,
		&p.ButtonText, &p.DelaySeconds, &p.Active, &p.CreatedAt, &p.UpdatedAt, &p.LeadCount); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// GetActive returns the most recently updated active popup.
func (r *PgPopupRepository) GetActive(ctx context.Context) (*model.Popup, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+popupSelectCols+` FROM popup_configs p WHERE p.active ORDER BY p.updated_at DESC LIMIT 1`)
	return scanPopup(row.Scan)
}

func (r *PgPopupRepository) GetByID(ctx context.Context, id string) (*model.Popup, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+popupSelectCols+` FROM popup_configs p WHERE p.id = $1`, id)
	return scanPopup(row.Scan)
}

// List returns every popup with its lead count, newest first.
func (r *PgPopupRepository) List(ctx context.Context) ([]*model.Popup, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+popupSelectCols+` FROM popup_configs p ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var popups []*model.Popup
	for rows.Next() {
		p, err := scanPopup(rows.Scan)
		if err != nil {
			return nil, err
		}
		popups = append(popups, p)
	}
	return popups, rows.Err()
}

func (r *PgPopupRepository) Create(ctx context.Context, p *model.Popup) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if p.Active {
			if _, err := tx.Exec(ctx, `UPDATE popup_configs SET active = FALSE, updated_at = NOW() WHERE active`); err != nil {
				return err
			}
		}
		return tx.QueryRow(ctx,
			`INSERT INTO popup_configs (name, title, description, image_url, image_caption, pdf_url, pdf_title,
			   button_text, delay_seconds, active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			 RETURNING id, created_at, updated_at`,
			p.Name, p.Title, p.Description, p.ImageURL, p.ImageCaption, p.PDFURL, p.PDFTitle,
			p.ButtonText, p.DelaySeconds, p.Active,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	})
}

func (r *PgPopupRepository) Update(ctx context.Context, id string, patch model.PopupPatch) (*model.Popup, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.ImageURL != nil {
		set("image_url", *patch.ImageURL)
	}
	if patch.ImageCaption != nil {
		set("image_caption", *patch.ImageCaption)
	}
	if patch.PDFURL != nil {
		set("pdf_url", *patch.PDFURL)
	}
	if patch.PDFTitle != nil {
		set("pdf_title", *patch.PDFTitle)
	}
	if patch.ButtonText != nil {
		set("button_text", *patch.ButtonText)
	}
	if patch.DelaySeconds != nil {
		set("delay_seconds", *patch.DelaySeconds)
	}
	if patch.Active != nil {
		set("active", *patch.Active)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if patch.Active != nil && *patch.Active {
			if _, err := tx.Exec(ctx,
				`UPDATE popup_configs SET active = FALSE, updated_at = NOW() WHERE active AND id <> $1`, id); err != nil {
				return mapErr(err)
			}
		}
		tag, err := tx.Exec(ctx,
			`UPDATE popup_configs SET `+strings.Join(sets, ", ")+` WHERE id = $`+strconv.Itoa(len(args)), args...)
		if err != nil {
			return mapErr(err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *PgPopupRepository) Delete(ctx context.Context, id string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM popup_leads WHERE popup_config_id = $1`, id); err != nil {
			return mapErr(err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM popup_configs WHERE id = $1`, id)
		if err != nil {
			return mapErr(err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
