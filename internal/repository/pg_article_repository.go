package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uxdj/backend/internal/model"
)

// ArticleRepository defines the persistence interface for articles.
type ArticleRepository interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
	// Create inserts a. It returns ErrDuplicate when the slug is taken.
	Create(ctx context.Context, a *model.Article) error
	GetBySlug(ctx context.Context, slug string) (*model.Article, error)
	List(ctx context.Context, opts model.ArticleListOptions) ([]*model.Article, int, error)
	Update(ctx context.Context, slug string, patch model.ArticlePatch) (*model.Article, error)
	UpdateImageURL(ctx context.Context, slug, imageURL string) error
	Delete(ctx context.Context, slug string) error
}

// PgArticleRepository is the PostgreSQL implementation of ArticleRepository.
type PgArticleRepository struct {
	pool *pgxpool.Pool
}

// NewPgArticleRepository creates a PgArticleRepository backed by the given pool.
func NewPgArticleRepository(pool *pgxpool.Pool) *PgArticleRepository {
	return &PgArticleRepository{pool: pool}
}

var _ ArticleRepository = (*PgArticleRepository)(nil)

const articleSelectCols = `id, slug, title, excerpt, dek, category, COALESCE(date, ''), author, image_url,
	body_html, body_markdown, tags, status, publish_at, featured, feature_order,
	ai_generated, ai_provider, source_url, created_at, updated_at`

func scanArticle(scan func(...any) error) (*model.Article, error) {
	var a model.Article
	if err := scan(&a.ID, &a.Slug, &a.Title, &a.Excerpt, &a.Dek, &a.Category, &a.Date, &a.Author, &a.ImageURL,
		&a.BodyHTML, &a.BodyMarkdown, &a.Tags, &a.Status, &a.PublishAt, &a.Featured, &a.FeatureOrder,
		&a.AIGenerated, &a.AIProvider, &a.SourceURL, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return &a, nil
}

// SlugExists reports whether an article already uses slug.
func (r *PgArticleRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM articles WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

// Create inserts a new article and populates ID and timestamps.
func (r *PgArticleRepository) Create(ctx context.Context, a *model.Article) error {
	if a.Tags == nil {
		a.Tags = []string{}
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO articles (slug, title, excerpt, dek, category, date, author, image_url, body_html,
		   body_markdown, tags, status, publish_at, featured, feature_order, ai_generated, ai_provider, source_url)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 RETURNING id, created_at, updated_at`,
		a.Slug, a.Title, a.Excerpt, a.Dek, a.Category, a.Date, a.Author, a.ImageURL, a.BodyHTML,
		a.BodyMarkdown, a.Tags, a.Status, a.PublishAt, a.Featured, a.FeatureOrder, a.AIGenerated, a.AIProvider, a.SourceURL,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return mapErr(err)
}

// GetBySlug returns the article with the given slug.
func (r *PgArticleRepository) GetBySlug(ctx context.Context, slug string) (*model.Article, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+articleSelectCols+` FROM articles WHERE slug = $1`, slug)
	return scanArticle(row.Scan)
}

// List returns a page of articles, newest first, and the total match count.
// Featured-only listings are ordered by feature_order first.
func (r *PgArticleRepository) List(ctx context.Context, opts model.ArticleListOptions) ([]*model.Article, int, error) {
	var w where
	if q := strings.TrimSpace(opts.Query); q != "" {
		w.add(`title ILIKE ?`, likePattern(q))
	}
	if opts.PublishedOnly {
		w.add(`status = ?`, model.ArticlePublished)
	} else if opts.Status != "" {
		w.add(`status = ?`, opts.Status)
	}
	if opts.Category != "" {
		w.add(`category = ?`, opts.Category)
	}
	if opts.FeaturedOnly {
		w.raw(`featured`)
	}
	if opts.ExcludeSlug != "" {
		w.add(`slug <> ?`, opts.ExcludeSlug)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM articles`+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := ` ORDER BY created_at DESC`
	if opts.FeaturedOnly {
		order = ` ORDER BY feature_order ASC, created_at DESC`
	}
	limitClause, args := w.page(opts.Limit, opts.Offset)
	rows, err := r.pool.Query(ctx, `SELECT `+articleSelectCols+` FROM articles`+w.String()+order+limitClause, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*model.Article
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

// Update applies the non-nil fields of patch to the article with slug.
func (r *PgArticleRepository) Update(ctx context.Context, slug string, patch model.ArticlePatch) (*model.Article, error) {
	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if patch.Slug != nil {
		set("slug", *patch.Slug)
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Excerpt != nil {
		set("excerpt", *patch.Excerpt)
	}
	if patch.Dek != nil {
		set("dek", *patch.Dek)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Date != nil {
		set("date", *patch.Date)
	}
	if patch.Author != nil {
		set("author", *patch.Author)
	}
	if patch.ImageURL != nil {
		set("image_url", *patch.ImageURL)
	}
	if patch.BodyHTML != nil {
		set("body_html", *patch.BodyHTML)
	}
	if patch.BodyMarkdown != nil {
		set("body_markdown", *patch.BodyMarkdown)
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		set("tags", tags)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.PublishAt != nil {
		set("publish_at", *patch.PublishAt)
	}
	if patch.Featured != nil {
		set("featured", *patch.Featured)
	}
	if patch.FeatureOrder != nil {
		set("feature_order", *patch.FeatureOrder)
	}
	if len(sets) == 0 {
		return r.GetBySlug(ctx, slug)
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, slug)

	row := r.pool.QueryRow(ctx,
		`UPDATE articles SET `+strings.Join(sets, ", ")+` WHERE slug = $`+strconv.Itoa(len(args))+
			` RETURNING `+articleSelectCols, args...)
	return scanArticle(row.Scan)
}

// UpdateImageURL replaces the image of the article with slug.
func (r *PgArticleRepository) UpdateImageURL(ctx context.Context, slug, imageURL string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE articles SET image_url = $1, updated_at = NOW() WHERE slug = $2`, imageURL, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the article with slug.
func (r *PgArticleRepository) Delete(ctx context.Context, slug string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE slug = $1`, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
