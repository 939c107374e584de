package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatsMock(t *testing.T) (*SqlxStatsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)
	return NewSqlxStatsRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func countRow(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

func TestStatsCounts(t *testing.T) {
	repo, mock := newStatsMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM subscribers WHERE status = 'active'`)).WillReturnRows(countRow(42))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM articles`)).WillReturnRows(countRow(17))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM ads`)).WillReturnRows(countRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE role = 'admin'`)).WillReturnRows(countRow(2))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM contacts`)).WillReturnRows(countRow(9))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM popup_leads`)).WillReturnRows(countRow(11))

	s, err := repo.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, s.Subscribers)
	assert.Equal(t, 17, s.Articles)
	assert.Equal(t, 3, s.Ads)
	assert.Equal(t, 2, s.Admins)
	assert.Equal(t, 9, s.Contacts)
	assert.Equal(t, 11, s.PopupLeads)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRecentArticles(t *testing.T) {
	repo, mock := newStatsMock(t)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT title, slug, created_at FROM articles`)).
		WithArgs(6).
		WillReturnRows(sqlmock.NewRows([]string{"title", "slug", "created_at"}).
			AddRow("Dark patterns", "dark-patterns", created))

	events, err := repo.RecentArticles(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "article", events[0].Type)
	assert.Equal(t, "dark-patterns", events[0].Slug)
	assert.Equal(t, created, events[0].Date)
}

func TestStatsTrends(t *testing.T) {
	repo, mock := newStatsMock(t)
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	weekAgo := now.Add(-7 * 24 * time.Hour)
	twoWeeksAgo := now.Add(-14 * 24 * time.Hour)

	mock.ExpectQuery(`FROM subscribers`).WithArgs(weekAgo, twoWeeksAgo).
		WillReturnRows(sqlmock.NewRows([]string{"current", "previous"}).AddRow(5, 2))
	mock.ExpectQuery(`FROM articles`).WithArgs(weekAgo, twoWeeksAgo).
		WillReturnRows(sqlmock.NewRows([]string{"current", "previous"}).AddRow(1, 4))

	trends, err := repo.Trends(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 5, trends.Subscribers.Current)
	assert.Equal(t, 2, trends.Subscribers.Previous)
	assert.Equal(t, 1, trends.Articles.Current)
	assert.Equal(t, 4, trends.Articles.Previous)
}

func TestStatsCountsError(t *testing.T) {
	repo, mock := newStatsMock(t)
	mock.ExpectQuery(`FROM subscribers`).WillReturnError(assert.AnError)
	mock.ExpectQuery(`FROM articles`).WillReturnRows(countRow(1))
	mock.ExpectQuery(`FROM ads`).WillReturnRows(countRow(1))
	mock.ExpectQuery(`FROM users`).WillReturnRows(countRow(1))
	mock.ExpectQuery(`FROM contacts`).WillReturnRows(countRow(1))
	mock.ExpectQuery(`FROM popup_leads`).WillReturnRows(countRow(1))

	_, err := repo.Counts(context.Background())
	assert.Error(t, err)
}
