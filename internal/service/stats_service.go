package service

import (
	"context"
	"sort"
	"time"

	"github.com/uxdj/backend/internal/apperr"
	"github.com/uxdj/backend/internal/model"
	"github.com/uxdj/backend/internal/repository"
	"golang.org/x/sync/errgroup"
)

const (
	recentArticleEvents    = 6
	recentSubscriberEvents = 4
	recentEventsLimit      = 10
)

// StatsService builds the admin dashboard summary.
type StatsService interface {
	Dashboard(ctx context.Context) (*model.Stats, error)
}

type statsService struct {
	repo repository.StatsRepository
	now  func() time.Time
}

// NewStatsService creates a StatsService.
func NewStatsService(repo repository.StatsRepository) StatsService {
	return &statsService{repo: repo, now: time.Now}
}

func (s *statsService) Dashboard(ctx context.Context) (*model.Stats, error) {
	var (
		stats       *model.Stats
		articles    []model.RecentEvent
		subscribers []model.RecentEvent
		trends      model.Trends
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = s.repo.Counts(gctx)
		return err
	})
	g.Go(func() (err error) {
		articles, err = s.repo.RecentArticles(gctx, recentArticleEvents)
		return err
	})
	g.Go(func() (err error) {
		subscribers, err = s.repo.RecentSubscribers(gctx, recentSubscriberEvents)
		return err
	})
	g.Go(func() (err error) {
		trends, err = s.repo.Trends(gctx, s.now())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal("Could not load stats", err)
	}

	events := append(articles, subscribers...)
	sort.SliceStable(events, func(i, j int) bool { return events[i].Date.After(events[j].Date) })
	if len(events) > recentEventsLimit {
		events = events[:recentEventsLimit]
	}
	if events == nil {
		events = []model.RecentEvent{}
	}

	stats.Categories = len(model.Categories)
	stats.RecentEvents = events
	stats.Trends = trends
	return stats, nil
}
