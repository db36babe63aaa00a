package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/youssefsiam38/motoadmin"
	"github.com/youssefsiam38/motoadmin/storage"
)

// GetDashboard loads the stat cards and recent activity concurrently.
// A stats failure leaves the cards at zero instead of failing the page;
// only a rejected token is returned, so the caller can end the session.
func (s *Service) GetDashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := s.api.GetDashboardStats(gctx)
		if err != nil {
			if motoadmin.IsAuthError(err) {
				return err
			}
			s.logWarn("dashboard stats unavailable", "error", err)
			d.StatsUnavailable = true
			return nil
		}
		d.Stats = *stats
		return nil
	})

	g.Go(func() error {
		activities, err := s.ListActivities(gctx, s.config.ActivityLimit)
		if err != nil {
			s.logWarn("recent activity unavailable", "error", err)
			return nil
		}
		d.Activities = activities
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if d.Activities == nil {
		d.Activities = []*storage.AuditEntry{}
	}
	return d, nil
}

// ListActivities returns the latest audit entries, newest first.
func (s *Service) ListActivities(ctx context.Context, limit int) ([]*storage.AuditEntry, error) {
	if s.audit == nil {
		return []*storage.AuditEntry{}, nil
	}
	if limit <= 0 {
		limit = s.config.ActivityLimit
	}
	return s.audit.ListAudit(ctx, limit)
}
