package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/observability"
	"github.com/dedirosandiaj/problem-log-new/internal/repository"
)

// ActivityService records and lists who did what in the console.
type ActivityService struct {
	repo    repository.ActivityRepository
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// ActivityFilter narrows the activity list. Zero values match everything.
type ActivityFilter struct {
	Action domain.ActivityAction
	Search string
	From   *time.Time
	To     *time.Time
}

// NewActivityService builds the service.
func NewActivityService(repo repository.ActivityRepository, logger *zap.Logger, metrics *observability.Metrics) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, logger: logger, metrics: metrics, now: systemClock}
}

// Record stores an entry. Storage failures are logged and counted, never returned.
func (s *ActivityService) Record(ctx context.Context, actor domain.Actor, action domain.ActivityAction, target, details string) {
	entry := domain.ActivityLog{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		UserName:  actor.Name,
		UserRole:  actor.Role,
		Action:    action,
		Target:    target,
		Details:   details,
		Timestamp: s.now().UTC(),
	}
	if err := s.repo.Append(context.WithoutCancel(ctx), entry); err != nil {
		s.metrics.ActivityDropped()
		s.logger.Debug("activity log write failed",
			zap.String("action", string(action)),
			zap.String("target", target),
			zap.Error(err))
	}
}

// List returns entries newest first.
func (s *ActivityService) List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityLog, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.ActivityLog, 0, len(entries))
	for _, e := range entries {
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.UserName), search) &&
			!strings.Contains(strings.ToLower(e.Target), search) &&
			!strings.Contains(strings.ToLower(e.Details), search) {
			continue
		}
		if filter.From != nil && e.Timestamp.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Timestamp.After(*filter.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
