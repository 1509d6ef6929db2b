package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RecipientLister yields the users who receive fraction alerts.
type RecipientLister interface {
	ListRecipientIDs(ctx context.Context) ([]uuid.UUID, error)
}

type Service struct {
	repo       Repository
	recipients RecipientLister
	cache      *Cache
	thresholds Thresholds
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(repo Repository, recipients RecipientLister, cache *Cache, thresholds Thresholds, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		recipients: recipients,
		cache:      cache,
		thresholds: thresholds,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) List(ctx context.Context, req ListRequest) ([]Alert, int, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 25
	}
	return s.repo.List(ctx, req)
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// GenerateForUser classifies every eligible fraction and writes one alert per
// overdue, imminent or upcoming fraction. Distant fractions are skipped. At
// most one alert is written per fraction, user and calendar day.
func (s *Service) GenerateForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	fractions, err := s.repo.ListEligibleFractions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list eligible fractions: %w", err)
	}

	today := s.today()
	created := 0
	for _, f := range fractions {
		class := Classify(f.IsFulfilled, f.CalculatedDate, today, s.thresholds)
		if class == ClassDistant || class == ClassFulfilled {
			continue
		}

		exists, err := s.repo.ExistsForDay(ctx, f.FractionID, userID, today)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		alert := Alert{
			ID:         uuid.New(),
			UserID:     userID,
			Type:       class,
			Priority:   ClassPriority(class),
			FractionID: f.FractionID,
			SentenceID: f.SentenceID,
			PersonID:   f.PersonID,
			PersonName: f.PersonName,
			Message:    Message(class, f, DaysUntil(f.CalculatedDate, today)),
			TargetDate: f.CalculatedDate,
		}
		if err := s.repo.Insert(ctx, alert); err != nil {
			return created, fmt.Errorf("insert alert: %w", err)
		}
		created++
	}
	return created, nil
}

// GenerateForAll fans out over every alert recipient. Used by the scheduled
// scan job.
func (s *Service) GenerateForAll(ctx context.Context) (int, error) {
	userIDs, err := s.recipients.ListRecipientIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recipients: %w", err)
	}

	total := 0
	for _, userID := range userIDs {
		count, err := s.GenerateForUser(ctx, userID)
		total += count
		if err != nil {
			return total, fmt.Errorf("generate alerts for user %s: %w", userID, err)
		}
	}
	if total > 0 {
		if err := s.cache.Bump(ctx); err != nil {
			s.logger.Warn("dashboard cache bump failed", "error", err)
		}
	}
	s.logger.Info("alert scan finished", "users", len(userIDs), "alerts", total)
	return total, nil
}

// DashboardSummary counts eligible fractions per class, straight from the
// fraction tables rather than the alert rows, so the numbers stay accurate
// even when no scan has run today. Cached briefly.
func (s *Service) DashboardSummary(ctx context.Context) (Summary, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		return s.buildSummary(ctx)
	}

	key, err := s.cache.BuildKey(ctx, "alerts", "dashboard")
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	if err := s.cache.FetchJSON(ctx, key, &summary, loader); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func (s *Service) buildSummary(ctx context.Context) (Summary, error) {
	fractions, err := s.repo.ListEligibleFractions(ctx)
	if err != nil {
		return Summary{}, err
	}

	today := s.today()
	var summary Summary
	for _, f := range fractions {
		switch Classify(f.IsFulfilled, f.CalculatedDate, today, s.thresholds) {
		case ClassOverdue:
			summary.Overdue++
		case ClassImminent:
			summary.Imminent++
		case ClassUpcoming:
			summary.Upcoming++
		}
	}
	summary.Fulfilled, err = s.repo.CountFulfilled(ctx)
	if err != nil {
		return Summary{}, err
	}
	summary.Total = summary.Overdue + summary.Imminent + summary.Upcoming
	return summary, nil
}

func (s *Service) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
