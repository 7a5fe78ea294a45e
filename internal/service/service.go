package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spendtrack/expense-forecast/internal/forecast"
	"github.com/spendtrack/expense-forecast/internal/models"
	"github.com/spendtrack/expense-forecast/internal/repository"
)

// Diagnostic returned when the email resolves to no user.
const msgUserNotFound = "User not found"

// Store is the subset of repository operations the service needs directly;
// the forecasting pipeline holds its own data-access collaborator.
type Store interface {
	GetUserIDByEmail(ctx context.Context, email string) (int64, error)
	ListUserActivity(ctx context.Context) ([]models.UserActivity, error)
}

// Service handles business logic
type Service struct {
	store      Store
	forecaster *forecast.Forecaster
	log        *logrus.Logger
}

// NewService initializes a new service
func NewService(store Store, forecaster *forecast.Forecaster, log *logrus.Logger) *Service {
	return &Service{store: store, forecaster: forecaster, log: log}
}

// ForecastExpense resolves the user and runs the forecasting pipeline. It
// always returns a string: either a decimal estimate or a diagnostic.
func (s *Service) ForecastExpense(ctx context.Context, email, mode string, value int) string {
	userID, err := s.store.GetUserIDByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return msgUserNotFound
	}
	if err != nil {
		s.log.Errorf("resolving user %q: %v", email, err)
		return "Forecasting temporarily unavailable"
	}

	return s.forecaster.Estimate(ctx, userID, mode, value)
}

// SweepStaleData logs a warning for every user whose most recent expense is
// older than the staleness threshold. Scheduled from main; logging only.
func (s *Service) SweepStaleData(ctx context.Context) {
	activity, err := s.store.ListUserActivity(ctx)
	if err != nil {
		s.log.Errorf("stale-data sweep failed: %v", err)
		return
	}

	stale := 0
	for _, a := range activity {
		if time.Since(a.LastExpense) > forecast.StaleAfter {
			stale++
			s.log.Warnf("stale expense data for user %d (%s): last entry %s",
				a.UserID, a.Email, a.LastExpense.Format("2006-01-02"))
		}
	}
	s.log.Infof("stale-data sweep done: %d users checked, %d stale", len(activity), stale)
}
