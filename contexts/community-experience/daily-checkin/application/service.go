package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	domainerrors "mystic/contexts/community-experience/daily-checkin/domain/errors"
	"mystic/contexts/community-experience/daily-checkin/ports"
)

const secondsPerDay = 86400

// DayIndex maps an instant to its UTC calendar day, counted from the Unix
// epoch.
func DayIndex(t time.Time) int64 {
	return t.UTC().Unix() / secondsPerDay
}

// Service records one check-in per account per UTC day.
type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	Logger *slog.Logger
}

// CheckIn records today's check-in for the caller. A second call on the same
// UTC day fails ErrAlreadyCheckedIn.
func (s Service) CheckIn(ctx context.Context, caller string) error {
	if strings.TrimSpace(caller) == "" {
		return domainerrors.ErrInvalidAccount
	}
	today := DayIndex(s.now())
	if err := s.Repo.Record(ctx, caller, today); err != nil {
		return err
	}
	ResolveLogger(s.Logger).Info("account checked in",
		"event", "account_checked_in",
		"module", "community-experience/daily-checkin",
		"layer", "application",
		"account", caller,
		"day_index", today,
	)
	return nil
}

// CheckedInToday reports whether the account has already checked in on the
// current UTC day.
func (s Service) CheckedInToday(ctx context.Context, account string) (bool, error) {
	if strings.TrimSpace(account) == "" {
		return false, domainerrors.ErrInvalidAccount
	}
	last, ok, err := s.Repo.LastDayIndex(ctx, account)
	if err != nil {
		return false, err
	}
	return ok && last == DayIndex(s.now()), nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func ResolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
