package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainerrors "mystic/contexts/community-experience/daily-checkin/domain/errors"

	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) LastDayIndex(ctx context.Context, account string) (int64, bool, error) {
	var row checkinModel
	err := r.db.WithContext(ctx).
		Where("account = ?", account).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return row.LastDayIndex, true, nil
}

// Record upserts the day index but refuses to overwrite an equal one, so a
// same-day repeat fails without a read-modify-write race.
func (r *Repository) Record(ctx context.Context, account string, dayIndex int64) error {
	result := r.db.WithContext(ctx).
		Exec(`INSERT INTO daily_checkins (account, last_day_index) VALUES (?, ?)
			ON CONFLICT (account) DO UPDATE SET last_day_index = EXCLUDED.last_day_index
			WHERE daily_checkins.last_day_index <> EXCLUDED.last_day_index`,
			account, dayIndex)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAlreadyCheckedIn
	}
	return nil
}

type checkinModel struct {
	Account      string `gorm:"column:account;primaryKey"`
	LastDayIndex int64  `gorm:"column:last_day_index"`
}

func (checkinModel) TableName() string {
	return "daily_checkins"
}

// SystemClock returns the OS time in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
