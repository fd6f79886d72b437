package ports

import (
	"context"
	"time"
)

// Clock abstracts current time so day boundaries are testable.
type Clock interface {
	Now() time.Time
}

// Repository stores the last checked-in day index per account. Record is a
// compare-and-set: it fails with ErrAlreadyCheckedIn when the stored index
// already equals dayIndex.
type Repository interface {
	LastDayIndex(ctx context.Context, account string) (int64, bool, error)
	Record(ctx context.Context, account string, dayIndex int64) error
}
