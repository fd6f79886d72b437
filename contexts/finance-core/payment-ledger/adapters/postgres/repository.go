package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainerrors "mystic/contexts/finance-core/payment-ledger/domain/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
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

func (r *Repository) NonceOf(ctx context.Context, account string) (uint64, error) {
	var row nonceModel
	err := r.db.WithContext(ctx).
		Where("account = ?", account).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Nonce, nil
}

// BumpNonce performs the compare-and-swap in one statement so a nonce can
// never be consumed twice even across concurrent processes. An account with
// no row yet is at nonce zero.
func (r *Repository) BumpNonce(ctx context.Context, account string, expectedNonce uint64) error {
	if expectedNonce == 0 {
		result := r.db.WithContext(ctx).
			Exec("INSERT INTO payment_nonces (account, nonce) VALUES (?, 1) ON CONFLICT (account) DO NOTHING", account)
		if result.Error != nil {
			if isUniqueViolation(result.Error) {
				return domainerrors.ErrInvalidNonce
			}
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
		// A row exists; fall through to the guarded update in case its nonce
		// really is zero.
	}
	result := r.db.WithContext(ctx).
		Model(&nonceModel{}).
		Where("account = ? AND nonce = ?", account, expectedNonce).
		Update("nonce", gorm.Expr("nonce + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidNonce
	}
	return nil
}

type nonceModel struct {
	Account string `gorm:"column:account;primaryKey"`
	Nonce   uint64 `gorm:"column:nonce"`
}

func (nonceModel) TableName() string {
	return "payment_nonces"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SystemClock returns the OS time in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator issues v4 UUIDs for event identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
