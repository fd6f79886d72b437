package postgresadapter

import (
	"context"
	"errors"
	"log/slog"

	domainerrors "mystic/contexts/finance-core/balance-ledger/domain/errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository keeps balances and allowances in Postgres. Transfer-shaped
// methods run inside one transaction with the source row locked, so the
// balance check and both mutations commit or roll back together.
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

func (r *Repository) BalanceOf(ctx context.Context, account string) (decimal.Decimal, error) {
	var row balanceModel
	err := r.db.WithContext(ctx).
		Where("account = ?", account).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return row.Balance, nil
}

func (r *Repository) Allowance(ctx context.Context, owner string, spender string) (decimal.Decimal, error) {
	var row allowanceModel
	err := r.db.WithContext(ctx).
		Where("owner = ? AND spender = ?", owner, spender).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return row.Amount, nil
}

func (r *Repository) Credit(ctx context.Context, account string, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return creditLocked(tx, account, amount)
	})
}

func (r *Repository) Move(ctx context.Context, from string, to string, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return moveLocked(tx, from, to, amount)
	})
}

func (r *Repository) MoveFrom(ctx context.Context, spender string, from string, to string, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var grant allowanceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner = ? AND spender = ?", from, spender).
			First(&grant).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && grant.Amount.LessThan(amount)) {
			return domainerrors.ErrInsufficientAllowance
		}
		if err != nil {
			return err
		}
		if err := moveLocked(tx, from, to, amount); err != nil {
			return err
		}
		return tx.Model(&allowanceModel{}).
			Where("owner = ? AND spender = ?", from, spender).
			Update("amount", grant.Amount.Sub(amount)).
			Error
	})
}

func (r *Repository) SetAllowance(ctx context.Context, owner string, spender string, amount decimal.Decimal) error {
	row := allowanceModel{Owner: owner, Spender: spender, Amount: amount}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}, {Name: "spender"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount"}),
		}).
		Create(&row).
		Error
}

func moveLocked(tx *gorm.DB, from string, to string, amount decimal.Decimal) error {
	var source balanceModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account = ?", from).
		First(&source).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && source.Balance.LessThan(amount)) {
		return domainerrors.ErrInsufficientBalance
	}
	if err != nil {
		return err
	}
	if err := tx.Model(&balanceModel{}).
		Where("account = ?", from).
		Update("balance", source.Balance.Sub(amount)).
		Error; err != nil {
		return err
	}
	return creditLocked(tx, to, amount)
}

func creditLocked(tx *gorm.DB, account string, amount decimal.Decimal) error {
	row := balanceModel{Account: account, Balance: amount}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoUpdates: clause.Assignments(map[string]any{
			"balance": gorm.Expr("ledger_balances.balance + EXCLUDED.balance"),
		}),
	}).Create(&row).Error
}

type balanceModel struct {
	Account string          `gorm:"column:account;primaryKey"`
	Balance decimal.Decimal `gorm:"column:balance;type:numeric"`
}

func (balanceModel) TableName() string {
	return "ledger_balances"
}

type allowanceModel struct {
	Owner   string          `gorm:"column:owner;primaryKey"`
	Spender string          `gorm:"column:spender;primaryKey"`
	Amount  decimal.Decimal `gorm:"column:amount;type:numeric"`
}

func (allowanceModel) TableName() string {
	return "ledger_allowances"
}
