package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mystic/contexts/identity-access/access-control/domain/entities"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

func (r *Repository) HasRole(ctx context.Context, role entities.Role, account string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&grantModel{}).
		Where("role = ? AND account = ?", string(role), account).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) PutGrant(ctx context.Context, grant entities.Grant) error {
	row := grantModel{
		Role:      string(grant.Role),
		Account:   grant.Account,
		GrantedBy: grant.GrantedBy,
		GrantedAt: grant.GrantedAt.UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "role"}, {Name: "account"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) DeleteGrant(ctx context.Context, role entities.Role, account string) error {
	return r.db.WithContext(ctx).
		Where("role = ? AND account = ?", string(role), account).
		Delete(&grantModel{}).
		Error
}

func (r *Repository) AccountsWithRole(ctx context.Context, role entities.Role) ([]string, error) {
	var accounts []string
	err := r.db.WithContext(ctx).
		Model(&grantModel{}).
		Where("role = ?", string(role)).
		Order("granted_at ASC").
		Pluck("account", &accounts).
		Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *Repository) CountAccountsWithRole(ctx context.Context, role entities.Role) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&grantModel{}).
		Where("role = ?", string(role)).
		Count(&count).
		Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

type grantModel struct {
	Role      string    `gorm:"column:role;primaryKey"`
	Account   string    `gorm:"column:account;primaryKey"`
	GrantedBy string    `gorm:"column:granted_by"`
	GrantedAt time.Time `gorm:"column:granted_at"`
}

func (grantModel) TableName() string {
	return "role_grants"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
