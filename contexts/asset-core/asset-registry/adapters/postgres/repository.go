package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mystic/contexts/asset-core/asset-registry/domain/entities"
	domainerrors "mystic/contexts/asset-core/asset-registry/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const registryConfigID = 1

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

func (r *Repository) CreateAsset(ctx context.Context, asset entities.Asset) error {
	row := assetModel{
		AssetID:       asset.AssetID,
		Owner:         asset.Owner,
		Locked:        asset.Locked,
		WithdrawNonce: asset.WithdrawNonce,
		URIOverride:   asset.URIOverride,
		MintedAt:      asset.MintedAt.UTC(),
		UpdatedAt:     asset.UpdatedAt.UTC(),
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if isUniqueViolation(err) {
		return domainerrors.ErrAlreadyExists
	}
	return err
}

func (r *Repository) GetAsset(ctx context.Context, assetID uint64) (entities.Asset, error) {
	var row assetModel
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Asset{}, domainerrors.ErrNotFound
	}
	if err != nil {
		return entities.Asset{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) AssetExists(ctx context.Context, assetID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&assetModel{}).
		Where("asset_id = ?", assetID).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) TransferOwner(ctx context.Context, assetID uint64, to string, updatedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&assetModel{}).
			Where("asset_id = ?", assetID).
			Updates(map[string]any{
				"owner":      to,
				"updated_at": updatedAt.UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrNotFound
		}
		// A completed transfer consumes the single-token approval.
		return tx.Where("asset_id = ?", assetID).
			Delete(&tokenApprovalModel{}).
			Error
	})
}

func (r *Repository) SetLocked(ctx context.Context, assetID uint64, locked bool, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&assetModel{}).
		Where("asset_id = ?", assetID).
		Updates(map[string]any{
			"locked":     locked,
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UnlockAndBumpNonce performs the compare-and-swap in one UPDATE so a nonce
// can never be consumed twice even across concurrent processes.
func (r *Repository) UnlockAndBumpNonce(ctx context.Context, assetID uint64, expectedNonce uint64, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&assetModel{}).
		Where("asset_id = ? AND withdraw_nonce = ?", assetID, expectedNonce).
		Updates(map[string]any{
			"locked":         false,
			"withdraw_nonce": gorm.Expr("withdraw_nonce + 1"),
			"updated_at":     updatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		exists, err := r.AssetExists(ctx, assetID)
		if err != nil {
			return err
		}
		if !exists {
			return domainerrors.ErrNotFound
		}
		return domainerrors.ErrInvalidNonce
	}
	return nil
}

func (r *Repository) SetTokenURI(ctx context.Context, assetID uint64, uri string, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&assetModel{}).
		Where("asset_id = ?", assetID).
		Updates(map[string]any{
			"uri_override": uri,
			"updated_at":   updatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *Repository) ApproveToken(ctx context.Context, assetID uint64, spender string) error {
	exists, err := r.AssetExists(ctx, assetID)
	if err != nil {
		return err
	}
	if !exists {
		return domainerrors.ErrNotFound
	}
	row := tokenApprovalModel{AssetID: assetID, Spender: spender}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "asset_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"spender"}),
		}).
		Create(&row).
		Error
}

func (r *Repository) TokenApproval(ctx context.Context, assetID uint64) (string, error) {
	var row tokenApprovalModel
	err := r.db.WithContext(ctx).
		Where("asset_id = ?", assetID).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.Spender, nil
}

func (r *Repository) SetOperatorApproval(ctx context.Context, owner string, operator string, approved bool) error {
	if !approved {
		return r.db.WithContext(ctx).
			Where("owner = ? AND operator = ?", owner, operator).
			Delete(&operatorApprovalModel{}).
			Error
	}
	row := operatorApprovalModel{Owner: owner, Operator: operator}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner"}, {Name: "operator"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) HasOperatorApproval(ctx context.Context, owner string, operator string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&operatorApprovalModel{}).
		Where("owner = ? AND operator = ?", owner, operator).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Config(ctx context.Context) (entities.RegistryConfig, error) {
	var row configModel
	err := r.db.WithContext(ctx).
		Where("id = ?", registryConfigID).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.RegistryConfig{}, nil
	}
	if err != nil {
		return entities.RegistryConfig{}, err
	}
	return entities.RegistryConfig{
		TransferRestricted: row.TransferRestricted,
		BaseURI:            row.BaseURI,
	}, nil
}

func (r *Repository) SetTransferRestriction(ctx context.Context, enabled bool) error {
	row := configModel{ID: registryConfigID, TransferRestricted: enabled}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"transfer_restricted"}),
		}).
		Create(&row).
		Error
}

func (r *Repository) SetBaseURI(ctx context.Context, uri string) error {
	row := configModel{ID: registryConfigID, BaseURI: uri}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"base_uri"}),
		}).
		Create(&row).
		Error
}

func (r *Repository) SetMarketplaceAllowed(ctx context.Context, account string, allowed bool) error {
	if !allowed {
		return r.db.WithContext(ctx).
			Where("account = ?", account).
			Delete(&allowlistModel{}).
			Error
	}
	row := allowlistModel{Account: account}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) IsMarketplaceAllowed(ctx context.Context, account string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&allowlistModel{}).
		Where("account = ?", account).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type assetModel struct {
	AssetID       uint64    `gorm:"column:asset_id;primaryKey"`
	Owner         string    `gorm:"column:owner"`
	Locked        bool      `gorm:"column:locked"`
	WithdrawNonce uint64    `gorm:"column:withdraw_nonce"`
	URIOverride   string    `gorm:"column:uri_override"`
	MintedAt      time.Time `gorm:"column:minted_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (assetModel) TableName() string {
	return "registry_assets"
}

func (m assetModel) toEntity() entities.Asset {
	return entities.Asset{
		AssetID:       m.AssetID,
		Owner:         m.Owner,
		Locked:        m.Locked,
		WithdrawNonce: m.WithdrawNonce,
		URIOverride:   m.URIOverride,
		MintedAt:      m.MintedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type tokenApprovalModel struct {
	AssetID uint64 `gorm:"column:asset_id;primaryKey"`
	Spender string `gorm:"column:spender"`
}

func (tokenApprovalModel) TableName() string {
	return "registry_token_approvals"
}

type operatorApprovalModel struct {
	Owner    string `gorm:"column:owner;primaryKey"`
	Operator string `gorm:"column:operator;primaryKey"`
}

func (operatorApprovalModel) TableName() string {
	return "registry_operator_approvals"
}

type configModel struct {
	ID                 int    `gorm:"column:id;primaryKey"`
	TransferRestricted bool   `gorm:"column:transfer_restricted"`
	BaseURI            string `gorm:"column:base_uri"`
}

func (configModel) TableName() string {
	return "registry_config"
}

type allowlistModel struct {
	Account string `gorm:"column:account;primaryKey"`
}

func (allowlistModel) TableName() string {
	return "registry_marketplace_allowlist"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
