package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"mystic/contexts/trading/marketplace-engine/domain/entities"
	domainerrors "mystic/contexts/trading/marketplace-engine/domain/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const feeConfigID = 1

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

func (r *Repository) CreateOrder(ctx context.Context, order entities.Order) (uint64, error) {
	row := orderModel{
		AssetID:    order.AssetID,
		Seller:     order.Seller,
		PriceUnit:  order.PriceUnit,
		PerItemFee: order.PerItemFee,
		Quantity:   order.Quantity,
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt.UTC(),
		UpdatedAt:  order.UpdatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, err
	}
	return row.OrderID, nil
}

func (r *Repository) GetOrder(ctx context.Context, orderID uint64) (entities.Order, error) {
	var row orderModel
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Order{}, domainerrors.ErrNotPublished
	}
	if err != nil {
		return entities.Order{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveOrder(ctx context.Context, order entities.Order) error {
	result := r.db.WithContext(ctx).
		Model(&orderModel{}).
		Where("order_id = ?", order.OrderID).
		Updates(map[string]any{
			"quantity":   order.Quantity,
			"status":     string(order.Status),
			"updated_at": order.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotPublished
	}
	return nil
}

func (r *Repository) ListOrdersByStatus(ctx context.Context, status entities.OrderStatus) ([]entities.Order, error) {
	var rows []orderModel
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Order("order_id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	orders := make([]entities.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toEntity())
	}
	return orders, nil
}

func (r *Repository) FeeConfig(ctx context.Context) (entities.FeeConfig, error) {
	var row feeConfigModel
	err := r.db.WithContext(ctx).
		Where("id = ?", feeConfigID).
		First(&row).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.FeeConfig{}, nil
	}
	if err != nil {
		return entities.FeeConfig{}, err
	}
	return entities.FeeConfig{FeeRate: row.FeeRate, FeeHolder: row.FeeHolder}, nil
}

func (r *Repository) SetFeeRate(ctx context.Context, rate int64) error {
	row := feeConfigModel{ID: feeConfigID, FeeRate: rate}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"fee_rate"}),
		}).
		Create(&row).
		Error
}

func (r *Repository) SetFeeHolder(ctx context.Context, holder string) error {
	row := feeConfigModel{ID: feeConfigID, FeeHolder: holder}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"fee_holder"}),
		}).
		Create(&row).
		Error
}

type orderModel struct {
	OrderID    uint64          `gorm:"column:order_id;primaryKey;autoIncrement"`
	AssetID    uint64          `gorm:"column:asset_id"`
	Seller     string          `gorm:"column:seller"`
	PriceUnit  decimal.Decimal `gorm:"column:price_unit;type:numeric"`
	PerItemFee decimal.Decimal `gorm:"column:per_item_fee;type:numeric"`
	Quantity   uint64          `gorm:"column:quantity"`
	Status     string          `gorm:"column:status"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at"`
}

func (orderModel) TableName() string {
	return "marketplace_orders"
}

func (m orderModel) toEntity() entities.Order {
	return entities.Order{
		OrderID:    m.OrderID,
		AssetID:    m.AssetID,
		Seller:     m.Seller,
		PriceUnit:  m.PriceUnit,
		PerItemFee: m.PerItemFee,
		Quantity:   m.Quantity,
		Status:     entities.OrderStatus(m.Status),
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}

type feeConfigModel struct {
	ID        int    `gorm:"column:id;primaryKey"`
	FeeRate   int64  `gorm:"column:fee_rate"`
	FeeHolder string `gorm:"column:fee_holder"`
}

func (feeConfigModel) TableName() string {
	return "marketplace_fee_config"
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
