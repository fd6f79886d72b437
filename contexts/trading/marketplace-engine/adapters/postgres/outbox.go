package postgresadapter

import (
	"context"
	"encoding/json"
	"time"

	"mystic/contexts/trading/marketplace-engine/ports"
	"mystic/internal/shared/events"

	"gorm.io/gorm"
)

// Outbox stages order events in the same database as the orders, so an
// event row is durable whenever the state change that produced it is.
type Outbox struct {
	db *gorm.DB
}

func NewOutbox(db *gorm.DB) *Outbox {
	return &Outbox{db: db}
}

func (o *Outbox) Enqueue(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		Envelope:  payload,
		Status:    ports.OutboxPending,
		CreatedAt: time.Now().UTC(),
	}
	return o.db.WithContext(ctx).Create(&row).Error
}

func (o *Outbox) Pending(ctx context.Context, limit int) ([]ports.OutboxEvent, error) {
	var rows []outboxModel
	err := o.db.WithContext(ctx).
		Where("status = ?", ports.OutboxPending).
		Order("id ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	pending := make([]ports.OutboxEvent, 0, len(rows))
	for _, row := range rows {
		var envelope events.Envelope
		if err := json.Unmarshal(row.Envelope, &envelope); err != nil {
			return nil, err
		}
		pending = append(pending, ports.OutboxEvent{
			ID:        row.ID,
			Envelope:  envelope,
			Status:    row.Status,
			CreatedAt: row.CreatedAt.UTC(),
			SentAt:    row.SentAt,
		})
	}
	return pending, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id uint64, sentAt time.Time) error {
	sent := sentAt.UTC()
	return o.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":  ports.OutboxSent,
			"sent_at": &sent,
		}).
		Error
}

type outboxModel struct {
	ID        uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	Envelope  json.RawMessage `gorm:"column:envelope;type:jsonb"`
	Status    string          `gorm:"column:status"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	SentAt    *time.Time      `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "marketplace_outbox"
}
