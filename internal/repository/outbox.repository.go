package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/pkg/pg"
	"gorm.io/gorm"
)

var ErrOutboxEventNotFound = errors.New("outbox event not found")

type OutboxRepository struct {
	*pg.DB
}

func NewOutboxRepository(db *pg.DB) *OutboxRepository {
	return &OutboxRepository{DB: db}
}

// Append records a pending notification. Called inside the same
// transaction as the mutation that triggered it.
func (r *OutboxRepository) Append(ctx context.Context, event *model.OutboxEvent) error {
	if event.Status == "" {
		event.Status = model.OutboxPending
	}
	entity := toOutboxEntity(event)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return err
	}
	event.ID = entity.ID
	event.CreatedAt = entity.CreatedAt
	return nil
}

// ListPending returns undelivered events oldest first.
func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var entities []*OutboxEventEntity
	err := r.Read(ctx).
		Where("status = ?", string(model.OutboxPending)).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	events := make([]*model.OutboxEvent, len(entities))
	for i, e := range entities {
		events[i] = toOutboxModel(e)
	}
	return events, nil
}

// MarkDispatched flips pending -> dispatched, once.
func (r *OutboxRepository) MarkDispatched(ctx context.Context, id int64, at time.Time) error {
	res := r.Write(ctx).Model(&OutboxEventEntity{}).
		Where("id = ? AND status = ?", id, string(model.OutboxPending)).
		Updates(map[string]interface{}{
			"status":        string(model.OutboxDispatched),
			"dispatched_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOutboxEventNotFound
	}
	return nil
}

// MarkFailed records a delivery failure and bumps the attempt counter.
// Failed events stay visible for operator replay.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	res := r.Write(ctx).Model(&OutboxEventEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(model.OutboxFailed),
			"last_error": reason,
			"attempts":   gorm.Expr("attempts + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOutboxEventNotFound
	}
	return nil
}

// ListByRecipient returns a user's notification feed, newest first.
func (r *OutboxRepository) ListByRecipient(ctx context.Context, recipientID int64, limit int) ([]*model.OutboxEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var entities []*OutboxEventEntity
	err := r.Read(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	events := make([]*model.OutboxEvent, len(entities))
	for i, e := range entities {
		events[i] = toOutboxModel(e)
	}
	return events, nil
}
