package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/pkg/pg"
	"gorm.io/gorm"
)

var ErrTransactionNotFound = errors.New("transaction not found")
var ErrTransactionSettled = errors.New("transaction already settled")

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	entity := toTransactionEntity(txn)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toTransactionModel(entity), nil
}

func (r *TransactionRepository) Get(ctx context.Context, id int64) (*model.Transaction, error) {
	var entity TransactionEntity
	err := r.Read(ctx).WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return toTransactionModel(&entity), nil
}

// MarkCompleted settles a pending transaction exactly once. The status
// predicate rejects writers racing on an already-settled row.
func (r *TransactionRepository) MarkCompleted(ctx context.Context, id int64, gatewayPaymentID string) error {
	now := time.Now()
	result := r.Write(ctx).WithContext(ctx).
		Model(&TransactionEntity{}).
		Where("id = ? AND status = ?", id, string(model.TransactionPending)).
		Updates(map[string]interface{}{
			"status":             string(model.TransactionCompleted),
			"gateway_payment_id": gatewayPaymentID,
			"completed_at":       &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionSettled
	}
	return nil
}

// MarkFailed settles a pending transaction as failed exactly once.
func (r *TransactionRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	now := time.Now()
	result := r.Write(ctx).WithContext(ctx).
		Model(&TransactionEntity{}).
		Where("id = ? AND status = ?", id, string(model.TransactionPending)).
		Updates(map[string]interface{}{
			"status":      string(model.TransactionFailed),
			"description": gorm.Expr("description || ?", " (failed: "+reason+")"),
			"failed_at":   &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionSettled
	}
	return nil
}

func (r *TransactionRepository) List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&TransactionEntity{})

	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Type != nil {
		q = q.Where("type = ?", string(*f.Type))
	}
	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.JobID != nil {
		q = q.Where("job_id = ?", *f.JobID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}

	var entities []*TransactionEntity
	err := q.Order("initiated_at DESC").Limit(limit).Offset(f.Offset).Find(&entities).Error
	if err != nil {
		return nil, 0, err
	}

	return toTransactionModels(entities), total, nil
}
