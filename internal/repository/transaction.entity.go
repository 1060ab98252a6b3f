package repository

import (
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
)

type TransactionEntity struct {
	ID          int64     `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	UserID      int64     `db:"user_id"     gorm:"column:user_id;not null;index"`
	Type        string    `db:"type"        gorm:"column:type;not null;index"`
	Amount      float64   `db:"amount"      gorm:"column:amount;not null"`
	Status      string    `db:"status"      gorm:"column:status;not null;index"`
	Description string    `db:"description" gorm:"column:description;not null"`

	JobID         *int64 `db:"job_id"          gorm:"column:job_id;index"`
	RelatedUserID *int64 `db:"related_user_id" gorm:"column:related_user_id"`

	GatewayOrderID   string `db:"gateway_order_id"   gorm:"column:gateway_order_id"`
	GatewayPaymentID string `db:"gateway_payment_id" gorm:"column:gateway_payment_id"`

	CommissionRate   float64 `db:"commission_rate"   gorm:"column:commission_rate;not null;default:0"`
	CommissionAmount float64 `db:"commission_amount" gorm:"column:commission_amount;not null;default:0"`

	InitiatedAt time.Time  `db:"initiated_at" gorm:"column:initiated_at;autoCreateTime"`
	CompletedAt *time.Time `db:"completed_at" gorm:"column:completed_at"`
	FailedAt    *time.Time `db:"failed_at"    gorm:"column:failed_at"`
}

func (TransactionEntity) TableName() string {
	return "transactions"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	return &TransactionEntity{
		ID:               m.ID,
		UserID:           m.UserID,
		Type:             string(m.Type),
		Amount:           m.Amount,
		Status:           string(m.Status),
		Description:      m.Description,
		JobID:            m.JobID,
		RelatedUserID:    m.RelatedUserID,
		GatewayOrderID:   m.GatewayOrderID,
		GatewayPaymentID: m.GatewayPaymentID,
		CommissionRate:   m.CommissionRate,
		CommissionAmount: m.CommissionAmount,
		InitiatedAt:      m.InitiatedAt,
		CompletedAt:      m.CompletedAt,
		FailedAt:         m.FailedAt,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		ID:               e.ID,
		UserID:           e.UserID,
		Type:             model.TransactionType(e.Type),
		Amount:           e.Amount,
		Status:           model.TransactionStatus(e.Status),
		Description:      e.Description,
		JobID:            e.JobID,
		RelatedUserID:    e.RelatedUserID,
		GatewayOrderID:   e.GatewayOrderID,
		GatewayPaymentID: e.GatewayPaymentID,
		CommissionRate:   e.CommissionRate,
		CommissionAmount: e.CommissionAmount,
		InitiatedAt:      e.InitiatedAt,
		CompletedAt:      e.CompletedAt,
		FailedAt:         e.FailedAt,
	}
}

func toTransactionModels(entities []*TransactionEntity) []*model.Transaction {
	if entities == nil {
		return nil
	}
	models := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = toTransactionModel(e)
	}
	return models
}
