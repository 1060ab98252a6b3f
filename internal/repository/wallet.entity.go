package repository

import (
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
)

type WalletEntity struct {
	ID            int64     `db:"id"             gorm:"primaryKey;autoIncrement;column:id"`
	UserID        int64     `db:"user_id"        gorm:"column:user_id;not null;uniqueIndex"`
	Balance       float64   `db:"balance"        gorm:"column:balance;not null;default:0"`
	EscrowBalance float64   `db:"escrow_balance" gorm:"column:escrow_balance;not null;default:0"`
	TotalEarnings float64   `db:"total_earnings" gorm:"column:total_earnings;not null;default:0"`
	TotalSpent    float64   `db:"total_spent"    gorm:"column:total_spent;not null;default:0"`
	IsActive      bool      `db:"is_active"      gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time `db:"created_at"     gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `db:"updated_at"     gorm:"column:updated_at;autoUpdateTime"`
}

func (WalletEntity) TableName() string {
	return "wallets"
}

func toWalletEntity(m *model.Wallet) *WalletEntity {
	if m == nil {
		return nil
	}
	return &WalletEntity{
		ID:            m.ID,
		UserID:        m.UserID,
		Balance:       m.Balance,
		EscrowBalance: m.EscrowBalance,
		TotalEarnings: m.TotalEarnings,
		TotalSpent:    m.TotalSpent,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toWalletModel(e *WalletEntity) *model.Wallet {
	if e == nil {
		return nil
	}
	return &model.Wallet{
		ID:            e.ID,
		UserID:        e.UserID,
		Balance:       e.Balance,
		EscrowBalance: e.EscrowBalance,
		TotalEarnings: e.TotalEarnings,
		TotalSpent:    e.TotalSpent,
		IsActive:      e.IsActive,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
