package model

import "time"

// Wallet is the per-user money account. Balance and EscrowBalance are
// never negative; every mutation is paired with exactly one Transaction
// record in the same atomic unit.
type Wallet struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Balance       float64   `json:"balance"`
	EscrowBalance float64   `json:"escrow_balance"`
	TotalEarnings float64   `json:"total_earnings"`
	TotalSpent    float64   `json:"total_spent"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Wallet) TableName() string { return "wallets" }
