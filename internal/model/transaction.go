package model

import "time"

type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionPayment    TransactionType = "payment"
	TransactionRefund     TransactionType = "refund"
	TransactionCommission TransactionType = "commission"
	TransactionEarning    TransactionType = "earning"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionRefunded  TransactionStatus = "refunded"
)

// Transaction is the immutable audit record for a wallet mutation.
// Status moves pending -> completed/failed exactly once; completed and
// failed rows are never rewritten.
type Transaction struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"user_id"`
	Type        TransactionType   `json:"type"`
	Amount      float64           `json:"amount"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description"`

	JobID         *int64 `json:"job_id,omitempty"`
	RelatedUserID *int64 `json:"related_user_id,omitempty"`

	// Payment gateway correlation, set by the gateway boundary.
	GatewayOrderID   string `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string `json:"gateway_payment_id,omitempty"`

	CommissionRate   float64 `json:"commission_rate,omitempty"`
	CommissionAmount float64 `json:"commission_amount,omitempty"`

	InitiatedAt time.Time  `json:"initiated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
}

func (Transaction) TableName() string { return "transactions" }

// TransactionFilter controls List queries.
type TransactionFilter struct {
	UserID *int64
	Type   *TransactionType
	Status *TransactionStatus
	JobID  *int64
	Limit  int // default 20
	Offset int
}
