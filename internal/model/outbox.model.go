package model

import "time"

// NotificationType labels an outbox event for the dispatch boundary.
type NotificationType string

const (
	NotifyJobPosted           NotificationType = "job_posted"
	NotifyJobAccepted         NotificationType = "job_accepted"
	NotifyJobCompleted        NotificationType = "job_completed"
	NotifyJobApproved         NotificationType = "job_approved"
	NotifyJobCancelled        NotificationType = "job_cancelled"
	NotifyJobClosed           NotificationType = "job_closed"
	NotifyJobShortlisted      NotificationType = "job_shortlisted"
	NotifyJobNotShortlisted   NotificationType = "job_not_shortlisted"
	NotifyApplicationReceived NotificationType = "application_received"
	NotifyPaymentReleased     NotificationType = "payment_released"
	NotifyPaymentReceived     NotificationType = "payment_received"
)

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxDispatched OutboxStatus = "dispatched"
	OutboxFailed     OutboxStatus = "failed"
)

// OutboxEvent is a notification recorded in the same transaction as the
// core mutation that caused it. A separate worker dispatches pending
// events; delivery failures never roll back the originating transaction.
type OutboxEvent struct {
	ID           int64            `json:"id"`
	Type         NotificationType `json:"type"`
	RecipientID  int64            `json:"recipient_id"`
	SenderID     int64            `json:"sender_id,omitempty"`
	JobID        *int64           `json:"job_id,omitempty"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	Status       OutboxStatus     `json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	DispatchedAt *time.Time       `json:"dispatched_at,omitempty"`
}

func (OutboxEvent) TableName() string { return "outbox_events" }
