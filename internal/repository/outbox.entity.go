package repository

import (
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
)

type OutboxEventEntity struct {
	ID           int64      `db:"id"            gorm:"primaryKey;autoIncrement;column:id"`
	Type         string     `db:"type"          gorm:"column:type;not null"`
	RecipientID  int64      `db:"recipient_id"  gorm:"column:recipient_id;not null;index"`
	SenderID     int64      `db:"sender_id"     gorm:"column:sender_id"`
	JobID        *int64     `db:"job_id"        gorm:"column:job_id;index"`
	Title        string     `db:"title"         gorm:"column:title;not null"`
	Message      string     `db:"message"       gorm:"column:message;not null"`
	Status       string     `db:"status"        gorm:"column:status;not null;default:pending;index"`
	Attempts     int        `db:"attempts"      gorm:"column:attempts;not null;default:0"`
	LastError    string     `db:"last_error"    gorm:"column:last_error"`
	CreatedAt    time.Time  `db:"created_at"    gorm:"column:created_at;autoCreateTime;index"`
	DispatchedAt *time.Time `db:"dispatched_at" gorm:"column:dispatched_at"`
}

func (OutboxEventEntity) TableName() string {
	return "outbox_events"
}

func toOutboxEntity(m *model.OutboxEvent) *OutboxEventEntity {
	if m == nil {
		return nil
	}
	return &OutboxEventEntity{
		ID:           m.ID,
		Type:         string(m.Type),
		RecipientID:  m.RecipientID,
		SenderID:     m.SenderID,
		JobID:        m.JobID,
		Title:        m.Title,
		Message:      m.Message,
		Status:       string(m.Status),
		CreatedAt:    m.CreatedAt,
		DispatchedAt: m.DispatchedAt,
	}
}

func toOutboxModel(e *OutboxEventEntity) *model.OutboxEvent {
	if e == nil {
		return nil
	}
	return &model.OutboxEvent{
		ID:           e.ID,
		Type:         model.NotificationType(e.Type),
		RecipientID:  e.RecipientID,
		SenderID:     e.SenderID,
		JobID:        e.JobID,
		Title:        e.Title,
		Message:      e.Message,
		Status:       model.OutboxStatus(e.Status),
		CreatedAt:    e.CreatedAt,
		DispatchedAt: e.DispatchedAt,
	}
}
