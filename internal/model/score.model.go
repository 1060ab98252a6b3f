package model

import "time"

// Score events and their deltas. A user's current score must always equal
// the role's initial score plus the sum of their score log deltas.
type ScoreEvent string

const (
	ScoreEventJobCompleted     ScoreEvent = "job_completed"
	ScoreEventOnTimeSubmission ScoreEvent = "on_time_submission"
	ScoreEventNoShowFakeApply  ScoreEvent = "no_show_fake_apply"
)

const (
	ScoreDeltaJobCompleted     = 8
	ScoreDeltaOnTimeSubmission = 4
	ScoreDeltaNoShowFakeApply  = -20
)

// ScoreLog is an append-only reputation adjustment record.
type ScoreLog struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Event     ScoreEvent `json:"event"`
	Delta     int        `json:"delta"`
	Reason    string     `json:"reason,omitempty"`
	Meta      string     `json:"meta,omitempty"` // JSON blob
	CreatedAt time.Time  `json:"created_at"`
}

func (ScoreLog) TableName() string { return "score_logs" }
