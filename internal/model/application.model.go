package model

import "time"

type ApplicationStatus string

const (
	ApplicationApplied  ApplicationStatus = "applied"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

type InspectionStatus string

const (
	InspectionQueued     InspectionStatus = "queued"
	InspectionInspecting InspectionStatus = "inspecting"
	InspectionDone       InspectionStatus = "done"
	InspectionFailed     InspectionStatus = "failed"
)

// Inspection records the outcome of the asynchronous deep profile
// inspection for an online-job application.
type Inspection struct {
	Status      InspectionStatus `json:"status"`
	Result      string           `json:"result,omitempty"` // JSON blob from the inspector
	Error       string           `json:"error,omitempty"`
	InspectedAt *time.Time       `json:"inspected_at,omitempty"`
}

// Application is owned by its Job and never addressed without it. The ID
// is a stable surrogate scoped to the parent job.
type Application struct {
	ID             string            `json:"id"`
	JobID          int64             `json:"job_id"`
	StudentID      int64             `json:"student_id"`
	CoverLetter    string            `json:"cover_letter,omitempty"`
	ProposedBudget *float64          `json:"proposed_budget,omitempty"`
	ProfileURL     string            `json:"profile_url,omitempty"` // online jobs only
	Evaluation     int               `json:"evaluation_score"`      // 0-100
	Shortlisted    bool              `json:"shortlisted"`
	Status         ApplicationStatus `json:"status"`
	Inspection     Inspection        `json:"inspection"`
	CreatedAt      time.Time         `json:"created_at"` // immutable; ranking tie-break and window cutoff
}

func (Application) TableName() string { return "applications" }
