package repository

import (
	"encoding/json"
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
)

type JobEntity struct {
	ID          int64   `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	EmployerID  int64   `db:"employer_id" gorm:"column:employer_id;not null;index"`
	Title       string  `db:"title"       gorm:"column:title;not null"`
	Description string  `db:"description" gorm:"column:description;not null"`
	Category    string  `db:"category"    gorm:"column:category;not null"`
	Budget      float64 `db:"budget"      gorm:"column:budget;not null"`
	Duration    string  `db:"duration"    gorm:"column:duration;not null"`
	JobType     string  `db:"job_type"    gorm:"column:job_type;not null;index"`

	LocationCity    string `db:"location_city"    gorm:"column:location_city"`
	LocationState   string `db:"location_state"   gorm:"column:location_state"`
	LocationCountry string `db:"location_country" gorm:"column:location_country"`

	PositionsRequired int    `db:"positions_required" gorm:"column:positions_required;not null;default:1"`
	AcceptedCount     int    `db:"accepted_count"     gorm:"column:accepted_count;not null;default:0"`
	AssignedStudent   *int64 `db:"assigned_student"   gorm:"column:assigned_student"`

	Status          string  `db:"status"           gorm:"column:status;not null;index"`
	EscrowAmount    float64 `db:"escrow_amount"    gorm:"column:escrow_amount;not null;default:0"`
	PaymentReleased bool    `db:"payment_released" gorm:"column:payment_released;not null;default:false"`

	StudentAccepted  bool `db:"student_accepted"  gorm:"column:student_accepted;not null;default:false"`
	StudentApproved  bool `db:"student_approved"  gorm:"column:student_approved;not null;default:false"`
	EmployerApproved bool `db:"employer_approved" gorm:"column:employer_approved;not null;default:false"`

	SubmissionRequiresFiles bool       `db:"submission_requires_files" gorm:"column:submission_requires_files;not null;default:false"`
	SubmissionDescription   string     `db:"submission_description"    gorm:"column:submission_description"`
	SubmissionAttachments   string     `db:"submission_attachments"    gorm:"column:submission_attachments"` // JSON array
	SubmissionSubmittedAt   *time.Time `db:"submission_submitted_at"   gorm:"column:submission_submitted_at"`

	ShortlistMultiplier   int        `db:"shortlist_multiplier"     gorm:"column:shortlist_multiplier;not null;default:3"`
	ShortlistWindowHours  int        `db:"shortlist_window_hours"   gorm:"column:shortlist_window_hours;not null;default:3"`
	ShortlistWindowEndsAt *time.Time `db:"shortlist_window_ends_at" gorm:"column:shortlist_window_ends_at;index"`
	ShortlistComputed     bool       `db:"shortlist_computed"       gorm:"column:shortlist_computed;not null;default:false"`
	ShortlistedAt         *time.Time `db:"shortlisted_at"           gorm:"column:shortlisted_at"`

	CreatedAt   time.Time  `db:"created_at"   gorm:"column:created_at;autoCreateTime"`
	ClosedAt    *time.Time `db:"closed_at"    gorm:"column:closed_at"`
	PaidAt      *time.Time `db:"paid_at"      gorm:"column:paid_at"`
	CancelledAt *time.Time `db:"cancelled_at" gorm:"column:cancelled_at"`
}

func (JobEntity) TableName() string {
	return "jobs"
}

// JobAssigneeEntity preserves assignment order and uniqueness for the
// assigned-students set.
type JobAssigneeEntity struct {
	ID        int64 `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	JobID     int64 `db:"job_id"     gorm:"column:job_id;not null;index;uniqueIndex:idx_job_student"`
	StudentID int64 `db:"student_id" gorm:"column:student_id;not null;uniqueIndex:idx_job_student"`
	Position  int   `db:"position"   gorm:"column:position;not null"`
}

func (JobAssigneeEntity) TableName() string {
	return "job_assignees"
}

type ApplicationEntity struct {
	ID             string   `db:"id"              gorm:"primaryKey;column:id"` // uuid
	JobID          int64    `db:"job_id"          gorm:"column:job_id;not null;index;uniqueIndex:idx_app_job_student"`
	StudentID      int64    `db:"student_id"      gorm:"column:student_id;not null;index;uniqueIndex:idx_app_job_student"`
	CoverLetter    string   `db:"cover_letter"    gorm:"column:cover_letter"`
	ProposedBudget *float64 `db:"proposed_budget" gorm:"column:proposed_budget"`
	ProfileURL     string   `db:"profile_url"     gorm:"column:profile_url"`
	Evaluation     int      `db:"evaluation_score" gorm:"column:evaluation_score;not null;default:0"`
	Shortlisted    bool     `db:"shortlisted"     gorm:"column:shortlisted;not null;default:false"`
	Status         string   `db:"status"          gorm:"column:status;not null;default:applied"`

	InspectionStatus string     `db:"inspection_status"       gorm:"column:inspection_status;not null;default:queued"`
	InspectionResult string     `db:"inspection_result"       gorm:"column:inspection_result"`
	InspectionError  string     `db:"inspection_error"        gorm:"column:inspection_error"`
	InspectedAt      *time.Time `db:"inspection_inspected_at" gorm:"column:inspection_inspected_at"`

	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;index"`
}

func (ApplicationEntity) TableName() string {
	return "applications"
}

func toApplicationEntity(m *model.Application) *ApplicationEntity {
	if m == nil {
		return nil
	}
	return &ApplicationEntity{
		ID:               m.ID,
		JobID:            m.JobID,
		StudentID:        m.StudentID,
		CoverLetter:      m.CoverLetter,
		ProposedBudget:   m.ProposedBudget,
		ProfileURL:       m.ProfileURL,
		Evaluation:       m.Evaluation,
		Shortlisted:      m.Shortlisted,
		Status:           string(m.Status),
		InspectionStatus: string(m.Inspection.Status),
		InspectionResult: m.Inspection.Result,
		InspectionError:  m.Inspection.Error,
		InspectedAt:      m.Inspection.InspectedAt,
		CreatedAt:        m.CreatedAt,
	}
}

func toApplicationModel(e *ApplicationEntity) *model.Application {
	if e == nil {
		return nil
	}
	return &model.Application{
		ID:             e.ID,
		JobID:          e.JobID,
		StudentID:      e.StudentID,
		CoverLetter:    e.CoverLetter,
		ProposedBudget: e.ProposedBudget,
		ProfileURL:     e.ProfileURL,
		Evaluation:     e.Evaluation,
		Shortlisted:    e.Shortlisted,
		Status:         model.ApplicationStatus(e.Status),
		Inspection: model.Inspection{
			Status:      model.InspectionStatus(e.InspectionStatus),
			Result:      e.InspectionResult,
			Error:       e.InspectionError,
			InspectedAt: e.InspectedAt,
		},
		CreatedAt: e.CreatedAt,
	}
}

func toApplicationModels(entities []*ApplicationEntity) []*model.Application {
	if entities == nil {
		return nil
	}
	models := make([]*model.Application, len(entities))
	for i, e := range entities {
		models[i] = toApplicationModel(e)
	}
	return models
}

func toJobEntity(m *model.Job) *JobEntity {
	if m == nil {
		return nil
	}
	e := &JobEntity{
		ID:                      m.ID,
		EmployerID:              m.EmployerID,
		Title:                   m.Title,
		Description:             m.Description,
		Category:                m.Category,
		Budget:                  m.Budget,
		Duration:                m.Duration,
		JobType:                 string(m.JobType),
		PositionsRequired:       m.PositionsRequired,
		AcceptedCount:           m.AcceptedCount,
		AssignedStudent:         m.AssignedStudent,
		Status:                  string(m.Status),
		EscrowAmount:            m.EscrowAmount,
		PaymentReleased:         m.PaymentReleased,
		StudentAccepted:         m.StudentAccepted,
		StudentApproved:         m.StudentApproved,
		EmployerApproved:        m.EmployerApproved,
		SubmissionRequiresFiles: m.SubmissionRequiresFiles,
		ShortlistMultiplier:     m.ShortlistMultiplier,
		ShortlistWindowHours:    m.ShortlistWindowHours,
		ShortlistWindowEndsAt:   m.ShortlistWindowEndsAt,
		ShortlistComputed:       m.ShortlistComputed,
		ShortlistedAt:           m.ShortlistedAt,
		CreatedAt:               m.CreatedAt,
		ClosedAt:                m.ClosedAt,
		PaidAt:                  m.PaidAt,
		CancelledAt:             m.CancelledAt,
	}
	if m.Location != nil {
		e.LocationCity = m.Location.City
		e.LocationState = m.Location.State
		e.LocationCountry = m.Location.Country
	}
	if m.Submission != nil {
		e.SubmissionDescription = m.Submission.Description
		if len(m.Submission.Attachments) > 0 {
			if raw, err := json.Marshal(m.Submission.Attachments); err == nil {
				e.SubmissionAttachments = string(raw)
			}
		}
		submittedAt := m.Submission.SubmittedAt
		e.SubmissionSubmittedAt = &submittedAt
	}
	return e
}

func toJobModel(e *JobEntity) *model.Job {
	if e == nil {
		return nil
	}
	m := &model.Job{
		ID:                      e.ID,
		EmployerID:              e.EmployerID,
		Title:                   e.Title,
		Description:             e.Description,
		Category:                e.Category,
		Budget:                  e.Budget,
		Duration:                e.Duration,
		JobType:                 model.JobType(e.JobType),
		PositionsRequired:       e.PositionsRequired,
		AcceptedCount:           e.AcceptedCount,
		AssignedStudent:         e.AssignedStudent,
		Status:                  model.JobStatus(e.Status),
		EscrowAmount:            e.EscrowAmount,
		PaymentReleased:         e.PaymentReleased,
		StudentAccepted:         e.StudentAccepted,
		StudentApproved:         e.StudentApproved,
		EmployerApproved:        e.EmployerApproved,
		SubmissionRequiresFiles: e.SubmissionRequiresFiles,
		ShortlistMultiplier:     e.ShortlistMultiplier,
		ShortlistWindowHours:    e.ShortlistWindowHours,
		ShortlistWindowEndsAt:   e.ShortlistWindowEndsAt,
		ShortlistComputed:       e.ShortlistComputed,
		ShortlistedAt:           e.ShortlistedAt,
		CreatedAt:               e.CreatedAt,
		ClosedAt:                e.ClosedAt,
		PaidAt:                  e.PaidAt,
		CancelledAt:             e.CancelledAt,
	}
	if e.LocationCity != "" || e.LocationState != "" {
		m.Location = &model.Location{
			City:    e.LocationCity,
			State:   e.LocationState,
			Country: e.LocationCountry,
		}
	}
	if e.SubmissionSubmittedAt != nil {
		sub := &model.Submission{
			Description: e.SubmissionDescription,
			SubmittedAt: *e.SubmissionSubmittedAt,
		}
		if e.SubmissionAttachments != "" {
			_ = json.Unmarshal([]byte(e.SubmissionAttachments), &sub.Attachments)
		}
		m.Submission = sub
	}
	return m
}
