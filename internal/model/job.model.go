package model

import (
	"errors"
	"strings"
	"time"
)

type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusPaid       JobStatus = "paid"
	JobStatusCancelled  JobStatus = "cancelled"
	JobStatusClosed     JobStatus = "closed"
)

type JobType string

const (
	JobTypeOffline JobType = "offline"
	JobTypeOnline  JobType = "online"
)

// Application caps per required position. Offline jobs admit first come
// first served; online jobs accrue a larger pool for ranking.
const (
	OfflineApplicationsPerPosition = 3
	OnlineApplicationsPerPosition  = 10
)

// Submission is the work a student hands in for a job.
type Submission struct {
	Description string    `json:"description"`
	Attachments []string  `json:"attachments"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (s *Submission) Empty() bool {
	return s == nil || (strings.TrimSpace(s.Description) == "" && len(s.Attachments) == 0)
}

// Location of an offline job.
type Location struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type Job struct {
	ID          int64   `json:"id"`
	EmployerID  int64   `json:"employer_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Budget      float64 `json:"budget"`
	// Duration is free text; when it parses as an integer it is treated
	// as a day count for the on-time submission award.
	Duration string    `json:"duration"`
	JobType  JobType   `json:"job_type"`
	Location *Location `json:"location,omitempty"`

	PositionsRequired int     `json:"positions_required"`
	AcceptedCount     int     `json:"accepted_count"`
	AssignedStudent   *int64  `json:"assigned_student,omitempty"` // legacy single assignee
	AssignedStudents  []int64 `json:"assigned_students"`          // order-preserving, no duplicates

	Status          JobStatus `json:"status"`
	EscrowAmount    float64   `json:"escrow_amount"`
	PaymentReleased bool      `json:"payment_released"`

	// Independent approval gates for the current assignment cycle.
	StudentAccepted  bool `json:"student_accepted"`
	StudentApproved  bool `json:"student_approved"`
	EmployerApproved bool `json:"employer_approved"`

	SubmissionRequiresFiles bool        `json:"submission_requires_files"`
	Submission              *Submission `json:"submission,omitempty"`

	// Online-job shortlisting window.
	ShortlistMultiplier   int        `json:"shortlist_multiplier,omitempty"`
	ShortlistWindowHours  int        `json:"shortlist_window_hours,omitempty"`
	ShortlistWindowEndsAt *time.Time `json:"shortlist_window_ends_at,omitempty"`
	ShortlistComputed     bool       `json:"shortlist_computed"`
	ShortlistedAt         *time.Time `json:"shortlisted_at,omitempty"`

	Applications []*Application `json:"applications,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func (Job) TableName() string { return "jobs" }

// MaxApplications is the admission cap for this job.
func (j *Job) MaxApplications() int {
	positions := j.PositionsRequired
	if positions < 1 {
		positions = 1
	}
	if j.JobType == JobTypeOnline {
		return positions * OnlineApplicationsPerPosition
	}
	return positions * OfflineApplicationsPerPosition
}

// ShortlistLimit is how many in-window applications get shortlisted.
func (j *Job) ShortlistLimit() int {
	positions := j.PositionsRequired
	if positions < 1 {
		positions = 1
	}
	multiplier := j.ShortlistMultiplier
	if multiplier < 1 {
		multiplier = 3
	}
	return positions * multiplier
}

// IsAssigned reports whether studentID is one of the assignees.
func (j *Job) IsAssigned(studentID int64) bool {
	for _, id := range j.AssignedStudents {
		if id == studentID {
			return true
		}
	}
	return false
}

// ApplicationByStudent returns the student's application, if any.
func (j *Job) ApplicationByStudent(studentID int64) *Application {
	for _, a := range j.Applications {
		if a.StudentID == studentID {
			return a
		}
	}
	return nil
}

// JobCreateRequest is the input for posting a job.
type JobCreateRequest struct {
	EmployerID              int64
	Title                   string
	Description             string
	Category                string
	Budget                  float64
	Duration                string
	JobType                 JobType
	Location                *Location
	PositionsRequired       int
	SubmissionRequiresFiles bool
	ShortlistMultiplier     int
	ShortlistWindowHours    int
}

func (p *JobCreateRequest) Validate() error {
	if p.EmployerID == 0 {
		return errors.New("employer id is required")
	}
	if strings.TrimSpace(p.Title) == "" {
		return errors.New("title is required")
	}
	if strings.TrimSpace(p.Description) == "" {
		return errors.New("description is required")
	}
	if strings.TrimSpace(p.Category) == "" {
		return errors.New("category is required")
	}
	if p.Budget <= 0 {
		return errors.New("budget must be positive")
	}
	if strings.TrimSpace(p.Duration) == "" {
		return errors.New("duration is required")
	}
	switch p.JobType {
	case JobTypeOffline:
		if p.Location == nil || p.Location.City == "" || p.Location.State == "" {
			return errors.New("location (city, state) is required for offline jobs")
		}
	case JobTypeOnline:
	default:
		return errors.New("job type must be offline or online")
	}
	return nil
}

// Normalize coerces numeric fields to their enforced minimums.
func (p *JobCreateRequest) Normalize() {
	if p.PositionsRequired < 1 {
		p.PositionsRequired = 1
	}
	if p.ShortlistMultiplier < 1 {
		p.ShortlistMultiplier = 3
	}
	if p.ShortlistWindowHours < 1 {
		p.ShortlistWindowHours = 3
	}
	p.Duration = strings.TrimSpace(p.Duration)
	if p.Location != nil && p.Location.Country == "" {
		p.Location.Country = "India"
	}
}

// ApplyRequest is the input for a student applying to a job.
type ApplyRequest struct {
	StudentID      int64
	CoverLetter    string
	ProposedBudget *float64
	ProfileURL     string
}

// SubmitWorkRequest is the input for handing in work.
type SubmitWorkRequest struct {
	StudentID   int64
	Description string
	Attachments []string
}
