package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/internal/repository"
	"github.com/shivanshukushwah/worknest-backend/pkg/logger"
)

var (
	ErrNotAuthorized       = errors.New("not authorized for this action")
	ErrIncompleteProfile   = errors.New("profile must be completed first")
	ErrApplicationsClosed  = errors.New("job is not accepting applications")
	ErrPositionsFilled     = errors.New("all positions are already filled")
	ErrNotShortlisted      = errors.New("application is not shortlisted")
	ErrProfileURLRequired  = errors.New("profile url is required for online jobs")
	ErrNoAssignedStudent   = errors.New("job has no assigned student")
	ErrEscrowAlreadyFunded = errors.New("escrow already funded for this job")
	ErrAssignmentPending   = errors.New("assignment has not been accepted yet")
	ErrWorkNotSubmitted    = errors.New("work has not been submitted yet")
	ErrEmptySubmission     = errors.New("submission needs a description or an attachment")
	ErrAttachmentsRequired = errors.New("this job requires file attachments")
	ErrJobNotCancellable   = errors.New("job can no longer be cancelled")
	ErrJobNotInProgress    = errors.New("job is not in progress")
)

// JobRepository is the slice of the job repository the state machine
// drives.
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) (*model.Job, error)
	Get(ctx context.Context, id int64) (*model.Job, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Job, error)
	Update(ctx context.Context, job *model.Job) error
	AppendApplication(ctx context.Context, app *model.Application) error
	SetApplicationStatus(ctx context.Context, id string, status model.ApplicationStatus) error
	SetInspectionStatus(ctx context.Context, id string, status model.InspectionStatus) error
	RecordInspection(ctx context.Context, id string, evaluation int, insp model.Inspection) error
	CloseIfOpen(ctx context.Context, jobID int64, at time.Time) (bool, error)
	ListOpen(ctx context.Context, jobType model.JobType, category string, limit, offset int) ([]*model.Job, error)
	ListByEmployer(ctx context.Context, employerID int64) ([]*model.Job, error)
	ListByApplicant(ctx context.Context, studentID int64) ([]*model.Job, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type JobUserRepository interface {
	Get(ctx context.Context, id int64) (*model.User, error)
	AdjustScore(ctx context.Context, userID int64, log *model.ScoreLog) (int, error)
}

// InspectionPublisher hands inspection tasks to the async inspector.
type InspectionPublisher interface {
	PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error)
}

// ProfileInspector performs the deep profile inspection synchronously.
// The async path goes through the queue instead.
type ProfileInspector interface {
	Inspect(ctx context.Context, profileURL string) (extra int, result string, err error)
}

// InspectionTask is the queue payload for an async profile inspection.
type InspectionTask struct {
	JobID         int64  `json:"job_id"`
	ApplicationID string `json:"application_id"`
	StudentID     int64  `json:"student_id"`
	ProfileURL    string `json:"profile_url"`
	BaseScore     int    `json:"base_score"`
}

type JobService struct {
	jobRepo   JobRepository
	userRepo  JobUserRepository
	walletSvc *WalletService
	evaluator ProfileEvaluator
	inspector ProfileInspector
	outbox    OutboxAppender

	inspectionQueue  InspectionPublisher
	enableInspection bool
	strictOnTime     bool
}

func NewJobService(
	jobRepo JobRepository,
	userRepo JobUserRepository,
	walletSvc *WalletService,
	evaluator ProfileEvaluator,
	inspector ProfileInspector,
	outbox OutboxAppender,
	inspectionQueue InspectionPublisher,
	enableInspection bool,
	strictOnTime bool,
) *JobService {
	return &JobService{
		jobRepo:          jobRepo,
		userRepo:         userRepo,
		walletSvc:        walletSvc,
		evaluator:        evaluator,
		inspector:        inspector,
		outbox:           outbox,
		inspectionQueue:  inspectionQueue,
		enableInspection: enableInspection,
		strictOnTime:     strictOnTime,
	}
}

// CreateJob posts a job for an employer with a complete business profile.
// Online jobs open their shortlist window immediately.
func (s *JobService) CreateJob(ctx context.Context, p model.JobCreateRequest) (*model.Job, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.Normalize()

	employer, err := s.userRepo.Get(ctx, p.EmployerID)
	if err != nil {
		return nil, err
	}
	if employer.Role != model.RoleEmployer && employer.Role != model.RoleAdmin {
		return nil, ErrNotAuthorized
	}
	if !employer.ProfileComplete() {
		return nil, ErrIncompleteProfile
	}

	job := &model.Job{
		EmployerID:              p.EmployerID,
		Title:                   strings.TrimSpace(p.Title),
		Description:             strings.TrimSpace(p.Description),
		Category:                strings.TrimSpace(p.Category),
		Budget:                  model.Round2(p.Budget),
		Duration:                p.Duration,
		JobType:                 p.JobType,
		Location:                p.Location,
		PositionsRequired:       p.PositionsRequired,
		Status:                  model.JobStatusOpen,
		SubmissionRequiresFiles: p.SubmissionRequiresFiles,
		ShortlistMultiplier:     p.ShortlistMultiplier,
		ShortlistWindowHours:    p.ShortlistWindowHours,
		CreatedAt:               time.Now().UTC(),
	}
	if job.JobType == model.JobTypeOnline {
		endsAt := job.CreatedAt.Add(time.Duration(job.ShortlistWindowHours) * time.Hour)
		job.ShortlistWindowEndsAt = &endsAt
	}

	var created *model.Job
	err = s.jobRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err = s.jobRepo.Create(ctx, job)
		if err != nil {
			return err
		}
		return s.outbox.Append(ctx, &model.OutboxEvent{
			Type:        model.NotifyJobPosted,
			RecipientID: created.EmployerID,
			JobID:       &created.ID,
			Title:       "Job posted",
			Message:     fmt.Sprintf("Your job \"%s\" is live", created.Title),
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Apply records a student's application. A repeat apply returns the
// existing application unchanged.
func (s *JobService) Apply(ctx context.Context, jobID int64, p model.ApplyRequest) (*model.Application, error) {
	student, err := s.userRepo.Get(ctx, p.StudentID)
	if err != nil {
		return nil, err
	}
	if student.Role != model.RoleStudent {
		return nil, ErrNotAuthorized
	}
	if !student.ProfileComplete() {
		return nil, ErrIncompleteProfile
	}

	var application *model.Application
	err = s.jobRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		job, err := s.jobRepo.GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}

		if existing := job.ApplicationByStudent(p.StudentID); existing != nil {
			application = existing
			return nil
		}

		if job.Status != model.JobStatusOpen {
			return ErrApplicationsClosed
		}
		if len(job.Applications) >= job.MaxApplications() {
			// The pool is already full; close the job and turn the
			// triggering request away.
			if _, err := s.jobRepo.CloseIfOpen(ctx, job.ID, time.Now().UTC()); err != nil {
				return err
			}
			return ErrApplicationsClosed
		}
		if job.JobType == model.JobTypeOnline && strings.TrimSpace(p.ProfileURL) == "" {
			return ErrProfileURLRequired
		}

		now := time.Now().UTC()
		application = &model.Application{
			ID:             uuid.NewString(),
			JobID:          job.ID,
			StudentID:      p.StudentID,
			CoverLetter:    strings.TrimSpace(p.CoverLetter),
			ProposedBudget: p.ProposedBudget,
			ProfileURL:     strings.TrimSpace(p.ProfileURL),
			Status:         model.ApplicationApplied,
			Inspection:     model.Inspection{Status: model.InspectionQueued},
			CreatedAt:      now,
		}
		if job.JobType == model.JobTypeOnline {
			application.Evaluation = s.evaluator.Evaluate(application.ProfileURL)
		}

		if err := s.jobRepo.AppendApplication(ctx, application); err != nil {
			return err
		}

		// First application opens the window when creation did not.
		if job.JobType == model.JobTypeOnline && job.ShortlistWindowEndsAt == nil {
			endsAt := now.Add(time.Duration(job.ShortlistWindowHours) * time.Hour)
			job.ShortlistWindowEndsAt = &endsAt
			if err := s.jobRepo.Update(ctx, job); err != nil {
				return err
			}
		}

		// An offline pool that just filled up closes immediately.
		if job.JobType == model.JobTypeOffline && len(job.Applications)+1 >= job.MaxApplications() {
			if _, err := s.jobRepo.CloseIfOpen(ctx, job.ID, now); err != nil {
				return err
			}
		}

		return s.outbox.Append(ctx, &model.OutboxEvent{
			Type:        model.NotifyApplicationReceived,
			RecipientID: job.EmployerID,
			SenderID:    p.StudentID,
			JobID:       &job.ID,
			Title:       "New application",
			Message:     fmt.Sprintf("%s applied to \"%s\"", student.Name, job.Title),
		})
	})
	if err != nil {
		return nil, err
	}

	s.maybeEnqueueInspection(ctx, application)
	return application, nil
}

func (s *JobService) maybeEnqueueInspection(ctx context.Context, app *model.Application) {
	if !s.enableInspection || s.inspectionQueue == nil || app == nil {
		return
	}
	if app.ProfileURL == "" || app.Inspection.Status != model.InspectionQueued {
		return
	}
	task := InspectionTask{
		JobID:         app.JobID,
		ApplicationID: app.ID,
		StudentID:     app.StudentID,
		ProfileURL:    app.ProfileURL,
		BaseScore:     app.Evaluation,
	}
	if _, err := s.inspectionQueue.PublishJSON(ctx, task, nil); err != nil {
		logger.Warn("failed to enqueue profile inspection",
			"application_id", app.ID, "error", err)
	}
}

// AcceptApplication hires a student. The job row lock makes a concurrent
// double accept pick exactly one winner per free position.
func (s *JobService) AcceptApplication(ctx context.Context, jobID int64, applicationID string, caller model.Principal) (*model.Job, error) {
	var updated *model.Job
	err := s.jobRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		job, err := s.jobRepo.GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if job.EmployerID != caller.ID && !caller.IsAdmin() {
			return ErrNotAuthorized
		}

		app := applicationByID(job, applicationID)
		if app == nil {
			return repository.ErrApplicationNotFound
		}
		if app.Status == model.ApplicationAccepted {
			updated = job
			return nil
		}
		if app.Status == model.ApplicationRejected {
			return ErrApplicationsClosed
		}
		if job.AcceptedCount >= job.PositionsRequired {
			return ErrPositionsFilled
		}
		if job.JobType == model.JobTypeOnline && !app.Shortlisted {
			return ErrNotShortlisted
		}

		if err := s.jobRepo.SetApplicationStatus(ctx, app.ID, model.ApplicationAccepted); err != nil {
			return err
		}

		if !job.IsAssigned(app.StudentID) {
			job.AssignedStudents = append(job.AssignedStudents, app.StudentID)
		}
		if job.AssignedStudent == nil {
			job.AssignedStudent = &app.StudentID
		}
		job.AcceptedCount = len(job.AssignedStudents)
		if job.AcceptedCount >= job.PositionsRequired {
			job.Status = model.JobStatusClosed
		} else {
			job.Status = model.JobStatusInProgress
		}
		// New assignment cycle, all gates reset.
		job.StudentAccepted = false
		job.StudentApproved = false
		job.EmployerApproved = false

		if err := s.jobRepo.Update(ctx, job); err != nil {
			return err
		}
		updated = job

		return s.outbox.Append(ctx, &model.OutboxEvent{
			Type:        model.NotifyJobAccepted,
			RecipientID: app.StudentID,
			SenderID:    job.EmployerID,
			JobID:       &job.ID,
			Title:       "Application accepted",
			Message:     fmt.Sprintf("You were selected for \"%s\"", job.Title),
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RejectApplication is one-way and idempotent. No score penalty.
func (s *JobService) RejectApplication(ctx context.Context, jobID int64, applicationID string, caller model.Principal) error {
	return s.jobRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		job, err := s.jobRepo.GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if job.EmployerID != caller.ID && !caller.IsAdmin() {
			return ErrNotAuthorized
		}
		app := applicationByID(job, applicationID)
		if app == nil {
			return repository.ErrApplicationNotFound
		}
		if app.Status == model.ApplicationRejected {
			return nil
		}
		if app.Status != model.ApplicationApplied {
			return ErrApplicationsClosed
		}
		return s.jobRepo.SetApplicationStatus(ctx, app.ID, model.ApplicationRejected)
	})
}

// PenalizeNoShow docks a student who ghosted or fake-applied. Job and
// application state stay untouched.
func (s *JobService) PenalizeNoShow(ctx context.Context, jobID, studentID int64, caller model.Principal, reason string) (int, error) {
	job, err := s.jobRepo.Get(ctx, jobID)
	if err != nil {
		return 0, err
	}
	if job.EmployerID != caller.ID && !caller.IsAdmin() {
		return 0, ErrNotAuthorized
	}
	if job.ApplicationByStudent(studentID) == nil && !job.IsAssigned(studentID) {
		return 0, repository.ErrApplicationNotFound
	}

	var newScore int
	err = s.jobRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		newScore, err = s.userRepo.AdjustScore(ctx, studentID, &model.ScoreLog{
			UserID: studentID,
			Event:  model.ScoreEventNoShowFakeApply,
			Delta:  model.ScoreDeltaNoShowFakeApply,
			Reason: reason,
			Meta:   fmt.Sprintf(`{"job_id":%d}`, jobID),
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	return newScore, nil
}

// AcceptAssignment is the student's side of the hire. Idempotent.
func (s *JobService) AcceptAssignment(ctx context.Context, jobID int64, studentID int64) (*model.Job, error) {
	var updated *model.Job
	err := s.jobRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		job, err := s.jobRepo.GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if !job.IsAssigned(studentID) {
			return ErrNotAuthorized
		}
		if job.StudentAccepted {
			updated = job
			return nil
		}
		job.StudentAccepted = true
		job.Status = model.JobStatusInProgress
		if err := s.jobRepo.Update(ctx, job); err != nil {
			return err
		}
		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SubmitWork records the handed-in work and flips the student's approval
// gate. An on-time submission earns a reputation award.
func (s *JobService) SubmitWork(ctx context.Context, jobID int64, p model.SubmitWorkRequest) (*model.Job, error) {
	var updated *model.Job
	var awardOnTime bool
	err := s.jobRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		job, err := s.jobRepo.GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if !job.IsAssigned(p.StudentID) {
			return ErrNotAuthorized
		}
		if !job.StudentAccepted {
			return ErrAssignmentPending
		}
		if job.Status != model.JobStatusInProgress && job.Status != model.JobStatusClosed {
			return ErrJobNotInProgress
		}

		description := strings.TrimSpace(p.Description)
		if description == "" && len(p.Attachments) == 0 {
			return ErrEmptySubmission
		}
		if job.SubmissionRequiresFiles && len(p.Attachments) == 0 {
			return ErrAttachmentsRequired
		}

		now := time.Now().UTC()
		job.Submission = &model.Submission{
			Description: description,
			Attachments: p.Attachments,
			SubmittedAt: now,
		}
		job.StudentApproved = true
		if err := s.jobRepo.Update(ctx, job); err != nil {
			return err
		}
		updated = job

		awardOnTime = s.submittedOnTime(job, now)
		if awardOnTime {
			_, err = s.userRepo.AdjustScore(ctx, p.StudentID, &model.ScoreLog{
				UserID: p.StudentID,
				Event:  model.ScoreEventOnTimeSubmission,
				Delta:  model.ScoreDeltaOnTimeSubmission,
				Reason: "work submitted on time",
				Meta:   fmt.Sprintf(`{"job_id":%d}`, job.ID),
			})
			if err != nil {
				return err
			}
		}

		return s.outbox.Append(ctx, &model.OutboxEvent{
			Type:        model.NotifyJobCompleted,
			RecipientID: job.EmployerID,
			SenderID:    p.StudentID,
			JobID:       &job.ID,
			Title:       "Work submitted",
			Message:     fmt.Sprintf("Work for \"%s\" was submitted", job.Title),
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// submittedOnTime applies the duration deadline when the duration parses
// as a day count. Non-numeric durations award unconditionally unless the
// strict flag withholds the award instead.
func (s *JobService) submittedOnTime(job *model.Job, submittedAt time.Time) bool {
	days, err := strconv.Atoi(strings.TrimSpace(job.Duration))
	if err != nil || days <= 0 {
		return !s.strictOnTime
	}
	deadline := job.CreatedAt.Add(time.Duration(days) * 24 * time.Hour)
	return !submittedAt.After(deadline)
}

// ApproveCompletion is the employer sign-off. The assigned student earns
// the completion award; payment release stays a separate action.
func (s *JobService) ApproveCompletion(ctx context.Context, jobID int64, caller model.Principal) (*model.Job, error) {
	var updated *model.Job
	err := s.jobRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		job, err := s.jobRepo.GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if job.EmployerID != caller.ID && !caller.IsAdmin() {
			return ErrNotAuthorized
		}
		if !job.StudentApproved {
			return ErrWorkNotSubmitted
		}
		if len(job.AssignedStudents) == 0 {
			return ErrNoAssignedStudent
		}
		if job.EmployerApproved {
			updated = job
			return nil
		}

		job.EmployerApproved = true
		job.Status = model.JobStatusCompleted
		if err := s.jobRepo.Update(ctx, job); err != nil {
			return err
		}
		updated = job

		studentID := job.AssignedStudents[0]
		if _, err := s.userRepo.AdjustScore(ctx, studentID, &model.ScoreLog{
			UserID: studentID,
			Event:  model.ScoreEventJobCompleted,
			Delta:  model.ScoreDeltaJobCompleted,
			Reason: "job completed",
			Meta:   fmt.Sprintf(`{"job_id":%d}`, job.ID),
		}); err != nil {
			return err
		}

		return s.outbox.Append(ctx, &model.OutboxEvent{
			Type:        model.NotifyJobApproved,
			RecipientID: studentID,
			SenderID:    job.EmployerID,
			JobID:       &job.ID,
			Title:       "Work approved",
			Message:     fmt.Sprintf("Your work on \"%s\" was approved", job.Title),
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ProcessJobPayment moves the job budget into escrow.
func (s *JobService) ProcessJobPayment(ctx context.Context, jobID int64, caller model.Principal) (*model.Transaction, error) {
	return s.walletSvc.FundEscrow(ctx, jobID, caller.ID)
}

// ReleasePayment settles the escrow once both sides approved.
func (s *JobService) ReleasePayment(ctx context.Context, jobID int64, caller model.Principal) error {
	job, err := s.jobRepo.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.EmployerID != caller.ID && !caller.IsAdmin() {
		return ErrNotAuthorized
	}
	if !job.EmployerApproved || !job.StudentApproved {
		return ErrWorkNotSubmitted
	}
	if job.PaymentReleased {
		return ErrAlreadyReleased
	}
	return s.walletSvc.ReleaseFromEscrow(ctx, jobID, job.EmployerID)
}

// CancelJob aborts a job that has not been paid. Escrowed funds flow
// back to the employer in the same transaction.
func (s *JobService) CancelJob(ctx context.Context, jobID int64, caller model.Principal) (*model.Job, error) {
	var updated *model.Job
	err := s.jobRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		job, err := s.jobRepo.GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if job.EmployerID != caller.ID && !caller.IsAdmin() {
			return ErrNotAuthorized
		}
		if job.Status == model.JobStatusPaid || job.Status == model.JobStatusCancelled {
			return ErrJobNotCancellable
		}

		if job.EscrowAmount > 0 {
			if err := s.walletSvc.RefundFromEscrow(ctx, job); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		job.Status = model.JobStatusCancelled
		job.CancelledAt = &now
		if err := s.jobRepo.Update(ctx, job); err != nil {
			return err
		}
		updated = job

		for _, studentID := range job.AssignedStudents {
			if err := s.outbox.Append(ctx, &model.OutboxEvent{
				Type:        model.NotifyJobCancelled,
				RecipientID: studentID,
				SenderID:    job.EmployerID,
				JobID:       &job.ID,
				Title:       "Job cancelled",
				Message:     fmt.Sprintf("\"%s\" was cancelled by the employer", job.Title),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ForceInspectApplication runs the deep inspection synchronously on an
// employer's or admin's request.
func (s *JobService) ForceInspectApplication(ctx context.Context, jobID int64, applicationID string, caller model.Principal) (*model.Application, error) {
	job, err := s.jobRepo.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != caller.ID && !caller.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	app := applicationByID(job, applicationID)
	if app == nil {
		return nil, repository.ErrApplicationNotFound
	}
	if app.ProfileURL == "" {
		return nil, ErrProfileURLRequired
	}
	if s.inspector == nil {
		return nil, errors.New("profile inspection is not configured")
	}

	if err := s.jobRepo.SetInspectionStatus(ctx, app.ID, model.InspectionInspecting); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	extra, result, inspectErr := s.inspector.Inspect(ctx, app.ProfileURL)
	if inspectErr != nil {
		insp := model.Inspection{
			Status:      model.InspectionFailed,
			Error:       inspectErr.Error(),
			InspectedAt: &now,
		}
		if err := s.jobRepo.RecordInspection(ctx, app.ID, app.Evaluation, insp); err != nil {
			return nil, err
		}
		app.Inspection = insp
		return app, nil
	}

	combined := app.Evaluation + extra
	if combined > 100 {
		combined = 100
	}
	insp := model.Inspection{
		Status:      model.InspectionDone,
		Result:      result,
		InspectedAt: &now,
	}
	if err := s.jobRepo.RecordInspection(ctx, app.ID, combined, insp); err != nil {
		return nil, err
	}
	app.Evaluation = combined
	app.Inspection = insp
	return app, nil
}

func (s *JobService) GetJob(ctx context.Context, id int64) (*model.Job, error) {
	return s.jobRepo.Get(ctx, id)
}

func (s *JobService) ListOpenJobs(ctx context.Context, jobType model.JobType, category string, limit, offset int) ([]*model.Job, error) {
	return s.jobRepo.ListOpen(ctx, jobType, category, limit, offset)
}

func (s *JobService) ListEmployerJobs(ctx context.Context, employerID int64) ([]*model.Job, error) {
	return s.jobRepo.ListByEmployer(ctx, employerID)
}

func (s *JobService) ListMyApplications(ctx context.Context, studentID int64) ([]*model.Job, error) {
	return s.jobRepo.ListByApplicant(ctx, studentID)
}

// ShortlistedCandidates is employer/admin only.
func (s *JobService) ShortlistedCandidates(ctx context.Context, jobID int64, caller model.Principal) ([]*model.Application, error) {
	job, err := s.jobRepo.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != caller.ID && !caller.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	shortlisted := make([]*model.Application, 0)
	for _, app := range job.Applications {
		if app.Shortlisted {
			shortlisted = append(shortlisted, app)
		}
	}
	return shortlisted, nil
}

// GetSubmission is visible to the employer, the assignees and admins.
func (s *JobService) GetSubmission(ctx context.Context, jobID int64, caller model.Principal) (*model.Submission, error) {
	job, err := s.jobRepo.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.EmployerID != caller.ID && !job.IsAssigned(caller.ID) && !caller.IsAdmin() {
		return nil, ErrNotAuthorized
	}
	if job.Submission.Empty() {
		return nil, ErrWorkNotSubmitted
	}
	return job.Submission, nil
}

func applicationByID(job *model.Job, id string) *model.Application {
	for _, app := range job.Applications {
		if app.ID == id {
			return app
		}
	}
	return nil
}
