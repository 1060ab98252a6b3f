package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrJobNotFound         = errors.New("job not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyApplied      = errors.New("student already applied to this job")
	ErrShortlistClaimed    = errors.New("shortlist already computed for this job")
)

type JobRepository struct {
	*pg.DB
}

func NewJobRepository(db *pg.DB) *JobRepository {
	return &JobRepository{DB: db}
}

func (r *JobRepository) Create(ctx context.Context, job *model.Job) (*model.Job, error) {
	entity := toJobEntity(job)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	created := toJobModel(entity)
	created.AssignedStudents = job.AssignedStudents
	return created, nil
}

// Get loads a job with its applications ordered by arrival and its
// assignees in assignment order.
func (r *JobRepository) Get(ctx context.Context, id int64) (*model.Job, error) {
	var entity JobEntity
	err := r.Read(ctx).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, r.Read(ctx), &entity)
}

// GetForUpdate locks the job row for the duration of the surrounding
// transaction. Callers must be inside WithinTransaction.
func (r *JobRepository) GetForUpdate(ctx context.Context, id int64) (*model.Job, error) {
	tx := r.Write(ctx)
	var entity JobEntity
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, tx, &entity)
}

func (r *JobRepository) hydrate(ctx context.Context, tx *gorm.DB, entity *JobEntity) (*model.Job, error) {
	job := toJobModel(entity)

	var apps []*ApplicationEntity
	if err := tx.Where("job_id = ?", entity.ID).
		Order("created_at ASC, id ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	job.Applications = toApplicationModels(apps)

	var assignees []*JobAssigneeEntity
	if err := tx.Where("job_id = ?", entity.ID).
		Order("position ASC").
		Find(&assignees).Error; err != nil {
		return nil, err
	}
	job.AssignedStudents = make([]int64, 0, len(assignees))
	for _, a := range assignees {
		job.AssignedStudents = append(job.AssignedStudents, a.StudentID)
	}
	return job, nil
}

// Update persists the job's scalar columns and replaces its assignee set.
// Applications are managed through their own operations.
func (r *JobRepository) Update(ctx context.Context, job *model.Job) error {
	tx := r.Write(ctx)
	entity := toJobEntity(job)
	res := tx.Model(&JobEntity{}).Where("id = ?", job.ID).
		Select("*").Omit("id", "created_at").Updates(entity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrJobNotFound
	}
	if err := tx.Where("job_id = ?", job.ID).Delete(&JobAssigneeEntity{}).Error; err != nil {
		return err
	}
	for i, studentID := range job.AssignedStudents {
		row := &JobAssigneeEntity{JobID: job.ID, StudentID: studentID, Position: i}
		if err := tx.Create(row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *JobRepository) AppendApplication(ctx context.Context, app *model.Application) error {
	err := r.Write(ctx).Create(toApplicationEntity(app)).Error
	if err != nil && isUniqueViolation(err) {
		return ErrAlreadyApplied
	}
	return err
}

func (r *JobRepository) GetApplication(ctx context.Context, id string) (*model.Application, error) {
	var entity ApplicationEntity
	err := r.Read(ctx).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return toApplicationModel(&entity), nil
}

func (r *JobRepository) SetApplicationStatus(ctx context.Context, id string, status model.ApplicationStatus) error {
	res := r.Write(ctx).Model(&ApplicationEntity{}).
		Where("id = ?", id).
		Update("status", string(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *JobRepository) SetApplicationShortlisted(ctx context.Context, id string, shortlisted bool) error {
	res := r.Write(ctx).Model(&ApplicationEntity{}).
		Where("id = ?", id).
		Update("shortlisted", shortlisted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *JobRepository) SetApplicationEvaluation(ctx context.Context, id string, score int) error {
	res := r.Write(ctx).Model(&ApplicationEntity{}).
		Where("id = ?", id).
		Update("evaluation_score", score)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *JobRepository) SetInspectionStatus(ctx context.Context, id string, status model.InspectionStatus) error {
	res := r.Write(ctx).Model(&ApplicationEntity{}).
		Where("id = ?", id).
		Update("inspection_status", string(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// RecordInspection stores an inspection outcome alongside the refreshed
// evaluation score.
func (r *JobRepository) RecordInspection(ctx context.Context, id string, evaluation int, insp model.Inspection) error {
	updates := map[string]interface{}{
		"evaluation_score":        evaluation,
		"inspection_status":       string(insp.Status),
		"inspection_result":       insp.Result,
		"inspection_error":        insp.Error,
		"inspection_inspected_at": insp.InspectedAt,
	}
	res := r.Write(ctx).Model(&ApplicationEntity{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// ClaimShortlist flips shortlist_computed exactly once. A second caller
// gets ErrShortlistClaimed, which makes the scheduler idempotent across
// concurrent ticks.
func (r *JobRepository) ClaimShortlist(ctx context.Context, jobID int64, at time.Time) error {
	res := r.Write(ctx).Model(&JobEntity{}).
		Where("id = ? AND shortlist_computed = ?", jobID, false).
		Updates(map[string]interface{}{
			"shortlist_computed": true,
			"shortlisted_at":     at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrShortlistClaimed
	}
	return nil
}

// CloseIfOpen transitions open -> closed; a no-op when the job already
// left the open state.
func (r *JobRepository) CloseIfOpen(ctx context.Context, jobID int64, at time.Time) (bool, error) {
	res := r.Write(ctx).Model(&JobEntity{}).
		Where("id = ? AND status = ?", jobID, string(model.JobStatusOpen)).
		Updates(map[string]interface{}{
			"status":    string(model.JobStatusClosed),
			"closed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListDueShortlists returns online jobs whose application window has
// elapsed and whose shortlist is still pending. No status filter: a job
// closed by the application cap still needs its shortlist computed.
func (r *JobRepository) ListDueShortlists(ctx context.Context, now time.Time, limit int) ([]*model.Job, error) {
	var entities []*JobEntity
	q := r.Read(ctx).
		Where("job_type = ?", string(model.JobTypeOnline)).
		Where("shortlist_computed = ?", false).
		Where("shortlist_window_ends_at IS NOT NULL AND shortlist_window_ends_at <= ?", now).
		Order("shortlist_window_ends_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entities).Error; err != nil {
		return nil, err
	}
	return r.hydrateAll(ctx, entities)
}

// ListOpenOffline returns open offline jobs for the auto-close sweep.
func (r *JobRepository) ListOpenOffline(ctx context.Context, limit int) ([]*model.Job, error) {
	var entities []*JobEntity
	q := r.Read(ctx).
		Where("job_type = ?", string(model.JobTypeOffline)).
		Where("status = ?", string(model.JobStatusOpen)).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entities).Error; err != nil {
		return nil, err
	}
	return r.hydrateAll(ctx, entities)
}

func (r *JobRepository) ListByEmployer(ctx context.Context, employerID int64) ([]*model.Job, error) {
	var entities []*JobEntity
	err := r.Read(ctx).
		Where("employer_id = ?", employerID).
		Order("created_at DESC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return r.hydrateAll(ctx, entities)
}

// ListByApplicant returns jobs the student has applied to, newest first.
func (r *JobRepository) ListByApplicant(ctx context.Context, studentID int64) ([]*model.Job, error) {
	var jobIDs []int64
	err := r.Read(ctx).Model(&ApplicationEntity{}).
		Where("student_id = ?", studentID).
		Pluck("job_id", &jobIDs).Error
	if err != nil {
		return nil, err
	}
	if len(jobIDs) == 0 {
		return []*model.Job{}, nil
	}
	var entities []*JobEntity
	err = r.Read(ctx).
		Where("id IN ?", jobIDs).
		Order("created_at DESC").
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return r.hydrateAll(ctx, entities)
}

// ListOpen returns open jobs, optionally filtered by type and category.
func (r *JobRepository) ListOpen(ctx context.Context, jobType model.JobType, category string, limit, offset int) ([]*model.Job, error) {
	q := r.Read(ctx).Where("status = ?", string(model.JobStatusOpen))
	if jobType != "" {
		q = q.Where("job_type = ?", string(jobType))
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if limit <= 0 {
		limit = 20
	}
	var entities []*JobEntity
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return r.hydrateAll(ctx, entities)
}

func (r *JobRepository) hydrateAll(ctx context.Context, entities []*JobEntity) ([]*model.Job, error) {
	jobs := make([]*model.Job, 0, len(entities))
	for _, e := range entities {
		job, err := r.hydrate(ctx, r.Read(ctx), e)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
