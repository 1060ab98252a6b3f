package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/internal/repository"
	"github.com/shivanshukushwah/worknest-backend/pkg/logger"
	"github.com/shivanshukushwah/worknest-backend/pkg/prom"
)

const metricSubsystem = "shortlist"

// JobRepository is the slice of the job repository the scheduler drives.
type JobRepository interface {
	ListDueShortlists(ctx context.Context, now time.Time, limit int) ([]*model.Job, error)
	ListOpenOffline(ctx context.Context, limit int) ([]*model.Job, error)
	ClaimShortlist(ctx context.Context, jobID int64, at time.Time) error
	CloseIfOpen(ctx context.Context, jobID int64, at time.Time) (bool, error)
	SetApplicationShortlisted(ctx context.Context, id string, shortlisted bool) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type OutboxAppender interface {
	Append(ctx context.Context, event *model.OutboxEvent) error
}

// Shortlister closes filled offline jobs and computes shortlists for
// online jobs whose application window has elapsed. It is safe to run
// several replicas concurrently; the claim update picks one winner per
// job.
type Shortlister struct {
	jobRepo  JobRepository
	outbox   OutboxAppender
	interval time.Duration
	batch    int

	now func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewShortlister(jobRepo JobRepository, outbox OutboxAppender, interval time.Duration, batch int) *Shortlister {
	if interval <= 0 {
		interval = time.Minute
	}
	if batch <= 0 {
		batch = 100
	}
	return &Shortlister{
		jobRepo:  jobRepo,
		outbox:   outbox,
		interval: interval,
		batch:    batch,
		now:      func() time.Time { return time.Now().UTC() },
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs one pass immediately, then ticks until Stop or context
// cancellation.
func (s *Shortlister) Start(ctx context.Context) {
	go func() {
		defer close(s.doneCh)

		s.RunOnce(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

func (s *Shortlister) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	<-s.doneCh
}

// RunOnce executes a single scheduler pass. Per-job failures are logged
// and skipped so one bad job cannot stall the batch.
func (s *Shortlister) RunOnce(ctx context.Context) {
	s.closeFilledOfflineJobs(ctx)
	s.computeDueShortlists(ctx)
}

func (s *Shortlister) closeFilledOfflineJobs(ctx context.Context) {
	jobs, err := s.jobRepo.ListOpenOffline(ctx, s.batch)
	if err != nil {
		logger.Error("shortlister: list open offline jobs", "error", err)
		return
	}
	for _, job := range jobs {
		if len(job.Applications) < job.MaxApplications() {
			continue
		}
		if err := s.closeOfflineJob(ctx, job); err != nil {
			logger.Error("shortlister: close offline job", "job_id", job.ID, "error", err)
			continue
		}
		prom.IncCounter(metricSubsystem, "offline_jobs_closed_total")
	}
}

func (s *Shortlister) closeOfflineJob(ctx context.Context, job *model.Job) error {
	return s.jobRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		closed, err := s.jobRepo.CloseIfOpen(ctx, job.ID, s.now())
		if err != nil {
			return err
		}
		if !closed {
			return nil
		}
		return s.outbox.Append(ctx, &model.OutboxEvent{
			Type:        model.NotifyJobClosed,
			RecipientID: job.EmployerID,
			JobID:       &job.ID,
			Title:       "Applications closed",
			Message:     fmt.Sprintf("\"%s\" reached its application limit and is now closed", job.Title),
		})
	})
}

func (s *Shortlister) computeDueShortlists(ctx context.Context) {
	now := s.now()
	jobs, err := s.jobRepo.ListDueShortlists(ctx, now, s.batch)
	if err != nil {
		logger.Error("shortlister: list due shortlists", "error", err)
		return
	}
	for _, job := range jobs {
		start := time.Now()
		err := s.shortlistJob(ctx, job)
		if errors.Is(err, repository.ErrShortlistClaimed) {
			// Another replica won the claim; nothing to do.
			continue
		}
		if err != nil {
			logger.Error("shortlister: compute shortlist", "job_id", job.ID, "error", err)
			continue
		}
		prom.IncCounter(metricSubsystem, "jobs_shortlisted_total")
		prom.AddHistogram(metricSubsystem, "compute_duration_seconds", time.Since(start).Seconds())
	}
}

// shortlistJob claims a job and marks its in-window applications. The
// claim, the per-application flags and the notifications commit as one
// transaction.
func (s *Shortlister) shortlistJob(ctx context.Context, job *model.Job) error {
	return s.jobRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		at := s.now()
		if err := s.jobRepo.ClaimShortlist(ctx, job.ID, at); err != nil {
			return err
		}

		cutoff := at
		if job.ShortlistWindowEndsAt != nil {
			cutoff = *job.ShortlistWindowEndsAt
		}

		inWindow := make([]*model.Application, 0, len(job.Applications))
		for _, app := range job.Applications {
			if !app.CreatedAt.After(cutoff) {
				inWindow = append(inWindow, app)
			}
		}

		// Highest evaluation first, earlier application breaks the tie.
		sort.SliceStable(inWindow, func(i, j int) bool {
			if inWindow[i].Evaluation != inWindow[j].Evaluation {
				return inWindow[i].Evaluation > inWindow[j].Evaluation
			}
			return inWindow[i].CreatedAt.Before(inWindow[j].CreatedAt)
		})

		limit := job.ShortlistLimit()
		for i, app := range inWindow {
			selected := i < limit
			if err := s.jobRepo.SetApplicationShortlisted(ctx, app.ID, selected); err != nil {
				return err
			}

			if selected {
				if err := s.outbox.Append(ctx, &model.OutboxEvent{
					Type:        model.NotifyJobShortlisted,
					RecipientID: app.StudentID,
					JobID:       &job.ID,
					Title:       "You made the shortlist",
					Message:     fmt.Sprintf("You were shortlisted for \"%s\"", job.Title),
				}); err != nil {
					return err
				}
				continue
			}
			// Withdrawn and already-decided applicants are not notified.
			if app.Status != model.ApplicationApplied {
				continue
			}
			if err := s.outbox.Append(ctx, &model.OutboxEvent{
				Type:        model.NotifyJobNotShortlisted,
				RecipientID: app.StudentID,
				JobID:       &job.ID,
				Title:       "Shortlist update",
				Message:     fmt.Sprintf("You were not shortlisted for \"%s\" this time", job.Title),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}
