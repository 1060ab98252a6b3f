package processor

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/internal/queue"
	"github.com/shivanshukushwah/worknest-backend/internal/services"
	"github.com/shivanshukushwah/worknest-backend/pkg/logger"
	"github.com/shivanshukushwah/worknest-backend/pkg/prom"
)

// InspectionRepository is the slice of the job repository the async
// inspector writes through.
type InspectionRepository interface {
	GetApplication(ctx context.Context, id string) (*model.Application, error)
	SetInspectionStatus(ctx context.Context, id string, status model.InspectionStatus) error
	RecordInspection(ctx context.Context, id string, evaluation int, insp model.Inspection) error
}

// InspectionProcessor consumes queued profile inspections, runs the
// deep inspection and folds the result into the application's
// evaluation score.
type InspectionProcessor struct {
	inspector   services.ProfileInspector
	repo        InspectionRepository
	idempotency *IdempotencyService
}

func NewInspectionProcessor(inspector services.ProfileInspector, repo InspectionRepository, idempotency *IdempotencyService) *InspectionProcessor {
	return &InspectionProcessor{
		inspector:   inspector,
		repo:        repo,
		idempotency: idempotency,
	}
}

func (p *InspectionProcessor) GetType() string {
	return "inspection"
}

func (p *InspectionProcessor) Process(ctx context.Context, queueMessage *queue.Message) error {
	var task services.InspectionTask
	if err := json.Unmarshal(queueMessage.Data, &task); err != nil {
		logger.Error("Failed to unmarshal inspection task", "error", err)
		return err
	}

	taskID := "inspect:" + task.ApplicationID

	procCtx, err := p.idempotency.AcquireProcessingLock(ctx, taskID)
	if err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			return nil
		}
		if errors.Is(err, ErrMaxRetriesExceeded) {
			now := time.Now().UTC()
			_ = p.repo.RecordInspection(ctx, task.ApplicationID, task.BaseScore, model.Inspection{
				Status:      model.InspectionFailed,
				Error:       "inspection retries exhausted",
				InspectedAt: &now,
			})
			return nil // ACK to move to DLQ
		}
		if errors.Is(err, ErrLockAcquireFailed) {
			return errors.New("lock held by another consumer")
		}
		return err
	}
	defer func() {
		if procCtx.lockAcquired {
			p.idempotency.ReleaseLock(ctx, procCtx)
		}
	}()

	app, err := p.repo.GetApplication(ctx, task.ApplicationID)
	if err != nil {
		logger.Warn("Inspection target vanished", "application_id", task.ApplicationID, "error", err)
		return nil // nothing to inspect; ACK
	}
	if app.Inspection.Status == model.InspectionDone {
		_ = p.idempotency.MarkSuccess(ctx, procCtx)
		return nil
	}

	if err := p.repo.SetInspectionStatus(ctx, task.ApplicationID, model.InspectionInspecting); err != nil {
		return err
	}

	now := time.Now().UTC()
	extra, result, inspectErr := p.inspector.Inspect(ctx, task.ProfileURL)
	if inspectErr != nil {
		logger.Warn("Profile inspection failed", "application_id", task.ApplicationID, "error", inspectErr)
		if err := p.repo.RecordInspection(ctx, task.ApplicationID, app.Evaluation, model.Inspection{
			Status:      model.InspectionFailed,
			Error:       inspectErr.Error(),
			InspectedAt: &now,
		}); err != nil {
			return err
		}
		if markErr := p.idempotency.MarkFailure(ctx, procCtx, inspectErr); markErr != nil {
			logger.Error("Failed to mark failure", "task_id", taskID, "error", markErr)
		}
		return inspectErr // NACK to retry
	}

	combined := app.Evaluation + extra
	if combined > 100 {
		combined = 100
	}
	if err := p.repo.RecordInspection(ctx, task.ApplicationID, combined, model.Inspection{
		Status:      model.InspectionDone,
		Result:      result,
		InspectedAt: &now,
	}); err != nil {
		return err
	}

	prom.IncCounter("inspections", "completed_total")
	if markErr := p.idempotency.MarkSuccess(ctx, procCtx); markErr != nil {
		logger.Error("Failed to mark success", "task_id", taskID, "error", markErr)
	}
	return nil
}
