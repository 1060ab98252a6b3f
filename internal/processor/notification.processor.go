package processor

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	gateway "github.com/shivanshukushwah/worknest-backend/internal/gateways"
	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/internal/queue"
	"github.com/shivanshukushwah/worknest-backend/pkg/logger"
	"github.com/shivanshukushwah/worknest-backend/pkg/prom"
)

// NotificationProcessor pushes outbox events from the stream to the
// notification providers with idempotency guarantees.
type NotificationProcessor struct {
	client      *gateway.Client
	idempotency *IdempotencyService
}

func NewNotificationProcessor(client *gateway.Client, idempotency *IdempotencyService) *NotificationProcessor {
	return &NotificationProcessor{
		client:      client,
		idempotency: idempotency,
	}
}

func (p *NotificationProcessor) GetType() string {
	return "notification"
}

func (p *NotificationProcessor) Process(ctx context.Context, queueMessage *queue.Message) error {
	var event model.OutboxEvent
	if err := json.Unmarshal(queueMessage.Data, &event); err != nil {
		logger.Error("Failed to unmarshal notification event", "error", err)
		return err // malformed payload moves to the DLQ
	}

	eventID := "notify:" + strconv.FormatInt(event.ID, 10)

	procCtx, err := p.idempotency.AcquireProcessingLock(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrAlreadyProcessed) {
			logger.Info("Notification already delivered, skipping", "event_id", eventID)
			return nil
		}
		if errors.Is(err, ErrMaxRetriesExceeded) {
			logger.Error("Notification delivery retries exhausted", "event_id", eventID)
			return nil // ACK to move to DLQ
		}
		if errors.Is(err, ErrLockAcquireFailed) {
			return errors.New("lock held by another consumer")
		}
		logger.Error("Failed to acquire lock", "event_id", eventID, "error", err)
		return err
	}
	defer func() {
		if procCtx.lockAcquired {
			p.idempotency.ReleaseLock(ctx, procCtx)
		}
	}()

	req := &gateway.SendRequest{
		NotificationID: strconv.FormatInt(event.ID, 10),
		RecipientID:    event.RecipientID,
		Type:           string(event.Type),
		Title:          event.Title,
		Message:        event.Message,
		JobID:          event.JobID,
	}

	res, err := p.client.SendNotification(ctx, req)
	if err != nil {
		logger.Error("Failed to send notification", "event_id", eventID, "error", err)
		if markErr := p.idempotency.MarkFailure(ctx, procCtx, err); markErr != nil {
			logger.Error("Failed to mark failure", "event_id", eventID, "error", markErr)
		}
		return err // NACK to retry from the stream
	}

	if res.Status == gateway.StatusDelivered {
		prom.IncCounter("notifications", "delivered_total")
		if markErr := p.idempotency.MarkSuccess(ctx, procCtx); markErr != nil {
			logger.Error("Failed to mark success", "event_id", eventID, "error", markErr)
		}
		return nil
	}

	logger.Warn("Notification not delivered", "event_id", eventID, "status", res.Status)
	if markErr := p.idempotency.MarkFailure(ctx, procCtx, errors.New("provider returned non-delivered status")); markErr != nil {
		logger.Error("Failed to mark failure", "event_id", eventID, "error", markErr)
	}
	return errors.New("failed to deliver notification")
}
