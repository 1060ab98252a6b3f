package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/pkg/logger"
	"github.com/shivanshukushwah/worknest-backend/pkg/prom"
)

const metricSubsystem = "outbox"

type Repository interface {
	ListPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkDispatched(ctx context.Context, id int64, at time.Time) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}

// Publisher pushes a notification onto the delivery stream.
type Publisher interface {
	PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error)
}

// Dispatcher drains pending outbox rows onto the notification stream.
// It only moves rows between states; actual delivery happens in the
// stream consumer, so a provider outage cannot touch core transactions.
type Dispatcher struct {
	repo     Repository
	queue    Publisher
	interval time.Duration
	batch    int

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewDispatcher(repo Repository, queue Publisher, interval time.Duration, batch int) *Dispatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batch <= 0 {
		batch = 200
	}
	return &Dispatcher{
		repo:     repo,
		queue:    queue,
		interval: interval,
		batch:    batch,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	go func() {
		defer close(d.doneCh)

		d.RunOnce(ctx)

		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.stopCh:
				return
			case <-ticker.C:
				d.RunOnce(ctx)
			}
		}
	}()
}

func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopCh)
	})
	<-d.doneCh
}

// RunOnce drains one batch. Returns the number of events dispatched.
func (d *Dispatcher) RunOnce(ctx context.Context) int {
	events, err := d.repo.ListPending(ctx, d.batch)
	if err != nil {
		logger.Error("outbox: list pending events", "error", err)
		return 0
	}

	dispatched := 0
	for _, event := range events {
		if _, err := d.queue.PublishJSON(ctx, event, map[string]string{
			"type": string(event.Type),
		}); err != nil {
			logger.Warn("outbox: publish event", "event_id", event.ID, "error", err)
			if markErr := d.repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				logger.Error("outbox: mark failed", "event_id", event.ID, "error", markErr)
			}
			prom.IncCounter(metricSubsystem, "dispatch_failed_total")
			continue
		}
		if err := d.repo.MarkDispatched(ctx, event.ID, time.Now().UTC()); err != nil {
			// The publish went through; a stale mark only means a
			// duplicate delivery, which consumers de-duplicate.
			logger.Warn("outbox: mark dispatched", "event_id", event.ID, "error", err)
			continue
		}
		dispatched++
		prom.IncCounter(metricSubsystem, "dispatched_total")
	}
	return dispatched
}
