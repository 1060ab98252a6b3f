package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListPending(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.OutboxEvent), args.Error(1)
}

func (m *MockRepository) MarkDispatched(ctx context.Context, id int64, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error) {
	args := m.Called(ctx, data, metadata)
	return args.String(0), args.Error(1)
}

func pendingEvent(id int64, typ model.NotificationType) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:          id,
		Type:        typ,
		RecipientID: 5,
		Title:       "Test",
		Message:     "hello",
		Status:      model.OutboxPending,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestDispatcher_RunOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes and marks each pending event", func(t *testing.T) {
		repo := new(MockRepository)
		queue := new(MockPublisher)
		d := NewDispatcher(repo, queue, time.Second, 200)

		events := []*model.OutboxEvent{
			pendingEvent(1, model.NotifyJobPosted),
			pendingEvent(2, model.NotifyJobAccepted),
		}
		repo.On("ListPending", mock.Anything, 200).Return(events, nil)
		queue.On("PublishJSON", mock.Anything, events[0], map[string]string{"type": "job_posted"}).Return("1-0", nil)
		queue.On("PublishJSON", mock.Anything, events[1], map[string]string{"type": "job_accepted"}).Return("1-1", nil)
		repo.On("MarkDispatched", mock.Anything, int64(1), mock.Anything).Return(nil)
		repo.On("MarkDispatched", mock.Anything, int64(2), mock.Anything).Return(nil)

		assert.Equal(t, 2, d.RunOnce(ctx))
		repo.AssertExpectations(t)
		queue.AssertExpectations(t)
	})

	t.Run("publish failure marks the row failed and keeps going", func(t *testing.T) {
		repo := new(MockRepository)
		queue := new(MockPublisher)
		d := NewDispatcher(repo, queue, time.Second, 200)

		bad := pendingEvent(1, model.NotifyJobPosted)
		good := pendingEvent(2, model.NotifyJobAccepted)
		repo.On("ListPending", mock.Anything, 200).Return([]*model.OutboxEvent{bad, good}, nil)
		queue.On("PublishJSON", mock.Anything, bad, mock.Anything).Return("", errors.New("stream down"))
		queue.On("PublishJSON", mock.Anything, good, mock.Anything).Return("1-0", nil)
		repo.On("MarkFailed", mock.Anything, int64(1), "stream down").Return(nil)
		repo.On("MarkDispatched", mock.Anything, int64(2), mock.Anything).Return(nil)

		assert.Equal(t, 1, d.RunOnce(ctx))
		repo.AssertExpectations(t)
	})

	t.Run("stale mark does not count as dispatched", func(t *testing.T) {
		repo := new(MockRepository)
		queue := new(MockPublisher)
		d := NewDispatcher(repo, queue, time.Second, 200)

		event := pendingEvent(1, model.NotifyJobPosted)
		repo.On("ListPending", mock.Anything, 200).Return([]*model.OutboxEvent{event}, nil)
		queue.On("PublishJSON", mock.Anything, event, mock.Anything).Return("1-0", nil)
		repo.On("MarkDispatched", mock.Anything, int64(1), mock.Anything).Return(errors.New("already dispatched"))

		assert.Equal(t, 0, d.RunOnce(ctx))
	})

	t.Run("list failure is a no-op batch", func(t *testing.T) {
		repo := new(MockRepository)
		queue := new(MockPublisher)
		d := NewDispatcher(repo, queue, time.Second, 200)

		repo.On("ListPending", mock.Anything, 200).Return(nil, errors.New("db down"))

		assert.Equal(t, 0, d.RunOnce(ctx))
		queue.AssertNotCalled(t, "PublishJSON", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDispatcher_StartStop(t *testing.T) {
	repo := new(MockRepository)
	queue := new(MockPublisher)
	d := NewDispatcher(repo, queue, 10*time.Millisecond, 200)

	repo.On("ListPending", mock.Anything, 200).Return([]*model.OutboxEvent{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d.Start(ctx)
	require.Eventually(t, func() bool {
		return len(repo.Calls) >= 2
	}, time.Second, 5*time.Millisecond)
	d.Stop()
}
