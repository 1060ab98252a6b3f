package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/internal/outbox"
	"github.com/shivanshukushwah/worknest-backend/internal/queue"
	"github.com/shivanshukushwah/worknest-backend/internal/repository"
	"github.com/shivanshukushwah/worknest-backend/internal/scheduler"
	"github.com/shivanshukushwah/worknest-backend/internal/services"
	"github.com/shivanshukushwah/worknest-backend/pkg/pg"
	"github.com/shivanshukushwah/worknest-backend/pkg/redis"
	"github.com/shivanshukushwah/worknest-backend/test/fixtures"
	"github.com/shivanshukushwah/worknest-backend/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const platformUserID = int64(99)

type TestEnvironment struct {
	DB            *pg.DB
	Redis         *miniredis.Miniredis
	RedisAdapter  redis.RedisAdapter
	Queue         *queue.Queue
	UserRepo      *repository.UserRepository
	WalletRepo    *repository.WalletRepository
	TxnRepo       *repository.TransactionRepository
	JobRepo       *repository.JobRepository
	OutboxRepo    *repository.OutboxRepository
	UserService   *services.UserService
	WalletService *services.WalletService
	JobService    *services.JobService
	Shortlister   *scheduler.Shortlister
	Dispatcher    *outbox.Dispatcher
}

func setupE2EEnvironment(t *testing.T) *TestEnvironment {
	pgDB := helpers.SetupTestDB(t)

	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Use unique connection name per test to avoid global adapter caching issues
	connName := fmt.Sprintf("test-%d", time.Now().UnixNano())
	redisAdapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	queueConfig := queue.QueueConfig{
		Name:              "test:notifications",
		ConsumerGroup:     "test-group",
		ConsumerName:      "test-consumer",
		MaxRetries:        3,
		VisibilityTimeout: 5 * time.Second,
		PollInterval:      100 * time.Millisecond,
		BatchSize:         10,
		MaxLen:            1000,
		EnableDLQ:         true,
	}

	q, err := queue.NewQueue(redisAdapter, queueConfig)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(pgDB)
	walletRepo := repository.NewWalletRepository(pgDB)
	txnRepo := repository.NewTransactionRepository(pgDB)
	jobRepo := repository.NewJobRepository(pgDB)
	outboxRepo := repository.NewOutboxRepository(pgDB)

	userService := services.NewUserService(userRepo)
	walletService := services.NewWalletService(
		walletRepo, txnRepo, userRepo, jobRepo, outboxRepo, 0.1, platformUserID)
	jobService := services.NewJobService(
		jobRepo, userRepo, walletService,
		services.NewHeuristicEvaluator(), nil,
		outboxRepo, nil, false, false)

	return &TestEnvironment{
		DB:            pgDB,
		Redis:         mr,
		RedisAdapter:  redisAdapter,
		Queue:         q,
		UserRepo:      userRepo,
		WalletRepo:    walletRepo,
		TxnRepo:       txnRepo,
		JobRepo:       jobRepo,
		OutboxRepo:    outboxRepo,
		UserService:   userService,
		WalletService: walletService,
		JobService:    jobService,
		Shortlister:   scheduler.NewShortlister(jobRepo, outboxRepo, time.Minute, 100),
		Dispatcher:    outbox.NewDispatcher(outboxRepo, q, time.Second, 100),
	}
}

func (env *TestEnvironment) Cleanup() {
	if env.Queue != nil {
		_ = env.Queue.Stop(5 * time.Second)
	}
	time.Sleep(100 * time.Millisecond)
	if env.Redis != nil {
		env.Redis.Close()
	}
}

func (env *TestEnvironment) createStudent(t *testing.T, id int64, email string) *model.User {
	user := fixtures.TestStudent
	user.ID = id
	user.Email = email
	return helpers.CreateTestUser(t, env.DB, user)
}

func TestE2E_OfflineJobFirstComeFirstServed(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	employer := helpers.CreateTestUser(t, env.DB, fixtures.TestEmployer)
	s1 := env.createStudent(t, 11, "s1@student.test")
	s2 := env.createStudent(t, 12, "s2@student.test")
	s3 := env.createStudent(t, 13, "s3@student.test")
	s4 := env.createStudent(t, 14, "s4@student.test")

	job, err := env.JobService.CreateJob(ctx, fixtures.NewOfflineJobRequest(employer.ID))
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusOpen, job.Status)

	// One position admits three applications, first come first served.
	app1, err := env.JobService.Apply(ctx, job.ID, fixtures.NewApplyRequest(s1.ID, ""))
	require.NoError(t, err)
	_, err = env.JobService.Apply(ctx, job.ID, fixtures.NewApplyRequest(s2.ID, ""))
	require.NoError(t, err)
	_, err = env.JobService.Apply(ctx, job.ID, fixtures.NewApplyRequest(s3.ID, ""))
	require.NoError(t, err)

	// The third application filled the pool and closed the job.
	closed, err := env.JobService.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusClosed, closed.Status)

	_, err = env.JobService.Apply(ctx, job.ID, fixtures.NewApplyRequest(s4.ID, ""))
	assert.ErrorIs(t, err, services.ErrApplicationsClosed)

	// A repeat apply returns the existing application, no new row.
	again, err := env.JobService.Apply(ctx, job.ID, fixtures.NewApplyRequest(s1.ID, ""))
	require.NoError(t, err)
	assert.Equal(t, app1.ID, again.ID)

	updated, err := env.JobService.AcceptApplication(ctx, job.ID, app1.ID,
		model.Principal{ID: employer.ID, Role: model.RoleEmployer})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.AcceptedCount)
	require.NotNil(t, updated.AssignedStudent)
	assert.Equal(t, s1.ID, *updated.AssignedStudent)
}

func TestE2E_EscrowLifecycle(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	employer := helpers.CreateTestUser(t, env.DB, fixtures.TestEmployer)
	student := env.createStudent(t, 21, "worker@student.test")

	platform := fixtures.TestEmployer
	platform.ID = platformUserID
	platform.Email = "platform@worknest.test"
	helpers.CreateTestUser(t, env.DB, platform)

	helpers.CreateTestWallet(t, env.DB, employer.ID, 1000)
	helpers.CreateTestWallet(t, env.DB, student.ID, 0)
	helpers.CreateTestWallet(t, env.DB, platformUserID, 0)

	employerPrincipal := model.Principal{ID: employer.ID, Role: model.RoleEmployer}

	job, err := env.JobService.CreateJob(ctx, fixtures.NewOfflineJobRequest(employer.ID))
	require.NoError(t, err)

	app, err := env.JobService.Apply(ctx, job.ID, fixtures.NewApplyRequest(student.ID, ""))
	require.NoError(t, err)

	_, err = env.JobService.AcceptApplication(ctx, job.ID, app.ID, employerPrincipal)
	require.NoError(t, err)

	_, err = env.JobService.AcceptAssignment(ctx, job.ID, student.ID)
	require.NoError(t, err)

	_, err = env.JobService.ProcessJobPayment(ctx, job.ID, employerPrincipal)
	require.NoError(t, err)

	funded, err := env.WalletRepo.GetByUser(ctx, employer.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, funded.Balance)
	assert.Equal(t, 500.0, funded.EscrowBalance)

	// Double fund is rejected while the money sits in escrow.
	_, err = env.JobService.ProcessJobPayment(ctx, job.ID, employerPrincipal)
	assert.ErrorIs(t, err, services.ErrEscrowAlreadyFunded)

	_, err = env.JobService.SubmitWork(ctx, job.ID, model.SubmitWorkRequest{
		StudentID:   student.ID,
		Description: "done, photos attached",
	})
	require.NoError(t, err)

	_, err = env.JobService.ApproveCompletion(ctx, job.ID, employerPrincipal)
	require.NoError(t, err)

	err = env.JobService.ReleasePayment(ctx, job.ID, employerPrincipal)
	require.NoError(t, err)

	// 500 escrow splits into 450 payout and 50 platform commission.
	employerWallet, err := env.WalletRepo.GetByUser(ctx, employer.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, employerWallet.Balance)
	assert.Equal(t, 0.0, employerWallet.EscrowBalance)

	studentWallet, err := env.WalletRepo.GetByUser(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 450.0, studentWallet.Balance)
	assert.Equal(t, 450.0, studentWallet.TotalEarnings)

	platformWallet, err := env.WalletRepo.GetByUser(ctx, platformUserID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, platformWallet.Balance)

	paid, err := env.JobService.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPaid, paid.Status)
	assert.True(t, paid.PaymentReleased)

	// On-time submission and employer approval move the score 35 -> 47.
	scored, err := env.UserRepo.Get(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, 47, scored.Score)

	err = env.JobService.ReleasePayment(ctx, job.ID, employerPrincipal)
	assert.ErrorIs(t, err, services.ErrAlreadyReleased)
}

func TestE2E_InsufficientBalance(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	employer := helpers.CreateTestUser(t, env.DB, fixtures.TestEmployer)
	student := env.createStudent(t, 31, "broke@student.test")
	helpers.CreateTestWallet(t, env.DB, employer.ID, 100)

	employerPrincipal := model.Principal{ID: employer.ID, Role: model.RoleEmployer}

	job, err := env.JobService.CreateJob(ctx, fixtures.NewOfflineJobRequest(employer.ID))
	require.NoError(t, err)

	app, err := env.JobService.Apply(ctx, job.ID, fixtures.NewApplyRequest(student.ID, ""))
	require.NoError(t, err)
	_, err = env.JobService.AcceptApplication(ctx, job.ID, app.ID, employerPrincipal)
	require.NoError(t, err)

	_, err = env.JobService.ProcessJobPayment(ctx, job.ID, employerPrincipal)
	assert.ErrorIs(t, err, repository.ErrInsufficientBalance)

	// The failed funding rolled back; nothing moved.
	wallet, err := env.WalletRepo.GetByUser(ctx, employer.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, wallet.Balance)
	assert.Equal(t, 0.0, wallet.EscrowBalance)

	unfunded, err := env.JobService.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, unfunded.EscrowAmount)
}

func TestE2E_OnlineShortlist(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	employer := helpers.CreateTestUser(t, env.DB, fixtures.TestEmployer)
	s1 := env.createStudent(t, 41, "a@student.test")
	s2 := env.createStudent(t, 42, "b@student.test")
	s3 := env.createStudent(t, 43, "c@student.test")
	s4 := env.createStudent(t, 44, "d@student.test")

	employerPrincipal := model.Principal{ID: employer.ID, Role: model.RoleEmployer}

	job, err := env.JobService.CreateJob(ctx, fixtures.NewOnlineJobRequest(employer.ID))
	require.NoError(t, err)
	require.NotNil(t, job.ShortlistWindowEndsAt)

	// Online jobs require a profile URL.
	_, err = env.JobService.Apply(ctx, job.ID, fixtures.NewApplyRequest(s1.ID, ""))
	assert.ErrorIs(t, err, services.ErrProfileURLRequired)

	strong, err := env.JobService.Apply(ctx, job.ID,
		fixtures.NewApplyRequest(s1.ID, "https://linkedin.com/in/a-student"))
	require.NoError(t, err)
	_, err = env.JobService.Apply(ctx, job.ID,
		fixtures.NewApplyRequest(s2.ID, "https://behance.net/b-student"))
	require.NoError(t, err)
	_, err = env.JobService.Apply(ctx, job.ID,
		fixtures.NewApplyRequest(s3.ID, "https://github.com/c-student"))
	require.NoError(t, err)
	weak, err := env.JobService.Apply(ctx, job.ID,
		fixtures.NewApplyRequest(s4.ID, "https://example.com"))
	require.NoError(t, err)
	assert.Greater(t, strong.Evaluation, weak.Evaluation)

	// Accepting before the window closes is blocked.
	_, err = env.JobService.AcceptApplication(ctx, job.ID, strong.ID, employerPrincipal)
	assert.ErrorIs(t, err, services.ErrNotShortlisted)

	helpers.ExpireShortlistWindow(t, env.DB, job.ID)
	env.Shortlister.RunOnce(ctx)

	shortlisted, err := env.JobService.ShortlistedCandidates(ctx, job.ID, employerPrincipal)
	require.NoError(t, err)
	require.Len(t, shortlisted, 3)
	for _, app := range shortlisted {
		assert.NotEqual(t, s4.ID, app.StudentID)
	}

	computed, err := env.JobService.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, computed.ShortlistComputed)

	// A second run is a no-op; the shortlist claim is exactly once.
	env.Shortlister.RunOnce(ctx)
	again, err := env.JobService.ShortlistedCandidates(ctx, job.ID, employerPrincipal)
	require.NoError(t, err)
	assert.Len(t, again, 3)

	_, err = env.JobService.AcceptApplication(ctx, job.ID, weak.ID, employerPrincipal)
	assert.ErrorIs(t, err, services.ErrNotShortlisted)

	_, err = env.JobService.AcceptApplication(ctx, job.ID, strong.ID, employerPrincipal)
	require.NoError(t, err)
}

func TestE2E_OutboxDispatch(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	employer := helpers.CreateTestUser(t, env.DB, fixtures.TestEmployer)
	student := env.createStudent(t, 51, "notified@student.test")

	job, err := env.JobService.CreateJob(ctx, fixtures.NewOfflineJobRequest(employer.ID))
	require.NoError(t, err)
	_, err = env.JobService.Apply(ctx, job.ID, fixtures.NewApplyRequest(student.ID, ""))
	require.NoError(t, err)

	// job_posted plus application_received are pending.
	pending, err := env.OutboxRepo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	dispatched := env.Dispatcher.RunOnce(ctx)
	assert.Equal(t, 2, dispatched)

	pending, err = env.OutboxRepo.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// The events landed on the notification stream.
	received := make(chan *model.OutboxEvent, 2)
	handler := func(ctx context.Context, qMsg *queue.Message) error {
		var event model.OutboxEvent
		if err := json.Unmarshal(qMsg.Data, &event); err != nil {
			return err
		}
		received <- &event
		return nil
	}
	require.NoError(t, env.Queue.Consume(handler))

	got := map[model.NotificationType]bool{}
	for i := 0; i < 2; i++ {
		select {
		case event := <-received:
			got[event.Type] = true
		case <-time.After(3 * time.Second):
			t.Fatal("notification not consumed within timeout")
		}
	}
	assert.True(t, got[model.NotifyJobPosted])
	assert.True(t, got[model.NotifyApplicationReceived])

	// A re-run with nothing pending dispatches nothing.
	assert.Zero(t, env.Dispatcher.RunOnce(ctx))
}
