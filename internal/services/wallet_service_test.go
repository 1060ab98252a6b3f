package services

import (
	"context"
	"testing"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Create(ctx context.Context, userID int64) (*model.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByUser(ctx context.Context, userID int64) (*model.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Deposit(ctx context.Context, userID int64, amount float64) error {
	return m.Called(ctx, userID, amount).Error(0)
}

func (m *MockWalletRepository) Withdraw(ctx context.Context, userID int64, amount float64) error {
	return m.Called(ctx, userID, amount).Error(0)
}

func (m *MockWalletRepository) MoveToEscrow(ctx context.Context, userID int64, amount float64) error {
	return m.Called(ctx, userID, amount).Error(0)
}

func (m *MockWalletRepository) DebitEscrow(ctx context.Context, userID int64, amount float64) error {
	return m.Called(ctx, userID, amount).Error(0)
}

func (m *MockWalletRepository) CreditEarnings(ctx context.Context, userID int64, amount float64) error {
	return m.Called(ctx, userID, amount).Error(0)
}

func (m *MockWalletRepository) RefundEscrow(ctx context.Context, userID int64, amount float64) error {
	return m.Called(ctx, userID, amount).Error(0)
}

func (m *MockWalletRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*model.Transaction), args.Get(1).(int64), args.Error(2)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) AdjustScore(ctx context.Context, userID int64, log *model.ScoreLog) (int, error) {
	args := m.Called(ctx, userID, log)
	return args.Int(0), args.Error(1)
}

type MockPaymentJobRepository struct {
	mock.Mock
}

func (m *MockPaymentJobRepository) GetForUpdate(ctx context.Context, id int64) (*model.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Job), args.Error(1)
}

func (m *MockPaymentJobRepository) Update(ctx context.Context, job *model.Job) error {
	return m.Called(ctx, job).Error(0)
}

type MockOutboxAppender struct {
	mock.Mock
}

func (m *MockOutboxAppender) Append(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func newWalletServiceForTest(platformUserID int64) (*WalletService, *MockWalletRepository, *MockTransactionRepository, *MockUserRepository, *MockPaymentJobRepository, *MockOutboxAppender) {
	walletRepo := new(MockWalletRepository)
	txnRepo := new(MockTransactionRepository)
	userRepo := new(MockUserRepository)
	jobRepo := new(MockPaymentJobRepository)
	outbox := new(MockOutboxAppender)
	svc := NewWalletService(walletRepo, txnRepo, userRepo, jobRepo, outbox, 0.1, platformUserID)
	return svc, walletRepo, txnRepo, userRepo, jobRepo, outbox
}

func TestWalletService_CreateWallet(t *testing.T) {
	ctx := context.Background()

	t.Run("requires verified phone", func(t *testing.T) {
		svc, _, _, userRepo, _, _ := newWalletServiceForTest(0)
		userRepo.On("Get", mock.Anything, int64(1)).Return(&model.User{ID: 1, Phone: "9999", IsPhoneVerified: false}, nil)

		_, err := svc.CreateWallet(ctx, 1)
		assert.ErrorIs(t, err, ErrPhoneNotVerified)
	})

	t.Run("idempotent on existing wallet", func(t *testing.T) {
		svc, walletRepo, _, userRepo, _, _ := newWalletServiceForTest(0)
		userRepo.On("Get", mock.Anything, int64(1)).Return(&model.User{ID: 1, Phone: "9999", IsPhoneVerified: true}, nil)
		walletRepo.On("Create", mock.Anything, int64(1)).Return(nil, repository.ErrWalletExists)
		existing := &model.Wallet{UserID: 1, Balance: 12.5}
		walletRepo.On("GetByUser", mock.Anything, int64(1)).Return(existing, nil)

		wallet, err := svc.CreateWallet(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, existing, wallet)
	})
}

func TestWalletService_AddFunds(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects sub-minimum amount", func(t *testing.T) {
		svc, _, _, _, _, _ := newWalletServiceForTest(0)
		_, err := svc.AddFunds(ctx, 1, 0.004, "top up")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("books completed deposit", func(t *testing.T) {
		svc, walletRepo, txnRepo, _, _, _ := newWalletServiceForTest(0)
		walletRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
		walletRepo.On("Deposit", mock.Anything, int64(1), 100.0).Return(nil)
		txnRepo.On("Create", mock.Anything, mock.MatchedBy(func(txn *model.Transaction) bool {
			return txn.Type == model.TransactionDeposit &&
				txn.Status == model.TransactionCompleted &&
				txn.Amount == 100.0 &&
				txn.CompletedAt != nil
		})).Return(&model.Transaction{ID: 7, Amount: 100.0}, nil)

		txn, err := svc.AddFunds(ctx, 1, 100.0, "top up")
		require.NoError(t, err)
		assert.Equal(t, int64(7), txn.ID)
		walletRepo.AssertExpectations(t)
		txnRepo.AssertExpectations(t)
	})
}

func TestWalletService_RequestWithdrawal(t *testing.T) {
	ctx := context.Background()

	t.Run("insufficient balance surfaces", func(t *testing.T) {
		svc, walletRepo, _, _, _, _ := newWalletServiceForTest(0)
		walletRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
		walletRepo.On("Withdraw", mock.Anything, int64(1), 50.0).Return(repository.ErrInsufficientBalance)

		_, err := svc.RequestWithdrawal(ctx, 1, 50.0, "payout")
		assert.ErrorIs(t, err, repository.ErrInsufficientBalance)
	})

	t.Run("books pending withdrawal", func(t *testing.T) {
		svc, walletRepo, txnRepo, _, _, _ := newWalletServiceForTest(0)
		walletRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
		walletRepo.On("Withdraw", mock.Anything, int64(1), 50.0).Return(nil)
		txnRepo.On("Create", mock.Anything, mock.MatchedBy(func(txn *model.Transaction) bool {
			return txn.Type == model.TransactionWithdrawal && txn.Status == model.TransactionPending
		})).Return(&model.Transaction{ID: 8}, nil)

		txn, err := svc.RequestWithdrawal(ctx, 1, 50.0, "payout")
		require.NoError(t, err)
		assert.Equal(t, int64(8), txn.ID)
	})
}

func TestWalletService_FundEscrow(t *testing.T) {
	ctx := context.Background()
	baseJob := func() *model.Job {
		return &model.Job{
			ID:               10,
			EmployerID:       2,
			Budget:           500.0,
			AssignedStudents: []int64{5},
		}
	}

	t.Run("moves budget into escrow once", func(t *testing.T) {
		svc, walletRepo, txnRepo, _, jobRepo, _ := newWalletServiceForTest(0)
		job := baseJob()
		walletRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
		jobRepo.On("GetForUpdate", mock.Anything, int64(10)).Return(job, nil)
		walletRepo.On("MoveToEscrow", mock.Anything, int64(2), 500.0).Return(nil)
		txnRepo.On("Create", mock.Anything, mock.MatchedBy(func(txn *model.Transaction) bool {
			return txn.Type == model.TransactionPayment && txn.Amount == 500.0 && txn.JobID != nil
		})).Return(&model.Transaction{ID: 9, Amount: 500.0}, nil)
		jobRepo.On("Update", mock.Anything, mock.MatchedBy(func(j *model.Job) bool {
			return j.EscrowAmount == 500.0
		})).Return(nil)

		txn, err := svc.FundEscrow(ctx, 10, 2)
		require.NoError(t, err)
		assert.Equal(t, 500.0, txn.Amount)
		jobRepo.AssertExpectations(t)
	})

	t.Run("only the owner can fund", func(t *testing.T) {
		svc, walletRepo, _, _, jobRepo, _ := newWalletServiceForTest(0)
		walletRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
		jobRepo.On("GetForUpdate", mock.Anything, int64(10)).Return(baseJob(), nil)

		_, err := svc.FundEscrow(ctx, 10, 99)
		assert.ErrorIs(t, err, ErrNotAuthorized)
	})

	t.Run("needs an assignee", func(t *testing.T) {
		svc, walletRepo, _, _, jobRepo, _ := newWalletServiceForTest(0)
		job := baseJob()
		job.AssignedStudents = nil
		walletRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
		jobRepo.On("GetForUpdate", mock.Anything, int64(10)).Return(job, nil)

		_, err := svc.FundEscrow(ctx, 10, 2)
		assert.ErrorIs(t, err, ErrNoAssignedStudent)
	})

	t.Run("double fund rejected", func(t *testing.T) {
		svc, walletRepo, _, _, jobRepo, _ := newWalletServiceForTest(0)
		job := baseJob()
		job.EscrowAmount = 500.0
		walletRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
		jobRepo.On("GetForUpdate", mock.Anything, int64(10)).Return(job, nil)

		_, err := svc.FundEscrow(ctx, 10, 2)
		assert.ErrorIs(t, err, ErrEscrowAlreadyFunded)
	})
}

func TestWalletService_ReleaseFromEscrow(t *testing.T) {
	ctx := context.Background()
	baseJob := func() *model.Job {
		return &model.Job{
			ID:               10,
			Title:            "Flyer design",
			EmployerID:       2,
			Budget:           500.0,
			EscrowAmount:     500.0,
			AssignedStudents: []int64{5},
			Status:           model.JobStatusCompleted,
		}
	}

	t.Run("splits payout and commission", func(t *testing.T) {
		svc, walletRepo, txnRepo, _, jobRepo, outbox := newWalletServiceForTest(99)
		job := baseJob()
		walletRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
		jobRepo.On("GetForUpdate", mock.Anything, int64(10)).Return(job, nil)
		walletRepo.On("GetByUser", mock.Anything, int64(5)).Return(&model.Wallet{UserID: 5}, nil)
		walletRepo.On("DebitEscrow", mock.Anything, int64(2), 500.0).Return(nil)
		walletRepo.On("CreditEarnings", mock.Anything, int64(5), 450.0).Return(nil)
		walletRepo.On("Deposit", mock.Anything, int64(99), 50.0).Return(nil)
		rows := map[model.TransactionType]*model.Transaction{}
		txnRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Transaction")).
			Run(func(args mock.Arguments) {
				txn := args.Get(1).(*model.Transaction)
				rows[txn.Type] = txn
			}).
			Return(&model.Transaction{ID: 1}, nil).Times(3)
		jobRepo.On("Update", mock.Anything, mock.MatchedBy(func(j *model.Job) bool {
			return j.PaymentReleased && j.Status == model.JobStatusPaid && j.EscrowAmount == 0 && j.PaidAt != nil
		})).Return(nil)
		outbox.On("Append", mock.Anything, mock.MatchedBy(func(ev *model.OutboxEvent) bool {
			return ev.Type == model.NotifyPaymentReceived && ev.RecipientID == 5
		})).Return(nil)
		outbox.On("Append", mock.Anything, mock.MatchedBy(func(ev *model.OutboxEvent) bool {
			return ev.Type == model.NotifyPaymentReleased && ev.RecipientID == 2
		})).Return(nil)

		err := svc.ReleaseFromEscrow(ctx, 10, 2)
		require.NoError(t, err)
		walletRepo.AssertExpectations(t)
		txnRepo.AssertExpectations(t)
		outbox.AssertExpectations(t)

		// Commission audit fields ride on the employer's payment row.
		payment := rows[model.TransactionPayment]
		require.NotNil(t, payment)
		assert.Equal(t, 0.1, payment.CommissionRate)
		assert.Equal(t, 50.0, payment.CommissionAmount)
		earning := rows[model.TransactionEarning]
		require.NotNil(t, earning)
		assert.Equal(t, 450.0, earning.Amount)
		assert.Equal(t, 0.0, earning.CommissionAmount)
	})

	t.Run("no platform wallet keeps commission with employer row", func(t *testing.T) {
		svc, walletRepo, txnRepo, _, jobRepo, outbox := newWalletServiceForTest(0)
		job := baseJob()
		walletRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
		jobRepo.On("GetForUpdate", mock.Anything, int64(10)).Return(job, nil)
		walletRepo.On("GetByUser", mock.Anything, int64(5)).Return(&model.Wallet{UserID: 5}, nil)
		walletRepo.On("DebitEscrow", mock.Anything, int64(2), 500.0).Return(nil)
		walletRepo.On("CreditEarnings", mock.Anything, int64(5), 450.0).Return(nil)
		var commissionRow *model.Transaction
		txnRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Transaction")).
			Run(func(args mock.Arguments) {
				txn := args.Get(1).(*model.Transaction)
				if txn.Type == model.TransactionCommission {
					commissionRow = txn
				}
			}).
			Return(&model.Transaction{ID: 1}, nil).Times(3)
		jobRepo.On("Update", mock.Anything, mock.Anything).Return(nil)
		outbox.On("Append", mock.Anything, mock.Anything).Return(nil).Times(2)

		err := svc.ReleaseFromEscrow(ctx, 10, 2)
		require.NoError(t, err)
		require.NotNil(t, commissionRow)
		assert.Equal(t, int64(2), commissionRow.UserID)
		assert.Equal(t, 50.0, commissionRow.Amount)
		// no Deposit call: the employer self-taxes, money never moves
		walletRepo.AssertNotCalled(t, "Deposit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("second release rejected", func(t *testing.T) {
		svc, walletRepo, _, _, jobRepo, _ := newWalletServiceForTest(0)
		job := baseJob()
		job.PaymentReleased = true
		walletRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
		jobRepo.On("GetForUpdate", mock.Anything, int64(10)).Return(job, nil)

		err := svc.ReleaseFromEscrow(ctx, 10, 2)
		assert.ErrorIs(t, err, ErrAlreadyReleased)
	})

	t.Run("missing student wallet blocks release", func(t *testing.T) {
		svc, walletRepo, _, _, jobRepo, _ := newWalletServiceForTest(0)
		walletRepo.On("WithinTransaction", mock.Anything, mock.Anything).Return(nil)
		jobRepo.On("GetForUpdate", mock.Anything, int64(10)).Return(baseJob(), nil)
		walletRepo.On("GetByUser", mock.Anything, int64(5)).Return(nil, repository.ErrWalletNotFound)

		err := svc.ReleaseFromEscrow(ctx, 10, 2)
		assert.ErrorIs(t, err, ErrStudentWalletNotFound)
	})
}

func TestWalletService_RefundFromEscrow(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing escrowed", func(t *testing.T) {
		svc, _, _, _, _, _ := newWalletServiceForTest(0)
		err := svc.RefundFromEscrow(ctx, &model.Job{ID: 10, EmployerID: 2})
		assert.ErrorIs(t, err, ErrNothingInEscrow)
	})

	t.Run("refund books transaction and zeroes escrow", func(t *testing.T) {
		svc, walletRepo, txnRepo, _, _, _ := newWalletServiceForTest(0)
		job := &model.Job{ID: 10, EmployerID: 2, EscrowAmount: 500.0}
		walletRepo.On("RefundEscrow", mock.Anything, int64(2), 500.0).Return(nil)
		txnRepo.On("Create", mock.Anything, mock.MatchedBy(func(txn *model.Transaction) bool {
			return txn.Type == model.TransactionRefund && txn.Amount == 500.0
		})).Return(&model.Transaction{ID: 1}, nil)

		err := svc.RefundFromEscrow(ctx, job)
		require.NoError(t, err)
		assert.Equal(t, 0.0, job.EscrowAmount)
	})
}
