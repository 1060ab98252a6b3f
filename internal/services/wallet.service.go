package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/internal/repository"
)

var (
	ErrInvalidAmount          = errors.New("amount must be at least 0.01")
	ErrPhoneNotVerified       = errors.New("phone verification required before wallet creation")
	ErrEmployerWalletNotFound = errors.New("employer wallet not found")
	ErrStudentWalletNotFound  = errors.New("student wallet not found")
	ErrNothingInEscrow        = errors.New("no funds held in escrow for this job")
	ErrAlreadyReleased        = errors.New("payment already released")
)

type WalletRepository interface {
	Create(ctx context.Context, userID int64) (*model.Wallet, error)
	GetByUser(ctx context.Context, userID int64) (*model.Wallet, error)
	Deposit(ctx context.Context, userID int64, amount float64) error
	Withdraw(ctx context.Context, userID int64, amount float64) error
	MoveToEscrow(ctx context.Context, userID int64, amount float64) error
	DebitEscrow(ctx context.Context, userID int64, amount float64) error
	CreditEarnings(ctx context.Context, userID int64, amount float64) error
	RefundEscrow(ctx context.Context, userID int64, amount float64) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	List(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error)
}

type WalletUserRepository interface {
	Get(ctx context.Context, id int64) (*model.User, error)
}

// PaymentJobRepository is the slice of the job repository the ledger
// needs to keep job payment state in step with the money movement.
type PaymentJobRepository interface {
	GetForUpdate(ctx context.Context, id int64) (*model.Job, error)
	Update(ctx context.Context, job *model.Job) error
}

type OutboxAppender interface {
	Append(ctx context.Context, event *model.OutboxEvent) error
}

// WalletService is the escrow ledger. Every operation validates, moves
// money and records its audit transaction inside one database
// transaction; notifications ride along as outbox rows.
type WalletService struct {
	walletRepo WalletRepository
	txnRepo    TransactionRepository
	userRepo   WalletUserRepository
	jobRepo    PaymentJobRepository
	outbox     OutboxAppender

	commissionRate float64
	platformUserID int64
}

func NewWalletService(
	walletRepo WalletRepository,
	txnRepo TransactionRepository,
	userRepo WalletUserRepository,
	jobRepo PaymentJobRepository,
	outbox OutboxAppender,
	commissionRate float64,
	platformUserID int64,
) *WalletService {
	return &WalletService{
		walletRepo:     walletRepo,
		txnRepo:        txnRepo,
		userRepo:       userRepo,
		jobRepo:        jobRepo,
		outbox:         outbox,
		commissionRate: commissionRate,
		platformUserID: platformUserID,
	}
}

// CreateWallet opens a wallet for a phone-verified user. Calling it for
// a user who already has one returns the existing wallet.
func (s *WalletService) CreateWallet(ctx context.Context, userID int64) (*model.Wallet, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(user.Phone) == "" || !user.IsPhoneVerified {
		return nil, ErrPhoneNotVerified
	}

	wallet, err := s.walletRepo.Create(ctx, userID)
	if errors.Is(err, repository.ErrWalletExists) {
		return s.walletRepo.GetByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return wallet, nil
}

func (s *WalletService) GetWallet(ctx context.Context, userID int64) (*model.Wallet, error) {
	return s.walletRepo.GetByUser(ctx, userID)
}

func (s *WalletService) ListTransactions(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int64, error) {
	return s.txnRepo.List(ctx, f)
}

// AddFunds credits a wallet and books a completed deposit.
func (s *WalletService) AddFunds(ctx context.Context, userID int64, amount float64, description string) (*model.Transaction, error) {
	amount = model.Round2(amount)
	if !model.ValidAmount(amount) {
		return nil, ErrInvalidAmount
	}

	var txn *model.Transaction
	err := s.walletRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.walletRepo.Deposit(ctx, userID, amount); err != nil {
			return err
		}
		now := time.Now().UTC()
		created, err := s.txnRepo.Create(ctx, &model.Transaction{
			UserID:      userID,
			Type:        model.TransactionDeposit,
			Amount:      amount,
			Status:      model.TransactionCompleted,
			Description: description,
			InitiatedAt: now,
			CompletedAt: &now,
		})
		if err != nil {
			return err
		}
		txn = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// RequestWithdrawal debits the wallet immediately and books a pending
// withdrawal for the payout boundary to settle.
func (s *WalletService) RequestWithdrawal(ctx context.Context, userID int64, amount float64, description string) (*model.Transaction, error) {
	amount = model.Round2(amount)
	if !model.ValidAmount(amount) {
		return nil, ErrInvalidAmount
	}

	var txn *model.Transaction
	err := s.walletRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.walletRepo.Withdraw(ctx, userID, amount); err != nil {
			return err
		}
		created, err := s.txnRepo.Create(ctx, &model.Transaction{
			UserID:      userID,
			Type:        model.TransactionWithdrawal,
			Amount:      amount,
			Status:      model.TransactionPending,
			Description: description,
			InitiatedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		txn = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// FundEscrow moves the job budget from the employer's balance into
// escrow and stamps the job. The job row is locked for the duration so
// a double submit cannot fund twice.
func (s *WalletService) FundEscrow(ctx context.Context, jobID, employerID int64) (*model.Transaction, error) {
	var txn *model.Transaction
	err := s.walletRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		job, err := s.jobRepo.GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if job.EmployerID != employerID {
			return ErrNotAuthorized
		}
		if len(job.AssignedStudents) == 0 {
			return ErrNoAssignedStudent
		}
		if job.EscrowAmount > 0 {
			return ErrEscrowAlreadyFunded
		}

		amount := model.Round2(job.Budget)
		if !model.ValidAmount(amount) {
			return ErrInvalidAmount
		}
		if err := s.walletRepo.MoveToEscrow(ctx, employerID, amount); err != nil {
			if errors.Is(err, repository.ErrWalletNotFound) {
				return ErrEmployerWalletNotFound
			}
			return err
		}

		now := time.Now().UTC()
		created, err := s.txnRepo.Create(ctx, &model.Transaction{
			UserID:      employerID,
			Type:        model.TransactionPayment,
			Amount:      amount,
			Status:      model.TransactionCompleted,
			Description: fmt.Sprintf("Escrow funded for job #%d", jobID),
			JobID:       &job.ID,
			InitiatedAt: now,
			CompletedAt: &now,
		})
		if err != nil {
			return err
		}
		txn = created

		job.EscrowAmount = amount
		return s.jobRepo.Update(ctx, job)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// ReleaseFromEscrow settles a job: the escrowed amount leaves the
// employer, the payout lands with the student and the commission with
// the platform wallet. When no platform user is configured the
// commission row is booked against the employer's own wallet.
func (s *WalletService) ReleaseFromEscrow(ctx context.Context, jobID, employerID int64) error {
	return s.walletRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		job, err := s.jobRepo.GetForUpdate(ctx, jobID)
		if err != nil {
			return err
		}
		if job.EmployerID != employerID {
			return ErrNotAuthorized
		}
		if job.PaymentReleased {
			return ErrAlreadyReleased
		}
		if job.EscrowAmount <= 0 {
			return ErrNothingInEscrow
		}
		if len(job.AssignedStudents) == 0 {
			return ErrNoAssignedStudent
		}
		studentID := job.AssignedStudents[0]

		amount := model.Round2(job.EscrowAmount)
		commission := model.Round2(amount * s.commissionRate)
		payout := model.Round2(amount - commission)

		if _, err := s.walletRepo.GetByUser(ctx, studentID); err != nil {
			if errors.Is(err, repository.ErrWalletNotFound) {
				return ErrStudentWalletNotFound
			}
			return err
		}

		if err := s.walletRepo.DebitEscrow(ctx, employerID, amount); err != nil {
			if errors.Is(err, repository.ErrWalletNotFound) {
				return ErrEmployerWalletNotFound
			}
			return err
		}
		if err := s.walletRepo.CreditEarnings(ctx, studentID, payout); err != nil {
			return err
		}

		commissionUserID := s.platformUserID
		if commissionUserID == 0 {
			commissionUserID = employerID
		}
		if commission > 0 && s.platformUserID != 0 {
			if err := s.walletRepo.Deposit(ctx, s.platformUserID, commission); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		rows := []*model.Transaction{
			{
				UserID:           employerID,
				Type:             model.TransactionPayment,
				Amount:           amount,
				Status:           model.TransactionCompleted,
				Description:      fmt.Sprintf("Payment released for job #%d", jobID),
				JobID:            &job.ID,
				RelatedUserID:    &studentID,
				CommissionRate:   s.commissionRate,
				CommissionAmount: commission,
			},
			{
				UserID:        studentID,
				Type:          model.TransactionEarning,
				Amount:        payout,
				Status:        model.TransactionCompleted,
				Description:   fmt.Sprintf("Earnings for job #%d", jobID),
				JobID:         &job.ID,
				RelatedUserID: &employerID,
			},
			{
				UserID:      commissionUserID,
				Type:        model.TransactionCommission,
				Amount:      commission,
				Status:      model.TransactionCompleted,
				Description: fmt.Sprintf("Platform commission for job #%d", jobID),
				JobID:       &job.ID,
			},
		}
		for _, row := range rows {
			row.InitiatedAt = now
			row.CompletedAt = &now
			if _, err := s.txnRepo.Create(ctx, row); err != nil {
				return err
			}
		}

		job.PaymentReleased = true
		job.Status = model.JobStatusPaid
		job.EscrowAmount = 0
		job.PaidAt = &now
		if err := s.jobRepo.Update(ctx, job); err != nil {
			return err
		}

		if err := s.outbox.Append(ctx, &model.OutboxEvent{
			Type:        model.NotifyPaymentReceived,
			RecipientID: studentID,
			SenderID:    employerID,
			JobID:       &job.ID,
			Title:       "Payment received",
			Message:     fmt.Sprintf("You received %.2f for \"%s\"", payout, job.Title),
		}); err != nil {
			return err
		}
		return s.outbox.Append(ctx, &model.OutboxEvent{
			Type:        model.NotifyPaymentReleased,
			RecipientID: employerID,
			JobID:       &job.ID,
			Title:       "Payment released",
			Message:     fmt.Sprintf("Payment for \"%s\" was released", job.Title),
		})
	})
}

// RefundFromEscrow returns escrowed funds to the employer when a job is
// cancelled before release. Callers already hold the job row lock.
func (s *WalletService) RefundFromEscrow(ctx context.Context, job *model.Job) error {
	amount := model.Round2(job.EscrowAmount)
	if !model.ValidAmount(amount) {
		return ErrNothingInEscrow
	}
	if err := s.walletRepo.RefundEscrow(ctx, job.EmployerID, amount); err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return ErrEmployerWalletNotFound
		}
		return err
	}
	now := time.Now().UTC()
	_, err := s.txnRepo.Create(ctx, &model.Transaction{
		UserID:      job.EmployerID,
		Type:        model.TransactionRefund,
		Amount:      amount,
		Status:      model.TransactionCompleted,
		Description: fmt.Sprintf("Escrow refund for job #%d", job.ID),
		JobID:       &job.ID,
		InitiatedAt: now,
		CompletedAt: &now,
	})
	if err != nil {
		return err
	}
	job.EscrowAmount = 0
	return nil
}
