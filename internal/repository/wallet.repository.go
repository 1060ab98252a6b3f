package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletExists        = errors.New("wallet already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientEscrow  = errors.New("insufficient escrow balance")
	ErrInactiveWallet      = errors.New("wallet is not active")
	ErrConcurrentUpdate    = errors.New("concurrent update detected")
	ErrMaxRetriesExceeded  = errors.New("max retries exceeded")
)

const walletMaxRetries = 3
const walletRetryBaseDelay = 2 * time.Millisecond

type WalletRepository struct {
	*pg.DB
}

func NewWalletRepository(db *pg.DB) *WalletRepository {
	return &WalletRepository{
		db,
	}
}

func (r *WalletRepository) Create(ctx context.Context, userID int64) (*model.Wallet, error) {
	entity := &WalletEntity{UserID: userID, IsActive: true}
	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrWalletExists
		}
		return nil, err
	}
	return toWalletModel(entity), nil
}

func (r *WalletRepository) GetByUser(ctx context.Context, userID int64) (*model.Wallet, error) {
	var entity WalletEntity
	err := r.Read(ctx).WithContext(ctx).
		Where("user_id = ?", userID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return toWalletModel(&entity), nil
}

// lockByUser acquires a row lock on the user's wallet. Must run inside a
// transaction; callers go through WithinTransaction.
func (r *WalletRepository) lockByUser(ctx context.Context, userID int64) (*WalletEntity, error) {
	var entity WalletEntity
	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	if !entity.IsActive {
		return nil, ErrInactiveWallet
	}
	return &entity, nil
}

// mutate locks the wallet, lets fn adjust the balances, and writes the
// result back. Balances pass through Round2 so drift cannot accumulate.
func (r *WalletRepository) mutate(ctx context.Context, userID int64, fn func(e *WalletEntity) error) error {
	entity, err := r.lockByUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := fn(entity); err != nil {
		return err
	}

	entity.Balance = model.Round2(entity.Balance)
	entity.EscrowBalance = model.Round2(entity.EscrowBalance)
	entity.TotalEarnings = model.Round2(entity.TotalEarnings)
	entity.TotalSpent = model.Round2(entity.TotalSpent)

	result := r.Write(ctx).WithContext(ctx).
		Model(&WalletEntity{}).
		Where("id = ?", entity.ID).
		Updates(map[string]interface{}{
			"balance":        entity.Balance,
			"escrow_balance": entity.EscrowBalance,
			"total_earnings": entity.TotalEarnings,
			"total_spent":    entity.TotalSpent,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}

// withRetry runs op with bounded exponential backoff. Permanent business
// errors are returned as-is; only transient failures retry.
func (r *WalletRepository) withRetry(ctx context.Context, op func() error) error {
	for attempt := 0; attempt <= walletMaxRetries; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		if errors.Is(err, ErrWalletNotFound) ||
			errors.Is(err, ErrInsufficientBalance) ||
			errors.Is(err, ErrInsufficientEscrow) ||
			errors.Is(err, ErrInactiveWallet) {
			return err
		}

		if attempt < walletMaxRetries {
			delay := walletRetryBaseDelay * time.Duration(1<<attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
	}
	return fmt.Errorf("%w: failed after %d attempts", ErrMaxRetriesExceeded, walletMaxRetries+1)
}

// Deposit credits the spendable balance.
func (r *WalletRepository) Deposit(ctx context.Context, userID int64, amount float64) error {
	return r.withRetry(ctx, func() error {
		return r.mutate(ctx, userID, func(e *WalletEntity) error {
			e.Balance += amount
			return nil
		})
	})
}

// Withdraw debits the spendable balance and books the amount as spent.
func (r *WalletRepository) Withdraw(ctx context.Context, userID int64, amount float64) error {
	return r.withRetry(ctx, func() error {
		return r.mutate(ctx, userID, func(e *WalletEntity) error {
			if e.Balance < amount {
				return ErrInsufficientBalance
			}
			e.Balance -= amount
			e.TotalSpent += amount
			return nil
		})
	})
}

// MoveToEscrow shifts funds from the spendable balance into escrow.
func (r *WalletRepository) MoveToEscrow(ctx context.Context, userID int64, amount float64) error {
	return r.withRetry(ctx, func() error {
		return r.mutate(ctx, userID, func(e *WalletEntity) error {
			if e.Balance < amount {
				return ErrInsufficientBalance
			}
			e.Balance -= amount
			e.EscrowBalance += amount
			return nil
		})
	})
}

// DebitEscrow removes held funds, e.g. when a payment is released.
func (r *WalletRepository) DebitEscrow(ctx context.Context, userID int64, amount float64) error {
	return r.withRetry(ctx, func() error {
		return r.mutate(ctx, userID, func(e *WalletEntity) error {
			if e.EscrowBalance < amount {
				return ErrInsufficientEscrow
			}
			e.EscrowBalance -= amount
			return nil
		})
	})
}

// CreditEarnings credits a payout to the spendable balance and lifetime
// earnings.
func (r *WalletRepository) CreditEarnings(ctx context.Context, userID int64, amount float64) error {
	return r.withRetry(ctx, func() error {
		return r.mutate(ctx, userID, func(e *WalletEntity) error {
			e.Balance += amount
			e.TotalEarnings += amount
			return nil
		})
	})
}

// RefundEscrow moves held funds back to the spendable balance.
func (r *WalletRepository) RefundEscrow(ctx context.Context, userID int64, amount float64) error {
	return r.withRetry(ctx, func() error {
		return r.mutate(ctx, userID, func(e *WalletEntity) error {
			if e.EscrowBalance < amount {
				return ErrInsufficientEscrow
			}
			e.EscrowBalance -= amount
			e.Balance += amount
			return nil
		})
	})
}
