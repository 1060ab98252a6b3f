package repository

import (
	"context"
	"testing"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletRepository_Deposit(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewWalletRepository(db)
	ctx := context.Background()

	t.Run("successful deposit", func(t *testing.T) {
		_, err := repo.Create(ctx, 1)
		require.NoError(t, err)

		err = repo.Deposit(ctx, 1, 500.50)
		assert.NoError(t, err)

		wallet, err := repo.GetByUser(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 500.50, wallet.Balance)
	})

	t.Run("deposits accumulate with cent rounding", func(t *testing.T) {
		_, err := repo.Create(ctx, 2)
		require.NoError(t, err)

		err = repo.Deposit(ctx, 2, 0.1)
		require.NoError(t, err)
		err = repo.Deposit(ctx, 2, 0.2)
		require.NoError(t, err)

		wallet, err := repo.GetByUser(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 0.3, wallet.Balance)
	})

	t.Run("wallet not found", func(t *testing.T) {
		err := repo.Deposit(ctx, 999, 100)
		assert.ErrorIs(t, err, ErrWalletNotFound)
	})

	t.Run("inactive wallet rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, 3)
		require.NoError(t, err)

		// Column write; the entity default would flip the zero value back on.
		err = db.Write(ctx).Model(&WalletEntity{}).
			Where("user_id = ?", int64(3)).
			Update("is_active", false).Error
		require.NoError(t, err)

		err = repo.Deposit(ctx, 3, 50)
		assert.ErrorIs(t, err, ErrInactiveWallet)
	})
}

func TestWalletRepository_Withdraw(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewWalletRepository(db)
	ctx := context.Background()

	t.Run("successful withdrawal tracks total spent", func(t *testing.T) {
		_, err := repo.Create(ctx, 1)
		require.NoError(t, err)
		require.NoError(t, repo.Deposit(ctx, 1, 1000))

		err = repo.Withdraw(ctx, 1, 300)
		assert.NoError(t, err)

		wallet, err := repo.GetByUser(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 700.0, wallet.Balance)
		assert.Equal(t, 300.0, wallet.TotalSpent)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		_, err := repo.Create(ctx, 2)
		require.NoError(t, err)
		require.NoError(t, repo.Deposit(ctx, 2, 100))

		err = repo.Withdraw(ctx, 2, 200)
		assert.ErrorIs(t, err, ErrInsufficientBalance)

		wallet, err := repo.GetByUser(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 100.0, wallet.Balance)
	})

	t.Run("exact balance withdrawal", func(t *testing.T) {
		_, err := repo.Create(ctx, 3)
		require.NoError(t, err)
		require.NoError(t, repo.Deposit(ctx, 3, 250))

		err = repo.Withdraw(ctx, 3, 250)
		assert.NoError(t, err)

		wallet, err := repo.GetByUser(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, 0.0, wallet.Balance)
	})
}

func TestWalletRepository_Escrow(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewWalletRepository(db)
	ctx := context.Background()

	t.Run("move to escrow conserves the total", func(t *testing.T) {
		_, err := repo.Create(ctx, 1)
		require.NoError(t, err)
		require.NoError(t, repo.Deposit(ctx, 1, 1000))

		err = repo.MoveToEscrow(ctx, 1, 400)
		assert.NoError(t, err)

		wallet, err := repo.GetByUser(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 600.0, wallet.Balance)
		assert.Equal(t, 400.0, wallet.EscrowBalance)
		assert.Equal(t, 1000.0, wallet.Balance+wallet.EscrowBalance)
	})

	t.Run("escrow cannot exceed balance", func(t *testing.T) {
		_, err := repo.Create(ctx, 2)
		require.NoError(t, err)
		require.NoError(t, repo.Deposit(ctx, 2, 100))

		err = repo.MoveToEscrow(ctx, 2, 150)
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("debit empties escrow", func(t *testing.T) {
		_, err := repo.Create(ctx, 3)
		require.NoError(t, err)
		require.NoError(t, repo.Deposit(ctx, 3, 500))
		require.NoError(t, repo.MoveToEscrow(ctx, 3, 500))

		err = repo.DebitEscrow(ctx, 3, 500)
		assert.NoError(t, err)

		wallet, err := repo.GetByUser(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, 0.0, wallet.EscrowBalance)
		assert.Equal(t, 0.0, wallet.Balance)
		// Spend tracking belongs to withdrawals, not escrow debits.
		assert.Equal(t, 0.0, wallet.TotalSpent)
	})

	t.Run("debit exceeding escrow rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, 4)
		require.NoError(t, err)
		require.NoError(t, repo.Deposit(ctx, 4, 500))
		require.NoError(t, repo.MoveToEscrow(ctx, 4, 200))

		err = repo.DebitEscrow(ctx, 4, 300)
		assert.ErrorIs(t, err, ErrInsufficientEscrow)
	})

	t.Run("refund returns escrow to balance", func(t *testing.T) {
		_, err := repo.Create(ctx, 5)
		require.NoError(t, err)
		require.NoError(t, repo.Deposit(ctx, 5, 300))
		require.NoError(t, repo.MoveToEscrow(ctx, 5, 300))

		err = repo.RefundEscrow(ctx, 5, 300)
		assert.NoError(t, err)

		wallet, err := repo.GetByUser(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, 300.0, wallet.Balance)
		assert.Equal(t, 0.0, wallet.EscrowBalance)
		assert.Equal(t, 0.0, wallet.TotalSpent)
	})
}

func TestWalletRepository_CreditEarnings(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewWalletRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1)
	require.NoError(t, err)

	err = repo.CreditEarnings(ctx, 1, 237.50)
	assert.NoError(t, err)
	err = repo.CreditEarnings(ctx, 1, 12.50)
	assert.NoError(t, err)

	wallet, err := repo.GetByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 250.0, wallet.Balance)
	assert.Equal(t, 250.0, wallet.TotalEarnings)
}

func TestWalletRepository_Create(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewWalletRepository(db)
	ctx := context.Background()

	t.Run("new wallet starts empty and active", func(t *testing.T) {
		wallet, err := repo.Create(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), wallet.UserID)
		assert.Equal(t, 0.0, wallet.Balance)
		assert.True(t, wallet.IsActive)
	})

	t.Run("one wallet per user", func(t *testing.T) {
		_, err := repo.Create(ctx, 2)
		require.NoError(t, err)

		_, err = repo.Create(ctx, 2)
		assert.ErrorIs(t, err, ErrWalletExists)
	})
}

func TestWalletRepository_WithinTransaction(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewWalletRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, repo.Deposit(ctx, 1, 1000))

	t.Run("rollback undoes both legs", func(t *testing.T) {
		err := db.WithinTransaction(ctx, func(txCtx context.Context) error {
			if err := repo.Withdraw(txCtx, 1, 400); err != nil {
				return err
			}
			if err := repo.CreditEarnings(txCtx, 2, 400); err != nil {
				return err
			}
			return assert.AnError
		})
		assert.Error(t, err)

		w1, err := repo.GetByUser(ctx, 1)
		require.NoError(t, err)
		w2, err := repo.GetByUser(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 1000.0, w1.Balance)
		assert.Equal(t, 0.0, w2.Balance)
	})

	t.Run("commit lands both legs", func(t *testing.T) {
		err := db.WithinTransaction(ctx, func(txCtx context.Context) error {
			if err := repo.Withdraw(txCtx, 1, 400); err != nil {
				return err
			}
			return repo.CreditEarnings(txCtx, 2, 400)
		})
		assert.NoError(t, err)

		w1, err := repo.GetByUser(ctx, 1)
		require.NoError(t, err)
		w2, err := repo.GetByUser(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 600.0, w1.Balance)
		assert.Equal(t, 400.0, w2.Balance)
	})
}

func TestWalletRepository_AmountValidation(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewWalletRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, 1)
	require.NoError(t, err)

	assert.False(t, model.ValidAmount(0))
	assert.False(t, model.ValidAmount(0.001))
	assert.True(t, model.ValidAmount(model.MinAmount))

	// Repo trusts validated inputs; zero deposit is a no-op.
	err = repo.Deposit(ctx, 1, 0)
	assert.NoError(t, err)

	wallet, err := repo.GetByUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, wallet.Balance)
}
