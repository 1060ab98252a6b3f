package repository

import (
	"context"
	"testing"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStudent(email string) *model.User {
	return &model.User{
		Name:  "Asha",
		Email: email,
		Role:  model.RoleStudent,
		Score: model.RoleStudent.InitialScore(),
		Student: &model.StudentProfile{
			Institution: "COEP",
			City:        "Pune",
		},
	}
}

func TestUserRepository_Create(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("student starts at the initial score", func(t *testing.T) {
		user, err := repo.Create(ctx, newTestStudent("asha@example.com"))
		require.NoError(t, err)
		assert.Equal(t, 35, user.Score)
		require.NotNil(t, user.Student)
		assert.Equal(t, "COEP", user.Student.Institution)
	})

	t.Run("employer starts at zero", func(t *testing.T) {
		user, err := repo.Create(ctx, &model.User{
			Name:  "Ravi",
			Email: "ravi@example.com",
			Role:  model.RoleEmployer,
			Score: model.RoleEmployer.InitialScore(),
			Employer: &model.EmployerProfile{
				BusinessName: "Ravi Traders",
			},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, user.Score)
		require.NotNil(t, user.Employer)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, newTestStudent("asha@example.com"))
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestUserRepository_AdjustScore(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.Create(ctx, newTestStudent("asha@example.com"))
	require.NoError(t, err)

	t.Run("applies delta and appends the log", func(t *testing.T) {
		newScore, err := repo.AdjustScore(ctx, user.ID, &model.ScoreLog{
			Event: model.ScoreEventJobCompleted,
			Delta: model.ScoreDeltaJobCompleted,
		})
		require.NoError(t, err)
		assert.Equal(t, 43, newScore)

		logs, err := repo.ScoreLogs(ctx, user.ID, 10)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, model.ScoreEventJobCompleted, logs[0].Event)
		assert.Equal(t, 8, logs[0].Delta)
	})

	t.Run("negative deltas can push below zero", func(t *testing.T) {
		newScore, err := repo.AdjustScore(ctx, user.ID, &model.ScoreLog{
			Event: model.ScoreEventNoShowFakeApply,
			Delta: model.ScoreDeltaNoShowFakeApply,
		})
		require.NoError(t, err)
		assert.Equal(t, 23, newScore)

		newScore, err = repo.AdjustScore(ctx, user.ID, &model.ScoreLog{
			Event: model.ScoreEventNoShowFakeApply,
			Delta: model.ScoreDeltaNoShowFakeApply,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, newScore)

		newScore, err = repo.AdjustScore(ctx, user.ID, &model.ScoreLog{
			Event: model.ScoreEventNoShowFakeApply,
			Delta: model.ScoreDeltaNoShowFakeApply,
		})
		require.NoError(t, err)
		assert.Equal(t, -17, newScore)
	})

	t.Run("score equals initial plus log sum", func(t *testing.T) {
		got, err := repo.Get(ctx, user.ID)
		require.NoError(t, err)

		sum, err := repo.SumScoreDeltas(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RoleStudent.InitialScore()+sum, got.Score)
	})

	t.Run("zero delta rejected", func(t *testing.T) {
		_, err := repo.AdjustScore(ctx, user.ID, &model.ScoreLog{
			Event: model.ScoreEventJobCompleted,
			Delta: 0,
		})
		assert.ErrorIs(t, err, ErrZeroDeltaScore)
	})

	t.Run("user not found", func(t *testing.T) {
		_, err := repo.AdjustScore(ctx, 9999, &model.ScoreLog{
			Event: model.ScoreEventJobCompleted,
			Delta: 8,
		})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserRepository_SetPhoneVerified(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewUserRepository(db)
	ctx := context.Background()

	user, err := repo.Create(ctx, newTestStudent("asha@example.com"))
	require.NoError(t, err)
	assert.False(t, user.IsPhoneVerified)

	require.NoError(t, repo.SetPhoneVerified(ctx, user.ID, true))

	got, err := repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPhoneVerified)

	err = repo.SetPhoneVerified(ctx, 9999, true)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
