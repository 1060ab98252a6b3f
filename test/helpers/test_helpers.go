package helpers

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/internal/repository"
	"github.com/shivanshukushwah/worknest-backend/pkg/pg"
	"github.com/shivanshukushwah/worknest-backend/pkg/redis"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.UserEntity{},
		&repository.ScoreLogEntity{},
		&repository.WalletEntity{},
		&repository.TransactionEntity{},
		&repository.JobEntity{},
		&repository.JobAssigneeEntity{},
		&repository.ApplicationEntity{},
		&repository.OutboxEventEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	adapter, err := redis.NewRedisAdapter("test", "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func CreateTestUser(t *testing.T, db *pg.DB, user model.User) *model.User {
	ctx := context.Background()
	repo := repository.NewUserRepository(db)
	created, err := repo.Create(ctx, &user)
	require.NoError(t, err)
	return created
}

func CreateTestWallet(t *testing.T, db *pg.DB, userID int64, balance float64) *model.Wallet {
	ctx := context.Background()
	repo := repository.NewWalletRepository(db)
	wallet, err := repo.Create(ctx, userID)
	require.NoError(t, err)
	if balance > 0 {
		require.NoError(t, repo.Deposit(ctx, userID, balance))
		wallet, err = repo.GetByUser(ctx, userID)
		require.NoError(t, err)
	}
	return wallet
}

// ExpireShortlistWindow ends the job's application window right now, so
// applications already on file stay inside the cutoff and the next
// scheduler pass picks the job up.
func ExpireShortlistWindow(t *testing.T, db *pg.DB, jobID int64) {
	ctx := context.Background()
	endsAt := time.Now().UTC()
	err := db.Write(ctx).
		Model(&repository.JobEntity{}).
		Where("id = ?", jobID).
		Update("shortlist_window_ends_at", endsAt).Error
	require.NoError(t, err)
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func Ptr[T any](v T) *T {
	return &v
}
