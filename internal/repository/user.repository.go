package repository

import (
	"context"
	"errors"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
	"github.com/shivanshukushwah/worknest-backend/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email already registered")
	ErrZeroDeltaScore = errors.New("score delta must be non-zero")
)

type UserRepository struct {
	*pg.DB
}

func NewUserRepository(db *pg.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	entity := toUserEntity(user)
	if err := r.Write(ctx).Create(entity).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return toUserModel(entity), nil
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*model.User, error) {
	var entity UserEntity
	err := r.Read(ctx).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return toUserModel(&entity), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var entity UserEntity
	err := r.Read(ctx).First(&entity, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return toUserModel(&entity), nil
}

func (r *UserRepository) SetPhoneVerified(ctx context.Context, id int64, verified bool) error {
	res := r.Write(ctx).Model(&UserEntity{}).
		Where("id = ?", id).
		Update("is_phone_verified", verified)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// AdjustScore applies a reputation delta under a row lock and appends the
// matching score log entry in the same statement sequence. Callers run it
// inside WithinTransaction so the update and the log land atomically.
func (r *UserRepository) AdjustScore(ctx context.Context, userID int64, log *model.ScoreLog) (int, error) {
	if log.Delta == 0 {
		return 0, ErrZeroDeltaScore
	}
	tx := r.Write(ctx)

	var entity UserEntity
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&entity, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrUserNotFound
	}
	if err != nil {
		return 0, err
	}

	newScore := entity.Score + log.Delta
	res := tx.Model(&UserEntity{}).
		Where("id = ? AND score = ?", userID, entity.Score).
		Update("score", newScore)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrConcurrentUpdate
	}

	row := &ScoreLogEntity{
		UserID: userID,
		Event:  string(log.Event),
		Delta:  log.Delta,
		Reason: log.Reason,
		Meta:   log.Meta,
	}
	if err := tx.Create(row).Error; err != nil {
		return 0, err
	}
	return newScore, nil
}

// ScoreLogs returns a user's reputation history, newest first.
func (r *UserRepository) ScoreLogs(ctx context.Context, userID int64, limit int) ([]*model.ScoreLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entities []*ScoreLogEntity
	err := r.Read(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entities).Error
	if err != nil {
		return nil, err
	}
	logs := make([]*model.ScoreLog, len(entities))
	for i, e := range entities {
		logs[i] = toScoreLogModel(e)
	}
	return logs, nil
}

// SumScoreDeltas totals a user's score log. Used to check the ledger
// against the materialized score.
func (r *UserRepository) SumScoreDeltas(ctx context.Context, userID int64) (int, error) {
	var total struct {
		Sum int
	}
	err := r.Read(ctx).Model(&ScoreLogEntity{}).
		Select("COALESCE(SUM(delta), 0) AS sum").
		Where("user_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total.Sum, nil
}
