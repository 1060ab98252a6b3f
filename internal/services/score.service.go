package services

import (
	"context"
	"encoding/json"

	"github.com/shivanshukushwah/worknest-backend/internal/model"
)

// ScoreRepository is the slice of the user repository the scoring ledger
// needs.
type ScoreRepository interface {
	Get(ctx context.Context, id int64) (*model.User, error)
	AdjustScore(ctx context.Context, userID int64, log *model.ScoreLog) (int, error)
	ScoreLogs(ctx context.Context, userID int64, limit int) ([]*model.ScoreLog, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ScoreService owns reputation adjustments. Every delta goes through the
// append-only score log so a user's score can always be reconstructed
// from their history.
type ScoreService struct {
	userRepo ScoreRepository
}

func NewScoreService(userRepo ScoreRepository) *ScoreService {
	return &ScoreService{userRepo: userRepo}
}

// Award applies a named score event. Meta is marshalled into the log row
// for audit; a marshal failure drops the meta, never the adjustment.
func (s *ScoreService) Award(ctx context.Context, userID int64, event model.ScoreEvent, delta int, reason string, meta map[string]interface{}) (int, error) {
	log := &model.ScoreLog{
		UserID: userID,
		Event:  event,
		Delta:  delta,
		Reason: reason,
	}
	if meta != nil {
		if raw, err := json.Marshal(meta); err == nil {
			log.Meta = string(raw)
		}
	}

	var newScore int
	err := s.userRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		newScore, err = s.userRepo.AdjustScore(ctx, userID, log)
		return err
	})
	if err != nil {
		return 0, err
	}
	return newScore, nil
}

func (s *ScoreService) History(ctx context.Context, userID int64, limit int) ([]*model.ScoreLog, error) {
	return s.userRepo.ScoreLogs(ctx, userID, limit)
}
