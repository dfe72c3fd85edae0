package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lumenfall/lumen-server-go/internal/game"
)

// MatchRepository persists finished match outcomes. It implements
// game.MatchRecorder.
type MatchRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewMatchRepository creates a match-history repository.
func NewMatchRepository(pool *pgxpool.Pool, logger *zap.Logger) *MatchRepository {
	return &MatchRepository{pool: pool, logger: logger}
}

// RecordMatch stores one finished match's outcome.
func (r *MatchRepository) RecordMatch(ctx context.Context, result game.MatchResult) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO match_history (session_id, winner_id, loser_id, turns, winner_commander_health, finished_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		result.SessionID, result.WinnerID, result.LoserID, result.Turns, result.WinnerCommanderHealth)
	if err != nil {
		return fmt.Errorf("insert match result: %w", err)
	}

	r.logger.Info("match result recorded",
		zap.String("session_id", result.SessionID),
		zap.String("winner", result.WinnerID),
		zap.Int("turns", result.Turns),
	)
	return nil
}
