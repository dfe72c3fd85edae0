package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lumenfall/lumen-server-go/internal/game"
)

// DeckRepository fetches saved decks from Postgres. It implements
// game.DeckSource.
type DeckRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewDeckRepository creates a deck repository.
func NewDeckRepository(pool *pgxpool.Pool, logger *zap.Logger) *DeckRepository {
	return &DeckRepository{pool: pool, logger: logger}
}

// FetchDeck loads a player's saved 13-card deck. Players without a saved deck
// get game.ErrNoDeck; a saved deck that no longer matches the 1/9/3 shape is
// reported as an error rather than silently repaired.
func (r *DeckRepository) FetchDeck(ctx context.Context, playerID string) (*game.Deck, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.kind, c.health, c.min_damage, c.max_damage,
		       c.light_cost, c.counter_strike, c.speed, c.ability
		FROM player_decks pd
		JOIN cards c ON c.id = pd.card_id
		WHERE pd.player_id = $1
		ORDER BY pd.slot`, playerID)
	if err != nil {
		return nil, fmt.Errorf("query deck: %w", err)
	}
	defer rows.Close()

	deck := &game.Deck{}
	for rows.Next() {
		var card game.Card
		var kind string
		if err := rows.Scan(&card.ID, &card.Name, &kind, &card.Health,
			&card.MinDamage, &card.MaxDamage, &card.LightCost,
			&card.CounterStrike, &card.Speed, &card.Ability); err != nil {
			return nil, fmt.Errorf("scan deck row: %w", err)
		}
		card.Kind = parseCardKind(kind)

		switch card.Kind {
		case game.CardKindCommander:
			deck.Commander = &card
		case game.CardKindCloser:
			deck.Closers = append(deck.Closers, &card)
		default:
			deck.Main = append(deck.Main, &card)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read deck rows: %w", err)
	}

	if deck.Commander == nil && len(deck.Main) == 0 && len(deck.Closers) == 0 {
		return nil, game.ErrNoDeck
	}
	if err := deck.Validate(); err != nil {
		return nil, fmt.Errorf("saved deck for %s is invalid: %w", playerID, err)
	}

	r.logger.Debug("deck fetched", zap.String("player_id", playerID))
	return deck, nil
}

// CardByID loads a single card's reference data.
func (r *DeckRepository) CardByID(ctx context.Context, cardID string) (*game.Card, error) {
	var card game.Card
	var kind string
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, kind, health, min_damage, max_damage,
		       light_cost, counter_strike, speed, ability
		FROM cards WHERE id = $1`, cardID).
		Scan(&card.ID, &card.Name, &kind, &card.Health,
			&card.MinDamage, &card.MaxDamage, &card.LightCost,
			&card.CounterStrike, &card.Speed, &card.Ability)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("card %s not found", cardID)
		}
		return nil, fmt.Errorf("query card: %w", err)
	}
	card.Kind = parseCardKind(kind)
	return &card, nil
}

func parseCardKind(kind string) game.CardKind {
	switch kind {
	case "COMMANDER":
		return game.CardKindCommander
	case "CLOSER":
		return game.CardKindCloser
	default:
		return game.CardKindUnit
	}
}
