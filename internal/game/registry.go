package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrNoDeck indicates a player has no saved deck to battle with.
var ErrNoDeck = errors.New("no deck configured")

// ErrPlayerInGame indicates a player is already registered in an active match.
var ErrPlayerInGame = errors.New("player already in a game")

// DeckSource fetches a player's saved deck. Implemented by the repository
// layer; the engine never talks to storage directly.
type DeckSource interface {
	FetchDeck(ctx context.Context, playerID string) (*Deck, error)
}

// MatchResult is the outcome handed to external match-history storage.
type MatchResult struct {
	SessionID             string
	WinnerID              string
	LoserID               string
	Turns                 int
	WinnerCommanderHealth int
}

// MatchRecorder accepts a finished match's outcome for storage.
type MatchRecorder interface {
	RecordMatch(ctx context.Context, result MatchResult) error
}

// Registry is the process-wide store of active matches. It is the single
// source of truth for "is player X currently battling" and enforces one
// active match per player across all entry points.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*GameSession // session id -> session
	byPlayer map[string]string       // player id -> session id

	decks   DeckSource
	matches MatchRecorder
	engine  *Engine
	logger  *zap.Logger
}

// NewRegistry creates a session registry wired to its collaborators.
func NewRegistry(decks DeckSource, matches MatchRecorder, engine *Engine, logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*GameSession),
		byPlayer: make(map[string]string),
		decks:    decks,
		matches:  matches,
		engine:   engine,
		logger:   logger,
	}
}

// StartGame fetches both players' decks, creates a session with the opening
// Preparation already run, and registers both players. It fails when either
// player is already battling or has no usable deck.
func (r *Registry) StartGame(ctx context.Context, p1, p2 PlayerRef) (*GameSession, error) {
	if p1.ID == p2.ID {
		return nil, fmt.Errorf("a player cannot battle themselves")
	}

	r.mu.RLock()
	_, p1Busy := r.byPlayer[p1.ID]
	_, p2Busy := r.byPlayer[p2.ID]
	r.mu.RUnlock()
	if p1Busy || p2Busy {
		return nil, ErrPlayerInGame
	}

	deck1, err := r.fetchDeck(ctx, p1.ID)
	if err != nil {
		return nil, err
	}
	deck2, err := r.fetchDeck(ctx, p2.ID)
	if err != nil {
		return nil, err
	}

	session := r.engine.NewSession(p1, deck1, p2, deck2)

	r.mu.Lock()
	// Re-check under the write lock; a concurrent StartGame may have
	// claimed either player while decks were being fetched.
	if _, busy := r.byPlayer[p1.ID]; busy {
		r.mu.Unlock()
		return nil, ErrPlayerInGame
	}
	if _, busy := r.byPlayer[p2.ID]; busy {
		r.mu.Unlock()
		return nil, ErrPlayerInGame
	}
	r.sessions[session.ID] = session
	r.byPlayer[p1.ID] = session.ID
	r.byPlayer[p2.ID] = session.ID
	r.mu.Unlock()

	r.engine.BeginRecording(session)

	r.logger.Info("match registered",
		zap.String("session_id", session.ID),
		zap.String("player1", p1.ID),
		zap.String("player2", p2.ID),
	)
	return session, nil
}

func (r *Registry) fetchDeck(ctx context.Context, playerID string) (*Deck, error) {
	deck, err := r.decks.FetchDeck(ctx, playerID)
	if err != nil {
		if errors.Is(err, ErrNoDeck) {
			return nil, fmt.Errorf("player %s: %w", playerID, ErrNoDeck)
		}
		return nil, fmt.Errorf("fetch deck for %s: %w", playerID, err)
	}
	if err := deck.Validate(); err != nil {
		return nil, fmt.Errorf("player %s deck: %w", playerID, err)
	}
	return deck, nil
}

// GetGameForPlayer returns the session a player is currently battling in.
func (r *Registry) GetGameForPlayer(playerID string) (*GameSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionID, ok := r.byPlayer[playerID]
	if !ok {
		return nil, false
	}
	session, ok := r.sessions[sessionID]
	return session, ok
}

// IsPlayerInGame reports whether a player is registered in an active match.
func (r *Registry) IsPlayerInGame(playerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byPlayer[playerID]
	return ok
}

// Forfeit marks the caller's match as lost by them. The session stays
// registered so the final state can be rendered once more; callers follow up
// with EndGame.
func (r *Registry) Forfeit(playerID string) (*GameSession, bool) {
	session, ok := r.GetGameForPlayer(playerID)
	if !ok {
		return nil, false
	}

	session.mu.Lock()
	if !session.Finished {
		player, _ := session.PlayerByID(playerID)
		session.finish(session.Opponent(player))
		session.logf("%s forfeits; %s wins the match", player.Name, session.Winner.Name)
	}
	session.mu.Unlock()

	r.logger.Info("match forfeited",
		zap.String("session_id", session.ID),
		zap.String("player", playerID),
	)
	return session, true
}

// EndGame removes a match from the registry and, when it finished with a
// winner, reports the outcome to match-history storage.
func (r *Registry) EndGame(ctx context.Context, session *GameSession) {
	r.mu.Lock()
	delete(r.sessions, session.ID)
	delete(r.byPlayer, session.Player1.ID)
	delete(r.byPlayer, session.Player2.ID)
	r.mu.Unlock()

	session.mu.Lock()
	finished := session.Finished
	var result MatchResult
	if finished && session.Winner != nil {
		result = MatchResult{
			SessionID:             session.ID,
			WinnerID:              session.Winner.ID,
			LoserID:               session.Opponent(session.Winner).ID,
			Turns:                 session.Turn,
			WinnerCommanderHealth: session.Winner.CommanderHealth,
		}
	}
	session.mu.Unlock()

	if finished && result.WinnerID != "" && r.matches != nil {
		if err := r.matches.RecordMatch(ctx, result); err != nil {
			r.logger.Error("failed to record match result",
				zap.String("session_id", session.ID),
				zap.Error(err),
			)
		}
	}

	r.engine.FinishRecording(session.ID)

	r.logger.Info("match ended", zap.String("session_id", session.ID))
}

// ActiveCount returns the number of registered matches.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
