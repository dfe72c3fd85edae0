package game

import (
	"fmt"
	"sync"
	"time"
)

// Phase is the current stage of the five-phase turn cycle.
type Phase int

const (
	PhasePreparation Phase = iota
	PhaseStrategy
	PhaseDeclaration
	PhaseCombat
	PhaseResolution
)

func (p Phase) String() string {
	switch p {
	case PhasePreparation:
		return "PREPARATION"
	case PhaseStrategy:
		return "STRATEGY"
	case PhaseDeclaration:
		return "DECLARATION"
	case PhaseCombat:
		return "COMBAT"
	case PhaseResolution:
		return "RESOLUTION"
	default:
		return "UNKNOWN"
	}
}

// UnitState is a played card's mutable battle state.
type UnitState struct {
	Card          *Card
	CurrentHealth int

	// Heavy records that the unit was played under deck strain.
	Heavy bool
}

func newUnitState(card *Card, heavy bool) *UnitState {
	return &UnitState{Card: card, CurrentHealth: card.Health, Heavy: heavy}
}

// AtFullHealth reports whether the unit has taken no damage, which exempts it
// from end-of-turn bleedout.
func (u *UnitState) AtFullHealth() bool {
	return u.CurrentHealth >= u.Card.Health
}

// Lane is one of the three parallel combat slots. Defender may only be set
// once Attacker is.
type Lane struct {
	Index    int
	Attacker *UnitState
	Defender *UnitState
}

// ClashResult is the outcome of one lane's combat resolution.
type ClashResult struct {
	Lane     int
	Attacker *UnitState
	Defender *UnitState // nil when the attack was unopposed

	AttackerRoll int
	DefenderRoll int // zero when unopposed

	// Damage is the winning roll's value, dealt to the losing unit or, for
	// an unopposed lane, to the defending Commander.
	Damage      int
	ToCommander bool

	// CounterStrike is the damage the defending Commander returned against
	// an unopposed attacker.
	CounterStrike int

	Description string
}

// GameSession is the full mutable state of one active match. All mutation
// goes through the Engine, which holds mu for the duration of each action.
type GameSession struct {
	ID      string
	Player1 *PlayerState
	Player2 *PlayerState

	// Player1Attacker records which side holds the Attacker role. Exactly
	// one player is Attacker at any time; the role swaps only at
	// Resolution.
	Player1Attacker bool

	Turn  int
	Phase Phase

	// StrategyActorID is the player whose turn it is to act during the
	// Strategy phase.
	StrategyActorID string

	// AttackerDone records the Attacker's declaration-finished signal. The
	// Defender's signal is what actually advances the phase.
	AttackerDone bool

	Lanes [LaneCount]*Lane

	Finished bool
	Winner   *PlayerState // nil until Finished

	Events      []string
	LastClashes []ClashResult

	CreatedAt time.Time

	mu sync.Mutex
}

func newGameSession(id string, p1, p2 *PlayerState, p1Attacker bool) *GameSession {
	s := &GameSession{
		ID:              id,
		Player1:         p1,
		Player2:         p2,
		Player1Attacker: p1Attacker,
		Phase:           PhasePreparation,
		Events:          make([]string, 0, 32),
		CreatedAt:       time.Now(),
	}
	for i := range s.Lanes {
		s.Lanes[i] = &Lane{Index: i}
	}
	return s
}

// Attacker returns the player currently holding the Attacker role.
func (s *GameSession) Attacker() *PlayerState {
	if s.Player1Attacker {
		return s.Player1
	}
	return s.Player2
}

// Defender returns the player currently holding the Defender role.
func (s *GameSession) Defender() *PlayerState {
	if s.Player1Attacker {
		return s.Player2
	}
	return s.Player1
}

// Opponent returns the other player of the match.
func (s *GameSession) Opponent(p *PlayerState) *PlayerState {
	if p == s.Player1 {
		return s.Player2
	}
	return s.Player1
}

// PlayerByID resolves a participant by identifier.
func (s *GameSession) PlayerByID(playerID string) (*PlayerState, bool) {
	switch playerID {
	case s.Player1.ID:
		return s.Player1, true
	case s.Player2.ID:
		return s.Player2, true
	default:
		return nil, false
	}
}

// IsPlayer reports whether the identifier belongs to one of the two players.
func (s *GameSession) IsPlayer(playerID string) bool {
	_, ok := s.PlayerByID(playerID)
	return ok
}

func (s *GameSession) strategyActor() *PlayerState {
	actor, _ := s.PlayerByID(s.StrategyActorID)
	return actor
}

// logf appends a human-readable event to the session log.
func (s *GameSession) logf(format string, args ...any) {
	s.Events = append(s.Events, fmt.Sprintf(format, args...))
}

// clearLanes empties all three lanes.
func (s *GameSession) clearLanes() {
	for i := range s.Lanes {
		s.Lanes[i] = &Lane{Index: i}
	}
}

func (s *GameSession) finish(winner *PlayerState) {
	s.Finished = true
	s.Winner = winner
}
