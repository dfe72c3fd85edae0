package game

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumenfall/lumen-server-go/internal/dice"
)

// Result is the outcome of a player-triggered engine operation. Failed
// operations never mutate session state.
type Result struct {
	OK      bool
	Message string
}

func success(format string, args ...any) Result {
	return Result{OK: true, Message: fmt.Sprintf(format, args...)}
}

func failure(format string, args ...any) Result {
	return Result{OK: false, Message: fmt.Sprintf(format, args...)}
}

// CardSource identifies where a played card is taken from.
type CardSource int

const (
	SourceHand CardSource = iota
	SourceCloser
)

func (s CardSource) String() string {
	switch s {
	case SourceHand:
		return "HAND"
	case SourceCloser:
		return "CLOSER"
	default:
		return "UNKNOWN"
	}
}

// PlayerRef identifies a player to the engine; identity comes from the
// embedding application.
type PlayerRef struct {
	ID   string
	Name string
}

// Engine is the stateless façade over the five phase modules. All match state
// lives on the GameSession it is handed; the engine owns only its
// collaborators. Each operation holds the session lock end to end, so actions
// against the same session never interleave.
type Engine struct {
	logger   *zap.Logger
	roller   *dice.Roller
	recorder *ReplayRecorder
}

// NewEngine creates an engine using the given random source.
func NewEngine(logger *zap.Logger, roller *dice.Roller) *Engine {
	return &Engine{logger: logger, roller: roller}
}

// AttachRecorder enables per-turn snapshot recording for replays.
func (e *Engine) AttachRecorder(rr *ReplayRecorder) {
	e.recorder = rr
}

// BeginRecording starts replay recording for a session and captures its
// current state as the opening frame. Recording starts only once the session
// is registered; sessions that lose the registration check are never recorded.
func (e *Engine) BeginRecording(s *GameSession) {
	if e.recorder == nil {
		return
	}
	e.recorder.StartRecording(s.ID)

	s.mu.Lock()
	e.recordState(s)
	s.mu.Unlock()
}

// FinishRecording saves the session's replay to disk and drops it from memory.
func (e *Engine) FinishRecording(sessionID string) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.SaveReplay(sessionID); err != nil {
		e.logger.Warn("failed to save replay",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}

// NewSession creates a match from two fetched decks and runs the initial
// Preparation phase. The faster Commander opens as Attacker; equal speeds are
// settled by coin flip.
func (e *Engine) NewSession(p1 PlayerRef, deck1 *Deck, p2 PlayerRef, deck2 *Deck) *GameSession {
	ps1 := newPlayerState(p1.ID, p1.Name, deck1, e.roller)
	ps2 := newPlayerState(p2.ID, p2.Name, deck2, e.roller)

	var p1Attacker bool
	switch {
	case deck1.Commander.Speed > deck2.Commander.Speed:
		p1Attacker = true
	case deck1.Commander.Speed < deck2.Commander.Speed:
		p1Attacker = false
	default:
		p1Attacker = e.roller.CoinFlip()
	}

	s := newGameSession(uuid.New().String(), ps1, ps2, p1Attacker)
	s.logf("%s (%s) challenges %s (%s)", ps1.Name, ps1.Commander.Name, ps2.Name, ps2.Commander.Name)
	s.logf("%s opens as attacker", s.Attacker().Name)

	s.mu.Lock()
	e.runPreparation(s)
	s.mu.Unlock()

	e.logger.Info("session created",
		zap.String("session_id", s.ID),
		zap.String("player1", ps1.ID),
		zap.String("player2", ps2.ID),
		zap.String("attacker", s.Attacker().ID),
	)
	return s
}

// StartTurn runs the Preparation phase of the next turn.
func (e *Engine) StartTurn(s *GameSession) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Finished {
		return failure("the match is already over")
	}
	if s.Phase != PhasePreparation {
		return failure("cannot start a turn during %s", s.Phase)
	}

	e.runPreparation(s)
	return success("turn %d begins", s.Turn)
}

// PlayCard plays one card from the acting player's hand or closer pool into
// their waiting room, paying its Light cost.
func (e *Engine) PlayCard(s *GameSession, playerID string, source CardSource, index int) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Finished {
		return failure("the match is already over")
	}
	if s.Phase != PhaseStrategy {
		return failure("cards can only be played during STRATEGY, not %s", s.Phase)
	}
	player, ok := s.PlayerByID(playerID)
	if !ok {
		return failure("you are not part of this match")
	}
	if s.StrategyActorID != playerID {
		return failure("it is not your turn to act")
	}

	return e.playCard(s, player, source, index)
}

// Pass skips the acting player's Strategy action. Two consecutive passes
// advance the match to Declaration.
func (e *Engine) Pass(s *GameSession, playerID string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Finished {
		return failure("the match is already over")
	}
	if s.Phase != PhaseStrategy {
		return failure("passing is only possible during STRATEGY, not %s", s.Phase)
	}
	player, ok := s.PlayerByID(playerID)
	if !ok {
		return failure("you are not part of this match")
	}
	if s.StrategyActorID != playerID {
		return failure("it is not your turn to act")
	}

	return e.pass(s, player)
}

// AssignAttacker moves one of the Attacker's waiting-room units into an open
// lane's attacker slot.
func (e *Engine) AssignAttacker(s *GameSession, playerID string, unitIndex, laneIndex int) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Finished {
		return failure("the match is already over")
	}
	if s.Phase != PhaseDeclaration {
		return failure("attackers are assigned during DECLARATION, not %s", s.Phase)
	}
	if s.Attacker().ID != playerID {
		return failure("only the attacker can assign attacking units")
	}

	return e.assignAttacker(s, unitIndex, laneIndex)
}

// AssignDefender moves one of the Defender's waiting-room units into a
// contested lane's defender slot.
func (e *Engine) AssignDefender(s *GameSession, playerID string, unitIndex, laneIndex int) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Finished {
		return failure("the match is already over")
	}
	if s.Phase != PhaseDeclaration {
		return failure("defenders are assigned during DECLARATION, not %s", s.Phase)
	}
	if s.Defender().ID != playerID {
		return failure("only the defender can assign blocking units")
	}

	return e.assignDefender(s, unitIndex, laneIndex)
}

// FinishDeclaration signals that a side is done assigning units. The
// Attacker's signal only marks readiness; the Defender's signal is the one
// that advances the match to Combat.
func (e *Engine) FinishDeclaration(s *GameSession, playerID string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Finished {
		return failure("the match is already over")
	}
	if s.Phase != PhaseDeclaration {
		return failure("declaration can only finish during DECLARATION, not %s", s.Phase)
	}
	player, ok := s.PlayerByID(playerID)
	if !ok {
		return failure("you are not part of this match")
	}

	return e.finishDeclaration(s, player)
}

// ResolveCombat resolves every contested and unopposed lane and advances the
// match to Resolution.
func (e *Engine) ResolveCombat(s *GameSession) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Finished {
		return failure("the match is already over")
	}
	if s.Phase != PhaseCombat {
		return failure("combat can only resolve during COMBAT, not %s", s.Phase)
	}

	e.runCombat(s)
	return success("combat resolved: %d clashes", len(s.LastClashes))
}

// ResolveEndOfTurn runs the Resolution phase: the win check, unit attrition,
// hand cleanup and Light refresh, and the role swap for the next turn.
func (e *Engine) ResolveEndOfTurn(s *GameSession) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Finished {
		return failure("the match is already over")
	}
	if s.Phase != PhaseResolution {
		return failure("the turn can only resolve during RESOLUTION, not %s", s.Phase)
	}

	e.runResolution(s)
	e.recordState(s)

	if s.Finished {
		e.logger.Info("session finished",
			zap.String("session_id", s.ID),
			zap.String("winner", s.Winner.ID),
			zap.Int("turns", s.Turn),
		)
		return success("%s wins the match", s.Winner.Name)
	}
	return success("turn %d resolved; %s attacks next", s.Turn, s.Attacker().Name)
}

// recordState appends the current snapshot to the session replay, if
// recording is attached. Callers must hold the session lock.
func (e *Engine) recordState(s *GameSession) {
	if e.recorder == nil {
		return
	}
	snap := s.snapshotLocked()
	e.recorder.RecordState(s.ID, &snap)
}
