package game

import (
	"fmt"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/lumenfall/lumen-server-go/internal/dice"
)

// Fixture cards use min == max damage so combat outcomes are deterministic
// regardless of the roller seed.

func testCommander(name string, speed, health, counterStrike int) *Card {
	return &Card{
		ID:            "cmd-" + name,
		Name:          name,
		Kind:          CardKindCommander,
		Health:        health,
		Speed:         speed,
		CounterStrike: counterStrike,
	}
}

func testUnit(name string, health, damage, lightCost int) *Card {
	return &Card{
		ID:        "unit-" + name,
		Name:      name,
		Kind:      CardKindUnit,
		Health:    health,
		MinDamage: damage,
		MaxDamage: damage,
		LightCost: lightCost,
	}
}

func testCloser(name string, health, damage, lightCost int) *Card {
	return &Card{
		ID:        "closer-" + name,
		Name:      name,
		Kind:      CardKindCloser,
		Health:    health,
		MinDamage: damage,
		MaxDamage: damage,
		LightCost: lightCost,
	}
}

// testDeck builds a valid 1/9/3 deck. Every main-deck unit has 5 health,
// deals 3 and costs 2 light; closers hit harder.
func testDeck(prefix string, speed int) *Deck {
	deck := &Deck{
		Commander: testCommander(prefix+" Commander", speed, 30, 2),
	}
	for i := 0; i < MainDeckSize; i++ {
		deck.Main = append(deck.Main, testUnit(fmt.Sprintf("%s Unit %d", prefix, i+1), 5, 3, 2))
	}
	for i := 0; i < CloserDeckSize; i++ {
		deck.Closers = append(deck.Closers, testCloser(fmt.Sprintf("%s Closer %d", prefix, i+1), 7, 5, 4))
	}
	return deck
}

func newTestEngine(t *testing.T, seed int64) *Engine {
	t.Helper()
	return NewEngine(zaptest.NewLogger(t), dice.NewSeeded(seed))
}

// newTestSession starts a match between Alice (speed 5, attacker) and Bob
// (speed 3) with the opening Preparation already run.
func newTestSession(t *testing.T, engine *Engine) *GameSession {
	t.Helper()
	return engine.NewSession(
		PlayerRef{ID: "alice", Name: "Alice"}, testDeck("Dawn", 5),
		PlayerRef{ID: "bob", Name: "Bob"}, testDeck("Dusk", 3),
	)
}

// advanceToDeclaration passes both players through Strategy.
func advanceToDeclaration(t *testing.T, engine *Engine, s *GameSession) {
	t.Helper()
	first := s.strategyActor()
	if res := engine.Pass(s, first.ID); !res.OK {
		t.Fatalf("first pass failed: %s", res.Message)
	}
	if res := engine.Pass(s, s.Opponent(first).ID); !res.OK {
		t.Fatalf("second pass failed: %s", res.Message)
	}
	if s.Phase != PhaseDeclaration {
		t.Fatalf("expected DECLARATION after both passes, got %s", s.Phase)
	}
}
