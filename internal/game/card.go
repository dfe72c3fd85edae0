package game

import "fmt"

// Deck shape constants. Every saved deck is exactly one Commander, nine
// Main-Deck units and three Closers.
const (
	MainDeckSize   = 9
	CloserDeckSize = 3
	LaneCount      = 3

	// PreparationDraw is the number of cards drawn per player each turn.
	PreparationDraw = 4

	// HeavyDrawThreshold is the per-turn draw count above which a player's
	// plays cost one additional Light.
	HeavyDrawThreshold = 6

	// StartingLight is both the initial Light and the initial Light cap.
	StartingLight = 3
)

// CardKind distinguishes the three card roles within a deck.
type CardKind int

const (
	CardKindCommander CardKind = iota
	CardKindUnit
	CardKindCloser
)

func (k CardKind) String() string {
	switch k {
	case CardKindCommander:
		return "COMMANDER"
	case CardKindUnit:
		return "UNIT"
	case CardKindCloser:
		return "CLOSER"
	default:
		return "UNKNOWN"
	}
}

// Card is immutable reference data owned by the catalog subsystem. The engine
// reads its stats but never changes them; mutable battle state lives on
// UnitState and PlayerState instead.
type Card struct {
	ID        string
	Name      string
	Kind      CardKind
	Health    int
	MinDamage int
	MaxDamage int
	LightCost int

	// CounterStrike is the fixed damage a Commander returns against an
	// unopposed attacker. Meaningful on Commander cards only.
	CounterStrike int

	// Speed decides which Commander opens the match as Attacker.
	Speed int

	// Ability is free text rendered to players; the engine never
	// interprets it.
	Ability string
}

// Deck is a player's saved 13-card deck as fetched from the catalog.
type Deck struct {
	Commander *Card
	Main      []*Card
	Closers   []*Card
}

// Validate enforces the 1/9/3 deck shape and kind placement.
func (d *Deck) Validate() error {
	if d.Commander == nil {
		return fmt.Errorf("deck has no commander")
	}
	if d.Commander.Kind != CardKindCommander {
		return fmt.Errorf("commander slot holds a %s card", d.Commander.Kind)
	}
	if len(d.Main) != MainDeckSize {
		return fmt.Errorf("main deck has %d cards, want %d", len(d.Main), MainDeckSize)
	}
	if len(d.Closers) != CloserDeckSize {
		return fmt.Errorf("closer deck has %d cards, want %d", len(d.Closers), CloserDeckSize)
	}
	for _, c := range d.Main {
		if c == nil || c.Kind != CardKindUnit {
			return fmt.Errorf("main deck contains a non-unit card")
		}
	}
	for _, c := range d.Closers {
		if c == nil || c.Kind != CardKindCloser {
			return fmt.Errorf("closer deck contains a non-closer card")
		}
	}
	return nil
}
