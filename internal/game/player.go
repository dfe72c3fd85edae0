package game

import (
	"github.com/lumenfall/lumen-server-go/internal/dice"
)

// PlayerState is one player's mutable battle state. It is owned by a
// GameSession and only ever mutated under the session lock.
type PlayerState struct {
	ID   string
	Name string

	Commander       *Card
	CommanderHealth int

	MainDeck    []*Card // draw pile, top at index 0
	CloserDeck  []*Card // fixed pool, never shuffled
	Hand        []*Card
	DiscardPile []*Card
	WaitingRoom []*UnitState

	Light    int
	MaxLight int

	DrawnThisTurn int
	Passed        bool
}

// newPlayerState builds the turn-zero state for one side of a match. The main
// deck is copied and shuffled; the closer pool keeps its saved order.
func newPlayerState(id, name string, deck *Deck, roller *dice.Roller) *PlayerState {
	main := make([]*Card, len(deck.Main))
	copy(main, deck.Main)
	roller.Shuffle(len(main), func(i, j int) {
		main[i], main[j] = main[j], main[i]
	})

	closers := make([]*Card, len(deck.Closers))
	copy(closers, deck.Closers)

	return &PlayerState{
		ID:              id,
		Name:            name,
		Commander:       deck.Commander,
		CommanderHealth: deck.Commander.Health,
		MainDeck:        main,
		CloserDeck:      closers,
		Hand:            make([]*Card, 0, MainDeckSize),
		DiscardPile:     make([]*Card, 0, MainDeckSize),
		WaitingRoom:     make([]*UnitState, 0, LaneCount),
		Light:           StartingLight,
		MaxLight:        StartingLight,
	}
}

// Heavy reports whether the player drew past the strain threshold this turn,
// which surcharges every play by one Light.
func (p *PlayerState) Heavy() bool {
	return p.DrawnThisTurn > HeavyDrawThreshold
}

// Defeated reports whether the player's Commander has fallen.
func (p *PlayerState) Defeated() bool {
	return p.CommanderHealth <= 0
}

// draw moves up to n cards from the main deck into the hand. When the main
// deck runs dry, the discard pile is shuffled back in; each reshuffle raises
// MaxLight by one and consumes one of the remaining draws. Drawing stops early
// once both piles are empty.
func (p *PlayerState) draw(n int, roller *dice.Roller, logf func(format string, args ...any)) {
	remaining := n
	for remaining > 0 {
		if len(p.MainDeck) == 0 {
			if len(p.DiscardPile) == 0 {
				logf("%s cannot draw: both deck and discard pile are empty", p.Name)
				return
			}
			p.MainDeck = p.DiscardPile
			p.DiscardPile = make([]*Card, 0, MainDeckSize)
			roller.Shuffle(len(p.MainDeck), func(i, j int) {
				p.MainDeck[i], p.MainDeck[j] = p.MainDeck[j], p.MainDeck[i]
			})
			p.MaxLight++
			remaining--
			logf("%s reshuffles the discard pile; max light rises to %d", p.Name, p.MaxLight)
			continue
		}

		card := p.MainDeck[0]
		p.MainDeck = p.MainDeck[1:]
		p.Hand = append(p.Hand, card)
		p.DrawnThisTurn++
		remaining--
	}
}
