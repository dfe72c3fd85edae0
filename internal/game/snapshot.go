package game

// SessionSnapshot captures a consistent view of a match for rendering and
// replay. Snapshots are deep copies; holding one never aliases live state.
type SessionSnapshot struct {
	ID              string            `json:"id"`
	Turn            int               `json:"turn"`
	Phase           string            `json:"phase"`
	AttackerID      string            `json:"attacker_id"`
	StrategyActorID string            `json:"strategy_actor_id,omitempty"`
	AttackerDone    bool              `json:"attacker_done"`
	Finished        bool              `json:"finished"`
	WinnerID        string            `json:"winner_id,omitempty"`
	Players         [2]PlayerSnapshot `json:"players"`
	Lanes           []LaneSnapshot    `json:"lanes"`
	LastClashes     []ClashSnapshot   `json:"last_clashes,omitempty"`
	Events          []string          `json:"events"`
}

// PlayerSnapshot captures one player's visible state.
type PlayerSnapshot struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	CommanderName   string         `json:"commander_name"`
	CommanderHealth int            `json:"commander_health"`
	Light           int            `json:"light"`
	MaxLight        int            `json:"max_light"`
	Heavy           bool           `json:"heavy"`
	Passed          bool           `json:"passed"`
	MainDeckCount   int            `json:"main_deck_count"`
	DiscardCount    int            `json:"discard_count"`
	Hand            []CardSnapshot `json:"hand"`
	Closers         []CardSnapshot `json:"closers"`
	WaitingRoom     []UnitSnapshot `json:"waiting_room"`
}

// CardSnapshot captures the reference data of a card for rendering.
type CardSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Health    int    `json:"health"`
	MinDamage int    `json:"min_damage"`
	MaxDamage int    `json:"max_damage"`
	LightCost int    `json:"light_cost"`
	Ability   string `json:"ability,omitempty"`
}

// UnitSnapshot captures a unit's battle state.
type UnitSnapshot struct {
	Card          CardSnapshot `json:"card"`
	CurrentHealth int          `json:"current_health"`
	Heavy         bool         `json:"heavy"`
}

// LaneSnapshot captures one lane's occupants; nil slots are absent.
type LaneSnapshot struct {
	Index    int           `json:"index"`
	Attacker *UnitSnapshot `json:"attacker,omitempty"`
	Defender *UnitSnapshot `json:"defender,omitempty"`
}

// ClashSnapshot captures a lane's combat outcome.
type ClashSnapshot struct {
	Lane          int           `json:"lane"`
	Attacker      *UnitSnapshot `json:"attacker,omitempty"`
	Defender      *UnitSnapshot `json:"defender,omitempty"`
	AttackerRoll  int           `json:"attacker_roll"`
	DefenderRoll  int           `json:"defender_roll"`
	Damage        int           `json:"damage"`
	ToCommander   bool          `json:"to_commander"`
	CounterStrike int           `json:"counter_strike"`
	Description   string        `json:"description"`
}

// Snapshot returns a consistent copy of the session state.
func (s *GameSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *GameSession) snapshotLocked() SessionSnapshot {
	snap := SessionSnapshot{
		ID:              s.ID,
		Turn:            s.Turn,
		Phase:           s.Phase.String(),
		AttackerID:      s.Attacker().ID,
		StrategyActorID: s.StrategyActorID,
		AttackerDone:    s.AttackerDone,
		Finished:        s.Finished,
		Players: [2]PlayerSnapshot{
			snapshotPlayer(s.Player1),
			snapshotPlayer(s.Player2),
		},
		Lanes:  make([]LaneSnapshot, 0, LaneCount),
		Events: append([]string(nil), s.Events...),
	}
	if s.Winner != nil {
		snap.WinnerID = s.Winner.ID
	}
	for _, lane := range s.Lanes {
		snap.Lanes = append(snap.Lanes, LaneSnapshot{
			Index:    lane.Index,
			Attacker: snapshotUnitRef(lane.Attacker),
			Defender: snapshotUnitRef(lane.Defender),
		})
	}
	for _, clash := range s.LastClashes {
		snap.LastClashes = append(snap.LastClashes, ClashSnapshot{
			Lane:          clash.Lane,
			Attacker:      snapshotUnitRef(clash.Attacker),
			Defender:      snapshotUnitRef(clash.Defender),
			AttackerRoll:  clash.AttackerRoll,
			DefenderRoll:  clash.DefenderRoll,
			Damage:        clash.Damage,
			ToCommander:   clash.ToCommander,
			CounterStrike: clash.CounterStrike,
			Description:   clash.Description,
		})
	}
	return snap
}

func snapshotPlayer(p *PlayerState) PlayerSnapshot {
	hand := make([]CardSnapshot, 0, len(p.Hand))
	for _, c := range p.Hand {
		hand = append(hand, snapshotCard(c))
	}
	closers := make([]CardSnapshot, 0, len(p.CloserDeck))
	for _, c := range p.CloserDeck {
		closers = append(closers, snapshotCard(c))
	}
	waiting := make([]UnitSnapshot, 0, len(p.WaitingRoom))
	for _, u := range p.WaitingRoom {
		waiting = append(waiting, snapshotUnit(u))
	}
	return PlayerSnapshot{
		ID:              p.ID,
		Name:            p.Name,
		CommanderName:   p.Commander.Name,
		CommanderHealth: p.CommanderHealth,
		Light:           p.Light,
		MaxLight:        p.MaxLight,
		Heavy:           p.Heavy(),
		Passed:          p.Passed,
		MainDeckCount:   len(p.MainDeck),
		DiscardCount:    len(p.DiscardPile),
		Hand:            hand,
		Closers:         closers,
		WaitingRoom:     waiting,
	}
}

func snapshotCard(c *Card) CardSnapshot {
	return CardSnapshot{
		ID:        c.ID,
		Name:      c.Name,
		Kind:      c.Kind.String(),
		Health:    c.Health,
		MinDamage: c.MinDamage,
		MaxDamage: c.MaxDamage,
		LightCost: c.LightCost,
		Ability:   c.Ability,
	}
}

func snapshotUnit(u *UnitState) UnitSnapshot {
	return UnitSnapshot{
		Card:          snapshotCard(u.Card),
		CurrentHealth: u.CurrentHealth,
		Heavy:         u.Heavy,
	}
}

func snapshotUnitRef(u *UnitState) *UnitSnapshot {
	if u == nil {
		return nil
	}
	snap := snapshotUnit(u)
	return &snap
}
