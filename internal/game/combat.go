package game

import "fmt"

// runCombat resolves every lane that has an attacker. Contested lanes pit two
// damage rolls against each other with ties going to the attacker; unopposed
// lanes strike the defending Commander directly and eat its counter-strike.
// The match always advances to Resolution afterwards. Callers hold the
// session lock.
func (e *Engine) runCombat(s *GameSession) {
	defender := s.Defender()
	s.LastClashes = s.LastClashes[:0]

	for _, lane := range s.Lanes {
		if lane.Attacker == nil {
			continue
		}
		var clash ClashResult
		if lane.Defender != nil {
			clash = e.resolveContested(lane)
		} else {
			clash = e.resolveUnopposed(lane, defender)
		}
		s.LastClashes = append(s.LastClashes, clash)
		s.logf("%s", clash.Description)
	}

	s.Phase = PhaseResolution
}

func (e *Engine) resolveContested(lane *Lane) ClashResult {
	atk, def := lane.Attacker, lane.Defender
	atkRoll := e.roller.Range(atk.Card.MinDamage, atk.Card.MaxDamage)
	defRoll := e.roller.Range(def.Card.MinDamage, def.Card.MaxDamage)

	clash := ClashResult{
		Lane:         lane.Index,
		Attacker:     atk,
		Defender:     def,
		AttackerRoll: atkRoll,
		DefenderRoll: defRoll,
	}

	// Equal rolls favor the attacker.
	if atkRoll >= defRoll {
		def.CurrentHealth -= atkRoll
		clash.Damage = atkRoll
		clash.Description = fmt.Sprintf("lane %d: %s (%d) overpowers %s (%d) for %d damage",
			lane.Index+1, atk.Card.Name, atkRoll, def.Card.Name, defRoll, atkRoll)
	} else {
		atk.CurrentHealth -= defRoll
		clash.Damage = defRoll
		clash.Description = fmt.Sprintf("lane %d: %s (%d) repels %s (%d) for %d damage",
			lane.Index+1, def.Card.Name, defRoll, atk.Card.Name, atkRoll, defRoll)
	}
	return clash
}

func (e *Engine) resolveUnopposed(lane *Lane, defender *PlayerState) ClashResult {
	atk := lane.Attacker
	roll := e.roller.Range(atk.Card.MinDamage, atk.Card.MaxDamage)
	counter := defender.Commander.CounterStrike

	defender.CommanderHealth -= roll
	atk.CurrentHealth -= counter

	return ClashResult{
		Lane:          lane.Index,
		Attacker:      atk,
		AttackerRoll:  roll,
		Damage:        roll,
		ToCommander:   true,
		CounterStrike: counter,
		Description: fmt.Sprintf("lane %d: %s strikes %s directly for %d and takes %d counter-strike",
			lane.Index+1, atk.Card.Name, defender.Commander.Name, roll, counter),
	}
}
