package game

// runResolution closes out the turn: the win check comes first and, when a
// Commander has fallen, nothing else changes. Otherwise survivors return
// home, damaged units bleed out, hands are discarded for Light, and the
// Attacker role swaps. This is the only place roles change. Callers hold the
// session lock.
func (e *Engine) runResolution(s *GameSession) {
	if s.Player1.Defeated() {
		s.finish(s.Player2)
		s.logf("%s falls; %s wins the match", s.Player1.Commander.Name, s.Player2.Name)
		return
	}
	if s.Player2.Defeated() {
		s.finish(s.Player1)
		s.logf("%s falls; %s wins the match", s.Player2.Commander.Name, s.Player1.Name)
		return
	}

	e.returnSurvivors(s)

	for _, p := range []*PlayerState{s.Player1, s.Player2} {
		e.bleedOut(s, p)
		e.refreshLight(s, p)
	}

	s.Player1Attacker = !s.Player1Attacker
	s.Phase = PhasePreparation
	s.logf("roles swap: %s attacks next turn", s.Attacker().Name)
}

// returnSurvivors moves living lane occupants back to their owner's waiting
// room and discards the fallen.
func (e *Engine) returnSurvivors(s *GameSession) {
	attacker, defender := s.Attacker(), s.Defender()

	for _, lane := range s.Lanes {
		if lane.Attacker != nil {
			e.returnUnit(s, attacker, lane.Attacker)
			lane.Attacker = nil
		}
		if lane.Defender != nil {
			e.returnUnit(s, defender, lane.Defender)
			lane.Defender = nil
		}
	}
}

func (e *Engine) returnUnit(s *GameSession, owner *PlayerState, unit *UnitState) {
	if unit.CurrentHealth > 0 {
		owner.WaitingRoom = append(owner.WaitingRoom, unit)
		return
	}
	owner.DiscardPile = append(owner.DiscardPile, unit.Card)
	s.logf("%s's %s is destroyed", owner.Name, unit.Card.Name)
}

// bleedOut applies the end-of-turn attrition: every waiting-room unit below
// full health loses one more point, and units at zero or less are discarded.
func (e *Engine) bleedOut(s *GameSession, p *PlayerState) {
	kept := p.WaitingRoom[:0]
	for _, unit := range p.WaitingRoom {
		if !unit.AtFullHealth() {
			unit.CurrentHealth--
			if unit.CurrentHealth <= 0 {
				p.DiscardPile = append(p.DiscardPile, unit.Card)
				s.logf("%s's %s bleeds out", p.Name, unit.Card.Name)
				continue
			}
		}
		kept = append(kept, unit)
	}
	p.WaitingRoom = kept
}

// refreshLight discards the player's remaining hand and replenishes Light by
// one plus the number of cards discarded, capped at MaxLight.
func (e *Engine) refreshLight(s *GameSession, p *PlayerState) {
	discarded := len(p.Hand)
	p.DiscardPile = append(p.DiscardPile, p.Hand...)
	p.Hand = p.Hand[:0]

	p.Light += 1 + discarded
	if p.Light > p.MaxLight {
		p.Light = p.MaxLight
	}
	s.logf("%s discards %d cards and refreshes to %d light", p.Name, discarded, p.Light)
}
