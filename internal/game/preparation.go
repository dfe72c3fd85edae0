package game

// runPreparation resets per-turn state and deals both players into the new
// turn. Draws are sequential, attacker first. Callers hold the session lock.
func (e *Engine) runPreparation(s *GameSession) {
	s.Turn++
	s.AttackerDone = false
	s.LastClashes = nil
	s.clearLanes()

	for _, p := range []*PlayerState{s.Player1, s.Player2} {
		p.DrawnThisTurn = 0
		p.Passed = false
	}

	s.logf("--- turn %d ---", s.Turn)
	s.Attacker().draw(PreparationDraw, e.roller, s.logf)
	s.Defender().draw(PreparationDraw, e.roller, s.logf)

	s.Phase = PhaseStrategy
	s.StrategyActorID = s.Attacker().ID
	s.logf("%s acts first this turn", s.Attacker().Name)
}
