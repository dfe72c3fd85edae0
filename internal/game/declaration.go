package game

// assignAttacker places a waiting-room unit into an open lane's attacker
// slot. Callers hold the session lock and have already verified phase and
// role.
func (e *Engine) assignAttacker(s *GameSession, unitIndex, laneIndex int) Result {
	attacker := s.Attacker()

	if laneIndex < 0 || laneIndex >= LaneCount {
		return failure("lane %d does not exist", laneIndex+1)
	}
	lane := s.Lanes[laneIndex]
	if lane.Attacker != nil {
		return failure("lane %d already has an attacker", laneIndex+1)
	}
	if unitIndex < 0 || unitIndex >= len(attacker.WaitingRoom) {
		return failure("no unit at position %d", unitIndex+1)
	}

	unit := attacker.WaitingRoom[unitIndex]
	attacker.WaitingRoom = append(attacker.WaitingRoom[:unitIndex], attacker.WaitingRoom[unitIndex+1:]...)
	lane.Attacker = unit

	s.logf("%s sends %s to attack on lane %d", attacker.Name, unit.Card.Name, laneIndex+1)
	return success("%s attacks on lane %d", unit.Card.Name, laneIndex+1)
}

// assignDefender places a waiting-room unit into a contested lane's defender
// slot. A defender may only be set where an attacker already stands.
func (e *Engine) assignDefender(s *GameSession, unitIndex, laneIndex int) Result {
	defender := s.Defender()

	if laneIndex < 0 || laneIndex >= LaneCount {
		return failure("lane %d does not exist", laneIndex+1)
	}
	lane := s.Lanes[laneIndex]
	if lane.Attacker == nil {
		return failure("lane %d has no attacker to block", laneIndex+1)
	}
	if lane.Defender != nil {
		return failure("lane %d is already blocked", laneIndex+1)
	}
	if unitIndex < 0 || unitIndex >= len(defender.WaitingRoom) {
		return failure("no unit at position %d", unitIndex+1)
	}

	unit := defender.WaitingRoom[unitIndex]
	defender.WaitingRoom = append(defender.WaitingRoom[:unitIndex], defender.WaitingRoom[unitIndex+1:]...)
	lane.Defender = unit

	s.logf("%s blocks lane %d with %s", defender.Name, laneIndex+1, unit.Card.Name)
	return success("%s blocks lane %d", unit.Card.Name, laneIndex+1)
}

// finishDeclaration applies a side's done signal. The attacker's signal only
// records readiness; the defender's signal, once the attacker is ready, is
// what advances the match to Combat. The attacker cannot force the phase to
// end on their own.
func (e *Engine) finishDeclaration(s *GameSession, player *PlayerState) Result {
	if player == s.Attacker() {
		s.AttackerDone = true
		s.logf("%s finishes assigning attackers", player.Name)
		return success("waiting for %s to assign defenders", s.Defender().Name)
	}

	if !s.AttackerDone {
		return failure("%s has not finished assigning attackers", s.Attacker().Name)
	}

	s.Phase = PhaseCombat
	s.logf("%s finishes assigning defenders; combat begins", player.Name)
	return success("combat begins")
}
