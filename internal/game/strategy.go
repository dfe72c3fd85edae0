package game

// playCard moves one card from the actor's hand or closer pool into their
// waiting room. The play is rejected without mutation when the index is out
// of range or Light cannot cover the cost. Callers hold the session lock and
// have already verified phase and turn order.
func (e *Engine) playCard(s *GameSession, player *PlayerState, source CardSource, index int) Result {
	var pile *[]*Card
	switch source {
	case SourceHand:
		pile = &player.Hand
	case SourceCloser:
		pile = &player.CloserDeck
	default:
		return failure("unknown card source")
	}

	if index < 0 || index >= len(*pile) {
		return failure("no card at position %d", index+1)
	}
	card := (*pile)[index]

	cost := card.LightCost
	if player.Heavy() {
		cost++
	}
	if player.Light < cost {
		return failure("not enough light: %s costs %d, you have %d", card.Name, cost, player.Light)
	}

	player.Light -= cost
	*pile = append((*pile)[:index], (*pile)[index+1:]...)
	player.WaitingRoom = append(player.WaitingRoom, newUnitState(card, player.Heavy()))
	player.Passed = false

	s.StrategyActorID = s.Opponent(player).ID
	s.logf("%s plays %s for %d light", player.Name, card.Name, cost)

	return success("%s enters the waiting room", card.Name)
}

// pass records the actor's pass. When the opponent has also passed the match
// advances to Declaration; otherwise the action flips to the opponent.
func (e *Engine) pass(s *GameSession, player *PlayerState) Result {
	player.Passed = true
	opponent := s.Opponent(player)

	if opponent.Passed {
		s.Phase = PhaseDeclaration
		s.logf("both players pass; declaration begins")
		return success("declaration begins: %s assigns attackers", s.Attacker().Name)
	}

	s.StrategyActorID = opponent.ID
	s.logf("%s passes", player.Name)
	return success("%s passes", player.Name)
}
