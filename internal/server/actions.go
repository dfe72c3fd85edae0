package server

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lumenfall/lumen-server-go/internal/game"
)

const actionTimeout = 5 * time.Second

// handleAction routes one frontend action to the registry or engine and
// answers with a result plus, on success, a fresh snapshot for rendering.
func (h *Hub) handleAction(c *Client, msg ActionMessage) {
	switch msg.Type {
	case "start_game":
		h.handleStartGame(msg)
		return
	case "forfeit":
		h.handleForfeit(msg)
		return
	}

	session, ok := h.registry.GetGameForPlayer(msg.PlayerID)
	if !ok {
		h.sendTo(msg.PlayerID, ServerMessage{Type: "error", Message: "you are not in a match"})
		return
	}

	var result game.Result
	switch msg.Type {
	case "start_turn":
		result = h.engine.StartTurn(session)
	case "play_card":
		source := game.SourceHand
		if msg.Source == "closer" {
			source = game.SourceCloser
		}
		result = h.engine.PlayCard(session, msg.PlayerID, source, msg.CardIndex)
	case "pass":
		result = h.engine.Pass(session, msg.PlayerID)
	case "assign_attacker":
		result = h.engine.AssignAttacker(session, msg.PlayerID, msg.UnitIndex, msg.LaneIndex)
	case "assign_defender":
		result = h.engine.AssignDefender(session, msg.PlayerID, msg.UnitIndex, msg.LaneIndex)
	case "finish_declaration":
		result = h.engine.FinishDeclaration(session, msg.PlayerID)
	case "resolve_combat":
		result = h.engine.ResolveCombat(session)
	case "end_turn":
		result = h.engine.ResolveEndOfTurn(session)
	default:
		h.sendTo(msg.PlayerID, ServerMessage{Type: "error", Message: "unknown action: " + msg.Type})
		return
	}

	if !result.OK {
		h.sendTo(msg.PlayerID, ServerMessage{Type: "error", Message: result.Message})
		return
	}

	h.sendTo(msg.PlayerID, ServerMessage{Type: "result", Message: result.Message})
	h.broadcastSession(session)

	snap := session.Snapshot()
	if snap.Finished {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		h.registry.EndGame(ctx, session)
		cancel()
	}
}

func (h *Hub) handleStartGame(msg ActionMessage) {
	if msg.OpponentID == "" {
		h.sendTo(msg.PlayerID, ServerMessage{Type: "error", Message: "opponent_id is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	session, err := h.registry.StartGame(ctx,
		game.PlayerRef{ID: msg.PlayerID, Name: msg.PlayerName},
		game.PlayerRef{ID: msg.OpponentID, Name: msg.OpponentName},
	)
	if err != nil {
		h.sendTo(msg.PlayerID, ServerMessage{Type: "error", Message: err.Error()})
		return
	}

	h.logger.Info("match started over websocket",
		zap.String("session_id", session.ID),
		zap.String("player_id", msg.PlayerID),
		zap.String("opponent_id", msg.OpponentID),
	)
	h.broadcastSession(session)
}

func (h *Hub) handleForfeit(msg ActionMessage) {
	session, ok := h.registry.Forfeit(msg.PlayerID)
	if !ok {
		h.sendTo(msg.PlayerID, ServerMessage{Type: "error", Message: "you are not in a match"})
		return
	}

	// Final render before the session leaves the registry.
	h.broadcastSession(session)

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	h.registry.EndGame(ctx, session)
	cancel()
}
