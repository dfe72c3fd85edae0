// Package server exposes the battle engine to the embedding bot/web frontend
// over WebSocket. It renders nothing itself: every successful action is
// answered with a full session snapshot for the caller to render.
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lumenfall/lumen-server-go/internal/config"
	"github.com/lumenfall/lumen-server-go/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checks belong to the embedding application's proxy.
		return true
	},
}

// ActionMessage is one player-triggered action from the frontend.
type ActionMessage struct {
	Type         string `json:"type"`
	PlayerID     string `json:"player_id"`
	PlayerName   string `json:"player_name,omitempty"`
	OpponentID   string `json:"opponent_id,omitempty"`
	OpponentName string `json:"opponent_name,omitempty"`
	Source       string `json:"source,omitempty"` // "hand" or "closer"
	CardIndex    int    `json:"card_index"`
	UnitIndex    int    `json:"unit_index"`
	LaneIndex    int    `json:"lane_index"`
}

// ServerMessage is a response or broadcast to the frontend.
type ServerMessage struct {
	Type    string `json:"type"` // "game_state", "result" or "error"
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Client is one connected frontend session.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	playerID string
}

// Hub tracks connected clients and routes actions into the engine.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client // player id -> client

	registry *game.Registry
	engine   *game.Engine
	logger   *zap.Logger
}

// NewHub creates a hub wired to the registry and engine.
func NewHub(registry *game.Registry, engine *game.Engine, logger *zap.Logger) *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		registry: registry,
		engine:   engine,
		logger:   logger,
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	if old, ok := h.clients[c.playerID]; ok {
		close(old.send)
	}
	h.clients[c.playerID] = c
	h.mu.Unlock()

	h.logger.Info("client connected", zap.String("player_id", c.playerID))
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if h.clients[c.playerID] == c {
		delete(h.clients, c.playerID)
		close(c.send)
	}
	h.mu.Unlock()

	h.logger.Info("client disconnected", zap.String("player_id", c.playerID))
}

// sendTo delivers a message to one player if connected. The read lock is held
// across the send so a concurrent reconnect cannot close the channel mid-send.
func (h *Hub) sendTo(playerID string, msg ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal message", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[playerID]
	if !ok {
		return
	}

	select {
	case client.send <- payload:
	default:
		// Slow consumer; drop the frame rather than block the engine.
	}
}

// broadcastSession sends the current snapshot to both participants.
func (h *Hub) broadcastSession(session *game.GameSession) {
	snap := session.Snapshot()
	msg := ServerMessage{Type: "game_state", Data: snap}
	h.sendTo(session.Player1.ID, msg)
	h.sendTo(session.Player2.ID, msg)
}

// ServeWS upgrades one HTTP request to a player connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		http.Error(w, "player_id is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:     conn,
		send:     make(chan []byte, 16),
		playerID: playerID,
	}
	h.addClient(client)

	go client.writePump()
	go client.readPump(h)
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		h.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error",
					zap.String("player_id", c.playerID),
					zap.Error(err),
				)
			}
			return
		}

		var msg ActionMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.sendTo(c.playerID, ServerMessage{Type: "error", Message: "malformed message"})
			continue
		}
		if msg.PlayerID == "" {
			msg.PlayerID = c.playerID
		}

		h.handleAction(c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// StartWebSocketServer runs the HTTP server hosting the /ws endpoint. It
// blocks until the listener fails.
func StartWebSocketServer(cfg config.ServerConfig, hub *Hub, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	logger.Info("starting websocket server", zap.String("address", cfg.Address))
	return http.ListenAndServe(cfg.Address, mux)
}
