package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/vid2scene/api/internal/logging"
	"github.com/vid2scene/api/internal/model"
	"github.com/vid2scene/api/internal/simulator"
)

const (
	sendBuffer   = 256
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

// Client represents a WebSocket client
type Client struct {
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte

	// pong is never closed, so the reader can signal it after the hub has
	// dropped the client.
	pong chan struct{}
}

// NewClient creates a client subscribed to a session
func NewClient(sessionID string, conn *websocket.Conn) *Client {
	return &Client{SessionID: sessionID, Conn: conn, Send: make(chan []byte, sendBuffer), pong: make(chan struct{}, 1)}
}

// Hub maintains active WebSocket connections and fans session events out
// to them. Broadcasts never block the caller.
type Hub struct {
	// Clients grouped by session ID
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	stopped    chan struct{}
	closeOnce  sync.Once

	log logging.Logger
	mu  sync.RWMutex
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	SessionID string
	Message   []byte
}

// NewHub creates a new Hub
func NewHub(log logging.Logger) *Hub {
	if log == nil {
		log = logging.Nop()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, sendBuffer),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub's main loop. It returns after Close.
func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for id, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.SessionID] == nil {
				h.clients[client.SessionID] = make(map[*Client]bool)
			}
			h.clients[client.SessionID][client] = true
			h.mu.Unlock()
			h.log.Log(logging.LevelDebug, "Client registered", logging.Fields{logging.FieldSessionID: client.SessionID})

		case client := <-h.unregister:
			h.remove(client)
			h.log.Log(logging.LevelDebug, "Client unregistered", logging.Fields{logging.FieldSessionID: client.SessionID})

		case msg := <-h.broadcast:
			h.mu.Lock()
			if clients, ok := h.clients[msg.SessionID]; ok {
				for client := range clients {
					select {
					case client.Send <- msg.Message:
					default:
						// slow consumer
						close(client.Send)
						delete(clients, client)
					}
				}
				if len(clients) == 0 {
					delete(h.clients, msg.SessionID)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.clients[client.SessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.Send)
			if len(clients) == 0 {
				delete(h.clients, client.SessionID)
			}
		}
	}
}

// Close stops the loop and closes every client channel
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
	<-h.stopped
}

// Register adds a new client. It reports false once the hub is closed.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribers returns the number of clients watching a session
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func (h *Hub) send(sessionID string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error(h.log, "Failed to marshal websocket message", err, logging.Fields{logging.FieldSessionID: sessionID})
		return
	}

	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Message: data}:
	case <-h.done:
	default:
		h.log.Log(logging.LevelWarn, "Broadcast queue full, dropping message", logging.Fields{logging.FieldSessionID: sessionID})
	}
}

// ModeChanged sends a mode transition to session subscribers
func (h *Hub) ModeChanged(sessionID string, mode model.SessionMode) {
	h.send(sessionID, model.WSModeMessage{
		Type:      model.WSMessageTypeMode,
		SessionID: sessionID,
		Mode:      mode,
	})
}

// Progress sends a progress update to session subscribers
func (h *Hub) Progress(sessionID string, p simulator.Progress) {
	h.send(sessionID, model.WSProgressMessage{
		Type:       model.WSMessageTypeProgress,
		SessionID:  sessionID,
		Progress:   p.Percent,
		StageIndex: p.StageIndex,
		StageID:    p.StageID,
	})
}

// StageCompleted announces a finished stage
func (h *Hub) StageCompleted(sessionID string, stage model.ProcessingStage) {
	h.send(sessionID, model.WSStageMessage{
		Type:      model.WSMessageTypeStage,
		SessionID: sessionID,
		StageID:   stage.ID,
	})
}

// Completed sends a completion message to session subscribers
func (h *Hub) Completed(sessionID string) {
	h.send(sessionID, model.WSCompleteMessage{
		Type:      model.WSMessageTypeComplete,
		SessionID: sessionID,
	})
}

// Rejected forwards a validation rejection reason
func (h *Hub) Rejected(sessionID, reason string) {
	h.send(sessionID, model.WSRejectedMessage{
		Type:      model.WSMessageTypeRejected,
		SessionID: sessionID,
		Reason:    reason,
	})
}

// Failed sends an error message to session subscribers
func (h *Hub) Failed(sessionID, code, message string) {
	h.send(sessionID, model.WSErrorMessage{
		Type:      model.WSMessageTypeError,
		SessionID: sessionID,
		Error: model.WSError{
			Code:    code,
			Message: message,
		},
	})
}

// HandleConnection handles a WebSocket connection. snapshot, when not nil,
// is written first so late subscribers see the current state.
func (h *Hub) HandleConnection(c *websocket.Conn, sessionID string, snapshot interface{}) {
	client := NewClient(sessionID, c)

	if snapshot != nil {
		if data, err := json.Marshal(snapshot); err == nil {
			client.Send <- data
		}
	}

	if !h.Register(client) {
		return
	}

	pong, _ := json.Marshal(model.WSMessage{Type: model.WSMessageTypePong})

	// The writer owns every write on c and must finish before the handler
	// returns, since the conn is released to a pool afterwards.
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()

		write := func(messageType int, data []byte) bool {
			_ = c.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WriteMessage(messageType, data); err != nil {
				// unblocks the reader
				_ = c.Close()
				return false
			}
			return true
		}

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					write(websocket.CloseMessage, []byte{})
					return
				}
				if !write(websocket.TextMessage, message) {
					return
				}

			case <-client.pong:
				if !write(websocket.TextMessage, pong) {
					return
				}

			case <-ticker.C:
				// Send ping for keep-alive
				if !write(websocket.PingMessage, nil) {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error(h.log, "WebSocket error", err, logging.Fields{logging.FieldSessionID: sessionID})
			}
			break
		}

		// Handle client messages (ping/pong)
		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			select {
			case client.pong <- struct{}{}:
			default:
			}
		}
	}

	// Unregister closes Send, which stops the writer.
	h.Unregister(client)
	<-done
}
