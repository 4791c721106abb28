package api

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/batch-image-converter/backend/internal/models"
)

// WebSocket message types for the conversion progress protocol
const (
	// Server -> Client messages
	MsgTypeEntryStarted  = "entry:started"
	MsgTypeEntryFinished = "entry:finished"
	MsgTypeBatchFinished = "batch:finished"
	MsgTypePong          = "pong"

	// Client -> Server messages
	MsgTypePing = "ping"
)

// WSProgressEvent is pushed to subscribers as conversion advances
type WSProgressEvent struct {
	Type      string             `json:"type"`
	BatchID   string             `json:"batchId"`
	EntryID   string             `json:"entryId,omitempty"`
	Status    models.EntryStatus `json:"status,omitempty"`
	Error     string             `json:"error,omitempty"`
	Converted int                `json:"converted,omitempty"`
	Failed    int                `json:"failed,omitempty"`
	Timestamp int64              `json:"timestamp"`
}

// wsSubscriber wraps one connection with its own write lock; gorilla allows
// one concurrent writer per connection, and conversion tasks broadcast
// concurrently. Per-connection locking keeps a stalled subscriber from
// delaying writes to anyone else.
type wsSubscriber struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (s *wsSubscriber) send(event *WSProgressEvent) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := s.conn.WriteJSON(event); err != nil {
		fmt.Printf("[WS] write failed, dropping subscriber: %v\n", err)
	}
}

// WebSocketHandler manages progress subscriptions, one set of connections
// per batch. It implements orchestrate.Notifier so the orchestrator can
// publish without knowing about the transport.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	subs     map[string]map[*wsSubscriber]bool
}

// NewWebSocketHandler creates a progress websocket handler
func NewWebSocketHandler(maxMessageKB int) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024 * maxMessageKB,
			// Browser clients come from arbitrary dev origins; CORS is
			// enforced at the HTTP layer
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: make(map[string]map[*wsSubscriber]bool),
	}
}

// HandleWebSocket upgrades the connection and subscribes it to one batch's
// progress events until the client disconnects
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	batchID := c.Param("batchId")
	if batchID == "" {
		return NewValidationError("batchId")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return NewBadRequestError("websocket upgrade failed", err)
	}

	sub := &wsSubscriber{conn: conn}
	h.subscribe(batchID, sub)
	defer h.unsubscribe(batchID, sub)

	// Read loop: only ping and close are expected from the client
	for {
		var msg struct {
			Type string `json:"type"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			return nil
		}
		if msg.Type == MsgTypePing {
			sub.send(&WSProgressEvent{
				Type:      MsgTypePong,
				BatchID:   batchID,
				Timestamp: time.Now().UnixMilli(),
			})
		}
	}
}

// EntryStarted implements orchestrate.Notifier
func (h *WebSocketHandler) EntryStarted(batchID, entryID string) {
	h.broadcast(batchID, &WSProgressEvent{
		Type:      MsgTypeEntryStarted,
		BatchID:   batchID,
		EntryID:   entryID,
		Status:    models.StatusConverting,
		Timestamp: time.Now().UnixMilli(),
	})
}

// EntryFinished implements orchestrate.Notifier
func (h *WebSocketHandler) EntryFinished(batchID, entryID string, status models.EntryStatus, errMsg string) {
	h.broadcast(batchID, &WSProgressEvent{
		Type:      MsgTypeEntryFinished,
		BatchID:   batchID,
		EntryID:   entryID,
		Status:    status,
		Error:     errMsg,
		Timestamp: time.Now().UnixMilli(),
	})
}

// BatchFinished implements orchestrate.Notifier
func (h *WebSocketHandler) BatchFinished(batchID string, converted, failed int) {
	h.broadcast(batchID, &WSProgressEvent{
		Type:      MsgTypeBatchFinished,
		BatchID:   batchID,
		Converted: converted,
		Failed:    failed,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (h *WebSocketHandler) subscribe(batchID string, sub *wsSubscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[batchID] == nil {
		h.subs[batchID] = make(map[*wsSubscriber]bool)
	}
	h.subs[batchID][sub] = true
}

func (h *WebSocketHandler) unsubscribe(batchID string, sub *wsSubscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[batchID], sub)
	if len(h.subs[batchID]) == 0 {
		delete(h.subs, batchID)
	}
	sub.conn.Close()
}

func (h *WebSocketHandler) broadcast(batchID string, event *WSProgressEvent) {
	h.mu.RLock()
	targets := make([]*wsSubscriber, 0, len(h.subs[batchID]))
	for sub := range h.subs[batchID] {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		sub.send(event)
	}
}
