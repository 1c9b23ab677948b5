package conversation

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	convservice "github.com/zhouzirui/menu-assistant/backend/internal/service/conversation"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 4096
)

// WebSocketHandler serves a chat channel where each text frame is one
// customer message and each reply is sent back as a JSON frame.
type WebSocketHandler struct {
	engine   *convservice.Engine
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketHandler returns a handler that upgrades with checkOrigin.
func NewWebSocketHandler(engine *convservice.Engine, checkOrigin func(r *http.Request) bool, logger *zap.Logger) *WebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	return &WebSocketHandler{
		engine: engine,
		logger: logger.Named("ws"),
		upgrader: websocket.Upgrader{
			CheckOrigin:     checkOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes mounts the chat channel route.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/{branchID}/{senderID}", h.handleWebSocket)
}

type inboundMessage struct {
	Text         string            `json:"text"`
	BusinessType string            `json:"businessType,omitempty"`
	BusinessID   string            `json:"businessId,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type outgoingMessage struct {
	Type      string             `json:"type"`
	Reply     *convservice.Reply `json:"reply,omitempty"`
	Error     string             `json:"error,omitempty"`
	Timestamp int64              `json:"timestamp"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchID")
	senderID := chi.URLParam(r, "senderID")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	logger := h.logger.With(zap.String("sender", senderID), zap.String("branch", branchID))
	logger.Debug("connection opened")

	conn.SetReadLimit(maxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go h.keepAlive(conn, done)

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) || errors.Is(err, websocket.ErrCloseSent) {
				logger.Debug("connection closed")
			} else {
				logger.Debug("read failed", zap.Error(err))
			}
			return
		}

		out := outgoingMessage{Type: "reply", Timestamp: time.Now().UnixMilli()}
		if msg.Text == "" {
			out.Type, out.Error = "error", "text is required"
		} else {
			reply := h.engine.Respond(r.Context(), convservice.Request{
				BranchID:     branchID,
				SenderID:     senderID,
				Text:         msg.Text,
				BusinessType: msg.BusinessType,
				BusinessID:   msg.BusinessID,
				Metadata:     msg.Metadata,
			})
			out.Reply = &reply
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(out); err != nil {
			logger.Debug("write failed", zap.Error(err))
			return
		}
	}
}

// keepAlive pings the peer until done is closed. gorilla connections allow
// WriteControl concurrently with other writes.
func (h *WebSocketHandler) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
