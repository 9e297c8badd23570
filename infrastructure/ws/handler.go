// Package ws is the websocket transport: the session handshake gate and
// the per-connection read/write pumps.
package ws

import (
	"chat-live/auth"
	"chat-live/domain"
	"chat-live/services"
	"chat-live/sink"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests into authenticated chat sessions.
//
// The handshake runs entirely before the upgrade is promoted to a
// registered session: a missing, malformed or expired token yields 401
// and no chat traffic can ever reach the connection.
type Handler struct {
	log         *slog.Logger
	codec       *auth.TokenCodec
	chatService services.IChatService
	upgrader    websocket.Upgrader
	bufferSize  int
	maxMsgSize  int64
}

func NewHandler(log *slog.Logger, codec *auth.TokenCodec,
	chatService services.IChatService, bufferSize int, maxMsgSize int64) *Handler {
	return &Handler{
		log:         log,
		codec:       codec,
		chatService: chatService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin enforcement is left to the reverse proxy in front
			// of the node.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		bufferSize: bufferSize,
		maxMsgSize: maxMsgSize,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The handshake payload also carries an advisory "username" field.
	// It is deliberately ignored: the identity always comes from the token.
	identity, err := h.codec.Verify(extractToken(r))
	if err != nil {
		h.log.Warn("Handshake rejected", "remote", r.RemoteAddr, "error", err)
		http.Error(w, "authentication error", http.StatusUnauthorized)
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	conn := domain.Connection{
		ID:          uuid.NewString(),
		Identity:    identity,
		ConnectedAt: time.Now().UTC(),
	}
	connSink := sink.NewConnSink(h.bufferSize)

	// Admission happens before any message listener is attached, so the
	// join notice always precedes traffic from this connection.
	if err := h.chatService.Join(conn, connSink); err != nil {
		h.log.Error("Admission failed", "connection_id", conn.ID, "error", err)
		_ = wsConn.Close()
		return
	}

	h.log.Info("User connected",
		"connection_id", conn.ID,
		"username", identity.Username)

	client := NewClient(h.log, wsConn, conn.ID, connSink, h.chatService, h.maxMsgSize)
	go client.WritePump()
	client.ReadPump()
}

// extractToken reads the token from the Authorization header or, for
// browser websocket clients that cannot set headers, the query string.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
