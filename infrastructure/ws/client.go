package ws

import (
	"chat-live/services"
	"chat-live/sink"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client drives one websocket connection after admission: the read pump
// feeds intake, the write pump drains the connection's sink.
// Once either pump exits, the session leaves the registry; leave is
// idempotent so racing exit paths are safe.
type Client struct {
	log          *slog.Logger
	conn         *websocket.Conn
	connectionID string
	sink         *sink.ConnSink
	chatService  services.IChatService
	maxMsgSize   int64
}

func NewClient(log *slog.Logger, conn *websocket.Conn, connectionID string,
	connSink *sink.ConnSink, chatService services.IChatService, maxMsgSize int64) *Client {
	return &Client{
		log:          log,
		conn:         conn,
		connectionID: connectionID,
		sink:         connSink,
		chatService:  chatService,
		maxMsgSize:   maxMsgSize,
	}
}

// ReadPump reads inbound envelopes until the connection dies, forwarding
// send_message payloads to intake. It blocks the handler goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.chatService.Leave(c.connectionID)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.maxMsgSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.log.Warn("Unexpected websocket error",
					"connection_id", c.connectionID, "error", err)
			}
			return
		}

		var inbound Inbound
		if err := json.Unmarshal(raw, &inbound); err != nil {
			c.log.Debug("Invalid envelope, dropping",
				"connection_id", c.connectionID, "error", err)
			continue
		}

		if inbound.Event != EventSendMessage {
			continue
		}
		c.chatService.Post(c.connectionID, inbound.Payload)
	}
}

// WritePump pushes broadcast events and pings to the peer. It exits when
// the sink closes or a write fails, which in turn tears down the read
// pump through the closed connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.sink.Events:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			outbound := Outbound{Event: EventNewMessage, Payload: evt}
			if err := c.conn.WriteJSON(outbound); err != nil {
				c.log.Debug("Write failed",
					"connection_id", c.connectionID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
