package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mohitjoer/freelance-chat-service/internal/config"
	"github.com/mohitjoer/freelance-chat-service/internal/domain"
	"github.com/mohitjoer/freelance-chat-service/internal/log"
)

// Client is one connected socket: the transport handle, its outbound buffer
// and the session tracking which rooms it has joined.
//
// Send stays open for the client's whole lifetime. The hub signals teardown
// by closing done instead, so queuing a frame after removal is always safe
// and simply goes nowhere.
type Client struct {
	ID      string
	Hub     *Hub
	Conn    *websocket.Conn
	Send    chan []byte
	Session *domain.Session
	done    chan struct{}
	once    sync.Once
	config  config.WebSocketConfig
}

func NewClient(id string, hub *Hub, conn *websocket.Conn, cfg config.WebSocketConfig) *Client {
	bufSize := cfg.SendBufferSize
	if bufSize <= 0 {
		bufSize = 256
	}
	return &Client{
		ID:      id,
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, bufSize),
		Session: domain.NewSession(id),
		done:    make(chan struct{}),
		config:  cfg,
	}
}

// ReadPump reads frames until the connection drops for any reason, then runs
// onDisconnect exactly once. Cleanup is unconditional: a client that never
// joined a room disconnects just as safely as one joined to several.
func (c *Client) ReadPump(handler func(*Client, []byte), onDisconnect func(*Client)) {
	defer func() {
		onDisconnect(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l := log.L()
				l.Warn().Err(err).Str(log.FieldSessionID, c.ID).Msg("websocket read error")
			}
			break
		}

		if c.Session != nil {
			c.Session.UpdateActivity()
		}

		handler(c, message)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage marshals and queues a frame for this client only. A full
// buffer drops the frame rather than blocking the caller.
func (c *Client) SendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		// Client already torn down; nothing is reading Send anymore.
	case c.Send <- data:
	default:
		l := log.L()
		l.Warn().Str(log.FieldSessionID, c.ID).Msg("send buffer full, dropping frame")
	}
	return nil
}

// signalClose marks the client as torn down. Idempotent; the hub calls it
// from the run loop and from drain.
func (c *Client) signalClose() {
	c.once.Do(func() { close(c.done) })
}
