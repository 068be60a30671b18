package hub

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mohitjoer/freelance-chat-service/internal/config"
	"github.com/mohitjoer/freelance-chat-service/internal/domain"
	"github.com/mohitjoer/freelance-chat-service/internal/log"
)

// Hub owns the room registry: roomID -> clientID -> client. Membership is
// pure runtime state, rebuilt from nothing on restart. Fan-out happens on a
// single run loop, so deliveries for a room keep the order broadcasts were
// enqueued and the registry is never observed mid-mutation by a broadcast.
//
// A client's Send channel is never closed; shutdown is signalled through the
// client's done channel so a late SendMessage from its read pump cannot hit
// a closed channel.
type Hub struct {
	clients    map[string]*Client            // clientID -> client
	rooms      map[string]map[string]*Client // roomID -> clientID -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *roomMessage
	done       chan struct{} // closed when the run loop has drained
	mu         sync.RWMutex
	config     config.WebSocketConfig
}

type roomMessage struct {
	RoomID  string
	Message []byte
	Exclude string // client ID to skip, empty to include everyone
}

func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomMessage, 256),
		done:       make(chan struct{}),
		config:     cfg,
	}
}

// Run processes registration and fan-out events until ctx is cancelled,
// then drains: every connected client is signalled to close so write pumps
// emit a close frame and exit.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.drain()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			l := log.L()
			l.Debug().Str(log.FieldSessionID, client.ID).Msg("client registered")

		case client := <-h.unregister:
			h.removeAndNotify(client)
			l := log.L()
			l.Debug().Str(log.FieldSessionID, client.ID).Msg("client unregistered")

		case msg := <-h.broadcast:
			h.mu.RLock()
			if members, ok := h.rooms[msg.RoomID]; ok {
				for clientID, client := range members {
					if clientID == msg.Exclude {
						continue
					}
					h.deliver(client, msg.Message)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// deliver queues a frame for one client. A full buffer means a slow
// consumer: it is dropped without aborting the fan-out to the rest.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		go h.Unregister(client)
	}
}

// removeAndNotify takes the client out of the registry and tells the
// remaining members of each affected room. Removal here must behave like an
// explicit leave of every joined room, whether it came from a transport
// disconnect or a forced slow-consumer drop.
func (h *Hub) removeAndNotify(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	for roomID, members := range h.rooms {
		if _, member := members[client.ID]; !member {
			continue
		}
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
			continue
		}

		data, err := json.Marshal(&domain.UserLeftMessage{
			Type:      domain.MsgTypeUserLeft,
			RoomID:    roomID,
			SessionID: client.ID,
		})
		if err != nil {
			continue
		}
		for _, remaining := range members {
			h.deliver(remaining, data)
		}
	}

	delete(h.clients, client.ID)
	client.signalClose()
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.signalClose()
	}
}

// Unregister hands the client to the run loop for removal. Safe to call
// during and after shutdown; once the hub has drained it is a no-op.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Join adds the client to a room, creating the registry entry if absent.
// Returns false if the client was already a member.
func (h *Hub) Join(client *Client, roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[string]*Client)
	}
	if _, ok := h.rooms[roomID][client.ID]; ok {
		return false
	}
	h.rooms[roomID][client.ID] = client
	l := log.L()
	l.Info().Str(log.FieldSessionID, client.ID).Str(log.FieldRoomID, roomID).Msg("client joined room")
	return true
}

// Leave removes the client from a room. Returns false if the client was not
// a member; leaving a room never joined is a no-op, not an error.
func (h *Hub) Leave(client *Client, roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomID]
	if !ok {
		return false
	}
	if _, ok := members[client.ID]; !ok {
		return false
	}
	delete(members, client.ID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
	l := log.L()
	l.Info().Str(log.FieldSessionID, client.ID).Str(log.FieldRoomID, roomID).Msg("client left room")
	return true
}

// Broadcast enqueues a message for every current member of the room.
// Pass exclude="" to include all members (sender echo).
func (h *Hub) Broadcast(roomID string, message interface{}, exclude string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- &roomMessage{
		RoomID:  roomID,
		Message: data,
		Exclude: exclude,
	}:
	case <-h.done:
		// Shutting down; nobody left to deliver to.
	}
	return nil
}

// RoomSize returns the number of clients currently joined to the room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if members, ok := h.rooms[roomID]; ok {
		return len(members)
	}
	return 0
}

// IsMember reports whether the client is currently joined to the room.
func (h *Hub) IsMember(client *Client, roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members, ok := h.rooms[roomID]
	if !ok {
		return false
	}
	_, ok = members[client.ID]
	return ok
}

func (h *Hub) drain() {
	h.mu.Lock()
	defer h.mu.Unlock()

	close(h.done)
	for id, client := range h.clients {
		client.signalClose()
		delete(h.clients, id)
	}
	h.rooms = make(map[string]map[string]*Client)
	l := log.L()
	l.Info().Msg("hub drained")
}
