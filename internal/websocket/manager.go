package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"go-task-organizer/internal/store"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	StoreChanged NotificationType = "store_changed"
	StoreSaved   NotificationType = "store_saved"
	SaveFailed   NotificationType = "save_failed"
)

// Notification is the message pushed to connected clients.
type Notification struct {
	Type    NotificationType `json:"type"`
	Op      string           `json:"op,omitempty"`
	Version uint64           `json:"version,omitempty"`
	At      time.Time        `json:"at"`
	Message string           `json:"message,omitempty"`
}

// Conn is the part of a websocket connection the manager writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a WebSocket client connection
type Client struct {
	Conn Conn
	mu   sync.Mutex
}

func (c *Client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// Manager fans store notifications out to connected clients.
type Manager struct {
	clients    map[*Client]struct{}
	mu         sync.RWMutex
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once
}

// NewManager starts a manager.
func NewManager() *Manager {
	m := &Manager{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	go m.run()
	return m
}

// run starts the WebSocket manager
func (m *Manager) run() {
	for {
		select {
		case client := <-m.register:
			m.mu.Lock()
			m.clients[client] = struct{}{}
			m.mu.Unlock()
		case client := <-m.unregister:
			m.mu.Lock()
			delete(m.clients, client)
			m.mu.Unlock()
		case <-m.done:
			m.mu.Lock()
			for client := range m.clients {
				client.Conn.Close()
			}
			m.clients = make(map[*Client]struct{})
			m.mu.Unlock()
			return
		}
	}
}

// Close disconnects every client and stops the manager.
func (m *Manager) Close() {
	m.closeOnce.Do(func() { close(m.done) })
}

// RegisterClient registers a new WebSocket client
func (m *Manager) RegisterClient(client *Client) {
	select {
	case m.register <- client:
	case <-m.done:
	}
}

// UnregisterClient unregisters a WebSocket client
func (m *Manager) UnregisterClient(client *Client) {
	select {
	case m.unregister <- client:
	case <-m.done:
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Broadcast sends a notification to every connected client.
func (m *Manager) Broadcast(notification *Notification) error {
	data, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	m.mu.RLock()
	clients := make([]*Client, 0, len(m.clients))
	for client := range m.clients {
		clients = append(clients, client)
	}
	m.mu.RUnlock()

	for _, client := range clients {
		if err := client.send(data); err != nil {
			// Handle error but continue sending to other clients
			continue
		}
	}
	return nil
}

// Watch forwards every committed store transaction to the clients. The
// returned func stops forwarding.
func (m *Manager) Watch(s *store.Store) func() {
	return s.Subscribe(func(ev store.ChangeEvent) {
		m.Broadcast(&Notification{
			Type:    StoreChanged,
			Op:      ev.Op,
			Version: ev.Version,
			At:      ev.At,
		})
	})
}

// SendSaved announces a successful save.
func (m *Manager) SendSaved(version uint64) {
	m.Broadcast(&Notification{Type: StoreSaved, Version: version, At: time.Now().UTC()})
}

// SendSaveFailed announces a failed save.
func (m *Manager) SendSaveFailed(errMsg string) {
	m.Broadcast(&Notification{Type: SaveFailed, Message: errMsg, At: time.Now().UTC()})
}
