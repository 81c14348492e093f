package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coder/websocket"

	"github.com/roiboard/roiboard/internal/asset"
	"github.com/roiboard/roiboard/internal/engine"
	"github.com/roiboard/roiboard/internal/roiset"
)

// Manager tracks the live sessions so they can be closed on shutdown. Sessions do not share
// state; each owns its engine.
type Manager struct {
	mu         sync.RWMutex
	clients    map[string]*Client // sessionID -> client
	opts       engine.Options
	sets       *roiset.Service
	assets     *asset.Library
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

// NewManager builds a manager. sets and assets may be nil, which disables set.* messages and
// asset-backed image.load respectively. Invalid opts panic here rather than on the first
// connection.
func NewManager(opts engine.Options, sets *roiset.Service, assets *asset.Library) *Manager {
	if err := opts.Validate(); err != nil {
		panic(fmt.Sprintf("session: invalid engine options: %v", err))
	}
	return &Manager{
		clients:    make(map[string]*Client),
		opts:       opts,
		sets:       sets,
		assets:     assets,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.addClient(client)
		case client := <-m.unregister:
			m.removeClient(client)
		case <-m.done:
			return
		}
	}
}

// Register hands a client to the run loop. It reports false once the manager is stopped.
func (m *Manager) Register(client *Client) bool {
	select {
	case m.register <- client:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) unregisterClient(client *Client) {
	select {
	case m.unregister <- client:
	case <-m.done:
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// Stop ends the run loop and closes every live connection.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)

		m.mu.Lock()
		clients := make([]*Client, 0, len(m.clients))
		for _, c := range m.clients {
			clients = append(clients, c)
		}
		m.clients = make(map[string]*Client)
		m.mu.Unlock()

		for _, c := range clients {
			c.conn.Close(websocket.StatusGoingAway, "server shutting down")
		}
		slog.Info("sessions closed", "count", len(clients))
	})
}

func (m *Manager) addClient(client *Client) {
	m.mu.Lock()
	m.clients[client.SessionID] = client
	m.mu.Unlock()

	payload, _ := json.Marshal(WelcomePayload{SessionID: client.SessionID, UserID: client.UserID})
	client.Send(&Message{Type: TypeWelcome, Payload: payload})

	slog.Info("session opened", "session", client.SessionID, "user", client.UserID)
}

func (m *Manager) removeClient(client *Client) {
	m.mu.Lock()
	if _, ok := m.clients[client.SessionID]; !ok {
		m.mu.Unlock()
		return
	}
	delete(m.clients, client.SessionID)
	close(client.send)
	m.mu.Unlock()

	slog.Info("session closed", "session", client.SessionID, "user", client.UserID)
}
