package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"vitclubs/utils"
)

// Event is the wire format for every frame pushed to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Manager owns the presence map: user id -> active connection. All state
// lives in process memory; a restart forgets everyone. A second connection
// for the same user replaces the first.
type Manager struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

type Client struct {
	conn    *websocket.Conn
	userID  string
	send    chan []byte
	manager *Manager
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Start runs the connection lifecycle loop. Connect and disconnect are the
// only mutation points of the presence map.
func (m *Manager) Start() {
	for {
		select {
		case client := <-m.register:
			m.add(client)
		case client := <-m.unregister:
			m.remove(client)
		}
	}
}

func (m *Manager) add(client *Client) {
	m.mu.Lock()
	if old, ok := m.clients[client.userID]; ok && old != client {
		close(old.send)
	}
	m.clients[client.userID] = client
	m.mu.Unlock()

	utils.Sugar.Infow("user connected", "userId", client.userID, "online", m.Count())
	m.broadcastOnlineUsers()
}

func (m *Manager) remove(client *Client) {
	m.mu.Lock()
	current, ok := m.clients[client.userID]
	if ok && current == client {
		delete(m.clients, client.userID)
		close(client.send)
	}
	m.mu.Unlock()

	if ok && current == client {
		utils.Sugar.Infow("user disconnected", "userId", client.userID, "online", m.Count())
		m.broadcastOnlineUsers()
	}
}

// OnlineUsers returns the ids of all currently connected users.
func (m *Manager) OnlineUsers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.clients))
	for id := range m.clients {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of connected users.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// broadcastOnlineUsers pushes the full key set to every connected client
// after each connect or disconnect.
func (m *Manager) broadcastOnlineUsers() {
	msg, err := json.Marshal(Event{Type: "getOnlineUsers", Payload: m.OnlineUsers()})
	if err != nil {
		utils.Sugar.Errorw("marshal online users", "error", err)
		return
	}

	m.mu.Lock()
	for id, client := range m.clients {
		select {
		case client.send <- msg:
		default:
			delete(m.clients, id)
			close(client.send)
		}
	}
	m.mu.Unlock()
}

// SendToUser delivers an event to a single user if they are online. Returns
// false when the user has no active connection.
func (m *Manager) SendToUser(userID string, event Event) bool {
	msg, err := json.Marshal(event)
	if err != nil {
		utils.Sugar.Errorw("marshal event", "type", event.Type, "error", err)
		return false
	}

	m.mu.RLock()
	client, ok := m.clients[userID]
	m.mu.RUnlock()
	if !ok {
		return false
	}

	select {
	case client.send <- msg:
		return true
	default:
		return false
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler upgrades the connection after verifying the caller's token and
// registers the client with the presence map.
func Handler(manager *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "Token required", http.StatusUnauthorized)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			utils.Sugar.Errorw("websocket upgrade failed", "error", err)
			return
		}

		client := &Client{
			conn:    conn,
			userID:  claims.UserID,
			send:    make(chan []byte, 256),
			manager: manager,
		}

		manager.register <- client

		go client.writePump()
		go client.readPump()
	}
}

func (c *Client) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Presence only: inbound frames just keep the connection alive.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				utils.Sugar.Debugw("websocket read error", "userId", c.userID, "error", err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
