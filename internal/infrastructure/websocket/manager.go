package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ecotrack/internal/domain/entity"
	"ecotrack/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// Client is one live feed connection.
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	mu     sync.RWMutex
	city   string
	closed bool
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
	}
}

// City returns the city filter, empty for all cities.
func (c *Client) City() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.city
}

func (c *Client) setCity(city string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.city = city
}

// queue hands msg to the writer without blocking. It reports false when the
// client is closed or its buffer is full.
func (c *Client) queue(msg []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

type outbound struct {
	city    string
	payload []byte
}

// Manager fans report events out to every connected client.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	broadcast  chan outbound
	done       chan struct{}
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan outbound, 256),
		done:       make(chan struct{}),
	}
}

// Start runs the manager loop until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.ID] = client
				m.mutex.Unlock()
				logger.Debug("Feed client registered: %s (user %s)", client.ID, client.UserID)

			case client := <-m.Unregister:
				m.remove(client)
				logger.Debug("Feed client unregistered: %s", client.ID)

			case message := <-m.broadcast:
				m.deliver(message)

			case <-ctx.Done():
				close(m.done)
				m.mutex.Lock()
				for id, client := range m.clients {
					client.close()
					delete(m.clients, id)
				}
				m.mutex.Unlock()
				return
			}
		}
	}()
}

// Add registers client with the running manager; false once it has stopped.
func (m *Manager) Add(client *Client) bool {
	select {
	case m.Register <- client:
		return true
	case <-m.done:
		return false
	}
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		client.close()
	}
}

func (m *Manager) deliver(message outbound) {
	m.mutex.RLock()
	var slow []*Client
	for _, client := range m.clients {
		if city := client.City(); city != "" && message.city != "" && city != message.city {
			continue
		}
		if !client.queue(message.payload) {
			slow = append(slow, client)
		}
	}
	m.mutex.RUnlock()

	for _, client := range slow {
		logger.Warn("Feed client %s is not keeping up, disconnecting", client.ID)
		m.remove(client)
	}
}

// Broadcast implements service.Broadcaster. Report events are only delivered
// to clients subscribed to the report's city or to all cities.
func (m *Manager) Broadcast(messageType string, payload interface{}) {
	var city string
	if event, ok := payload.(entity.DomainEvent); ok && event.Report != nil {
		city = event.Report.City
	}

	data, err := json.Marshal(NewMessage(messageType, payload))
	if err != nil {
		logger.Error("Failed to encode feed message %s: %v", messageType, err)
		return
	}

	select {
	case m.broadcast <- outbound{city: city, payload: data}:
	default:
		logger.Warn("Feed broadcast queue full, dropping %s", messageType)
	}
}

func (m *Manager) ClientCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// ReadPump reads client commands until the connection closes.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		select {
		case m.Unregister <- c:
		case <-m.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Feed client %s read error: %v", c.ID, err)
			}
			return
		}

		if reply := HandleMessage(c, message); reply != nil {
			c.queue(reply)
		}
	}
}

// WritePump writes queued messages and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Feed client %s write error: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
