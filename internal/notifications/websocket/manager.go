package websocket

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"site-lens/field-portal/field-portal-backend/internal/notifications"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
)

// Manager handles in-app WebSocket connections and event routing
type Manager struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	logger      *zap.Logger
	upgrader    websocket.Upgrader
}

// Connection represents a connected client
type Connection struct {
	ID         string
	UserID     string
	ProjectIDs []string
	Conn       *websocket.Conn
	Send       chan notifications.Event
}

// NewManager creates a new WebSocket manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		connections: make(map[string]*Connection),
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleConnection upgrades an HTTP request to a WebSocket connection.
// The authenticated user id comes from the auth middleware; project
// subscriptions come from the "projects" query parameter.
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request, userID string) (*Connection, error) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	var projectIDs []string
	if raw := r.URL.Query().Get("projects"); raw != "" {
		projectIDs = strings.Split(raw, ",")
	}

	connection := &Connection{
		ID:         uuid.New().String(),
		UserID:     userID,
		ProjectIDs: projectIDs,
		Conn:       conn,
		Send:       make(chan notifications.Event, 64),
	}

	m.mu.Lock()
	m.connections[connection.ID] = connection
	m.mu.Unlock()

	go m.readPump(connection)
	go m.writePump(connection)

	return connection, nil
}

// SendToUser delivers an event to every connection of the given user.
func (m *Manager) SendToUser(userID string, event notifications.Event) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sent := false
	for _, conn := range m.connections {
		if conn.UserID != userID {
			continue
		}
		select {
		case conn.Send <- event:
			sent = true
		default:
			m.logger.Warn("dropping event for slow websocket client",
				zap.String("connection_id", conn.ID))
		}
	}
	if !sent {
		return fmt.Errorf("no active connection for user %s", userID)
	}
	return nil
}

// SendToProject delivers an event to every connection subscribed to the project.
func (m *Manager) SendToProject(projectID string, event notifications.Event) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, conn := range m.connections {
		for _, pid := range conn.ProjectIDs {
			if pid != projectID {
				continue
			}
			select {
			case conn.Send <- event:
			default:
				m.logger.Warn("dropping event for slow websocket client",
					zap.String("connection_id", conn.ID))
			}
		}
	}
	return nil
}

func (m *Manager) remove(conn *Connection) {
	m.mu.Lock()
	if _, ok := m.connections[conn.ID]; ok {
		delete(m.connections, conn.ID)
		close(conn.Send)
	}
	m.mu.Unlock()
}

// readPump drains client messages to keep the connection alive; clients
// only receive, so incoming payloads are discarded.
func (m *Manager) readPump(conn *Connection) {
	defer func() {
		m.remove(conn)
		conn.Conn.Close()
	}()

	conn.Conn.SetReadLimit(maxMessageSize)
	conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// writePump pumps queued events to the client with periodic pings.
func (m *Manager) writePump(conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Close terminates all connections.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, conn := range m.connections {
		close(conn.Send)
		conn.Conn.Close()
		delete(m.connections, id)
	}
}
