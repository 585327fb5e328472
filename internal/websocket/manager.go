package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"lesson-notes-server/pkg/logger"
)

type ClientMessage struct {
	Client  *Client
	Message []byte
}

type Options struct {
	MaxConnPerStudent int
	MaxMessageSize    int64
	WriteWait         time.Duration
	PongWait          time.Duration
	PingPeriod        time.Duration
}

type Manager struct {
	log               *logger.Logger
	clients           map[string]*Client
	studentIndex      map[int64]map[string]bool
	clientsMutex      sync.RWMutex
	Register          chan *Client
	Unregister        chan *Client
	HandleMessage     chan *ClientMessage
	maxConnPerStudent int
	maxMessageSize    int64
	writeWait         time.Duration
	pongWait          time.Duration
	pingPeriod        time.Duration
	messageHandler    MessageHandler
}

type MessageHandler interface {
	HandleWebSocketMessage(client *Client, msg *Message) error
}

func NewManager(opts Options, log *logger.Logger) *Manager {
	return &Manager{
		log:               log.With("service", "WebSocketManager"),
		clients:           make(map[string]*Client),
		studentIndex:      make(map[int64]map[string]bool),
		Register:          make(chan *Client),
		Unregister:        make(chan *Client),
		HandleMessage:     make(chan *ClientMessage),
		maxConnPerStudent: opts.MaxConnPerStudent,
		maxMessageSize:    opts.MaxMessageSize,
		writeWait:         opts.WriteWait,
		pongWait:          opts.PongWait,
		pingPeriod:        opts.PingPeriod,
	}
}

func (m *Manager) SetMessageHandler(handler MessageHandler) {
	m.messageHandler = handler
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.Register:
			m.registerClient(client)

		case client := <-m.Unregister:
			m.unregisterClient(client)

		case clientMsg := <-m.HandleMessage:
			m.processMessage(clientMsg)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if m.studentIndex[client.StudentID] == nil {
		m.studentIndex[client.StudentID] = make(map[string]bool)
	}

	if len(m.studentIndex[client.StudentID]) >= m.maxConnPerStudent {
		m.log.Warn("max connections reached", "student_id", client.StudentID)
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	m.studentIndex[client.StudentID][client.ID] = true

	m.log.Debug("client registered", "client_id", client.ID, "student_id", client.StudentID, "instance_id", client.InstanceID)
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		delete(m.studentIndex[client.StudentID], client.ID)

		if len(m.studentIndex[client.StudentID]) == 0 {
			delete(m.studentIndex, client.StudentID)
		}

		close(client.Send)
		m.log.Debug("client unregistered", "client_id", client.ID)
	}
}

func (m *Manager) processMessage(clientMsg *ClientMessage) {
	var msg Message
	if err := json.Unmarshal(clientMsg.Message, &msg); err != nil {
		m.log.Warn("error unmarshaling message", "client_id", clientMsg.Client.ID, "error", err)
		return
	}

	if m.messageHandler != nil {
		if err := m.messageHandler.HandleWebSocketMessage(clientMsg.Client, &msg); err != nil {
			m.log.Warn("error handling message", "client_id", clientMsg.Client.ID, "error", err)
		}
	}
}

// BroadcastToStudent sends the message to every open widget of the student
// except the one identified by excludeInstanceID. Clients whose send buffer
// is full are disconnected.
func (m *Manager) BroadcastToStudent(studentID int64, message *Message, excludeInstanceID string) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	var stale []*Client

	m.clientsMutex.RLock()
	for clientID := range m.studentIndex[studentID] {
		client := m.clients[clientID]
		if excludeInstanceID != "" && client.InstanceID == excludeInstanceID {
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			m.log.Warn("client send buffer full, closing connection", "client_id", clientID)
			stale = append(stale, client)
		}
	}
	m.clientsMutex.RUnlock()

	for _, client := range stale {
		go func(c *Client) { m.Unregister <- c }(client)
	}

	return nil
}

func (m *Manager) SendToClient(clientID string, message *Message) error {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	client, exists := m.clients[clientID]
	if !exists {
		return nil
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case client.Send <- messageBytes:
	default:
		m.log.Warn("client send buffer full", "client_id", clientID)
	}

	return nil
}

func (m *Manager) StudentConnections(studentID int64) int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	return len(m.studentIndex[studentID])
}
