package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"

	"lesson-notes-server/internal/middleware"
	"lesson-notes-server/internal/websocket"
	"lesson-notes-server/pkg/jwt"
	"lesson-notes-server/pkg/logger"
)

type WebSocketHandler struct {
	manager   *websocket.Manager
	jwtSecret string
	upgrader  ws.Upgrader
	log       *logger.Logger
}

func NewWebSocketHandler(manager *websocket.Manager, jwtSecret string, readBuffer, writeBuffer int, allowedOrigins string, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		manager:   manager,
		jwtSecret: jwtSecret,
		upgrader: ws.Upgrader{
			ReadBufferSize:  readBuffer,
			WriteBufferSize: writeBuffer,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log.With("handler", "websocket"),
	}
}

func originChecker(allowedOrigins string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range strings.Split(allowedOrigins, ",") {
			o = strings.TrimSpace(o)
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// HandleConnection upgrades a widget connection. Browsers cannot set headers
// on websocket requests, so the launch token travels in the query string.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}

	if token == "" {
		http.Error(w, "missing authorization token", http.StatusUnauthorized)
		return
	}

	claims, err := jwt.ValidateToken(token, h.jwtSecret)
	if err != nil {
		h.log.Warn("websocket token rejected", "error", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	instanceID := middleware.GetInstanceID(r)
	if instanceID == "" {
		instanceID = uuid.New().String()
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "student_id", claims.StudentID, "error", err)
		return
	}

	client := websocket.NewClient(uuid.New().String(), claims.StudentID, instanceID, conn, h.manager)
	h.manager.Register <- client

	h.log.Debug("websocket connected", "student_id", claims.StudentID, "instance_id", instanceID)

	go client.WritePump()
	go client.ReadPump()
}

// WebSocketMessageHandler answers messages sent by widgets. Note changes go
// through the REST API, so only keepalives are expected here.
type WebSocketMessageHandler struct {
	log *logger.Logger
}

func NewWebSocketMessageHandler(log *logger.Logger) *WebSocketMessageHandler {
	return &WebSocketMessageHandler{log: log.With("handler", "websocket_messages")}
}

func (h *WebSocketMessageHandler) HandleWebSocketMessage(client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypePing:
		return reply(client, websocket.TypePong, nil)

	default:
		h.log.Debug("unsupported websocket message", "type", string(msg.Type), "client_id", client.ID)
		return reply(client, websocket.TypeError, &websocket.ErrorPayload{
			Error: "unsupported message type: " + string(msg.Type),
		})
	}
}

func reply(client *websocket.Client, msgType websocket.MessageType, payload interface{}) error {
	msg, err := websocket.NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	return client.Manager.SendToClient(client.ID, msg)
}
