package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lesson-notes-server/pkg/logger"
)

func newTestManager(maxConn int) *Manager {
	m := NewManager(Options{
		MaxConnPerStudent: maxConn,
		MaxMessageSize:    1024,
		WriteWait:         time.Second,
		PongWait:          time.Minute,
		PingPeriod:        50 * time.Second,
	}, logger.Nop())
	go m.Run()
	return m
}

func register(t *testing.T, m *Manager, c *Client) {
	t.Helper()
	before := m.StudentConnections(c.StudentID)
	m.Register <- c
	require.Eventually(t, func() bool {
		return m.StudentConnections(c.StudentID) == before+1
	}, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return &msg
	case <-time.After(time.Second):
		t.Fatalf("client %s received nothing", c.ID)
		return nil
	}
}

func TestManager_BroadcastToStudentSkipsOriginInstance(t *testing.T) {
	m := newTestManager(5)

	origin := NewClient("c1", 7, "iframe-a", nil, m)
	sibling := NewClient("c2", 7, "iframe-b", nil, m)
	stranger := NewClient("c3", 8, "iframe-c", nil, m)
	register(t, m, origin)
	register(t, m, sibling)
	register(t, m, stranger)

	msg, err := NewMessage(TypeNoteDelete, &NoteDeletePayload{NoteID: "n1", InstanceID: "iframe-a"})
	require.NoError(t, err)
	require.NoError(t, m.BroadcastToStudent(7, msg, "iframe-a"))

	got := receive(t, sibling)
	assert.Equal(t, TypeNoteDelete, got.Type)

	var payload NoteDeletePayload
	require.NoError(t, got.UnmarshalPayload(&payload))
	assert.Equal(t, "n1", payload.NoteID)

	assert.Empty(t, origin.Send)
	assert.Empty(t, stranger.Send)
}

func TestManager_BroadcastWithoutExclusionReachesAll(t *testing.T) {
	m := newTestManager(5)

	a := NewClient("c1", 7, "iframe-a", nil, m)
	b := NewClient("c2", 7, "", nil, m)
	register(t, m, a)
	register(t, m, b)

	msg, err := NewMessage(TypePing, nil)
	require.NoError(t, err)
	require.NoError(t, m.BroadcastToStudent(7, msg, ""))

	assert.Equal(t, TypePing, receive(t, a).Type)
	assert.Equal(t, TypePing, receive(t, b).Type)
}

func TestManager_MaxConnectionsPerStudent(t *testing.T) {
	m := newTestManager(1)

	first := NewClient("c1", 7, "a", nil, m)
	register(t, m, first)

	second := NewClient("c2", 7, "b", nil, m)
	m.Register <- second

	select {
	case _, ok := <-second.Send:
		assert.False(t, ok, "rejected client should have its send channel closed")
	case <-time.After(time.Second):
		t.Fatal("rejected client was not closed")
	}
	assert.Equal(t, 1, m.StudentConnections(7))
}

func TestManager_Unregister(t *testing.T) {
	m := newTestManager(5)

	c := NewClient("c1", 7, "a", nil, m)
	register(t, m, c)

	m.Unregister <- c
	require.Eventually(t, func() bool { return m.StudentConnections(7) == 0 }, time.Second, 5*time.Millisecond)
}

type recordingHandler struct {
	got chan *Message
}

func (h *recordingHandler) HandleWebSocketMessage(client *Client, msg *Message) error {
	h.got <- msg
	return nil
}

func TestManager_DispatchesToHandler(t *testing.T) {
	m := newTestManager(5)
	h := &recordingHandler{got: make(chan *Message, 1)}
	m.SetMessageHandler(h)

	c := NewClient("c1", 7, "a", nil, m)
	m.HandleMessage <- &ClientMessage{Client: c, Message: []byte(`{"type":"ping"}`)}

	select {
	case msg := <-h.got:
		assert.Equal(t, TypePing, msg.Type)
	case <-time.After(time.Second):
		t.Fatal("handler was not called")
	}
}
