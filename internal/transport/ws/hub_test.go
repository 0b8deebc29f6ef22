package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc, <-chan struct{}) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	return hub, cancel, stopped
}

func receive(t *testing.T, conn *Connection) Message {
	t.Helper()
	select {
	case data := <-conn.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func TestHub_PublishesToProjectSubscribersOnly(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub, cancel, stopped := startHub(t)

	a := NewConnection("proj-a")
	b := NewConnection("proj-b")
	require.True(t, hub.Register(a))
	require.True(t, hub.Register(b))

	hub.Publish("proj-a", "survey_connected", map[string]string{"survey_id": "s1"})

	msg := receive(t, a)
	assert.Equal(t, MessageType("survey_connected"), msg.Type)
	assert.JSONEq(t, `{"survey_id":"s1"}`, string(msg.Payload))

	select {
	case <-b.Send:
		t.Fatal("unrelated project received the event")
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	<-stopped

	_, open := <-a.Send
	assert.False(t, open)
	_, open = <-b.Send
	assert.False(t, open)
}

func TestHub_UnregisterAndStoppedHub(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	hub, cancel, stopped := startHub(t)

	conn := NewConnection("proj")
	require.True(t, hub.Register(conn))
	assert.Equal(t, 1, hub.Subscribers("proj"))

	hub.Unregister(conn)
	_, open := <-conn.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.Subscribers("proj"))

	cancel()
	<-stopped

	assert.False(t, hub.Register(NewConnection("proj")))
	hub.Unregister(conn)
	hub.Publish("proj", "response_submitted", nil)
}

func TestHandler_ProjectFeed(t *testing.T) {
	hub, cancel, stopped := startHub(t)
	defer func() {
		cancel()
		<-stopped
	}()

	r := mux.NewRouter()
	r.HandleFunc("/ws/projects/{projectId}", NewHandler(hub, nil, zap.NewNop()).ProjectFeed)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/projects/proj-1"
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool { return hub.Subscribers("proj-1") == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish("proj-1", "analysis_completed", map[string]string{"session_id": "s1"})

	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	var msg Message
	require.NoError(t, client.ReadJSON(&msg))
	assert.Equal(t, MessageType("analysis_completed"), msg.Type)
	assert.JSONEq(t, `{"session_id":"s1"}`, string(msg.Payload))
}

func TestHandler_RejectsUnknownOrigin(t *testing.T) {
	hub, cancel, stopped := startHub(t)
	defer func() {
		cancel()
		<-stopped
	}()

	r := mux.NewRouter()
	r.HandleFunc("/ws/projects/{projectId}", NewHandler(hub, []string{"https://app.example"}, zap.NewNop()).ProjectFeed)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/projects/proj-1"
	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}
