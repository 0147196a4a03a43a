package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSaver struct {
	mock.Mock
}

func (m *mockSaver) Save(ctx context.Context, userID uuid.UUID, event string, data any) error {
	return m.Called(userID, event).Error(0)
}

func newTestHub(t *testing.T, saver NotificationSaver) (*Hub, context.CancelFunc) {
	t.Helper()
	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	hub := NewHub(saver, log)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	return hub, cancel
}

func TestHub_DeliversAndSaves(t *testing.T) {
	userID := uuid.New()
	saved := make(chan struct{}, 1)
	saver := &mockSaver{}
	saver.On("Save", userID, "inquiries.engaged").Return(nil).Run(func(mock.Arguments) { saved <- struct{}{} })

	hub, cancel := newTestHub(t, saver)
	defer cancel()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(conn, hub, userID).Run()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Connections(userID) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.BroadcastToUser(userID, "inquiries.engaged", map[string]string{"status": "ready_for_admin_connection"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got struct {
		Type string            `json:"type"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "inquiries.engaged", got.Type)
	assert.Equal(t, "ready_for_admin_connection", got.Data["status"])

	select {
	case <-saved:
	case <-time.After(2 * time.Second):
		t.Fatal("уведомление не сохранено")
	}
	saver.AssertExpectations(t)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Connections(userID) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_StoppedHubRejectsBroadcast(t *testing.T) {
	hub, cancel := newTestHub(t, nil)
	cancel()
	<-hub.done

	err := hub.BroadcastToUser(uuid.New(), "chat.message", nil)
	assert.ErrorIs(t, err, ErrHubStopped)
}
