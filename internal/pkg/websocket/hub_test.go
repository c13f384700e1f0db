package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aaeducates/backend/internal/app/authz"
	"github.com/aaeducates/backend/internal/app/models"
	"github.com/aaeducates/backend/internal/middleware"
	"github.com/aaeducates/backend/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChats struct {
	members map[int64][]int64
}

func (f *fakeChats) JoinChat(_ context.Context, actor *authz.Actor, chatID int64) (*models.GroupChat, error) {
	members, ok := f.members[chatID]
	if !ok {
		return nil, apperrors.NewResourceNotFoundError("Not found.")
	}
	chat := &models.GroupChat{ID: chatID, Members: members}
	if !chat.HasMember(actor.UserID) {
		return nil, apperrors.NewForbiddenError("You are not a member of this chat.")
	}
	return chat, nil
}

type fakePoster struct {
	mu     sync.Mutex
	hub    *Hub
	nextID int64
	saved  []*models.Message
}

func (f *fakePoster) Create(_ context.Context, _ *authz.Actor, m *models.Message) (*models.Message, error) {
	f.mu.Lock()
	f.nextID++
	m.ID = f.nextID
	m.Timestamp = time.Now()
	f.saved = append(f.saved, m)
	f.mu.Unlock()
	f.hub.BroadcastMessage(m)
	return m, nil
}

func (f *fakePoster) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func newTestServer(t *testing.T, userID int64) (*Hub, *fakePoster, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(zerolog.Nop())
	go hub.Run()
	t.Cleanup(hub.Stop)

	poster := &fakePoster{hub: hub}
	chats := &fakeChats{members: map[int64][]int64{7: {1, 2}}}
	handler := NewHandler(hub, chats, NewMessageHandler(poster, zerolog.Nop()), nil, zerolog.Nop())

	r := gin.New()
	r.GET("/chats/:id/ws", func(c *gin.Context) {
		c.Set(middleware.ContextActorKey, &authz.Actor{UserID: userID, Role: models.RoleStudent})
	}, handler.HandleConnection)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, poster, srv
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestBroadcastReachesChatMembers(t *testing.T) {
	hub, _, srv := newTestServer(t, 1)

	conn, _, err := gorilla.DefaultDialer.Dial(wsURL(srv, "/chats/7/ws"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.GetClientsCount(7) == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastMessage(&models.Message{ID: 3, ChatID: 7, SenderID: 2, Content: "hello"})
	// A message for another chat is not delivered
	hub.BroadcastMessage(&models.Message{ID: 4, ChatID: 8, SenderID: 2, Content: "elsewhere"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, EventMessage, event.Type)
	assert.Equal(t, int64(3), event.ID)
	assert.Equal(t, int64(7), event.ChatID)
	assert.Equal(t, int64(2), event.SenderID)
	assert.Equal(t, "hello", event.Content)
}

func TestIncomingFramesAreStoredAsCaller(t *testing.T) {
	_, poster, srv := newTestServer(t, 1)

	conn, _, err := gorilla.DefaultDialer.Dial(wsURL(srv, "/chats/7/ws"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(gorilla.TextMessage, []byte(`{"content":"hi all","sender":99,"chat":1}`)))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, "hi all", event.Content)
	assert.Equal(t, int64(1), event.SenderID)
	assert.Equal(t, int64(7), event.ChatID)
	assert.Equal(t, 1, poster.count())
}

func TestConnectionRejectedForNonMembers(t *testing.T) {
	_, _, srv := newTestServer(t, 5)

	_, resp, err := gorilla.DefaultDialer.Dial(wsURL(srv, "/chats/7/ws"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = gorilla.DefaultDialer.Dial(wsURL(srv, "/chats/404/ws"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = gorilla.DefaultDialer.Dial(wsURL(srv, "/chats/abc/ws"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBroadcastAfterStopDoesNotBlock(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()
	hub.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.BroadcastMessage(&models.Message{ID: int64(i), ChatID: 1})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastMessage blocked after Stop")
	}
}
