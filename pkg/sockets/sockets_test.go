package sockets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Value string `json:"value"`
}

func newHubServer(t *testing.T, hub *Hub[payload], opts ...func(*Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Add(New(ws, opts...))
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func read(t *testing.T, c *websocket.Conn) string {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := c.ReadMessage()
	require.NoError(t, err)
	return string(data)
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub[payload]()
	t.Cleanup(func() { hub.Close() })
	url := newHubServer(t, hub)

	a := dial(t, url)
	b := dial(t, url)
	require.Eventually(t, func() bool { return hub.Len() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Write(context.Background(), payload{Value: "one"}))
	assert.JSONEq(t, `{"value":"one"}`, read(t, a))
	assert.JSONEq(t, `{"value":"one"}`, read(t, b))
}

func TestHub_LateJoinerGetsLatest(t *testing.T) {
	hub := NewHub[payload]()
	t.Cleanup(func() { hub.Close() })
	url := newHubServer(t, hub)

	require.NoError(t, hub.Write(context.Background(), payload{Value: "one"}))
	require.NoError(t, hub.Write(context.Background(), payload{Value: "two"}))

	c := dial(t, url)
	assert.JSONEq(t, `{"value":"two"}`, read(t, c))
}

func TestHub_ClientDisconnectRemoves(t *testing.T) {
	hub := NewHub[payload]()
	t.Cleanup(func() { hub.Close() })
	url := newHubServer(t, hub)

	c := dial(t, url)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	c.Close()

	require.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.NoError(t, hub.Write(context.Background(), payload{Value: "nobody listening"}))
}

func TestHub_Close(t *testing.T) {
	hub := NewHub[payload]()
	url := newHubServer(t, hub)

	c := dial(t, url)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hub.Close())
	assert.Zero(t, hub.Len())

	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := c.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestConn_Ping(t *testing.T) {
	hub := NewHub[payload]()
	t.Cleanup(func() { hub.Close() })
	url := newHubServer(t, hub, WithPingInterval(10*time.Millisecond), WithPingMsg([]byte("ping")))

	pings := make(chan string, 10)
	c := dial(t, url)
	c.SetPingHandler(func(data string) error {
		pings <- data
		return nil
	})
	go func() {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case msg := <-pings:
		assert.Equal(t, "ping", msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no ping received")
	}
}

func TestConn_SendAfterClose(t *testing.T) {
	errs := make(chan error, 1)
	conns := make(chan *Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- New(ws, OnError(func(err error) { errs <- err }))
	}))
	t.Cleanup(srv.Close)

	dial(t, "ws"+strings.TrimPrefix(srv.URL, "http"))
	conn := <-conns
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close(), "close is idempotent")

	assert.ErrorIs(t, conn.Send(Msg{Body: []byte("x")}), ErrClosed)
	select {
	case <-conn.Done():
	default:
		t.Fatal("done not closed")
	}
	assert.Empty(t, errs, "a local close is not an error")
}
