package sockets

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var ErrClosed = errors.New("closed connection")

type Connection interface {
	Send(msg Msg) error
	Done() <-chan struct{}
	io.Closer
}

// Conn is a server side websocket connection. Writes are serialised,
// incoming messages are read and dropped so control frames get handled.
type Conn struct {
	ws           *websocket.Conn
	mu           sync.Mutex
	closed       bool
	done         chan struct{}
	pingInterval time.Duration
	pingMsg      []byte
	writeTimeout time.Duration
	onError      func(err error)
}

// Msg is the message structure.
type Msg struct {
	Body []byte
}

func New(ws *websocket.Conn, opts ...func(*Conn)) *Conn {
	c := &Conn{
		ws:           ws,
		done:         make(chan struct{}),
		writeTimeout: 10 * time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	go c.readLoop()
	c.setupPing()
	return c
}

// Done is closed once the connection is closed.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Closes the connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.close()
	return nil
}

// close expects c.mu to be held.
func (c *Conn) close() {
	if c.closed {
		return
	}
	c.closed = true
	c.ws.Close()
	close(c.done)
}

func (c *Conn) fail(err error) {
	c.mu.Lock()
	wasClosed := c.closed
	c.close()
	c.mu.Unlock()
	if !wasClosed && c.onError != nil {
		c.onError(err)
	}
}

func (c *Conn) Send(msg Msg) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	err := c.ws.WriteMessage(websocket.TextMessage, msg.Body)
	c.mu.Unlock()
	if err != nil {
		c.fail(err)
		return err
	}
	return nil
}

func (c *Conn) readLoop() {
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = nil
			}
			c.fail(err)
			return
		}
	}
}

func (c *Conn) setupPing() {
	if c.pingInterval <= 0 {
		return
	}
	ticker := time.NewTicker(c.pingInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-c.done:
				return
			case <-ticker.C:
			}
			c.mu.Lock()
			if c.closed {
				c.mu.Unlock()
				return
			}
			err := c.ws.WriteControl(websocket.PingMessage, c.pingMsg, time.Now().Add(c.writeTimeout))
			c.mu.Unlock()
			if err != nil {
				c.fail(err)
				return
			}
		}
	}()
}
