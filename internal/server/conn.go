package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/scienceol/tea/internal/control"
	"github.com/scienceol/tea/internal/protocol"
	"github.com/sirupsen/logrus"
)

// conn is one client connection. All writes go through writeCh so the
// websocket has a single writer.
type conn struct {
	ws      *websocket.Conn
	writeCh chan interface{}
	done    chan struct{}

	once    sync.Once
	mu      sync.Mutex
	unwatch func()
}

// flushMarker is closed by the writer once every message queued before it
// has been written.
type flushMarker chan struct{}

// send enqueues a message for the write goroutine. Non-blocking, drops the
// message if the buffer is full or the connection is closed.
func (c *conn) send(v interface{}) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.writeCh <- v:
	default:
	}
}

// writeLoop is the single goroutine that writes to the websocket.
func (c *conn) writeLoop(log *logrus.Entry) {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.writeCh:
			if m, ok := msg.(flushMarker); ok {
				close(m)
				continue
			}
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.ws.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("control write failed")
				c.close()
				return
			}
		}
	}
}

// flush waits until the queued messages have been written.
func (c *conn) flush() {
	m := make(flushMarker)
	c.send(m)
	select {
	case <-m:
	case <-c.done:
	case <-time.After(writeTimeout):
	}
}

// watch subscribes the connection to state changes. Repeated calls keep a
// single subscription.
func (c *conn) watch(ctrl Controller) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unwatch != nil {
		return
	}
	c.unwatch = ctrl.Subscribe(func(st control.Status) {
		c.send(protocol.Response{Type: protocol.TypeState, Success: true, Payload: statePayload(st)})
	})
}

func (c *conn) close() {
	c.once.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.unwatch != nil {
			c.unwatch()
		}
		c.mu.Unlock()
		c.ws.Close()
	})
}
