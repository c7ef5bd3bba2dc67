// Package server exposes the controller on a local control socket. Clients
// speak JSON over a websocket carried by a unix domain socket.
package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/scienceol/tea/internal/apperr"
	"github.com/scienceol/tea/internal/control"
	"github.com/scienceol/tea/internal/icon"
	"github.com/scienceol/tea/internal/power"
	"github.com/scienceol/tea/internal/protocol"
	"github.com/sirupsen/logrus"
)

const (
	writeTimeout  = 10 * time.Second
	writeChanSize = 64
)

// Controller is the subset of *control.Controller the server drives.
type Controller interface {
	Toggle() (control.Status, error)
	ChangeMode(power.ScreenMode) (power.ScreenMode, error)
	Status() control.Status
	Subscribe(func(control.Status)) func()
}

// Server accepts control connections on a unix socket.
type Server struct {
	socketPath string
	ctrl       Controller
	log        *logrus.Entry

	listener net.Listener
	httpSrv  *http.Server
	upgrader websocket.Upgrader

	quitCh   chan struct{}
	quitOnce sync.Once

	mu    sync.Mutex
	conns map[*conn]struct{}
}

// New creates a Server for socketPath. Call Start to begin listening.
func New(socketPath string, ctrl Controller) *Server {
	s := &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		log:        logrus.WithField("component", "server"),
		quitCh:     make(chan struct{}),
		conns:      make(map[*conn]struct{}),
	}
	s.httpSrv = &http.Server{
		Handler:           http.HandlerFunc(s.handleUpgrade),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start binds the socket and serves connections in the background.
func (s *Server) Start() error {
	if err := removeStale(s.socketPath); err != nil {
		return err
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return errors.Wrap(err, "failed to create control socket")
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		listener.Close()
		return errors.Wrap(err, "failed to set socket permissions")
	}

	s.log.WithField("socket", s.socketPath).Info("control socket listening")

	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("control socket stopped")
		}
	}()
	return nil
}

// Quit is closed when a client sends a quit request.
func (s *Server) Quit() <-chan struct{} {
	return s.quitCh
}

// Close stops accepting connections, drops the open ones and removes the
// socket file.
func (s *Server) Close() error {
	err := s.httpSrv.Close()

	s.mu.Lock()
	for c := range s.conns {
		c.close()
	}
	s.mu.Unlock()

	if rmErr := os.Remove(s.socketPath); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}

// removeStale deletes a socket left behind by a previous instance. A socket
// that still accepts connections belongs to a live instance.
func removeStale(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if c, err := net.DialTimeout("unix", path, time.Second); err == nil {
		c.Close()
		return fmt.Errorf("another instance is already listening on %s", path)
	}
	if err := os.Remove(path); err != nil {
		return errors.Wrap(err, "failed to remove stale socket")
	}
	return nil
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	c := &conn{
		ws:      ws,
		writeCh: make(chan interface{}, writeChanSize),
		done:    make(chan struct{}),
	}
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	go c.writeLoop(s.log)
	s.readLoop(c)

	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	c.close()
}

// readLoop is the single reader of a connection.
func (s *Server) readLoop(c *conn) {
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.WithError(err).Debug("control connection closed")
			}
			return
		}

		var req protocol.Request
		if err := json.Unmarshal(raw, &req); err != nil {
			s.log.WithError(err).Warn("invalid control message")
			c.send(errorResponse(req, errors.Wrap(err, "invalid message")))
			continue
		}

		c.send(s.handleRequest(c, req))

		if req.Type == protocol.TypeQuit {
			// Let the reply reach the client before the process winds down.
			c.flush()
			s.quitOnce.Do(func() { close(s.quitCh) })
		}
	}
}

func (s *Server) handleRequest(c *conn, req protocol.Request) protocol.Response {
	s.log.WithFields(logrus.Fields{"id": req.ID, "type": req.Type}).Debug("control request")

	switch req.Type {
	case protocol.TypePing:
		return okResponse(req, struct{}{})
	case protocol.TypeStatus:
		return okResponse(req, statePayload(s.ctrl.Status()))
	case protocol.TypeToggle:
		st, err := s.ctrl.Toggle()
		if err != nil {
			return errorResponse(req, err)
		}
		return okResponse(req, statePayload(st))
	case protocol.TypeSetMode:
		var p protocol.SetModePayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			return errorResponse(req, errors.Wrap(err, "invalid set_mode payload"))
		}
		if _, err := s.ctrl.ChangeMode(p.Mode); err != nil {
			return errorResponse(req, err)
		}
		return okResponse(req, statePayload(s.ctrl.Status()))
	case protocol.TypeWatch:
		c.watch(s.ctrl)
		return okResponse(req, statePayload(s.ctrl.Status()))
	case protocol.TypeQuit:
		return okResponse(req, struct{}{})
	default:
		return errorResponse(req, fmt.Errorf("unknown request type: %s", req.Type))
	}
}

func statePayload(st control.Status) protocol.StatePayload {
	return protocol.StatePayload{
		Awake:                   st.Awake,
		Mode:                    st.Mode,
		Running:                 st.Running,
		AllowScreenOffSupported: st.AllowScreenOffSupported,
		Tooltip:                 icon.Tooltip(st.Awake, st.Mode),
	}
}

func okResponse(req protocol.Request, payload interface{}) protocol.Response {
	return protocol.Response{ID: req.ID, Type: protocol.ResultType(req.Type), Success: true, Payload: payload}
}

func errorResponse(req protocol.Request, err error) protocol.Response {
	p := protocol.ErrorPayload{Error: err.Error()}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		p.Kind = ae.Kind.String()
		p.Hint = ae.Hint
	}
	return protocol.Response{ID: req.ID, Type: protocol.ResultType(req.Type), Success: false, Payload: p}
}
