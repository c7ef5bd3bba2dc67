// Package client talks to a running instance over its control socket.
package client

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/scienceol/tea/internal/power"
	"github.com/scienceol/tea/internal/protocol"
	"github.com/sirupsen/logrus"
)

const (
	handshakeTimeout = 5 * time.Second
	writeTimeout     = 10 * time.Second

	// The host part is ignored; the dialer always connects to the socket.
	controlURL = "ws://tea/control"
)

// ServerError is a failure reported by the running instance. Kind and Hint
// are set when the failure was an application error.
type ServerError struct {
	Kind    string
	Message string
	Hint    string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Client sends control requests to a running instance.
type Client struct {
	socketPath  string
	dialer      *websocket.Dialer
	reconnector *Reconnector
	log         *logrus.Entry
}

// New creates a Client for the control socket at socketPath.
func New(socketPath string) *Client {
	c := &Client{
		socketPath:  socketPath,
		reconnector: NewReconnector(),
		log:         logrus.WithField("component", "client"),
	}
	c.dialer = &websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
		NetDialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", c.socketPath)
		},
	}
	return c
}

// Ping checks that an instance is listening.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.call(ctx, protocol.TypePing, nil)
	return err
}

// Status returns the current state.
func (c *Client) Status(ctx context.Context) (protocol.StatePayload, error) {
	return c.callState(ctx, protocol.TypeStatus, nil)
}

// Toggle flips sleep prevention and returns the new state.
func (c *Client) Toggle(ctx context.Context) (protocol.StatePayload, error) {
	return c.callState(ctx, protocol.TypeToggle, nil)
}

// SetMode changes the screen mode and returns the new state.
func (c *Client) SetMode(ctx context.Context, mode power.ScreenMode) (protocol.StatePayload, error) {
	return c.callState(ctx, protocol.TypeSetMode, protocol.SetModePayload{Mode: mode})
}

// Quit asks the running instance to stop and exit.
func (c *Client) Quit(ctx context.Context) error {
	_, err := c.call(ctx, protocol.TypeQuit, nil)
	return err
}

// Watch calls fn with the current state and again on every change until ctx
// ends. Lost connections are re-established with exponential backoff.
func (c *Client) Watch(ctx context.Context, fn func(protocol.StatePayload)) error {
	for {
		err := c.watchOnce(ctx, fn)
		if ctx.Err() != nil {
			return nil
		}
		c.log.WithError(err).Warn("watch connection lost, reconnecting")

		if !c.reconnector.Wait(ctx) {
			return nil
		}
	}
}

func (c *Client) watchOnce(ctx context.Context, fn func(protocol.StatePayload)) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	req, err := newRequest(protocol.TypeWatch, nil)
	if err != nil {
		return err
	}
	resp, err := roundTrip(conn, req)
	if err != nil {
		return err
	}
	st, err := decodeState(resp)
	if err != nil {
		return err
	}

	// Subscribed; later drops start backing off from the minimum again.
	c.reconnector.Reset()
	fn(st)

	for {
		var msg protocol.RawResponse
		if err := conn.ReadJSON(&msg); err != nil {
			return errors.Wrap(err, "read error")
		}
		if msg.Type != protocol.TypeState {
			continue
		}
		st, err := decodeState(msg)
		if err != nil {
			c.log.WithError(err).Warn("invalid state event")
			continue
		}
		fn(st)
	}
}

func (c *Client) callState(ctx context.Context, reqType string, payload interface{}) (protocol.StatePayload, error) {
	resp, err := c.call(ctx, reqType, payload)
	if err != nil {
		return protocol.StatePayload{}, err
	}
	return decodeState(resp)
}

// call performs one request on a fresh connection.
func (c *Client) call(ctx context.Context, reqType string, payload interface{}) (protocol.RawResponse, error) {
	req, err := newRequest(reqType, payload)
	if err != nil {
		return protocol.RawResponse{}, err
	}

	conn, err := c.dial(ctx)
	if err != nil {
		return protocol.RawResponse{}, err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	resp, err := roundTrip(conn, req)
	if err != nil && ctx.Err() != nil {
		return resp, ctx.Err()
	}
	return resp, err
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := c.dialer.DialContext(ctx, controlURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot reach tea on %s (is `tea run` active?)", c.socketPath)
	}
	return conn, nil
}

func newRequest(reqType string, payload interface{}) (protocol.Request, error) {
	req := protocol.Request{ID: uuid.NewString(), Type: reqType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return req, errors.Wrap(err, "failed to encode payload")
		}
		req.Payload = raw
	}
	return req, nil
}

// roundTrip writes req and reads until its response arrives. Pushed events
// arriving in between are skipped.
func roundTrip(conn *websocket.Conn, req protocol.Request) (protocol.RawResponse, error) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(req); err != nil {
		return protocol.RawResponse{}, errors.Wrap(err, "write error")
	}

	for {
		var resp protocol.RawResponse
		if err := conn.ReadJSON(&resp); err != nil {
			return protocol.RawResponse{}, errors.Wrap(err, "read error")
		}
		if resp.ID != req.ID {
			continue
		}
		if !resp.Success {
			var p protocol.ErrorPayload
			if err := json.Unmarshal(resp.Payload, &p); err != nil {
				return resp, errors.Wrap(err, "invalid error payload")
			}
			return resp, &ServerError{Kind: p.Kind, Message: p.Error, Hint: p.Hint}
		}
		return resp, nil
	}
}

func decodeState(resp protocol.RawResponse) (protocol.StatePayload, error) {
	var st protocol.StatePayload
	if err := json.Unmarshal(resp.Payload, &st); err != nil {
		return st, errors.Wrapf(err, "invalid %s payload", resp.Type)
	}
	return st, nil
}
