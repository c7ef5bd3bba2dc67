package protocol

import (
	"encoding/json"

	"github.com/scienceol/tea/internal/power"
)

// Request types accepted on the control socket.
const (
	TypeToggle  = "toggle"
	TypeSetMode = "set_mode"
	TypeStatus  = "status"
	TypeWatch   = "watch"
	TypeQuit    = "quit"
	TypePing    = "ping"
)

// TypeState is pushed to watchers whenever the controller state changes.
const TypeState = "state"

// Request is a message from a client to the running instance.
type Request struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is a message from the running instance to a client.
type Response struct {
	ID      string      `json:"id,omitempty"`
	Type    string      `json:"type"`
	Success bool        `json:"success"`
	Payload interface{} `json:"payload"`
}

// RawResponse is the client-side view of a Response.
type RawResponse struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Success bool            `json:"success"`
	Payload json.RawMessage `json:"payload"`
}

// ResultType returns the response type for a request type.
func ResultType(reqType string) string {
	return reqType + "_result"
}

// SetModePayload is the payload for a "set_mode" request.
type SetModePayload struct {
	Mode power.ScreenMode `json:"mode"`
}

// StatePayload describes the controller state. It is the payload of
// "toggle_result", "set_mode_result", "status_result" and "state" events.
type StatePayload struct {
	Awake                   bool             `json:"awake"`
	Mode                    power.ScreenMode `json:"mode"`
	Running                 bool             `json:"running"`
	AllowScreenOffSupported bool             `json:"allow_screen_off_supported"`
	Tooltip                 string           `json:"tooltip"`
}

// ErrorPayload for error responses.
type ErrorPayload struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Hint  string `json:"hint,omitempty"`
}
