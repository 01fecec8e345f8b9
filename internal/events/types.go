package events

import (
	"encoding/json"
	"fmt"
	"strings"

	"project-tracker-api/internal/domain"
)

// Action is the mutation suffix of an event type
type Action string

const (
	ActionCreated Action = "CREATED"
	ActionUpdated Action = "UPDATED"
	ActionDeleted Action = "DELETED"
)

// Actions returns the three mutation actions
func Actions() []Action {
	return []Action{ActionCreated, ActionUpdated, ActionDeleted}
}

func (a Action) valid() bool {
	return a == ActionCreated || a == ActionUpdated || a == ActionDeleted
}

// Type is the wire name of an event, "<KIND>_<ACTION>"
type Type string

// TypeOf builds the event type for a kind and action
func TypeOf(kind domain.Kind, action Action) Type {
	return Type(string(kind) + "_" + string(action))
}

// ParseType splits an event type into its kind and action.
// BACKLOG_ITEM_CREATED splits on the last underscore.
func ParseType(t Type) (domain.Kind, Action, error) {
	s := string(t)
	i := strings.LastIndexByte(s, '_')
	if i <= 0 || i == len(s)-1 {
		return "", "", fmt.Errorf("malformed event type %q", s)
	}
	kind, action := domain.Kind(s[:i]), Action(s[i+1:])
	if !kind.IsValid() {
		return "", "", fmt.Errorf("unknown entity kind in event type %q", s)
	}
	if !action.valid() {
		return "", "", fmt.Errorf("unknown action in event type %q", s)
	}
	return kind, action, nil
}

// Payload is the free-form body of an event
type Payload map[string]interface{}

// String returns a non-empty string field
func (p Payload) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Message is one frame on the realtime socket
type Message struct {
	Type    Type    `json:"type"`
	Payload Payload `json:"payload"`
}

// NewMessage builds a message for kind and action
func NewMessage(kind domain.Kind, action Action, payload Payload) Message {
	if payload == nil {
		payload = Payload{}
	}
	return Message{Type: TypeOf(kind, action), Payload: payload}
}

// Encode serialises the message as a JSON text frame
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a frame and validates its type
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("invalid event frame: %w", err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("event frame has no type")
	}
	if _, _, err := ParseType(msg.Type); err != nil {
		return Message{}, err
	}
	if msg.Payload == nil {
		msg.Payload = Payload{}
	}
	return msg, nil
}
