package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeAssignmentCommitted MessageType = "assignment.committed"
	TypeAssignmentReleased  MessageType = "assignment.released"
	TypeConflictForced      MessageType = "assignment.conflict_forced"
	TypeAutoAssignCompleted MessageType = "autoassign.completed"
	TypeAutoAssignFailed    MessageType = "autoassign.stage_failed"
	TypeNotification        MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// AssignmentPayload is the payload for assignment.committed,
// assignment.released and assignment.conflict_forced events.
type AssignmentPayload struct {
	RegistrationID  string `json:"registration_id"`
	ParticipantName string `json:"participant_name,omitempty"`
	StageName       string `json:"stage_name,omitempty"`
	BungalowID      string `json:"bungalow_id"`
	BedID           string `json:"bed_id"`
	WasForced       bool   `json:"was_forced"`
}

// AutoAssignPayload is the payload for autoassign.completed events.
type AutoAssignPayload struct {
	StageID       string `json:"stage_id"`
	StageName     string `json:"stage_name"`
	TotalAssigned int    `json:"total_assigned"`
	TotalFailed   int    `json:"total_failed"`
	SuccessRate   int    `json:"success_rate"`
}

// AutoAssignErrorPayload is the payload for autoassign.stage_failed events.
type AutoAssignErrorPayload struct {
	StageID   string `json:"stage_id"`
	StageName string `json:"stage_name,omitempty"`
	Error     string `json:"error"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
