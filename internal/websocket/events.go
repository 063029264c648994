package websocket

import (
	"log"

	"github.com/camp-lodging-manager/backend/internal/storage/models"
)

// EventBroadcaster handles broadcasting WebSocket events.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastAssignmentCommitted sends an assignment.committed event, or
// assignment.conflict_forced when the assignment overrode a conflict.
func (b *EventBroadcaster) BroadcastAssignmentCommitted(reg *models.Registration, bungalowID, bedID string, forced bool) {
	payload := AssignmentPayload{
		RegistrationID:  reg.ID,
		ParticipantName: reg.ParticipantName,
		StageName:       reg.StageName,
		BungalowID:      bungalowID,
		BedID:           bedID,
		WasForced:       forced,
	}

	msgType := TypeAssignmentCommitted
	if forced {
		msgType = TypeConflictForced
	}

	b.broadcast(NewMessage(msgType, payload))
}

// BroadcastAssignmentReleased sends an assignment.released event.
func (b *EventBroadcaster) BroadcastAssignmentReleased(regID, bungalowID, bedID string) {
	payload := AssignmentPayload{
		RegistrationID: regID,
		BungalowID:     bungalowID,
		BedID:          bedID,
	}

	b.broadcast(NewMessage(TypeAssignmentReleased, payload))
}

// BroadcastAutoAssignCompleted sends an autoassign.completed event.
func (b *EventBroadcaster) BroadcastAutoAssignCompleted(stageID, stageName string, assigned, failed, successRate int) {
	payload := AutoAssignPayload{
		StageID:       stageID,
		StageName:     stageName,
		TotalAssigned: assigned,
		TotalFailed:   failed,
		SuccessRate:   successRate,
	}

	b.broadcast(NewMessage(TypeAutoAssignCompleted, payload))
}

// BroadcastAutoAssignError sends an autoassign.stage_failed event.
func (b *EventBroadcaster) BroadcastAutoAssignError(stageID, stageName string, err error) {
	payload := AutoAssignErrorPayload{
		StageID:   stageID,
		StageName: stageName,
		Error:     err.Error(),
	}

	b.broadcast(NewMessage(TypeAutoAssignFailed, payload))
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	payload := NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}

	b.broadcast(NewMessage(TypeNotification, payload))
}

// broadcast sends a message to all connected clients.
func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}

	b.hub.Broadcast(data)
}
