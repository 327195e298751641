package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserRegistered        = "USER_REGISTERED"
	UserLoggedIn          = "USER_LOGGED_IN"
	ChatCreated           = "CHAT_CREATED"
	ChatExchangeCompleted = "CHAT_EXCHANGE_COMPLETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventId is unique per occurrence.
	EventId() string

	// EventType returns the unique code for this event (e.g., "USER_REGISTERED").
	EventType() string

	// UserId is the user the event belongs to; realtime delivery targets it.
	UserId() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the wire form shared by the in-process bus, websocket
// clients and NATS.
type BaseEvent struct {
	Id         string                 `json:"id"`
	Type       string                 `json:"type"`
	User       string                 `json:"userId"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurredAt"`
}

func New(eventType, userId string, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = map[string]interface{}{}
	}
	return BaseEvent{
		Id:         uuid.NewString(),
		Type:       eventType,
		User:       userId,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

func (e BaseEvent) EventId() string {
	return e.Id
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) UserId() string {
	return e.User
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
