package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

func (r MessageRole) Valid() bool {
	return r == MessageRoleUser || r == MessageRoleAssistant
}

// ReplyMetadata is stored with assistant messages.
type ReplyMetadata struct {
	Provider string `json:"provider,omitempty"`
	DelayMs  int64  `json:"delayMs"`
}

type ChatMessage struct {
	Id        bson.ObjectID
	ChatId    bson.ObjectID
	UserId    bson.ObjectID
	Role      MessageRole
	Content   string
	Metadata  *ReplyMetadata
	CreatedAt time.Time
}
