package model

import (
	"time"

	"gorm.io/datatypes"
)

type ChatMessage struct {
	Id        string         `gorm:"type:varchar(24);primaryKey"`
	ChatId    string         `gorm:"type:varchar(24);not null;index:idx_chat_messages_chat_created,priority:1"`
	UserId    string         `gorm:"type:varchar(24);not null;index"`
	Role      string         `gorm:"type:varchar(16);not null"`
	Content   string         `gorm:"type:text;not null"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"not null;index:idx_chat_messages_chat_created,priority:2"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Chat{},
		&ChatMessage{},
	}
}
