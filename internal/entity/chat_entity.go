package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const DefaultChatTitle = "New Chat"

type Chat struct {
	Id            bson.ObjectID
	UserId        bson.ObjectID
	Title         string
	LastMessageAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
