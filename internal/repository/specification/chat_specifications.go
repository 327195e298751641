package specification

import (
	"gorm.io/gorm"
)

type ByChatID struct {
	ChatID string
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

// ChronologicalMessages orders a transcript oldest first; id breaks ties
// between messages stamped in the same instant.
type ChronologicalMessages struct{}

func (s ChronologicalMessages) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

// RecentlyActiveChats orders chats by last activity, newest first.
type RecentlyActiveChats struct{}

func (s RecentlyActiveChats) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("updated_at DESC").Order("id DESC")
}
