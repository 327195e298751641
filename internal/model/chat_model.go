package model

import "time"

type Chat struct {
	Id            string    `gorm:"type:varchar(24);primaryKey"`
	UserId        string    `gorm:"type:varchar(24);not null;index:idx_chats_user_updated,priority:1"` // Owner, never changes
	Title         string    `gorm:"type:varchar(120);not null;default:'New Chat'"`
	LastMessageAt time.Time `gorm:"not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime;index:idx_chats_user_updated,priority:2"`
}

func (Chat) TableName() string {
	return "chats"
}
