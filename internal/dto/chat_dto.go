package dto

import (
	"time"
)

type CreateChatRequest struct {
	Title   string `json:"title" validate:"omitempty,max=120"`
	Message string `json:"message" validate:"omitempty,max=4000"`
}

type PostMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

type ChatIdParam struct {
	ChatId string `params:"chatId" validate:"required,len=24,hexadecimal"`
}

type ChatResponse struct {
	Id            string    `json:"id"`
	Title         string    `json:"title"`
	User          string    `json:"user"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type MessageResponse struct {
	Id        string    `json:"id"`
	Chat      string    `json:"chat"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type ExchangeMetadata struct {
	DelayMs int64 `json:"delayMs"`
}

// CreateChatResponse omits metadata when no seed message was sent.
type CreateChatResponse struct {
	Status   int               `json:"status"`
	Message  string            `json:"message"`
	Chat     ChatResponse      `json:"chat"`
	Messages []MessageResponse `json:"messages"`
	Metadata *ExchangeMetadata `json:"metadata,omitempty"`
}

type PostMessageResponse struct {
	Status   int               `json:"status"`
	Message  string            `json:"message"`
	Chat     ChatResponse      `json:"chat"`
	Messages []MessageResponse `json:"messages"`
	Metadata ExchangeMetadata  `json:"metadata"`
}

type ListChatsResponse struct {
	Status int            `json:"status"`
	Chats  []ChatResponse `json:"chats"`
}

type ChatMessagesResponse struct {
	Status   int               `json:"status"`
	Chat     ChatResponse      `json:"chat"`
	Messages []MessageResponse `json:"messages"`
}
