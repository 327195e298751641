package mapper

import (
	"encoding/json"

	"turingtest-be/internal/entity"
	"turingtest-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Chat Mappers

func (m *ChatMapper) ChatToEntity(c *model.Chat) *entity.Chat {
	if c == nil {
		return nil
	}
	return &entity.Chat{
		Id:            objectID(c.Id),
		UserId:        objectID(c.UserId),
		Title:         c.Title,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (m *ChatMapper) ChatToModel(c *entity.Chat) *model.Chat {
	if c == nil {
		return nil
	}
	return &model.Chat{
		Id:            hexID(c.Id),
		UserId:        hexID(c.UserId),
		Title:         c.Title,
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func (m *ChatMapper) ChatsToEntities(chats []*model.Chat) []*entity.Chat {
	out := make([]*entity.Chat, 0, len(chats))
	for _, c := range chats {
		out = append(out, m.ChatToEntity(c))
	}
	return out
}

// Message Mappers

func (m *ChatMapper) MessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	var metadata *entity.ReplyMetadata
	if len(msg.Metadata) > 0 && string(msg.Metadata) != "null" {
		var md entity.ReplyMetadata
		if err := json.Unmarshal(msg.Metadata, &md); err == nil {
			metadata = &md
		}
	}

	return &entity.ChatMessage{
		Id:        objectID(msg.Id),
		ChatId:    objectID(msg.ChatId),
		UserId:    objectID(msg.UserId),
		Role:      entity.MessageRole(msg.Role),
		Content:   msg.Content,
		Metadata:  metadata,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) MessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	var metadata datatypes.JSON
	if msg.Metadata != nil {
		if raw, err := json.Marshal(msg.Metadata); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	return &model.ChatMessage{
		Id:        hexID(msg.Id),
		ChatId:    hexID(msg.ChatId),
		UserId:    hexID(msg.UserId),
		Role:      string(msg.Role),
		Content:   msg.Content,
		Metadata:  metadata,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *ChatMapper) MessagesToEntities(msgs []*model.ChatMessage) []*entity.ChatMessage {
	out := make([]*entity.ChatMessage, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, m.MessageToEntity(msg))
	}
	return out
}
