package service

import (
	"turingtest-be/internal/dto"
	"turingtest-be/internal/entity"
)

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		Id:        u.Id.Hex(),
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toChatResponse(c *entity.Chat) dto.ChatResponse {
	return dto.ChatResponse{
		Id:            c.Id.Hex(),
		Title:         c.Title,
		User:          c.UserId.Hex(),
		LastMessageAt: c.LastMessageAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func toMessageResponse(m *entity.ChatMessage) dto.MessageResponse {
	return dto.MessageResponse{
		Id:        m.Id.Hex(),
		Chat:      m.ChatId.Hex(),
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func toMessageResponses(msgs []*entity.ChatMessage) []dto.MessageResponse {
	out := make([]dto.MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}
