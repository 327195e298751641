package contract

import (
	"context"
	"time"

	"turingtest-be/internal/entity"
	"turingtest-be/internal/repository/specification"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	// Touch moves last_message_at and updated_at to at.
	Touch(ctx context.Context, chatId string, at time.Time) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chat, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chat, error)
}
