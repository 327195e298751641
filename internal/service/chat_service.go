package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"turingtest-be/internal/dto"
	"turingtest-be/internal/entity"
	"turingtest-be/internal/pkg/apperror"
	"turingtest-be/internal/pkg/logger"
	"turingtest-be/internal/repository/memory"
	"turingtest-be/internal/repository/specification"
	"turingtest-be/internal/repository/unitofwork"
	"turingtest-be/pkg/events"
	"turingtest-be/pkg/llm"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const msgChatNotFound = "Chat not found"

// IChatService owns chats and the user/assistant exchange.
type IChatService interface {
	CreateChat(ctx context.Context, userId, email string, req *dto.CreateChatRequest) (*dto.CreateChatResponse, error)
	ListChats(ctx context.Context, userId string) (*dto.ListChatsResponse, error)
	GetChatMessages(ctx context.Context, userId, chatId string) (*dto.ChatMessagesResponse, error)
	PostMessage(ctx context.Context, userId, email, chatId string, req *dto.PostMessageRequest) (*dto.PostMessageResponse, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	generator  llm.ReplyGenerator
	locks      *memory.ChatLockRepository
	publisher  IPublisherService
	logger     logger.ILogger
	now        func() time.Time
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	generator llm.ReplyGenerator,
	locks *memory.ChatLockRepository,
	publisher IPublisherService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		generator:  generator,
		locks:      locks,
		publisher:  publisher,
		logger:     log,
		now:        timestamp,
	}
}

type exchangeResult struct {
	messages []*entity.ChatMessage
	delayMs  int64
}

func (s *chatService) CreateChat(ctx context.Context, userId, email string, req *dto.CreateChatRequest) (*dto.CreateChatResponse, error) {
	owner, err := bson.ObjectIDFromHex(userId)
	if err != nil {
		return nil, apperror.Unauthorized("Unauthorized", err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = entity.DefaultChatTitle
	}

	now := s.now()
	chat := &entity.Chat{
		Id:            bson.NewObjectID(),
		UserId:        owner,
		Title:         title,
		LastMessageAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatRepository().Create(ctx, chat); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	s.publish(ctx, events.New(events.ChatCreated, userId, map[string]interface{}{
		"chat": toChatResponse(chat),
	}))

	resp := &dto.CreateChatResponse{
		Status:   http.StatusCreated,
		Message:  "Chat created",
		Messages: []dto.MessageResponse{},
	}

	if seed := strings.TrimSpace(req.Message); seed != "" {
		result, err := s.exchange(ctx, chat, email, seed)
		if err != nil {
			return nil, err
		}
		resp.Messages = toMessageResponses(result.messages)
		resp.Metadata = &dto.ExchangeMetadata{DelayMs: result.delayMs}
	}

	resp.Chat = toChatResponse(chat)
	return resp, nil
}

func (s *chatService) ListChats(ctx context.Context, userId string) (*dto.ListChatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	chats, err := uow.ChatRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.RecentlyActiveChats{},
	)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	out := make([]dto.ChatResponse, 0, len(chats))
	for _, c := range chats {
		out = append(out, toChatResponse(c))
	}

	return &dto.ListChatsResponse{
		Status: http.StatusOK,
		Chats:  out,
	}, nil
}

func (s *chatService) GetChatMessages(ctx context.Context, userId, chatId string) (*dto.ChatMessagesResponse, error) {
	chat, err := s.findOwnedChat(ctx, userId, chatId)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatID{ChatID: chatId},
		specification.UserOwnedBy{UserID: userId},
		specification.ChronologicalMessages{},
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	return &dto.ChatMessagesResponse{
		Status:   http.StatusOK,
		Chat:     toChatResponse(chat),
		Messages: toMessageResponses(messages),
	}, nil
}

func (s *chatService) PostMessage(ctx context.Context, userId, email, chatId string, req *dto.PostMessageRequest) (*dto.PostMessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperror.Validation(`"content" is not allowed to be empty`)
	}

	chat, err := s.findOwnedChat(ctx, userId, chatId)
	if err != nil {
		return nil, err
	}

	result, err := s.exchange(ctx, chat, email, content)
	if err != nil {
		return nil, err
	}

	return &dto.PostMessageResponse{
		Status:   http.StatusOK,
		Message:  "Reply generated",
		Chat:     toChatResponse(chat),
		Messages: toMessageResponses(result.messages),
		Metadata: dto.ExchangeMetadata{DelayMs: result.delayMs},
	}, nil
}

// findOwnedChat returns NotFound both for missing chats and for chats owned
// by someone else.
func (s *chatService) findOwnedChat(ctx context.Context, userId, chatId string) (*entity.Chat, error) {
	if _, err := bson.ObjectIDFromHex(chatId); err != nil {
		return nil, apperror.NotFound(msgChatNotFound)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	chat, err := uow.ChatRepository().FindOne(ctx,
		specification.ByID{ID: chatId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, fmt.Errorf("find chat: %w", err)
	}
	if chat == nil {
		s.logger.Warn("CHAT", fmt.Sprintf("User %s attempted to access chat %s they do not own", userId, chatId), nil)
		return nil, apperror.NotFound(msgChatNotFound)
	}
	return chat, nil
}

// exchange runs one user/assistant round trip under the chat's lock. The
// reply is generated before the transaction opens, so nothing is stored
// unless both messages and the chat bump commit together.
func (s *chatService) exchange(ctx context.Context, chat *entity.Chat, email, content string) (*exchangeResult, error) {
	chatId := chat.Id.Hex()

	release, err := s.locks.Acquire(ctx, chatId)
	if err != nil {
		return nil, fmt.Errorf("acquire chat lock: %w", err)
	}
	defer release()

	userMessage := &entity.ChatMessage{
		Id:        bson.NewObjectID(),
		ChatId:    chat.Id,
		UserId:    chat.UserId,
		Role:      entity.MessageRoleUser,
		Content:   content,
		CreatedAt: s.now(),
	}

	reply, err := s.generator.GenerateReply(ctx, llm.ReplyRequest{
		Prompt:         content,
		ConversationId: chatId,
		Email:          email,
	})
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}

	assistantMessage := &entity.ChatMessage{
		Id:      bson.NewObjectID(),
		ChatId:  chat.Id,
		UserId:  chat.UserId,
		Role:    entity.MessageRoleAssistant,
		Content: reply.Message,
		Metadata: &entity.ReplyMetadata{
			Provider: reply.Provider,
			DelayMs:  reply.DelayMs,
		},
		CreatedAt: s.now(),
	}
	if assistantMessage.CreatedAt.Before(userMessage.CreatedAt) {
		assistantMessage.CreatedAt = userMessage.CreatedAt
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin exchange: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = uow.Rollback()
		}
	}()

	if err := uow.ChatMessageRepository().Create(ctx, userMessage); err != nil {
		return nil, fmt.Errorf("store user message: %w", err)
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMessage); err != nil {
		return nil, fmt.Errorf("store assistant message: %w", err)
	}
	if err := uow.ChatRepository().Touch(ctx, chatId, assistantMessage.CreatedAt); err != nil {
		return nil, fmt.Errorf("touch chat: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit exchange: %w", err)
	}
	committed = true

	chat.LastMessageAt = assistantMessage.CreatedAt
	chat.UpdatedAt = assistantMessage.CreatedAt

	messages := []*entity.ChatMessage{userMessage, assistantMessage}
	s.publish(ctx, events.New(events.ChatExchangeCompleted, chat.UserId.Hex(), map[string]interface{}{
		"chat":     toChatResponse(chat),
		"messages": toMessageResponses(messages),
		"metadata": dto.ExchangeMetadata{DelayMs: reply.DelayMs},
	}))

	return &exchangeResult{
		messages: messages,
		delayMs:  reply.DelayMs,
	}, nil
}

func (s *chatService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("CHAT", "Failed to publish event", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err.Error(),
		})
	}
}
