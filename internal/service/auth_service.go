// FILE: internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"turingtest-be/internal/dto"
	"turingtest-be/internal/entity"
	"turingtest-be/internal/pkg/apperror"
	"turingtest-be/internal/pkg/logger"
	"turingtest-be/internal/pkg/password"
	"turingtest-be/internal/pkg/token"
	"turingtest-be/internal/repository/specification"
	"turingtest-be/internal/repository/unitofwork"
	"turingtest-be/pkg/events"

	"go.mongodb.org/mongo-driver/v2/bson"
	"gorm.io/gorm"
)

const (
	msgEmailTaken         = "Email already registered"
	msgInvalidCredentials = "Invalid credentials"
	msgUserNotFound       = "User not found"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Authenticate(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	GetProfile(ctx context.Context, userId string) (*dto.ProfileResponse, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	hasher     password.IHasher
	tokens     token.ITokenService
	publisher  IPublisherService
	logger     logger.ILogger
	now        func() time.Time
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	hasher password.IHasher,
	tokens token.ITokenService,
	publisher IPublisherService,
	log logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		hasher:     hasher,
		tokens:     tokens,
		publisher:  publisher,
		logger:     log,
		now:        timestamp,
	}
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := NormalizeEmail(req.Email)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Check for existing user
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if existing != nil {
		return nil, apperror.Conflict(msgEmailTaken, nil)
	}

	// 2. Hash password
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 3. Save; a concurrent registration can still trip the unique index
	now := s.now()
	user := &entity.User{
		Id:           bson.NewObjectID(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict(msgEmailTaken, err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	// 4. Issue token
	tok, err := s.tokens.Issue(token.Identity{Id: user.Id.Hex(), Email: user.Email})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("AUTH", fmt.Sprintf("User %s registered", user.Email), map[string]interface{}{
		"user_id": user.Id.Hex(),
	})
	s.publish(ctx, events.New(events.UserRegistered, user.Id.Hex(), map[string]interface{}{
		"email": user.Email,
	}))

	return &dto.AuthResponse{
		Status:  http.StatusCreated,
		Message: "Account created",
		Token:   tok,
		User:    toUserResponse(user),
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := NormalizeEmail(req.Email)
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if user == nil || user.PasswordHash == "" {
		return nil, apperror.Unauthorized(msgInvalidCredentials, nil)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, req.Password)
	if err != nil {
		// Unreadable stored hash; same answer as a wrong password.
		s.logger.Error("AUTH", "Stored password hash could not be decoded", map[string]interface{}{
			"user_id": user.Id.Hex(),
			"error":   err,
		})
		return nil, apperror.Unauthorized(msgInvalidCredentials, err)
	}
	if !ok {
		return nil, apperror.Unauthorized(msgInvalidCredentials, nil)
	}

	tok, err := s.tokens.Issue(token.Identity{Id: user.Id.Hex(), Email: user.Email})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("AUTH", fmt.Sprintf("User %s authenticated", user.Email), map[string]interface{}{
		"user_id": user.Id.Hex(),
	})
	s.publish(ctx, events.New(events.UserLoggedIn, user.Id.Hex(), map[string]interface{}{
		"email": user.Email,
	}))

	return &dto.AuthResponse{
		Status:  http.StatusOK,
		Message: "Logged in",
		Token:   tok,
		User:    toUserResponse(user),
	}, nil
}

func (s *authService) GetProfile(ctx context.Context, userId string) (*dto.ProfileResponse, error) {
	if _, err := bson.ObjectIDFromHex(userId); err != nil {
		return nil, apperror.NotFound(msgUserNotFound)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, apperror.NotFound(msgUserNotFound)
	}

	return &dto.ProfileResponse{
		Status: http.StatusOK,
		User:   toUserResponse(user),
	}, nil
}

func (s *authService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("AUTH", "Failed to publish event", map[string]interface{}{
			"event_type": event.EventType(),
			"error":      err.Error(),
		})
	}
}

// timestamp is the store's clock: UTC, millisecond precision, so values
// survive a round trip through any supported database unchanged.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
