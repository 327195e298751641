package bootstrap

import (
	"context"
	"fmt"
	"time"

	"turingtest-be/internal/config"
	"turingtest-be/internal/controller"
	"turingtest-be/internal/handler"
	"turingtest-be/internal/pkg/logger"
	"turingtest-be/internal/pkg/password"
	"turingtest-be/internal/pkg/token"
	"turingtest-be/internal/repository/memory"
	"turingtest-be/internal/repository/unitofwork"
	"turingtest-be/internal/service"
	"turingtest-be/internal/websocket"
	"turingtest-be/pkg/llm"
	"turingtest-be/pkg/llm/factory"

	pktNats "turingtest-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	ChatController    controller.IChatController
	HealthController  controller.IHealthController
	ChatEventsHandler *handler.ChatEventsHandler

	// Shared
	Logger       logger.ILogger
	TokenService token.ITokenService

	// Background Services (started by Start)
	ConsumerService service.IConsumerService
	WebSocketHub    *websocket.Hub

	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
	rdb     *redis.Client
}

type options struct {
	logger    logger.ILogger
	generator llm.ReplyGenerator
	hasher    password.IHasher
}

type Option func(*options)

func WithLogger(log logger.ILogger) Option {
	return func(o *options) { o.logger = log }
}

// WithReplyGenerator replaces the configured LLM provider.
func WithReplyGenerator(gen llm.ReplyGenerator) Option {
	return func(o *options) { o.generator = gen }
}

func WithPasswordHasher(h password.IHasher) Option {
	return func(o *options) { o.hasher = h }
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, opts ...Option) (*Container, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	// 1. Core Facades
	sysLogger := o.logger
	if sysLogger == nil {
		sysLogger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	}
	uowFactory := unitofwork.NewRepositoryFactory(db)

	hasher := o.hasher
	if hasher == nil {
		hasher = password.NewArgon2Hasher(password.DefaultParams)
	}
	tokenService := token.NewJWTService(cfg.Auth.JwtSecret, cfg.Auth.TokenTTL)

	generator := o.generator
	if generator == nil {
		gen, err := factory.NewReplyGenerator(factory.Options{
			Provider: cfg.Llm.Provider,
			Endpoint: cfg.Llm.Endpoint,
			Token:    cfg.Llm.Token,
			Model:    cfg.Llm.Model,
			MinDelay: cfg.Llm.MinDelay,
			MaxDelay: cfg.Llm.MaxDelay,
		}, sysLogger)
		if err != nil {
			return nil, fmt.Errorf("init reply generator: %w", err)
		}
		generator = gen
	}
	sysLogger.Info("BOOT", "Using reply generator", map[string]interface{}{
		"provider": cfg.Llm.Provider,
		"model":    cfg.Llm.Model,
	})

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		logger.NewWatermillAdapter(sysLogger),
	)

	// 3. Infrastructure; both are optional
	var natsPub *pktNats.Publisher
	if cfg.Infra.NatsURL != "" {
		pub, err := pktNats.NewPublisher(ctx, cfg.Infra.NatsURL)
		if err != nil {
			sysLogger.Warn("BOOT", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			natsPub = pub
		}
	}

	var rdb *redis.Client
	if cfg.Infra.RedisURL != "" {
		rdb = connectRedis(ctx, cfg.Infra.RedisURL, sysLogger)
	}

	// WebSocket Hub; connection churn goes to its own file
	hubLogger := o.logger
	if hubLogger == nil {
		hubLogger = logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	}
	wsHub := websocket.NewHub(rdb, websocket.DefaultRedisChannel, hubLogger)

	forwarders := map[string]service.EventForwarder{"websocket": wsHub}
	if natsPub != nil {
		forwarders["nats"] = natsPub
	}

	publisherService := service.NewPublisherService(pubSub, service.DomainEventsTopic)
	consumerService := service.NewConsumerService(pubSub, service.DomainEventsTopic, forwarders, sysLogger)

	// 4. Services
	chatLocks := memory.NewChatLockRepository(30*time.Minute, 10*time.Minute)
	authService := service.NewAuthService(uowFactory, hasher, tokenService, publisherService, sysLogger)
	chatService := service.NewChatService(uowFactory, generator, chatLocks, publisherService, sysLogger)

	// 5. Controllers
	return &Container{
		AuthController:    controller.NewAuthController(authService),
		ChatController:    controller.NewChatController(chatService),
		HealthController:  controller.NewHealthController(),
		ChatEventsHandler: handler.NewChatEventsHandler(wsHub, tokenService, sysLogger),

		Logger:       sysLogger,
		TokenService: tokenService,

		ConsumerService: consumerService,
		WebSocketHub:    wsHub,

		pubSub:  pubSub,
		natsPub: natsPub,
		rdb:     rdb,
	}, nil
}

func connectRedis(ctx context.Context, url string, log logger.ILogger) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("BOOT", "Failed to parse Redis URL, using it as address", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}

	rdb := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("BOOT", "Failed to connect to Redis, running single instance", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// Start launches the hub and the event consumer; both stop when ctx ends.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)
	return c.ConsumerService.Consume(ctx)
}

func (c *Container) Close() error {
	var firstErr error
	if err := c.pubSub.Close(); err != nil {
		firstErr = err
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		if err := c.rdb.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
