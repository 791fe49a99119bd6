package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-redis/redis"
	"github.com/xpanvictor/aigreeter/internal/config"
	"github.com/xpanvictor/aigreeter/internal/database"
	"github.com/xpanvictor/aigreeter/internal/domains/auth"
	"github.com/xpanvictor/aigreeter/internal/domains/compliment"
	"github.com/xpanvictor/aigreeter/internal/domains/conversation"
	"github.com/xpanvictor/aigreeter/internal/domains/speech"
	"github.com/xpanvictor/aigreeter/internal/handlers"
	"github.com/xpanvictor/aigreeter/internal/handlers/websocket"
	complimentRepo "github.com/xpanvictor/aigreeter/internal/repository/compliment"
	"github.com/xpanvictor/aigreeter/internal/server"
	"github.com/xpanvictor/aigreeter/pkg/Logger"
)

// Store drivers accepted in store.driver.
const (
	StoreRedis  = "redis"
	StoreMemory = "memory"
	StoreNone   = "none"
)

// App represents the application with all its dependencies
type App struct {
	Config    *config.Settings
	Logger    *Logger.Logger
	RC        *redis.Client
	Providers *Providers
	// repos
	ComplimentRepo compliment.Repository
	// services
	ComplimentService   compliment.ComplimentService
	ConversationService conversation.ConversationService
	SpeechService       speech.SpeechService
	TokenService        *auth.TokenService

	WebSocketHandler *websocket.WebSocketHandler
	ServerDeps       server.Dependencies
}

// NewApp creates a new application instance with all dependencies properly
// wired. rc may be nil; it is dialed when the redis store is selected.
func NewApp(ctx context.Context, cfg *config.Settings, logger *Logger.Logger, rc *redis.Client) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		RC:     rc,
	}

	if err := app.setupDependencies(ctx); err != nil {
		return nil, err
	}

	return app, nil
}

// setupDependencies initializes all application dependencies
func (a *App) setupDependencies(ctx context.Context) error {
	// 1. session store
	if err := a.setupStore(); err != nil {
		return err
	}

	// 2. model providers
	providers, err := NewProviderFactory(a.Config, a.Logger).CreateProviders(ctx)
	if err != nil {
		return err
	}
	a.Providers = providers

	// 3. services
	a.ComplimentService = compliment.NewComplimentService(
		a.ComplimentRepo,
		providers.Annotator,
		a.Config.Vision.ComplimentTTL,
		a.Logger.With("component", "compliment"),
	)
	var reader conversation.ComplimentReader
	var source websocket.ComplimentSource
	if a.ComplimentRepo != nil {
		reader = a.ComplimentService
		source = a.ComplimentService
	}
	a.ConversationService = conversation.NewConversationService(providers.Responder, reader, a.Logger.With("component", "chat"))
	a.SpeechService = speech.NewSpeechService(providers.Transcriber, providers.Synthesizer, a.Logger.With("component", "speech"))

	a.TokenService = auth.NewTokenService(a.Config.Auth.JWTSecret, a.Config.Auth.Issuer)
	if a.TokenService.Enabled() {
		a.Logger.Infof("kiosk token auth enabled")
	}

	// 4. handlers
	a.WebSocketHandler = websocket.NewWebSocketHandler(a.Config, source, a.Logger.With("component", "bridge"))
	if a.Config.Providers.OpenAI.APIKey == "" {
		a.Logger.Warn("OpenAI API key not set; realtime connections will be refused")
	}

	a.ServerDeps = server.NewServerDependencies(
		handlers.NewVisionHandler(a.ComplimentService, a.Config, a.Logger),
		handlers.NewSpeechHandler(a.SpeechService, a.Config, a.Logger),
		handlers.NewChatHandler(a.ConversationService, a.Logger),
		a.WebSocketHandler,
		a.TokenService,
		a.Logger,
	)

	return nil
}

func (a *App) setupStore() error {
	switch a.Config.Store.Driver {
	case StoreRedis:
		if a.RC == nil {
			rc, err := database.NewRedis(a.Config.Redis)
			if err != nil {
				a.Logger.Warnf("redis not reachable yet: %v", err)
			}
			a.RC = rc
		}
		a.ComplimentRepo = complimentRepo.NewRedisRepository(a.RC, a.Config.Store.KeyPrefix)
		a.Logger.Infof("compliment store: redis at %s", a.Config.Redis.Addr)
	case StoreMemory, "":
		a.ComplimentRepo = complimentRepo.NewMemoryRepository(a.Config.Store.KeyPrefix)
		a.Logger.Infof("compliment store: in-process memory")
	case StoreNone:
		a.Logger.Warn("compliment store disabled; /vision will answer 500 and nothing is injected")
	default:
		return fmt.Errorf("unknown store driver %q", a.Config.Store.Driver)
	}
	return nil
}

// GetServerDependencies returns the server dependencies
func (a *App) GetServerDependencies() server.Dependencies {
	return a.ServerDeps
}

// Shutdown closes live bridges and releases clients.
func (a *App) Shutdown(timeout time.Duration) {
	a.WebSocketHandler.Close(timeout)
	if a.Providers != nil {
		if err := a.Providers.Close(); err != nil {
			a.Logger.Warnf("closing providers: %v", err)
		}
	}
	if closer, ok := a.ComplimentRepo.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			a.Logger.Warnf("closing compliment store: %v", err)
		}
	}
	if a.RC != nil {
		if err := a.RC.Close(); err != nil {
			a.Logger.Warnf("closing redis: %v", err)
		}
	}
}
