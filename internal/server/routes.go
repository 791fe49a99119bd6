package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/xpanvictor/aigreeter/internal/config"
	"github.com/xpanvictor/aigreeter/internal/domains/auth"
	"github.com/xpanvictor/aigreeter/internal/handlers"
	"github.com/xpanvictor/aigreeter/internal/handlers/websocket"
	"github.com/xpanvictor/aigreeter/pkg/Logger"
)

type Dependencies struct {
	VisionHandler    *handlers.VisionHandler
	SpeechHandler    *handlers.SpeechHandler
	ChatHandler      *handlers.ChatHandler
	WebSocketHandler *websocket.WebSocketHandler
	TokenService     *auth.TokenService
	Logger           *Logger.Logger
}

func NewServerDependencies(
	visionHandler *handlers.VisionHandler,
	speechHandler *handlers.SpeechHandler,
	chatHandler *handlers.ChatHandler,
	wsHandler *websocket.WebSocketHandler,
	tokenService *auth.TokenService,
	logger *Logger.Logger,
) Dependencies {
	return Dependencies{
		VisionHandler:    visionHandler,
		SpeechHandler:    speechHandler,
		ChatHandler:      chatHandler,
		WebSocketHandler: wsHandler,
		TokenService:     tokenService,
		Logger:           logger,
	}
}

// InitializeRoutes wires every HTTP and WebSocket route onto r.
func InitializeRoutes(cfg *config.Settings, r *gin.Engine, dep Dependencies) {
	guard := handlers.AuthMiddleware(dep.TokenService, dep.Logger)

	r.GET("/health", handlers.Health(dep.WebSocketHandler.ActiveBridges))
	r.GET("/test", handlers.Test)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/", guard)
	{
		api.POST("/vision", dep.VisionHandler.Annotate)
		api.POST("/speech-to-text", dep.SpeechHandler.SpeechToText)
		api.POST("/chat", dep.ChatHandler.Chat)
		api.POST("/text-to-speech", dep.SpeechHandler.TextToSpeech)
		if cfg.Debug {
			api.POST("/vision-simple", dep.VisionHandler.AnnotateMock)
		}
	}

	dep.WebSocketHandler.RegisterRoutes(r, guard)

	r.NoRoute(handlers.NotFound)
}
