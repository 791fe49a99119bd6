package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	_ "github.com/xpanvictor/aigreeter/docs"
	"github.com/xpanvictor/aigreeter/internal/app"
	"github.com/xpanvictor/aigreeter/internal/config"
	"github.com/xpanvictor/aigreeter/internal/handlers"
	"github.com/xpanvictor/aigreeter/internal/server"
	"github.com/xpanvictor/aigreeter/pkg/Logger"
)

// @title AI Greeter API
// @version 1.0
// @description Realtime voice greeter with vision compliments.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// This is the main entry point for the API server.
// Loads in all system components
// Exposes functionalities
func main() {
	// .env is optional
	_ = godotenv.Load()

	config.BindFlags(pflag.CommandLine)
	pflag.Parse()

	// fetch cfg
	cfg, err := config.Load(pflag.CommandLine)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	// load global logger
	logger := Logger.New(cfg.Debug)
	defer logger.Sync()
	logger.Infof("Logger initialized (env=%s, config=%q)", cfg.Env, cfg.ConfigFile())

	if cfg.OnChange(func(e fsnotify.Event) {
		logger.Warnf("config file %s changed (%s); restart to apply", e.Name, e.Op)
	}) {
		logger.Debugf("watching %s for changes", cfg.ConfigFile())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(ctx, cfg, logger, nil)
	if err != nil {
		logger.Fatalf("Failed to wire application: %v", err)
	}

	// compose router
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		handlers.ErrorHandlerMiddleware(logger),
		handlers.RequestLoggerMiddleware(logger),
		handlers.CORSMiddleware(),
	)
	server.InitializeRoutes(cfg, router, application.GetServerDependencies())

	// listen with graceful exit
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router.Handler(),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}
	go func() {
		logger.Infof("AI greeter listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Server exiting: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	// hijacked sockets are not tracked by Shutdown, close bridges first
	application.Shutdown(cfg.Server.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Shutdown err %v", err)
	}
	logger.Info("Shutdown system")
}
