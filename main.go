package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agentschat/internal/agent"
	"agentschat/internal/api"
	"agentschat/internal/auth"
	"agentschat/internal/chat"
	"agentschat/internal/config"
	"agentschat/internal/store"
	"agentschat/internal/uploads"
)

func main() {
	cfgPath := os.Getenv("AGENTSCHAT_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	uploadDir := cfg.UploadDir
	if uploadDir == "" {
		uploadDir = "./data/uploads"
	}
	uploadStore, err := uploads.NewStore(uploadDir)
	if err != nil {
		logger.Fatal("init upload store", zap.Error(err))
	}

	agentTimeout := time.Duration(cfg.AgentTimeoutSeconds) * time.Second
	if agentTimeout <= 0 {
		agentTimeout = 30 * time.Second
	}
	dispatcher := agent.NewDispatcher(agent.NewClient(agentTimeout), cfg.AgentMaxConcurrent, logger)

	st := store.New()
	chatService := chat.NewService(st, dispatcher, uploadStore, logger)
	authService := auth.NewService(st, logger)

	if err := chatService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Fatal("seed admin", zap.Error(err))
	}

	handlers := api.NewHandler(chatService, authService, logger)

	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger))
	handlers.RegisterRoutes(router)

	addr := cfg.ServerAddress
	if addr == "" {
		addr = ":8090"
	}
	logger.Info("server starting", zap.String("addr", addr), zap.String("upload_dir", uploadDir))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
