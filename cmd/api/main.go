package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"affinity-chat/internal/config"
	"affinity-chat/internal/db"
	apihttp "affinity-chat/internal/http"
	"affinity-chat/internal/llm"
	"affinity-chat/internal/repository"
	"affinity-chat/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	issueToken, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}

	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}
	verifier := service.NewTokenVerifier(cfg.JWTSecret)
	if issueToken != "" {
		token, err := verifier.Issue(issueToken, 24*time.Hour)
		if err != nil {
			logger.Fatal("issue token", zap.Error(err))
		}
		fmt.Println(token)
		return
	}

	var (
		convRepo    repository.ConversationRepository = repository.NewInMemoryConversationRepository()
		messageRepo repository.MessageRepository      = repository.NewInMemoryMessageRepository()
		personaRepo repository.PersonaRepository      = repository.NewInMemoryPersonaRepository()
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Ping(ctx, pool); err != nil {
			logger.Fatal("db ping", zap.Error(err))
		}
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
		convRepo = repository.NewPgConversationRepository(pool)
		messageRepo = repository.NewPgMessageRepository(pool)
		personaRepo = repository.NewPgPersonaRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
	}

	var turnLock service.TurnLock = service.NewLocalTurnLock()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-process turn lock", zap.Error(err))
		} else {
			turnLock = service.NewRedisTurnLock(redisClient, 0, logger)
		}
		cancel()
	}

	llmClient := llm.NewClient(cfg.LLMProvider, cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout(), logger)
	if llmClient == nil {
		logger.Warn("LLM_API_KEY not set, replies come from the rule engine")
	}

	convSvc := service.NewConversationService(convRepo, messageRepo, personaRepo, llmClient, turnLock, cfg.EngineConfig(), logger)
	chatHandler := apihttp.NewChatHandler(logger, convSvc)
	router := apihttp.NewRouter(logger, verifier, chatHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.String("llm_provider", cfg.LLMProvider))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

// parseFlags devuelve el user id de --issue-token, vacio si no se pidio.
func parseFlags(args []string) (string, error) {
	var issueToken string
	flagSet := pflag.NewFlagSet("api", pflag.ContinueOnError)
	flagSet.StringVar(&issueToken, "issue-token", "", "imprime un access token para el user id dado y termina")
	if err := flagSet.Parse(args); err != nil {
		return "", err
	}
	return issueToken, nil
}
