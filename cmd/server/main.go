package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cetlabs/cetexam-backend/internal/config"
	"github.com/cetlabs/cetexam-backend/internal/database"
	"github.com/cetlabs/cetexam-backend/internal/handler"
	"github.com/cetlabs/cetexam-backend/internal/logger"
	"github.com/cetlabs/cetexam-backend/internal/recommend"
	"github.com/cetlabs/cetexam-backend/internal/repository"
	"github.com/cetlabs/cetexam-backend/internal/router"
	"github.com/cetlabs/cetexam-backend/internal/service"
	"github.com/cetlabs/cetexam-backend/internal/validator"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting CET Exam Backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	catRepo := repository.NewCategoryRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	// Services
	authService := service.NewAuthService(cfg)
	userService := service.NewUserService(userRepo, authService, log)
	catService := service.NewCategoryService(catRepo, log)
	questionService := service.NewQuestionService(questionRepo, catRepo, log)
	examService := service.NewExamService(examRepo, questionRepo, catRepo, rdb, cfg, log)
	resultService := service.NewResultService(resultRepo, log)
	gradingService := service.NewGradingService(
		userService,
		examService,
		questionRepo,
		resultRepo,
		recommend.NewEngine(nil),
		rdb,
		log,
	)

	// Handlers
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(userService),
		User:     handler.NewUserHandler(userService, resultService),
		Category: handler.NewCategoryHandler(catService),
		Question: handler.NewQuestionHandler(questionService),
		Exam:     handler.NewExamHandler(examService, gradingService),
		Result:   handler.NewResultHandler(resultService),
		Monitor:  handler.NewMonitorHandler(rdb, log, cfg.AllowedOrigins),
	}

	r := router.SetupRouter(authService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
