//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/janhq/support-api/internal/config"
	"github.com/janhq/support-api/internal/domain/conversation"
	"github.com/janhq/support-api/internal/domain/retrieval"
	"github.com/janhq/support-api/internal/domain/user"
	"github.com/janhq/support-api/internal/infrastructure/auth"
	"github.com/janhq/support-api/internal/infrastructure/database"
	"github.com/janhq/support-api/internal/infrastructure/llmprovider"
	"github.com/janhq/support-api/internal/infrastructure/lock"
	"github.com/janhq/support-api/internal/infrastructure/logger"
	"github.com/janhq/support-api/internal/infrastructure/repository/conversationrepo"
	"github.com/janhq/support-api/internal/infrastructure/repository/userrepo"
	"github.com/janhq/support-api/internal/interfaces/httpserver"
	"github.com/janhq/support-api/internal/interfaces/httpserver/handlers"
	"github.com/janhq/support-api/internal/interfaces/httpserver/middlewares"
	"github.com/janhq/support-api/pkg/telemetry"
)

var repositorySet = wire.NewSet(
	newDatabaseConfig,
	newGormDB,
	userrepo.NewRepository,
	wire.Bind(new(user.Repository), new(*userrepo.Repository)),
	conversationrepo.NewRepository,
	wire.Bind(new(conversation.Repository), new(*conversationrepo.Repository)),
)

var domainSet = wire.NewSet(
	newTokenService,
	wire.Bind(new(user.TokenIssuer), new(*auth.TokenService)),
	wire.Bind(new(user.TokenVerifier), new(*auth.TokenService)),
	newPasswordHasher,
	wire.Bind(new(user.PasswordHasher), new(*auth.BcryptHasher)),
	user.NewService,
	newRedisClient,
	newFAQService,
	wire.Bind(new(retrieval.Retriever), new(*retrieval.FAQService)),
	llmprovider.New,
	newLocker,
	newSanitizer,
	newOrchestrator,
	conversation.NewHistoryReader,
)

var httpSet = wire.NewSet(
	wire.Bind(new(handlers.AuthService), new(*user.Service)),
	wire.Bind(new(middlewares.Authenticator), new(*user.Service)),
	wire.Bind(new(handlers.AskService), new(*conversation.Orchestrator)),
	wire.Bind(new(handlers.HistoryService), new(*conversation.HistoryReader)),
	handlers.NewProvider,
	newReadinessChecks,
	httpserver.New,
)

// BuildApplication assembles the SQL backed service graph with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		repositorySet,
		domainSet,
		httpSet,
		NewApplication,
	)
	return nil, nil
}

func newTokenService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.TokenService, error) {
	return auth.NewTokenService(ctx, cfg, log)
}

func newPasswordHasher() *auth.BcryptHasher {
	return auth.NewBcryptHasher(0)
}

func newRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.LockBackend != "redis" && cfg.EmbeddingCacheType != "redis" {
		return nil, nil
	}
	return lock.NewRedisClient(ctx, cfg.RedisURL)
}

func newLocker(cfg *config.Config, client *redis.Client, log zerolog.Logger) (conversation.Locker, error) {
	return lock.New(cfg.LockBackend, client, cfg.LockTTL, log)
}

func newSanitizer(cfg *config.Config) *telemetry.Sanitizer {
	return telemetry.NewSanitizer(telemetry.ParseLevel(cfg.PIILevel), cfg.JWTSecret)
}

func newReadinessChecks(db *gorm.DB, faq *retrieval.FAQService) map[string]httpserver.ReadinessCheck {
	return map[string]httpserver.ReadinessCheck{
		"database": func(context.Context) error {
			return database.Ping(db)
		},
		"faq_index": func(context.Context) error {
			if !faq.Ready() {
				return errFAQNotIndexed
			}
			return nil
		},
	}
}
