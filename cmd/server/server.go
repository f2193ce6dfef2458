package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/janhq/support-api/internal/config"
	"github.com/janhq/support-api/internal/domain/conversation"
	"github.com/janhq/support-api/internal/domain/llm"
	"github.com/janhq/support-api/internal/domain/retrieval"
	"github.com/janhq/support-api/internal/domain/user"
	"github.com/janhq/support-api/internal/infrastructure/auth"
	"github.com/janhq/support-api/internal/infrastructure/database"
	"github.com/janhq/support-api/internal/infrastructure/embedding"
	"github.com/janhq/support-api/internal/infrastructure/llmprovider"
	"github.com/janhq/support-api/internal/infrastructure/lock"
	"github.com/janhq/support-api/internal/infrastructure/logger"
	"github.com/janhq/support-api/internal/infrastructure/observability"
	"github.com/janhq/support-api/internal/infrastructure/repository/conversationrepo"
	"github.com/janhq/support-api/internal/infrastructure/repository/userrepo"
	"github.com/janhq/support-api/internal/infrastructure/vectorstore"
	"github.com/janhq/support-api/internal/interfaces/httpserver"
	"github.com/janhq/support-api/internal/interfaces/httpserver/handlers"
	"github.com/janhq/support-api/pkg/telemetry"
)

var errFAQNotIndexed = errors.New("faq corpus is not indexed")

// @title Support API
// @version 1.0
// @description Customer support chat backend with FAQ retrieval and conversation history.
// @contact.name Jan Server Team
// @contact.url https://github.com/janhq/jan-server
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
type Application struct {
	httpServer *httpserver.HTTPServer
	faq        *retrieval.FAQService
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HTTPServer, faq *retrieval.FAQService, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		faq:        faq,
		log:        log,
	}
}

// Start indexes the FAQ corpus in the background and serves HTTP until ctx ends.
// Until indexing finishes, RAG questions get the no-context reply and /readyz reports not ready.
func (a *Application) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.faq.Load(gctx); err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error().Err(err).Msg("faq corpus not indexed; retrieval will return no context")
		}
		return nil
	})
	g.Go(func() error {
		return a.httpServer.Run(gctx)
	})

	return g.Wait()
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	checks := map[string]httpserver.ReadinessCheck{}

	var (
		userRepo         user.Repository
		conversationRepo conversation.Repository
	)
	if cfg.DBDriver == "memory" {
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		userRepo = userrepo.NewMemoryRepository()
		conversationRepo = conversationrepo.NewMemoryRepository()
	} else {
		db, err := newGormDB(ctx, newDatabaseConfig(cfg), log)
		if err != nil {
			log.Fatal().Err(err).Msg("initialize database")
		}
		defer func() {
			if err := database.Close(db); err != nil {
				log.Error().Err(err).Msg("close database")
			}
		}()
		userRepo = userrepo.NewRepository(db)
		conversationRepo = conversationrepo.NewRepository(db)
		checks["database"] = func(context.Context) error { return database.Ping(db) }
	}

	var redisClient *redis.Client
	if cfg.LockBackend == "redis" || cfg.EmbeddingCacheType == "redis" {
		redisClient, err = lock.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		defer redisClient.Close()
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	tokens, err := auth.NewTokenService(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize token service")
	}
	defer tokens.Close()

	faq, err := newFAQService(cfg, redisClient, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize retriever")
	}
	checks["faq_index"] = func(context.Context) error {
		if !faq.Ready() {
			return errFAQNotIndexed
		}
		return nil
	}

	provider, err := llmprovider.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize completion provider")
	}

	locker, err := lock.New(cfg.LockBackend, redisClient, cfg.LockTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize conversation locker")
	}

	sanitizer := telemetry.NewSanitizer(telemetry.ParseLevel(cfg.PIILevel), cfg.JWTSecret)

	userService := user.NewService(userRepo, auth.NewBcryptHasher(0), tokens, tokens, log)
	orchestrator := newOrchestrator(cfg, conversationRepo, faq, provider, locker, sanitizer, log)
	historyReader := conversation.NewHistoryReader(conversationRepo, log)

	handlerProvider := handlers.NewProvider(userService, orchestrator, historyReader, log)
	httpServer := httpserver.New(cfg, log, handlerProvider, userService, checks)
	app := NewApplication(httpServer, faq, log)

	log.Info().
		Str("db_driver", cfg.DBDriver).
		Str("llm_provider", cfg.LLMProvider).
		Str("embedding_provider", cfg.EmbeddingProvider).
		Str("lock_backend", cfg.LockBackend).
		Msg("starting support api")

	if err := app.Start(ctx); err != nil {
		log.Error().Err(err).Msg("application stopped with error")
		return
	}

	log.Info().Msg("application exited cleanly")
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	dsn := cfg.DatabaseURL
	if cfg.DBDriver == database.DriverSQLite {
		dsn = cfg.SQLitePath
	}
	return database.Config{
		Driver:          cfg.DBDriver,
		DSN:             dsn,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(ctx context.Context, dbCfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(ctx, db, dbCfg, log); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func newFAQService(cfg *config.Config, redisClient *redis.Client, log zerolog.Logger) (*retrieval.FAQService, error) {
	var base embedding.Embedder
	// The remote service picks its own vector length.
	dims := 0
	switch cfg.EmbeddingProvider {
	case "http":
		base = embedding.NewHTTPClient(cfg.EmbeddingServiceURL, cfg.RAGTimeout)
	default:
		base = embedding.NewLexical(cfg.EmbeddingDimensions)
		dims = cfg.EmbeddingDimensions
	}

	cache, err := embedding.NewCache(embedding.CacheConfig{
		Type:      cfg.EmbeddingCacheType,
		KeyPrefix: cfg.EmbeddingCachePrefix,
		MaxSize:   cfg.EmbeddingCacheMaxSize,
		TTL:       cfg.EmbeddingCacheTTL,
	}, redisClient)
	if err != nil {
		return nil, err
	}

	return retrieval.NewFAQService(
		embedding.NewCached(base, cache, dims),
		vectorstore.NewMemoryStore(),
		retrieval.FAQConfig{
			Path:      cfg.FAQDocumentsPath,
			BatchSize: cfg.EmbeddingBatchSize,
			MinScore:  cfg.RAGMinScore,
		},
		log,
	), nil
}

func newOrchestrator(
	cfg *config.Config,
	repo conversation.Repository,
	retriever retrieval.Retriever,
	provider llm.Provider,
	locker conversation.Locker,
	sanitizer *telemetry.Sanitizer,
	log zerolog.Logger,
) *conversation.Orchestrator {
	return conversation.NewOrchestrator(repo, retriever, provider, locker, conversation.OrchestratorConfig{
		MaxResults:        cfg.RAGMaxResults,
		RetrievalTimeout:  cfg.RAGTimeout,
		CompletionTimeout: cfg.LLMTimeout,
		EnforceOwnership:  cfg.EnforceConversationOwner,
	}, sanitizer, log)
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
