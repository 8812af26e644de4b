package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/ummahhub/community-api/internal/api/http"
	"github.com/ummahhub/community-api/internal/api/http/handlers"
	"github.com/ummahhub/community-api/internal/auth"
	"github.com/ummahhub/community-api/internal/config"
	"github.com/ummahhub/community-api/internal/events"
	"github.com/ummahhub/community-api/internal/forum"
	"github.com/ummahhub/community-api/internal/llm"
	"github.com/ummahhub/community-api/internal/observability"
	"github.com/ummahhub/community-api/internal/persistence"
	"github.com/ummahhub/community-api/internal/repository"
	"github.com/ummahhub/community-api/internal/search"
	"github.com/ummahhub/community-api/internal/service"
	"github.com/ummahhub/community-api/internal/stream"
	"github.com/ummahhub/community-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	threadRepo, closeStore := openForumStore(ctx, cfg, logger)
	defer closeStore()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	dispatcher := events.NewInMemoryDispatcher(logger)
	codec := forum.NewCodec()

	es, err := persistence.NewElasticsearch(cfg.Search, nil, logger)
	if err != nil {
		logger.Fatal("failed to configure elasticsearch", zap.Error(err))
	}
	index := search.NewIndex(es, cfg.Search.Index, threadRepo, logger)
	if index != nil {
		if err := index.EnsureIndex(ctx); err != nil {
			logger.Warn("unable to prepare search index", zap.Error(err))
		}
	}

	deps := service.ForumDependencies{
		ThreadRepo: threadRepo,
		Codec:      codec,
		Dispatcher: dispatcher,
		Logger:     logger,
	}
	if index != nil {
		deps.Searcher = index
	}
	forumService := service.NewForumService(deps)

	moderation := service.NewModerationService(forumService)

	var generator llm.Generator
	if cfg.LLM.Enabled() {
		generator = llm.NewOpenAIGenerator(cfg.LLM, logger)
	} else {
		logger.Warn("LLM_API_KEY not provided; suggestions are disabled")
	}
	suggestions := service.NewSuggestionService(generator, forumService, logger)
	preferences := service.NewPreferencesService(repository.NewPreferencesRepository(redis.Client), codec, logger)

	admins := service.NewAdminDirectory(cfg.Auth)
	if admins.Len() == 0 {
		logger.Warn("no admin account configured; moderation endpoints will reject every login")
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(admins, tokens)
	authMiddleware := auth.NewAuthMiddleware(tokens, admins)

	broker := stream.NewBroker(cfg.Stream.BufferSize)
	defer broker.Close()

	var kafkaPublisher *events.KafkaPublisher
	if writer := events.NewKafkaWriter(cfg.Kafka, logger); writer != nil {
		kafkaPublisher = events.NewKafkaPublisher(writer, logger)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				logger.Warn("kafka writer close", zap.Error(err))
			}
		}()
	}

	worker.StartEventWorkers(dispatcher, worker.Subscribers{
		Notifications: service.NewNotificationService(dispatcher, logger),
		Kafka:         kafkaPublisher,
		Search:        index,
		Stream:        broker,
	}, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version,
			handlers.Dependency{Name: cfg.Store.Driver, Pinger: forumService},
			handlers.Dependency{Name: "redis", Pinger: redis},
		),
		Auth:           handlers.NewAuthHandler(authService),
		Forum:          handlers.NewForumHandler(forumService, moderation),
		AdminForum:     handlers.NewAdminForumHandler(moderation, suggestions),
		Suggestions:    handlers.NewSuggestionsHandler(suggestions),
		Preferences:    handlers.NewPreferencesHandler(preferences),
		Stream:         handlers.NewStreamHandler(broker, 25*time.Second),
		AuthMiddleware: authMiddleware,
		Gatherer:       registry,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	// open event streams never finish on their own
	broker.Close()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}

// openForumStore connects the configured document store and returns its repository
// together with a cleanup function.
func openForumStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.ForumRepository, func()) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		return repository.NewForumPGRepository(pg.PoolHandle()), pg.Close
	case config.StoreDriverMemory:
		logger.Warn("using the in-memory forum store; threads are lost on restart")
		return repository.NewForumMemoryRepository(), func() {}
	default:
		mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			logger.Fatal("failed to connect mongo", zap.Error(err))
		}
		return repository.NewForumMongoRepository(mongo.DB), func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			mongo.Close(closeCtx)
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
