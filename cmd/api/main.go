package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/mtf-triage/backend/internal/adapters/cache"
	"github.com/zatekoja/mtf-triage/backend/internal/adapters/database"
	"github.com/zatekoja/mtf-triage/backend/internal/adapters/events"
	"github.com/zatekoja/mtf-triage/backend/internal/adapters/memory"
	"github.com/zatekoja/mtf-triage/backend/internal/api/handlers"
	"github.com/zatekoja/mtf-triage/backend/internal/api/middleware"
	"github.com/zatekoja/mtf-triage/backend/internal/api/routes"
	"github.com/zatekoja/mtf-triage/backend/internal/application/services"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/entities"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/providers"
	"github.com/zatekoja/mtf-triage/backend/internal/domain/repositories"
	"github.com/zatekoja/mtf-triage/backend/internal/evaluation"
	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/clients/openai"
	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/mtf-triage/backend/internal/infrastructure/observability"
	"github.com/zatekoja/mtf-triage/backend/internal/triage"
	"github.com/zatekoja/mtf-triage/backend/pkg/config"
	apperrors "github.com/zatekoja/mtf-triage/backend/pkg/errors"
	"github.com/zatekoja/mtf-triage/backend/pkg/secrets"
)

// unavailableAnalyzer stands in when no scan-analysis backend is configured.
// Batch scans then degrade to placeholder results.
type unavailableAnalyzer struct{}

func (unavailableAnalyzer) Scan(ctx context.Context, report entities.Report) (entities.ScanResult, error) {
	return entities.ScanResult{}, apperrors.NewExternalError("scan analysis is not configured", errors.New("OPENAI_API_KEY is unset"))
}

func main() {
	// Secrets from Vault land in the environment before configuration is read.
	vaultResult, vaultErr := secrets.LoadIntoEnv(context.Background(), secrets.VaultConfigFromEnv())

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env, cfg.LogLevel)

	if vaultErr != nil {
		log.Warn().Err(vaultErr).Str("path", vaultResult.Path).Msg("Failed to load secrets from Vault")
	} else if vaultResult.Loaded > 0 || vaultResult.Skipped > 0 {
		log.Info().
			Str("path", vaultResult.Path).
			Int("loaded", vaultResult.Loaded).
			Int("skipped", vaultResult.Skipped).
			Msg("Loaded secrets from Vault")
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL, cfg.Env)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize Redis client: scan cache, response cache and assessment events
	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			// Continue without Redis - caching and events are optional
			log.Warn().Err(err).Msg("Failed to initialize Redis client, continuing without cache and events")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient, "mtf:")
			eventBus = events.NewRedisEventBus(redisClient)
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis client initialized successfully")
		}
	}

	// Assessment store: Postgres when enabled, memory otherwise
	var assessmentRepo repositories.AssessmentRepository
	if cfg.Database.Enabled {
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
		}
		defer pgClient.Close()
		if err := pgClient.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare assessment schema")
		}
		assessmentRepo = database.NewAssessmentAdapter(pgClient, metrics)
		log.Info().Msg("PostgreSQL assessment store initialized successfully")
	} else {
		assessmentRepo = memory.NewAssessmentStore()
		log.Warn().Msg("DB_ENABLED is false, assessments are kept in memory only")
	}

	// Scan analysis collaborator
	var analyzer providers.ScanAnalyzer
	if openAIClient, err := openai.NewClient(&cfg.OpenAI); err != nil {
		log.Warn().Err(err).Msg("Scan analysis unavailable, batch scans will return placeholder results")
		analyzer = unavailableAnalyzer{}
	} else {
		analyzer = openAIClient
	}
	if cacheProvider != nil {
		analyzer = cache.NewCachedScanAnalyzer(analyzer, cacheProvider, cfg.Triage.ScanCacheTTLSeconds, metrics)
	}

	// Initialize services
	engine := triage.NewEngine(triage.DefaultRules())
	quality := evaluation.NewQualityChecker(evaluation.QualityConfig{})
	statisticsService := services.NewStatisticsService(quality)
	riskAssessmentService := services.NewRiskAssessmentService(engine, quality, assessmentRepo, eventBus, statisticsService, metrics)
	batchScanService := services.NewBatchScanService(
		analyzer, quality, statisticsService, metrics,
		cfg.Triage.BatchChunkSize, cfg.Triage.MaxBatchSize,
	)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
	}

	// Set up router
	router := routes.NewRouter(
		handlers.NewRiskAssessmentHandler(riskAssessmentService),
		handlers.NewBatchScanHandler(batchScanService, statisticsService),
		cacheMiddleware,
		cfg.Server.AllowedOrigins,
		metrics,
	)

	// Create HTTP server. A full batch makes several sequential LLM calls,
	// so the write timeout is sized for it.
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}

	log.Info().Msg("Server stopped")
}
