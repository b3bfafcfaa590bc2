// cmd/orchestrator/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"agent-orchestrator/internal/api"
	commonaws "agent-orchestrator/internal/common/aws"
	"agent-orchestrator/internal/common/config"
	"agent-orchestrator/internal/common/database"
	"agent-orchestrator/internal/common/httpclient"
	"agent-orchestrator/internal/common/logger"
	"agent-orchestrator/internal/common/observability"
	"agent-orchestrator/internal/notify"
	"agent-orchestrator/internal/offers"
	"agent-orchestrator/internal/onboarding"
	"agent-orchestrator/internal/orchestrator"
	"agent-orchestrator/internal/persona"
	"agent-orchestrator/internal/retrieval"
	"agent-orchestrator/internal/tools"
	"agent-orchestrator/internal/transactions"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting orchestrator...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Persona registry and offer catalog ---
	registry, err := persona.NewRegistry(cfg.Personas.Dir, log)
	if err != nil {
		zapLog.Fatal("persona registry init failed", zap.Error(err))
	}

	catalog, err := offers.LoadCatalog(cfg.Offers.CatalogPath)
	if err != nil {
		zapLog.Fatal("offer catalog load failed", zap.Error(err))
	}
	offerEngine := offers.NewEngine(catalog, log)

	// --- Retrieval subsystem ---
	var embedder retrieval.Embedder
	switch cfg.Retrieval.Provider {
	case "remote":
		embedder = retrieval.NewRemoteEmbedder(
			cfg.Retrieval.EmbeddingURL,
			cfg.Retrieval.EmbeddingModel,
			cfg.Retrieval.APIKey,
			cfg.Retrieval.Dim,
			httpclient.NewClient(time.Duration(cfg.Retrieval.TimeoutMS)*time.Millisecond),
		)
	default:
		embedder = retrieval.NewHashEmbedder(cfg.Retrieval.Dim)
	}

	store := retrieval.NewESStore(esClient.Client, cfg.Retrieval.Collection, cfg.Retrieval.Dim, log)
	searcher := retrieval.NewSearcher(embedder, store, log,
		retrieval.WithTimeout(time.Duration(cfg.Retrieval.TimeoutMS)*time.Millisecond),
		retrieval.WithCache(redisClient.GetClient(), time.Duration(cfg.Retrieval.CacheTTLMS)*time.Millisecond),
	)

	// --- Transactions store ---
	txStore := transactions.NewStore(pg.DB, log)
	if err := txStore.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("transactions schema init failed", zap.Error(err))
	}

	// --- Onboarding tracker ---
	tracker := onboarding.NewTracker(redisClient.GetClient(), log)

	// --- Escalation notifier (best effort; nil clients disable a channel) ---
	var sesClient *commonaws.SESClient
	var snsClient *commonaws.SNSClient
	if cfg.Integrations.AWS.SES.Enabled {
		if sesClient, err = commonaws.NewSESClient(ctx, cfg.Integrations.AWS.Region); err != nil {
			log.Warn("SES client init failed, email notifications disabled", map[string]interface{}{"error": err.Error()})
		}
	}
	if cfg.Integrations.AWS.SNS.Enabled {
		if snsClient, err = commonaws.NewSNSClient(ctx, cfg.Integrations.AWS.Region); err != nil {
			log.Warn("SNS client init failed, SMS notifications disabled", map[string]interface{}{"error": err.Error()})
		}
	}
	var escalations tools.EscalationNotifier
	if sesClient != nil || snsClient != nil {
		var email notify.EmailSender
		var sms notify.SMSSender
		if sesClient != nil {
			email = sesClient
		}
		if snsClient != nil {
			sms = snsClient
		}
		escalations = notify.NewNotifier(email, sms, cfg.Integrations, log)
	}
	caseManager := tools.NewMemoryCaseManager(escalations, log)

	// --- Orchestration pipeline ---
	pipeline, err := orchestrator.NewPipeline(orchestrator.Dependencies{
		Registry: registry,
		Search:   searcher,
		Budget:   tools.NewBudgetAnalyzer(txStore, log),
		CRM:      tools.NewMockCRM(),
		KYC:      tools.NewMockKYC(),
		Avatar:   tools.NewMockAvatar(),
		Offers:   offerEngine,
		Logger:   log,
		TopK:     cfg.Retrieval.TopK,
	})
	if err != nil {
		zapLog.Fatal("pipeline init failed", zap.Error(err))
	}

	// --- Diagnostics ---
	diag := api.NewDiagnostics(cfg.Retrieval.Provider, log)
	diag.Register("elasticsearch", api.PingerFunc(func(context.Context) error { return esClient.Ping() }))
	diag.Register("redis", api.PingerFunc(redisClient.Ping))
	diag.Register("postgres", api.PingerFunc(pg.Ping))

	// --- HTTP server ---
	handler := api.NewHandler(api.HandlerOptions{
		Pipeline:    pipeline,
		Ingestor:    searcher,
		TxStore:     txStore,
		Tracker:     tracker,
		Cases:       caseManager,
		Payments:    tools.NewMockPayments(),
		Diagnostics: diag,
		Logger:      log,
	})
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}
	zapLog.Info("Orchestrator stopped")
}
