package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/tayritours/booking-assistant/cmd/mainconfig"
	"github.com/tayritours/booking-assistant/internal/api/router"
	appconfig "github.com/tayritours/booking-assistant/internal/config"
	"github.com/tayritours/booking-assistant/internal/dialogue"
	"github.com/tayritours/booking-assistant/internal/extract"
	"github.com/tayritours/booking-assistant/internal/http/handlers"
	"github.com/tayritours/booking-assistant/internal/messaging"
	"github.com/tayritours/booking-assistant/internal/notify"
	"github.com/tayritours/booking-assistant/internal/observability/metrics"
	"github.com/tayritours/booking-assistant/internal/orders"
	"github.com/tayritours/booking-assistant/internal/reply"
	"github.com/tayritours/booking-assistant/internal/session"
	"github.com/tayritours/booking-assistant/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting booking-assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	registry := prometheus.NewRegistry()
	assistantMetrics := metrics.NewAssistantMetrics(registry)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize repositories and services
	store := buildSessionStore(cfg, logger)
	extractor := buildExtractor(ctx, cfg, logger)

	queue := buildQueue(ctx, cfg, logger)
	publisher := dialogue.NewPublisher(queue, logger)

	sender, provider, reason := messaging.BuildSender(messaging.ProviderSelectionConfig{
		Preference:       cfg.WAProvider,
		D360APIKey:       cfg.D360APIKey,
		D360BaseURL:      cfg.D360BaseURL,
		CloudToken:       cfg.WACloudToken,
		CloudPhoneNumber: cfg.WAPhoneNumberID,
	}, logger)
	if sender == nil {
		logger.Warn("no WhatsApp provider configured, replies will be dropped", "reason", reason)
		sender = messaging.NewNoopSender(logger)
		provider = "noop"
	}
	logger.Info("outbound WhatsApp provider selected", "provider", provider)

	orderRepo, pool := buildOrderRepository(ctx, cfg, logger)
	if pool != nil {
		defer pool.Close()
	}

	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	} else if cfg.Env == "development" {
		emailSender = notify.NewStubEmailSender(logger)
	}
	notifier := notify.NewService(emailSender, cfg.OperatorEmail, logger)

	controller := dialogue.NewController(store, extractor, reply.NewRenderer(), logger)
	worker := dialogue.NewWorker(
		controller,
		queue,
		sender,
		logger,
		dialogue.WithWorkerCount(cfg.WorkerCount),
		dialogue.WithSendTimeout(cfg.SendTimeout),
		dialogue.WithOrderRepository(orderRepo),
		dialogue.WithNotifier(notifier),
		dialogue.WithMetrics(assistantMetrics),
	)
	worker.Start(ctx)

	// Initialize handlers
	webhook := handlers.NewWhatsAppWebhookHandler(handlers.WhatsAppWebhookConfig{
		Publisher:   publisher,
		VerifyToken: cfg.WhatsAppVerifyToken,
		Logger:      logger,
		Metrics:     assistantMetrics,
	})

	// Setup router
	routerCfg := &router.Config{
		Logger:         logger,
		Webhook:        webhook,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	cancel()

	waitCh := make(chan struct{})
	go func() {
		worker.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Info("dialogue worker stopped")
	case <-shutdownCtx.Done():
		logger.Error("dialogue worker shutdown timed out", "error", shutdownCtx.Err())
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

func buildSessionStore(cfg *appconfig.Config, logger *logging.Logger) session.Store {
	switch cfg.SessionBackend {
	case appconfig.SessionBackendRedis:
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		logger.Info("using redis session store", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
		return session.NewRedisStore(client, cfg.SessionTTL, nil)
	case appconfig.SessionBackendFile:
		store, err := session.NewFileStore(cfg.SessionFile, cfg.SessionTTL)
		if err != nil {
			logger.Error("failed to open session file", "path", cfg.SessionFile, "error", err)
			os.Exit(1)
		}
		logger.Info("using file session store", "path", cfg.SessionFile, "ttl", cfg.SessionTTL)
		return store
	default:
		logger.Info("using in-memory session store", "ttl", cfg.SessionTTL)
		return session.NewMemoryStore(cfg.SessionTTL)
	}
}

// buildExtractor assembles the extraction chain. Pattern matching always
// works; when an LLM is configured it runs first with the patterns as
// fallback.
func buildExtractor(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) extract.Extractor {
	patterns := extract.NewPatternExtractor()

	var llm extract.LLMClient
	model := cfg.BedrockModelID

	if cfg.BedrockModelID != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config for bedrock", "error", err)
			os.Exit(1)
		}
		llm = extract.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
	}

	if cfg.GeminiAPIKey != "" {
		gemini, err := extract.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		if llm != nil {
			llm = extract.NewFallbackLLMClient(llm, gemini, logger.Logger)
		} else {
			llm = gemini
			model = cfg.GeminiModelID
		}
	}

	if llm == nil {
		logger.Info("no LLM configured, using pattern extraction only")
		return patterns
	}

	logger.Info("LLM extraction enabled", "model", model, "timeout", cfg.ExtractTimeout)
	primary := extract.NewTimeoutExtractor(extract.NewLLMExtractor(llm, model), cfg.ExtractTimeout)
	return extract.NewFallbackExtractor(primary, patterns, logger.Logger)
}

func buildQueue(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) dialogue.Queue {
	if cfg.UseMemoryQueue || cfg.DialogueQueueURL == "" {
		logger.Info("using in-memory dialogue queue")
		return dialogue.NewMemoryQueue(0)
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	logger.Info("using SQS dialogue queue", "queue_url", cfg.DialogueQueueURL)
	return dialogue.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.DialogueQueueURL)
}

func buildOrderRepository(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (orders.Repository, *pgxpool.Pool) {
	if cfg.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set, keeping orders in memory")
		return orders.NewInMemoryRepository(), nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	logger.Info("orders persisted to postgres")
	return orders.NewPostgresRepository(pool), pool
}
