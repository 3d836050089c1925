package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/decoyline/honeypot-agent/internal/api/router"
	appconfig "github.com/decoyline/honeypot-agent/internal/config"
	"github.com/decoyline/honeypot-agent/internal/honeypot"
	"github.com/decoyline/honeypot-agent/internal/http/handlers"
	"github.com/decoyline/honeypot-agent/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting honeypot-agent API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"mode", cfg.Mode,
		"llm_provider", cfg.LLMProvider,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	llmClient, model, cleanup, err := buildLLMClient(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize LLM client", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	convoLog, err := logging.NewFileLogger(cfg.ConversationLogFile)
	if err != nil {
		logger.Error("failed to open conversation log", "error", err)
		os.Exit(1)
	}
	intelLog, err := logging.NewFileLogger(cfg.IntelLogFile)
	if err != nil {
		logger.Error("failed to open intelligence log", "error", err)
		os.Exit(1)
	}

	detector := honeypot.NewDetector(llmClient, model, logger)
	agent := honeypot.NewPersonaAgent(llmClient, model, logger)
	extractor := honeypot.NewExtractor(llmClient, model, logger)
	reporter := honeypot.NewReporter(cfg.ReportURL, cfg.ReportTimeout, logger, intelLog)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	var service *honeypot.Service
	var worker *honeypot.IntelWorker

	if cfg.Mode == "stateless" {
		service = honeypot.NewStatelessService(detector, agent, extractor, reporter, logger,
			honeypot.WithConversationLog(convoLog))
	} else {
		sessions, err := buildSessionStore(cfg, logger)
		if err != nil {
			logger.Error("failed to initialize session store", "error", err)
			os.Exit(1)
		}

		queue, err := buildQueue(ctx, cfg)
		if err != nil {
			logger.Error("failed to initialize intel queue", "error", err)
			os.Exit(1)
		}
		publisher := honeypot.NewPublisher(queue, logger)

		worker = honeypot.NewIntelWorker(extractor, reporter, queue, logger,
			honeypot.WithWorkerCount(cfg.WorkerCount))
		worker.Start(workerCtx)

		service = honeypot.NewService(detector, agent, sessions, publisher, logger,
			honeypot.WithConversationLog(convoLog))
	}

	chatHandler := handlers.NewChatHandler(service, logger)
	r := router.New(&router.Config{
		Logger:         logger,
		ChatHandler:    chatHandler,
		APIKey:         cfg.APIKey,
		MetricsHandler: promhttp.Handler(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Let in-flight intel jobs drain before exit.
	stopWorkers()
	if worker != nil {
		worker.Wait()
	}

	logger.Info("server stopped")
}

func buildLLMClient(ctx context.Context, cfg *appconfig.Config) (honeypot.LLMClient, string, func(), error) {
	switch cfg.LLMProvider {
	case "none":
		return honeypot.DisabledLLMClient{}, "", func() {}, nil
	case "bedrock":
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, "", nil, err
		}
		client := honeypot.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg))
		return client, cfg.BedrockModelID, func() {}, nil
	default:
		client, err := honeypot.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			return nil, "", nil, err
		}
		return client, cfg.GeminiModelID, func() { _ = client.Close() }, nil
	}
}

func buildSessionStore(cfg *appconfig.Config, logger *logging.Logger) (honeypot.SessionStore, error) {
	if cfg.SessionStore == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		logger.Info("using redis session store", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
		return honeypot.NewRedisSessionStore(client, cfg.SessionTTL), nil
	}
	logger.Info("using in-memory session store")
	return honeypot.NewMemorySessionStore(), nil
}

func buildQueue(ctx context.Context, cfg *appconfig.Config) (honeypot.Queue, error) {
	if cfg.UseMemoryQueue {
		return honeypot.NewMemoryQueue(0), nil
	}
	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return honeypot.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.IntelQueueURL), nil
}

func loadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(endpoint)
	}
	return awsCfg, nil
}
