// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"khetmitra-workers/internal/chat"
	kaws "khetmitra-workers/internal/common/aws"
	"khetmitra-workers/internal/common/camunda"
	"khetmitra-workers/internal/common/config"
	"khetmitra-workers/internal/common/database"
	khttp "khetmitra-workers/internal/common/http"
	"khetmitra-workers/internal/common/logger"
	"khetmitra-workers/internal/common/observability"
	"khetmitra-workers/internal/detection"
	"khetmitra-workers/internal/market"
	"khetmitra-workers/internal/practices"
	"khetmitra-workers/internal/prediction"
	"khetmitra-workers/internal/session"
	"khetmitra-workers/internal/weather"

	fw "khetmitra-workers/internal/workers/advisory/fetch-weather"
	rc "khetmitra-workers/internal/workers/advisory/recommend-crop"
	cr "khetmitra-workers/internal/workers/assistant/chat-reply"
	dd "khetmitra-workers/internal/workers/detection/detect-disease"
	sl "khetmitra-workers/internal/workers/market/search-listings"
	sd "khetmitra-workers/internal/workers/notification/send-diagnosis"
	croi "khetmitra-workers/internal/workers/practices/calculate-roi"
	rp "khetmitra-workers/internal/workers/practices/recommend-practices"
	sp "khetmitra-workers/internal/workers/profile/save-profile"
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
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, cfg.Tracing.JaegerEndpoint)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, camunda.ClientConfigFrom(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			return err
		}
		return pg.EnsureSchema(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Elasticsearch ---
	// Market search falls back to static listings, so a missing cluster is
	// logged rather than fatal.
	esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		zapLog.Fatal("elasticsearch client failed", zap.Error(err))
	}
	searcher := market.NewSearcher(esClient.Client, cfg.Database.Elasticsearch.MarketIndex, log)
	err = retryWithBackoff(func() error {
		if err := esClient.Ping(ctx); err != nil {
			return err
		}
		if err := esClient.EnsureMarketIndex(ctx, cfg.Database.Elasticsearch.MarketIndex); err != nil {
			return err
		}
		return searcher.Seed(ctx)
	}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Warn("elasticsearch unavailable, market search will serve static listings", zap.Error(err))
	} else {
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Domain services ---
	catalog, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		zapLog.Fatal("practice catalog invalid", zap.Error(err))
	}
	zapLog.Info("practice catalog loaded", zap.Int("version", catalog.Version()), zap.Int("practices", catalog.Len()))

	progress := detection.NewRedisSink(rdb.Client, time.Duration(cfg.Detection.ProgressTTL)*time.Second)
	var classifier detection.Classifier = detection.StaticClassifier{}
	if inf := cfg.APIs.Inference; inf.BaseURL != "" {
		classifier = detection.NewHTTPClassifier(
			khttp.NewClient(config.GetDuration(inf.Timeout), khttp.WithRetries(inf.MaxRetries, 200*time.Millisecond)),
			inf.BaseURL,
		)
	}
	tracker := detection.NewTracker(detection.TrackerConfig{
		TickInterval: config.GetDuration(cfg.Detection.TickInterval),
	}, classifier, progress, log)
	sessions := detection.NewSessions(tracker)

	wcfg := cfg.APIs.Weather
	weatherClient := weather.NewClient(khttp.NewClient(config.GetDuration(wcfg.Timeout)), wcfg.BaseURL, wcfg.Latitude, wcfg.Longitude)
	weatherService := weather.NewService(weatherClient, rdb.Client,
		weather.CacheKeyFor(weatherClient.Location()), time.Duration(wcfg.CacheTTL)*time.Second, log)

	transcripts := chat.NewStore(
		chat.NewRedisKV(rdb.Client, time.Duration(cfg.Session.TranscriptTTL)*time.Second), log)
	assistant := chat.NewAssistant(weatherService)

	predictor := prediction.NewClient(khttp.NewClient(config.GetDuration(cfg.APIs.Prediction.Timeout)), cfg.APIs.Prediction.BaseURL)
	profiles := session.NewProfileRepository(pg.DB)

	email, sms := notificationSenders(ctx, cfg, zapLog)

	// --- Workers ---
	manager := camunda.NewManager(zeebe.Zeebe(), obs, zapLog)

	manager.Register(dd.TaskType, config.GetWorkerConfig(cfg, dd.TaskType),
		dd.NewHandler(dd.LoadConfig(cfg), sessions, log).Handle)
	manager.Register(rp.TaskType, config.GetWorkerConfig(cfg, rp.TaskType),
		rp.NewHandler(rp.LoadConfig(cfg), catalog, log).Handle)
	manager.Register(croi.TaskType, config.GetWorkerConfig(cfg, croi.TaskType),
		croi.NewHandler(croi.LoadConfig(cfg), log).Handle)
	manager.Register(rc.TaskType, config.GetWorkerConfig(cfg, rc.TaskType),
		rc.NewHandler(rc.LoadConfig(cfg), predictor, transcripts, log).Handle)
	manager.Register(fw.TaskType, config.GetWorkerConfig(cfg, fw.TaskType),
		fw.NewHandler(fw.LoadConfig(cfg), weatherService, log).Handle)
	manager.Register(cr.TaskType, config.GetWorkerConfig(cfg, cr.TaskType),
		cr.NewHandler(cr.LoadConfig(cfg), transcripts, assistant, log).Handle)
	manager.Register(sl.TaskType, config.GetWorkerConfig(cfg, sl.TaskType),
		sl.NewHandler(sl.LoadConfig(cfg), searcher, log).Handle)
	manager.Register(sd.TaskType, config.GetWorkerConfig(cfg, sd.TaskType),
		sd.NewHandler(sd.LoadConfig(cfg), email, sms, progress, log).Handle)
	manager.Register(sp.TaskType, config.GetWorkerConfig(cfg, sp.TaskType),
		sp.NewHandler(sp.LoadConfig(cfg), profiles, log).Handle)

	zapLog.Info("workers registered", zap.Strings("taskTypes", manager.TaskTypes()))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{"postgres": "ok", "redis": "ok", "zeebe": "ok"}
		code := http.StatusOK
		if err := pg.Ping(checkCtx); err != nil {
			checks["postgres"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := rdb.Ping(checkCtx); err != nil {
			checks["redis"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if err := zeebe.HealthCheck(checkCtx); err != nil {
			checks["zeebe"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		status := "ready"
		if code != http.StatusOK {
			status = "not_ready"
		}
		writeStatus(w, code, map[string]interface{}{
			"status":  status,
			"checks":  checks,
			"workers": manager.TaskTypes(),
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	srv := &http.Server{Addr: cfg.Metrics.Address, Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// running detections would otherwise hold their jobs until the timeout
	sessions.CancelAll()
	manager.Close()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func loadCatalog(path string) (*practices.Catalog, error) {
	if path == "" {
		return practices.LoadDefault()
	}
	return practices.LoadFile(path)
}

// notificationSenders returns nil senders for channels that are disabled or
// cannot be configured; send-diagnosis reports those as disabled.
func notificationSenders(ctx context.Context, cfg *config.Config, log *zap.Logger) (sd.EmailSender, sd.SMSSender) {
	awsCfg := cfg.Integrations.AWS
	if !awsCfg.SES.Enabled && !awsCfg.SNS.Enabled {
		return nil, nil
	}
	sdkCfg, err := kaws.LoadConfig(ctx, awsCfg.Region)
	if err != nil {
		log.Warn("AWS config unavailable, notifications disabled", zap.Error(err))
		return nil, nil
	}

	var (
		email sd.EmailSender
		sms   sd.SMSSender
	)
	if awsCfg.SES.Enabled {
		email = kaws.NewEmailSenderFromConfig(sdkCfg, awsCfg.SES.FromEmail)
	}
	if awsCfg.SNS.Enabled {
		sms = kaws.NewSMSSenderFromConfig(sdkCfg, awsCfg.SNS.DefaultSMSSenderID)
	}
	return email, sms
}

func writeStatus(w http.ResponseWriter, code int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
