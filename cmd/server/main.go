package main

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/aadya-khanna/OpenScore/internal/audit"
	"github.com/aadya-khanna/OpenScore/internal/documents/cache"
	"github.com/aadya-khanna/OpenScore/internal/documents/extract"
	documentshandler "github.com/aadya-khanna/OpenScore/internal/documents/handler"
	documentsmetrics "github.com/aadya-khanna/OpenScore/internal/documents/metrics"
	documentsservice "github.com/aadya-khanna/OpenScore/internal/documents/service"
	documentsstore "github.com/aadya-khanna/OpenScore/internal/documents/store"
	financialhandler "github.com/aadya-khanna/OpenScore/internal/financial/handler"
	financialmetrics "github.com/aadya-khanna/OpenScore/internal/financial/metrics"
	"github.com/aadya-khanna/OpenScore/internal/financial/plaid"
	"github.com/aadya-khanna/OpenScore/internal/financial/scheduler"
	"github.com/aadya-khanna/OpenScore/internal/financial/secrets"
	financialservice "github.com/aadya-khanna/OpenScore/internal/financial/service"
	financialstore "github.com/aadya-khanna/OpenScore/internal/financial/store"
	jwttoken "github.com/aadya-khanna/OpenScore/internal/jwt_token"
	"github.com/aadya-khanna/OpenScore/internal/platform/config"
	"github.com/aadya-khanna/OpenScore/internal/platform/httpserver"
	"github.com/aadya-khanna/OpenScore/internal/platform/logger"
	"github.com/aadya-khanna/OpenScore/internal/platform/metrics"
	"github.com/aadya-khanna/OpenScore/internal/platform/postgres"
	"github.com/aadya-khanna/OpenScore/internal/platform/redis"
	scoringhandler "github.com/aadya-khanna/OpenScore/internal/scoring/handler"
	scoringmetrics "github.com/aadya-khanna/OpenScore/internal/scoring/metrics"
	"github.com/aadya-khanna/OpenScore/internal/scoring/ports"
	scoringservice "github.com/aadya-khanna/OpenScore/internal/scoring/service"
	scoringstore "github.com/aadya-khanna/OpenScore/internal/scoring/store"
	"github.com/aadya-khanna/OpenScore/internal/summary"
	httptransport "github.com/aadya-khanna/OpenScore/internal/transport/http"
)

const shutdownGrace = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// run wires every module from cfg and serves until ctx is cancelled.
func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	checks := map[string]httptransport.HealthCheck{}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		checks["postgres"] = db.PingContext
		log.Info("postgres connected")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = redisClient.Health
	}

	// documents
	docMetrics := documentsmetrics.New()
	fileStore, err := documentsstore.NewFileStore(cfg.Documents.Dir)
	if err != nil {
		return err
	}
	var primaryCache cache.Cache
	if redisClient != nil {
		primaryCache = cache.NewRedis(redisClient.Client)
	}
	textCache := cache.NewFallback(primaryCache, cache.NewMemory(),
		cache.WithLogger(log),
		cache.WithReporter(docMetrics),
	)
	documents, err := documentsservice.New(fileStore, extract.New(),
		documentsservice.WithLogger(log),
		documentsservice.WithMetrics(docMetrics),
		documentsservice.WithCache(textCache),
		documentsservice.WithTextTTL(cfg.Documents.TextCacheTTL),
		documentsservice.WithMaxUploadBytes(cfg.Documents.MaxUploadBytes),
	)
	if err != nil {
		return err
	}

	// financial data
	finStore := newFinancialStore(db)
	finOpts := []financialservice.Option{
		financialservice.WithLogger(log),
		financialservice.WithMetrics(financialmetrics.New()),
	}
	if cfg.Plaid.ClientID != "" {
		client, err := plaid.NewClient(plaid.Config{
			Environment:  cfg.Plaid.Env,
			ClientID:     cfg.Plaid.ClientID,
			Secret:       cfg.Plaid.Secret,
			Products:     cfg.Plaid.Products,
			CountryCodes: cfg.Plaid.CountryCodes,
		})
		if err != nil {
			return err
		}
		sealer, err := secrets.NewSealer(cfg.DataEncryptionKey)
		if err != nil {
			return err
		}
		finOpts = append(finOpts, financialservice.WithProvider(client, sealer))
		log.Info("plaid configured", "environment", cfg.Plaid.Env)
	} else {
		log.Warn("PLAID_CLIENT_ID not set, linking and sync are disabled")
	}
	financial, err := financialservice.New(finStore, finOpts...)
	if err != nil {
		return err
	}

	// score events
	publisher, queue, closePublisher, err := newPublisher(ctx, cfg.Kafka, log, checks)
	if err != nil {
		return err
	}
	defer closePublisher()

	// scoring
	scoreMetrics := scoringmetrics.New()
	scoringOpts := []scoringservice.Option{
		scoringservice.WithLogger(log),
		scoringservice.WithMetrics(scoreMetrics),
		scoringservice.WithStore(newScoreStore(db)),
		scoringservice.WithPublisher(publisher),
		scoringservice.WithTimeout(cfg.EvaluationTimeout),
	}
	if cfg.Gemini.APIKey != "" {
		summarizer, err := summary.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return err
		}
		scoringOpts = append(scoringOpts, scoringservice.WithSummarizer(summarizer))
	}
	scoring, err := scoringservice.New(documents, financialservice.NewScoringSource(finStore), scoringOpts...)
	if err != nil {
		return err
	}

	jwt := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:    log,
		Validator: jwttoken.NewJWTServiceAdapter(jwt),
		Metrics:   metrics.New(),
		Checks:    checks,
		Handlers: []httptransport.Registrar{
			scoringhandler.New(scoring, log, scoreMetrics),
			documentshandler.New(documents, scoring, log),
			financialhandler.New(financial, log),
		},
	})

	g, gctx := errgroup.WithContext(ctx)
	if queue != nil {
		g.Go(func() error {
			return queue.Run(context.WithoutCancel(gctx))
		})
	}
	if cfg.SyncSchedule != "" && cfg.Plaid.ClientID != "" {
		sched, err := scheduler.New(financial, cfg.SyncSchedule, scheduler.WithLogger(log))
		if err != nil {
			return err
		}
		if err := sched.Start(gctx); err != nil {
			return err
		}
		defer sched.Stop()
	}
	g.Go(func() error {
		defer func() {
			if queue != nil {
				queue.Close()
			}
		}()
		return httpserver.Run(gctx, httpserver.New(cfg.Addr, router), shutdownGrace, log)
	})
	return g.Wait()
}

func newFinancialStore(db *sql.DB) financialservice.Store {
	if db == nil {
		return financialstore.NewInMemory()
	}
	return financialstore.NewPostgres(db)
}

func newScoreStore(db *sql.DB) ports.ScoreStore {
	if db == nil {
		return scoringstore.NewInMemory()
	}
	return scoringstore.NewPostgres(db)
}

// newPublisher returns the Kafka publisher behind a delivery queue when
// brokers are configured, else the log publisher.
func newPublisher(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger, checks map[string]httptransport.HealthCheck) (ports.EventPublisher, *audit.Queue, func(), error) {
	eventMetrics := audit.NewMetrics()
	if len(cfg.Brokers) == 0 {
		log.Warn("KAFKA_BROKERS not set, score events go to the log")
		return audit.NewLogPublisher(log, eventMetrics), nil, func() {}, nil
	}

	kafka, err := audit.NewKafkaPublisher(cfg.Brokers, cfg.ScoreTopic,
		audit.WithKafkaLogger(log),
		audit.WithKafkaMetrics(eventMetrics),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := kafka.EnsureTopic(ctx, 3, 1); err != nil {
		log.Warn("failed to ensure score topic", "topic", kafka.Topic(), "error", err)
	}
	checks["kafka"] = kafka.Ping

	queue := audit.NewQueue(kafka,
		audit.WithQueueLogger(log),
		audit.WithQueueMetrics(eventMetrics),
	)
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := kafka.Close(ctx); err != nil {
			log.Warn("failed to flush score events", "error", err)
		}
	}
	return queue, queue, closeFn, nil
}
