package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"surebet/internal/accessgate"
	"surebet/internal/evidence/providers/genmodel"
	"surebet/internal/platform/config"
	"surebet/internal/platform/httpserver"
	"surebet/internal/platform/kafka"
	"surebet/internal/platform/logger"
	"surebet/internal/platform/metrics"
	"surebet/internal/platform/postgres"
	"surebet/internal/platform/redis"
	ratelimit "surebet/internal/ratelimit/middleware"
	ratemodels "surebet/internal/ratelimit/models"
	"surebet/internal/ratelimit/store/bucket"
	"surebet/internal/session"
	httptransport "surebet/internal/transport/http"
	"surebet/internal/verification"
	verificationhandler "surebet/internal/verification/handler"
	verificationmetrics "surebet/internal/verification/metrics"
	"surebet/internal/verification/notify"
	"surebet/internal/verification/ports"
	attemptmemory "surebet/internal/verification/store/memory"
	attemptpostgres "surebet/internal/verification/store/postgres"
	"surebet/internal/verification/wizard"
	"surebet/pkg/platform/audit"
	auditpublisher "surebet/pkg/platform/audit/publisher"
	auditmemory "surebet/pkg/platform/audit/store/memory"
	auditpostgres "surebet/pkg/platform/audit/store/postgres"
	auditworker "surebet/pkg/platform/audit/worker"
)

const (
	auditBuffer          = 1024
	limiterSweepInterval = 5 * time.Minute
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.Environment)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var checks []httptransport.HealthCheck

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		checks = append(checks, httptransport.HealthCheck{Name: "postgres", Check: db.Health})
	} else {
		log.Warn("DATABASE_URL not set, attempts and audit events are kept in memory")
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks = append(checks, httptransport.HealthCheck{Name: "redis", Check: redisClient.Health})
	} else {
		log.Warn("REDIS_URL not set, sessions are kept in memory")
	}

	// Audit: outbox in Postgres relayed to Kafka, or in-process.
	var auditStore audit.Store = auditmemory.NewInMemoryStore()
	var outbox *auditpostgres.Store
	if db != nil {
		outbox = auditpostgres.New(db.SQL)
		auditStore = outbox
	}
	auditor := auditpublisher.NewPublisher(auditStore,
		auditpublisher.WithAsyncBuffer(auditBuffer),
		auditpublisher.WithLogger(log),
	)
	defer func() {
		if err := auditor.Close(); err != nil {
			log.Error("failed to drain audit publisher", "error", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	if outbox != nil && len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return err
		}
		defer producer.Close()
		if err := producer.EnsureTopic(ctx, 3, 1); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		checks = append(checks, httptransport.HealthCheck{Name: "kafka", Check: producer.Health})
		relay := auditworker.NewWorker(outbox, producer, cfg.Kafka.OutboxInterval, auditworker.WithLogger(log))
		g.Go(func() error { return relay.Run(gctx) })
	}

	// Evidence providers.
	gm, err := genmodel.NewClient(genmodel.Config{
		BaseURL: cfg.GenModel.BaseURL,
		APIKey:  cfg.GenModel.APIKey,
		Timeout: cfg.GenModel.Timeout,
	})
	if err != nil {
		return err
	}

	var attempts verification.Store = attemptmemory.New()
	if db != nil {
		attempts = attemptpostgres.New(db.Pool)
	}

	var notifier ports.Notifier = notify.LogNotifier{Logger: log}
	if cfg.SMTP.Host != "" {
		mailer, err := notify.NewMailer(notify.Config{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			Username:    cfg.SMTP.Username,
			Password:    cfg.SMTP.Password,
			From:        cfg.SMTP.From,
			ReviewInbox: cfg.SMTP.ReviewInbox,
		})
		if err != nil {
			return err
		}
		notifier = mailer
	}

	verifyOpts := []verification.Option{
		verification.WithLogger(log),
		verification.WithAuditPublisher(auditor),
		verification.WithNotifier(notifier),
		verification.WithMetrics(verificationmetrics.New()),
		verification.WithEvidenceTimeout(cfg.Verification.EvidenceTimeout),
	}
	if cfg.GenModel.OCREnabled {
		verifyOpts = append(verifyOpts, verification.WithIDExtractor(genmodel.NewOCR("genmodel-ocr", gm)))
	}
	verifier, err := verification.New(attempts,
		genmodel.NewFaceMatcher("genmodel-face", gm),
		genmodel.NewAgeEstimator("genmodel-age", gm),
		verifyOpts...,
	)
	if err != nil {
		return err
	}
	defer verifier.Close()

	wiz, err := wizard.New(wizard.NewDraftStore(cfg.Verification.DraftTTL), verifier,
		wizard.WithLogger(log),
		wizard.WithAuditPublisher(auditor),
		wizard.WithMinimumAge(cfg.Verification.MinimumAge),
	)
	if err != nil {
		return err
	}

	// Sessions.
	var sessionStore session.Store = session.NewInMemoryStore()
	if redisClient != nil {
		sessionStore = session.NewRedis(redisClient.Client)
	}
	sessions, err := session.New(sessionStore, cfg.Session.SigningKey,
		session.WithTTL(cfg.Session.TTL),
		session.WithLogger(log),
		session.WithAuditPublisher(auditor),
	)
	if err != nil {
		return err
	}
	cookies := session.NewCookieManager(sessions, session.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
	})

	// Access gate.
	policy, err := accessgate.LoadPolicy(cfg.AccessGate.PolicyFile)
	if err != nil {
		return err
	}
	httpMetrics := metrics.New()
	gate := accessgate.NewMiddleware(policy, session.ContextChecker{},
		accessgate.WithLogger(log),
		accessgate.WithMetrics(httpMetrics),
		accessgate.WithAuditPublisher(auditor),
	)

	// Rate limiting on submissions that reach the model gateway.
	var primaryBuckets bucket.Store
	if redisClient != nil {
		primaryBuckets = bucket.NewRedisBucketStore(redisClient.Client)
	}
	limiter := ratelimit.NewLimiter(primaryBuckets, log)
	g.Go(func() error { return limiter.RunSweeper(gctx, limiterSweepInterval) })
	limits := ratelimit.New(limiter, log,
		ratelimit.WithDisabled(cfg.RateLimit.Disabled),
		ratelimit.WithMetrics(httpMetrics),
	)
	verifyHandler := verificationhandler.New(verifier, wiz, cookies, log)
	verifyHandler.LimitSubmissions(limits.RateLimit(ratemodels.Rule{
		Name:   "kyc_submit",
		Limit:  cfg.RateLimit.SubmitLimit,
		Window: cfg.RateLimit.SubmitWindow,
	}))

	if cfg.AdminTokenHash == "" {
		log.Warn("ADMIN_TOKEN_HASH not set, admin review API is disabled")
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        httpMetrics,
		Verification:   verifyHandler,
		Sessions:       cookies,
		SessionHandler: session.NewHandler(cookies, log),
		Gate:           gate,
		AdminTokenHash: cfg.AdminTokenHash,
		HealthChecks:   checks,
	})
	srv := httpserver.New(cfg.Addr, router)

	g.Go(func() error {
		log.Info("starting surebet", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
