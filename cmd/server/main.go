package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"onboard/internal/platform/config"
	"onboard/internal/platform/httpserver"
	"onboard/internal/platform/logger"
	platformmetrics "onboard/internal/platform/metrics"
	platformredis "onboard/internal/platform/redis"
	"onboard/internal/registration/draft"
	"onboard/internal/registration/handler"
	"onboard/internal/registration/metrics"
	"onboard/internal/registration/remote"
	"onboard/internal/registration/service"
	"onboard/internal/registration/session"
	"onboard/pkg/platform/audit"
	auditkafka "onboard/pkg/platform/audit/kafka"
	auditpublisher "onboard/pkg/platform/audit/publisher"
	auditmemory "onboard/pkg/platform/audit/store/memory"
	auditpostgres "onboard/pkg/platform/audit/store/postgres"
	auditworker "onboard/pkg/platform/audit/worker"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal registration packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	regMetrics := metrics.New()

	// Draft storage: Redis when configured, in-memory otherwise.
	var kv draft.KV = draft.NewMemoryKV()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		kv = draft.NewRedisKV(redisClient.Client)
		defer redisClient.Close()
		log.Info("draft store backed by redis")
	}

	// Audit: buffered channel into a store worker, plus Kafka when brokers
	// are configured.
	var auditStore audit.Store = auditmemory.New()
	if cfg.AuditPostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.AuditPostgresDSN)
		if err != nil {
			log.Error("audit postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pgStore := auditpostgres.New(db)
		if err := pgStore.Migrate(ctx); err != nil {
			log.Error("audit postgres migrate failed", "error", err)
			os.Exit(1)
		}
		auditStore = pgStore
		log.Info("audit store backed by postgres")
	}

	channelPub := auditpublisher.New(0)
	auditSinks := []audit.Sink{channelPub}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub, err := auditkafka.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, auditkafka.WithLogger(log))
		if err != nil {
			log.Error("kafka audit publisher init failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = kafkaPub.Close(closeCtx)
		}()
		auditSinks = append(auditSinks, kafkaPub)
		log.Info("audit events mirrored to kafka", "topic", cfg.Kafka.Topic)
	}
	auditor := audit.NewFanout(auditSinks...)

	drafts, err := draft.New(kv,
		draft.WithTTL(cfg.DraftTTL),
		draft.WithLogger(log),
		draft.WithMetrics(regMetrics),
		draft.WithAuditPublisher(auditor),
	)
	if err != nil {
		log.Error("draft store init failed", "error", err)
		os.Exit(1)
	}

	// Remote services.
	accounts := remote.NewAccountClient(cfg.AccountServiceURL)
	var captcha service.CaptchaProvider
	if cfg.CaptchaServiceURL != "" {
		captcha = remote.NewCaptchaClient(cfg.CaptchaServiceURL)
	}

	tokens, err := service.NewTokenIssuer(cfg.VerificationSigningKey)
	if err != nil {
		log.Error("token issuer init failed", "error", err)
		os.Exit(1)
	}

	pipelineOpts := []service.Option{
		service.WithDraftStore(drafts),
		service.WithTokenIssuer(tokens),
		service.WithAuditPublisher(auditor),
		service.WithLogger(log),
		service.WithMetrics(regMetrics),
		service.WithTimeout(cfg.SubmitTimeout),
	}
	if captcha != nil {
		pipelineOpts = append(pipelineOpts, service.WithCaptcha(captcha))
	}
	pipeline, err := service.New(accounts, pipelineOpts...)
	if err != nil {
		log.Error("submission pipeline init failed", "error", err)
		os.Exit(1)
	}

	lookup := remote.NewGuardedLookup(accounts, log)
	sessions := session.NewManager(drafts, lookup, pipeline,
		session.WithDebounceWindow(cfg.DebounceWindow),
		session.WithLookupTimeout(cfg.LookupTimeout),
		session.WithIdleTTL(cfg.DraftTTL),
		session.WithLogger(log),
		session.WithMetrics(regMetrics),
		session.WithAuditPublisher(auditor),
	)

	router := chi.NewRouter()
	handler.New(sessions, log).Register(router)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", platformmetrics.Handler())

	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return auditworker.NewWorker(auditStore, channelPub.Outbox(), log).Run(groupCtx)
	})
	group.Go(func() error {
		return sessions.Run(groupCtx)
	})
	group.Go(func() error {
		log.Info("starting onboard server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
