// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kycgate/internal/audit"
	auditkafka "kycgate/internal/audit/kafka"
	auditcsv "kycgate/internal/audit/store/csvfile"
	auditpg "kycgate/internal/audit/store/postgres"
	"kycgate/internal/history"
	httpapi "kycgate/internal/http"
	"kycgate/internal/model"
	"kycgate/internal/platform/config"
	"kycgate/internal/platform/httpserver"
	"kycgate/internal/platform/logger"
	platformredis "kycgate/internal/platform/redis"
	"kycgate/internal/verification"
	verifhandler "kycgate/internal/verification/handler"
	vmetrics "kycgate/internal/verification/metrics"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	// The bundle must be fully loaded before the first request is served;
	// missing artifacts degrade capability, they never abort boot.
	bundle := model.Load(cfg.ModelDir, verification.FeatureWidth, cfg.FallbackPath, log)

	var store audit.Store
	var pgStore *auditpg.Store
	switch cfg.AuditBackend {
	case "postgres":
		pg, err := auditpg.Open(cfg.PostgresURL)
		if err != nil {
			log.Error("postgres audit store unavailable", "error", err)
			os.Exit(1)
		}
		if err := pg.Migrate(context.Background()); err != nil {
			log.Error("postgres audit migration failed", "error", err)
			os.Exit(1)
		}
		store, pgStore = pg, pg
	default:
		store = auditcsv.New(cfg.AuditPath)
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		// Cache is an optimization; run without it.
		log.Warn("redis unavailable, history cache disabled", "error", err)
	}
	historySvc := history.NewService(store, redisClient, cfg.Redis.HistoryTTL, log)

	recorderOpts := []audit.Option{audit.WithOnAppend(historySvc.Invalidate)}
	var mirror *auditkafka.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		mirror, err = auditkafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Warn("kafka unavailable, audit mirroring disabled", "error", err)
		} else {
			recorderOpts = append(recorderOpts, audit.WithMirror(mirror))
		}
	}
	recorder := audit.NewRecorder(store, log, recorderOpts...)

	service := verification.NewService(bundle, recorder, log,
		verification.WithMetrics(vmetrics.New()),
		verification.WithBatchWorkers(cfg.BatchWorkers),
	)

	handler := verifhandler.New(service, historySvc, bundle, log)
	router := httpapi.NewRouter(handler, bundle, []byte(cfg.AdminJWTKey), log)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting kycgate", "addr", cfg.Addr, "mode", bundle.Mode().String())

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if mirror != nil {
		mirror.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if pgStore != nil {
		_ = pgStore.Close()
	}
}
