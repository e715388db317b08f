package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aureuma/skillregistry/internal/api"
	"github.com/aureuma/skillregistry/internal/config"
	"github.com/aureuma/skillregistry/internal/dispatch"
	"github.com/aureuma/skillregistry/internal/logging"
	"github.com/aureuma/skillregistry/internal/prompt"
	"github.com/aureuma/skillregistry/internal/query"
	"github.com/aureuma/skillregistry/internal/registry"
	"github.com/aureuma/skillregistry/internal/retention"
	"github.com/aureuma/skillregistry/internal/store"
)

func main() {
	log := logging.New(os.Getenv("SR_ENV") != "production")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("config", "error", err)
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalw("db open", "error", err)
	}
	defer db.Close()

	service := registry.New(cfg.Tunables, log)
	auth := dispatch.NewAuthenticator(cfg.JWTSigningKey)

	promptWatcher, err := prompt.WatchDir(cfg.PromptDir, service.Prompts, log)
	if err != nil {
		log.Fatalw("prompt watcher", "error", err)
	}
	if promptWatcher != nil {
		defer promptWatcher.Close()
	}

	retentionMgr, err := retention.New(service, db, cfg.Tunables, log)
	if err != nil {
		log.Fatalw("retention manager", "error", err)
	}

	restoreCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	restored, err := retentionMgr.RestoreSnapshot(restoreCtx)
	cancel()
	if err != nil {
		log.Fatalw("snapshot restore", "error", err)
	}
	log.Infow("startup snapshot restore", "restored", restored)

	retentionMgr.Start()

	surface := query.New(service.Catalog, service.Users, service.Enrichment, service.Analysis, service.Ledger)

	srv := api.New(service, surface, auth, log, 50, 100)

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Infow("listening", "addr", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server", "error", err)
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	log.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	retentionMgr.Stop()

	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := retentionMgr.SaveSnapshot(saveCtx); err != nil {
		log.Errorw("final snapshot save failed", "error", err)
	}
}
