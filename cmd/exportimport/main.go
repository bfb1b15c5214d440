package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"exportimport/internal/config"
	"exportimport/internal/http/handlers"
	"exportimport/internal/idempotency"
	applog "exportimport/internal/log"
	"exportimport/internal/repos"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Optional file logging
	logFile := applog.Setup(cfg.LogFile)
	defer logFile.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	store, err := repos.OpenStore(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("[store] %v", err)
	}

	opts := handlers.AppOptions{IdempotencyTTL: cfg.IdempotencyTTL}
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
		rs, err := idempotency.Dial(ctx, cfg.RedisAddr, cfg.StoreTimeout)
		cancel()
		if err != nil {
			log.Fatalf("[redis] %v", err)
		}
		defer rs.Close()
		opts.IdempotencyStorage = rs
		log.Printf("[redis] idempotency keys stored at %s", cfg.RedisAddr)
	} else {
		log.Println("[idempotency] using in-memory storage")
	}

	app := handlers.NewApp(handlers.NewDeps(store, cfg), opts)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("[http] listener stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("[http] shutting down")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.Printf("[http] shutdown: %v", err)
	}
	ctx, cancel = context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		log.Printf("[store] close: %v", err)
	}
}
