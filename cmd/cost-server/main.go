package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"despensa/internal/config"
	"despensa/internal/costs"
	"despensa/internal/logger"
	"despensa/internal/rates"
	"despensa/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	logger.Init(logger.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	server := costs.NewServer(cfg, rates.NewService(db, cfg))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- server.Start() }()

	select {
	case err := <-errc:
		must(err)
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		must(server.Stop(shutdownCtx))
		must(<-errc)
	}
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
