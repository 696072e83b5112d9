package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/simmer-app/simmer-backend/internal/hub"
)

func main() {
	if err := mainInner(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func mainInner() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := hub.DefaultConfig()
	if *configPath != "" {
		loaded, err := hub.LoadFromFile(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	logger.Info("Opening storage", "driver", cfg.Storage.Driver)
	storage, err := hub.OpenStorage(cfg.Storage)
	if err != nil {
		return err
	}
	defer storage.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := hub.New(storage, logger, cfg.CheckpointInterval)
	if err := h.Boot(ctx); err != nil {
		return err
	}

	wg := new(sync.WaitGroup)

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.Run(ctx)
	}()

	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: h.Handler()}

	errChan := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("syncd listening", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	exit := make(chan os.Signal, 1) // buffer size 1 so the notifier is not blocked
	signal.Notify(exit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		cancel()
		wg.Wait()
		return err
	case sig := <-exit:
		logger.Info("Signal caught", "sig", sig)
	}

	// Close instead of Shutdown: open sync sessions hold hijacked
	// connections that Shutdown would wait on forever. The checkpoint
	// loop writes a final checkpoint when the context is cancelled.
	_ = httpServer.Close()
	cancel()
	wg.Wait()

	logger.Info("syncd stopped")
	return nil
}
