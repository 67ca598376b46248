// Package main runs the arena server: a Fiber HTTP API backed by the
// game registry, LLM client, and configuration resolved from flags and
// environment variables.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arena/internal/config"
	"arena/internal/httpapi"
	"arena/internal/llmclient"
	"arena/internal/registry"
)

const gracefulShutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.PIDPath != "" {
		cleanup, err := managePIDFile(cfg.PIDPath, cfg.PIDLock)
		if err != nil {
			log.Fatalf("failed to manage PID file: %v", err)
		}
		defer cleanup()
		log.Printf("PID file created at: %s (lock: %v)", cfg.PIDPath, cfg.PIDLock)
	}

	exchangeLog, err := llmclient.NewExchangeLog(cfg.ExchangeLogPath)
	if err != nil {
		log.Fatalf("failed to open exchange log: %v", err)
	}
	defer exchangeLog.Close()

	llm := llmclient.New(llmclient.NewRateLimiter(), exchangeLog)
	reg := registry.New(llm, cfg.BypassPassword)

	reapCtx, reapCancel := context.WithCancel(context.Background())
	go reg.Reap(reapCtx)

	app := httpapi.NewFiberApp(reg, cfg)

	go func() {
		log.Printf("Arena API listening on http://%s", cfg.Addr())
		log.Printf("Default white endpoint: %s", describeEndpoint(cfg.DefaultWhite))
		log.Printf("Default black endpoint: %s", describeEndpoint(cfg.DefaultBlack))
		if err := app.Listen(cfg.Addr()); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	reapCancel()
	reg.StopAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	log.Println("Arena server exited")
}

func describeEndpoint(e config.Endpoint) string {
	if e.APIURL == "" {
		return "none configured"
	}
	return fmt.Sprintf("%s (model %s)", e.APIURL, e.Model)
}
