package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/octmarker/ainews/internal/app"
	"github.com/octmarker/ainews/internal/config"
	"github.com/octmarker/ainews/internal/logger"
)

func main() {
	// Local development convenience; deployments set real env vars.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.Init(cfg.Debug)

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer a.Close()

	if cfg.Mode == "serve" {
		if err := a.Serve(); err != nil {
			log.Fatalf("serve: %v", err)
		}
		return
	}

	if cfg.ScheduleCron != "" {
		runScheduled(a, cfg)
		return
	}

	if err := a.Run(context.Background()); err != nil {
		logger.Error("Run failed", "mode", cfg.Mode, "error", err)
		os.Exit(1)
	}
}

// runScheduled keeps the process alive and fires the configured mode on a
// cron expression, e.g. "0 23 * * *" for 08:00 JST.
func runScheduled(a *app.App, cfg *config.Config) {
	c := cron.New()

	_, err := c.AddFunc(cfg.ScheduleCron, func() {
		if err := a.Run(context.Background()); err != nil {
			logger.Error("Scheduled run failed", "mode", cfg.Mode, "error", err)
		}
	})
	if err != nil {
		log.Fatalf("invalid SCHEDULE_CRON %q: %v", cfg.ScheduleCron, err)
	}

	logger.Info("Scheduler started", "cron", cfg.ScheduleCron, "mode", cfg.Mode)
	c.Run()
}
