package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"docsummarizer/internal/bot"
	"docsummarizer/internal/database"
	"docsummarizer/internal/ratelimiter"
	"docsummarizer/internal/scheduler"
	"docsummarizer/internal/web"
)

func serve(ctx context.Context, log *slog.Logger) error {
	start := time.Now()

	c, err := newCore(ctx, log)
	if err != nil {
		return err
	}

	db, err := database.New(ctx, c.cfg.DBPath, log)
	if err != nil {
		return fmt.Errorf("initialize db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", c.cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", c.cfg.DBPath)

	svc := c.service(log, db)

	sched := scheduler.New(ctx, db, c.cfg.HistoryRetention, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", scheduler.HourlyPruneSpec,
		"retention", c.cfg.HistoryRetention)

	var wg sync.WaitGroup
	defer wg.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c.cfg.TelegramToken != "" {
		rateLimiter := ratelimiter.New(log)
		defer rateLimiter.Stop()

		botInst, err := bot.New(bot.Config{
			Token:          c.cfg.TelegramToken,
			AllowedUsers:   c.cfg.AllowedUsers,
			MaxUploadBytes: c.cfg.MaxUploadBytes,
		}, svc, db, rateLimiter, log)
		if err != nil {
			return fmt.Errorf("initialize bot: %w", err)
		}
		log.InfoContext(ctx, "Bot is initialized",
			"allowedUsersCount", len(c.cfg.AllowedUsers))

		wg.Go(func() {
			botInst.Start(ctx)
		})
	} else {
		log.InfoContext(ctx, "TELEGRAM_TOKEN is empty so bot is disabled")
	}

	gin.SetMode(gin.ReleaseMode)

	server := web.New(log, svc, web.Options{
		MaxUploadBytes: c.cfg.MaxUploadBytes,
		CORSOrigins:    c.cfg.CORSOrigins,
	})

	err = server.Run(ctx, c.cfg.HTTPAddr)

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run http server: %w", err)
	}

	return nil
}
