// Command remind runs one reminder trigger and prints the result as JSON.
// It suits platforms that schedule binaries rather than HTTP calls.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/config"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/container"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/handler"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

func main() {
	kindFlag := flag.String("type", "", "monthly, weekly, daily or cleanup")
	scope := flag.String("scope", "", "week for weekly reminders: this or next (default next)")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall deadline")
	flag.Parse()

	kind, ok := domain.ParseReminderType(*kindFlag)
	if !ok {
		fmt.Fprintln(os.Stderr, "Usage: remind -type monthly|weekly|daily|cleanup [-scope this|next]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, logger.WithFormat(cfg.LogFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c, err := container.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}
	defer c.Close()

	result, err := handler.Run(ctx, c.Services.Reminder, kind, *scope)
	if err != nil {
		log.WithError(err).Error("Reminder failed")
		c.Close()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.WithError(err).Error("Failed to encode result")
	}

	if r, ok := result.(*domain.ReminderResult); ok && !r.Success {
		c.Close()
		os.Exit(1)
	}
}
