package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/config"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/domain"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/repository"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/database"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
)

const usage = "Usage: go run ./cmd/migrate [up|drop|seed]"

// store is the subset of a database handle the migrate commands need
type store struct {
	migrate    func(context.Context) error
	drop       func(context.Context) error
	activities repository.ActivityRepository
	close      func() error
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}
	command := os.Args[1]

	// Load configuration (reads .env when present)
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, logger.WithFormat(cfg.LogFormat))
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.close()

	switch command {
	case "up":
		if err := db.migrate(ctx); err != nil {
			log.WithError(err).Fatal("Failed to create tables")
		}
		fmt.Println("✅ All tables created successfully")

	case "drop":
		if err := db.drop(ctx); err != nil {
			log.WithError(err).Fatal("Failed to drop tables")
		}
		fmt.Println("✅ All tables dropped successfully")

	case "seed":
		loc, err := cfg.Location()
		if err != nil {
			log.WithError(err).Fatal("Invalid timezone")
		}
		created, err := seedActivities(ctx, db.activities, time.Now().In(loc), log)
		if err != nil {
			log.WithError(err).Fatal("Failed to seed data")
		}
		fmt.Printf("✅ Seeded %d activities\n", created)

	default:
		fmt.Printf("Unknown command: %s\n%s\n", command, usage)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, databaseURL string) (*store, error) {
	if database.IsSQLiteURL(databaseURL) {
		db, err := database.NewSQLiteDB(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return &store{
			migrate:    db.Migrate,
			drop:       db.Drop,
			activities: repository.NewSQLiteActivityRepository(db),
			close:      db.Close,
		}, nil
	}

	db, err := database.NewPostgresDB(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &store{
		migrate:    db.Migrate,
		drop:       db.Drop,
		activities: repository.NewActivityRepository(db),
		close:      db.Close,
	}, nil
}

// seedActivities adds a few upcoming activities relative to now.
// Rows that already exist are skipped.
func seedActivities(ctx context.Context, repo repository.ActivityRepository, now time.Time, log *logger.Logger) (int, error) {
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format(domain.DateLayout)
	}
	daysToSunday := (7 - int(now.Weekday())) % 7
	if daysToSunday == 0 {
		daysToSunday = 7
	}

	seeds := []domain.NewActivity{
		{Name: "主日崇拜", Date: day(daysToSunday), StartTime: domain.StringPtr("10:00"), EndTime: domain.StringPtr("12:00")},
		{Name: "青年團契", Date: day(daysToSunday - 1), StartTime: domain.StringPtr("19:00"), EndTime: domain.StringPtr("21:00")},
		{Name: "禱告會", Date: day(1), StartTime: domain.StringPtr("20:00")},
		{Name: "詩班練習", Date: day(daysToSunday + 3), StartTime: domain.StringPtr("19:30"), EndTime: domain.StringPtr("21:00")},
		{Name: "同工會議", Date: day(daysToSunday + 14)},
	}

	created := 0
	for _, seed := range seeds {
		if _, err := repo.Create(ctx, seed); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				log.WithFields(map[string]interface{}{"name": seed.Name, "date": seed.Date}).Info("Activity already seeded")
				continue
			}
			return created, fmt.Errorf("failed to seed %q: %w", seed.Name, err)
		}
		created++
	}
	return created, nil
}
