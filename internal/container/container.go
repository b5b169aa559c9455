package container

import (
	"context"
	"fmt"
	"time"

	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/config"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/repository"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/service"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/service/auth"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/internal/service/line"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/database"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/logger"
	"github.com/MarkTaylorTsai/church-calendar-line-bot/pkg/redis"
)

// HealthChecker reports whether a backing resource is reachable
type HealthChecker func(ctx context.Context) error

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	Location     *time.Location
	Postgres     *database.PostgresDB
	SQLite       *database.SQLiteDB
	RedisClient  *redis.Client
	Cache        *service.CacheService
	Repositories *repository.Repositories
	LINE         *line.Client
	Services     *service.Services
}

// New creates a new dependency injection container. The store is chosen
// from DATABASE_URL; Redis is optional and skipped when unreachable.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Container, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Location: loc,
	}

	if err := c.openStore(ctx); err != nil {
		return nil, err
	}

	// Initialize Redis client if Redis URL is configured
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Named("redis").Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			c.RedisClient = client
			c.Cache = service.NewCacheService(client, cfg.ActivityCacheTTL, cfg.WebhookDedupTTL, logger.Named("cache").Logger)
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, proceeding without caching")
	}

	c.LINE = line.NewClient(cfg.LINE, line.TokenSource(ctx, cfg.LINE), logger)
	c.Services = c.buildServices()
	return c, nil
}

func (c *Container) openStore(ctx context.Context) error {
	if database.IsSQLiteURL(c.Config.DatabaseURL) {
		db, err := database.NewSQLiteDB(ctx, c.Config.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to open SQLite store: %w", err)
		}
		c.SQLite = db
		c.Repositories = &repository.Repositories{
			Activity: repository.NewSQLiteActivityRepository(db),
			Group:    repository.NewSQLiteGroupRepository(db),
		}
		c.Logger.Info("Using SQLite store")
		return nil
	}

	db, err := database.NewPostgresDB(ctx, c.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.Postgres = db
	c.Repositories = &repository.Repositories{
		Activity: repository.NewActivityRepository(db),
		Group:    repository.NewGroupRepository(db),
	}
	c.Logger.Info("Using PostgreSQL store")
	return nil
}

func (c *Container) buildServices() *service.Services {
	// Left as nil interfaces without Redis
	var (
		cache service.ActivityCache
		dedup service.EventDeduplicator
	)
	if c.Cache != nil {
		cache = c.Cache
		dedup = c.Cache
	}

	authService := auth.NewService(c.Config.AdminUserIDs, c.Config.AdminJWTSecret, c.Logger)
	activityService := service.NewActivityService(c.Repositories.Activity, cache, c.Location, time.Now, c.Logger)
	groupService := service.NewGroupService(c.Repositories.Group, c.LINE, c.Logger)
	commandService := service.NewCommandService(activityService, c.Location, time.Now, c.Logger)

	return &service.Services{
		Activity: activityService,
		Group:    groupService,
		Reminder: service.NewReminderService(activityService, groupService, c.LINE, service.ReminderConfig{
			Location:       c.Location,
			GroupSendDelay: c.Config.GroupSendDelay,
			RetentionDays:  c.Config.ActivityRetentionDays,
		}, c.Logger),
		Command: commandService,
		Event:   service.NewEventService(commandService, groupService, authService, c.LINE, dedup, c.Logger),
		Auth:    authService,
	}
}

// HealthChecks returns the probes reported by /health
func (c *Container) HealthChecks() map[string]HealthChecker {
	checks := map[string]HealthChecker{}
	switch {
	case c.Postgres != nil:
		checks["database"] = c.Postgres.Health
	case c.SQLite != nil:
		checks["database"] = c.SQLite.Health
	}
	if c.Cache != nil {
		checks["redis"] = c.Cache.HealthCheck
	}
	return checks
}

// Close releases the store and Redis connections
func (c *Container) Close() error {
	var firstErr error
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			firstErr = fmt.Errorf("redis close: %w", err)
		}
	}
	if c.Postgres != nil {
		c.Postgres.Close()
	}
	if c.SQLite != nil {
		if err := c.SQLite.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("sqlite close: %w", err)
		}
	}
	return firstErr
}

// GetAuthService returns the auth service
func (c *Container) GetAuthService() service.AuthService {
	return c.Services.Auth
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// GetCacheService returns the cache service, nil when Redis is not available
func (c *Container) GetCacheService() *service.CacheService {
	return c.Cache
}
