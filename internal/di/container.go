package di

import (
	"context"
	"fmt"
	"sync"

	"crm-mirror/internal/crm/adapter/cache"
	"crm-mirror/internal/crm/adapter/highlevel"
	crmhttp "crm-mirror/internal/crm/adapter/http"
	"crm-mirror/internal/crm/adapter/persistence/mongodb"
	"crm-mirror/internal/crm/config"
	"crm-mirror/internal/crm/usecase"
	"crm-mirror/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container wires the mirror service together and owns the lifecycle of its
// shared connections.
type Container struct {
	mu sync.Mutex

	Config *config.Config
	Logger logger.Logger

	MongoDB *mongo.Database
	Redis   *redis.Client

	Engine *usecase.Engine
	Router *crmhttp.Router
}

// NewContainer creates an empty container for the given configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		Config: cfg,
		Logger: logger.NewLoggerWithConfig(cfg.LogLevel, cfg.LogFormat),
	}
}

// Initialize builds the full dependency graph on top of an established
// MongoDB connection. Indexes are ensured up front so a fresh deployment
// fails fast on a misconfigured database.
func (c *Container) Initialize(ctx context.Context, mongoDB *mongo.Database) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mongoDB == nil {
		return fmt.Errorf("mongodb database must be provided")
	}
	c.MongoDB = mongoDB

	if err := mongodb.EnsureIndexes(ctx, mongoDB, c.Logger); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}

	locations := mongodb.NewLocationRepository(mongoDB, c.Logger)
	pipelines := mongodb.NewPipelineRepository(mongoDB, c.Logger)
	opportunities := mongodb.NewOpportunityRepository(mongoDB, c.Logger)
	customFields := mongodb.NewCustomFieldRepository(mongoDB, c.Logger)

	factory := highlevel.NewClientFactory(
		c.Config.RemoteBaseURL,
		c.Config.RemoteAPIVersion,
		c.Config.RemoteTimeout,
		c.Logger,
	)

	var directory *cache.DirectoryCache
	if c.Config.CacheEnabled() {
		c.Redis = redis.NewClient(&redis.Options{
			Addr:     c.Config.RedisAddr,
			Password: c.Config.RedisPassword,
			DB:       c.Config.RedisDB,
		})
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			c.Logger.Warnf("Redis unreachable, directory caching disabled: %v", err)
			c.Redis = nil
		} else {
			directory = cache.NewDirectoryCache(c.Redis, c.Config.DirectoryTTL, c.Logger)
			c.Logger.Info("Directory cache enabled")
		}
	}

	c.Engine = usecase.NewEngine(locations, pipelines, opportunities, customFields, factory, directory, c.Logger)
	c.Router = crmhttp.NewRouter(c.Engine, c.Logger)
	return nil
}

// HealthCheck pings the backing stores.
func (c *Container) HealthCheck(ctx context.Context) error {
	if c.MongoDB == nil {
		return fmt.Errorf("mongodb not initialized")
	}
	if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongodb ping failed: %w", err)
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}
	return nil
}

// Close releases connections the container owns. The MongoDB client is owned
// by the entrypoint and closed there.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
		c.Redis = nil
	}
	return nil
}
