// Package bootstrap establishes runtime dependencies for commands.
package bootstrap

import (
	"fmt"

	"github.com/shreyea/write/internal/cache"
	"github.com/shreyea/write/internal/config"
	"github.com/shreyea/write/internal/database"
	"github.com/shreyea/write/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData populates the database with generated demo content.
	// Only honored outside production.
	SeedDemoData bool
	SeedUsers    int
	SeedPosts    int
}

// InitRuntime connects to DB and Redis and optionally runs demo seeding.
// Redis being unreachable is not fatal; the returned client is nil and the
// server runs without caching or live events.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemoData && cfg.Env != "production" {
		users, posts := opts.SeedUsers, opts.SeedPosts
		if users <= 0 {
			users = 25
		}
		if posts <= 0 {
			posts = 100
		}
		if err := seed.Seed(db, seed.Options{NumUsers: users, NumPosts: posts}); err != nil {
			return nil, nil, fmt.Errorf("demo seeding failed: %w", err)
		}
	}

	return db, r, nil
}
