package repository

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/shreyea/write/internal/config"
	"github.com/shreyea/write/internal/database"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("Repository tests skipped: failed to load test config: %v", err)
		os.Exit(0)
	}

	// Cheap reachability probe before letting GORM run migrations.
	if err := pingPostgres(cfg); err != nil {
		log.Printf("Repository tests skipped: test database unavailable (start Postgres first): %v", err)
		os.Exit(0)
	}

	testDB, err = database.Connect(cfg)
	if err != nil {
		log.Printf("Repository tests skipped: database connection failed: %v", err)
		os.Exit(0)
	}

	code := m.Run()

	truncateTables(testDB)

	os.Exit(code)
}

func pingPostgres(cfg *config.Config) error {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Ping()
}

func truncateTables(db *gorm.DB) {
	db.Exec("TRUNCATE TABLE likes, comments, posts, follows, friend_requests, users CASCADE")
}
