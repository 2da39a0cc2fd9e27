package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/wonny/swingscan/pkg/config"
)

func integrationConfig(t *testing.T) *config.Config {
	t.Helper()
	if testing.Short() || os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func TestNewDisabled(t *testing.T) {
	_, err := New(context.Background(), &config.Config{})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("Expected ErrDisabled, got %v", err)
	}
}

func TestNewWithInvalidURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			URL:             "invalid://url",
			MaxConns:        4,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
	}

	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("Expected error with invalid database URL, got nil")
	}
}

func TestHealthCheck(t *testing.T) {
	cfg := integrationConfig(t)

	db, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
	if !status.Healthy {
		t.Error("Expected database to be healthy")
	}
	if status.Stats.MaxConns == 0 {
		t.Error("Expected MaxConns to be greater than 0")
	}
}

func TestCloseTwice(t *testing.T) {
	var db *DB
	db.Close()

	cfg := integrationConfig(t)
	db, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	db.Close()
	db.Close()
}
