// Package db opens the relational store backing the asset catalog.
package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// connectTimeout bounds the total time spent retrying the first connection.
	connectTimeout = 60 * time.Second
	retryInterval  = 3 * time.Second
)

// Config は接続先データベースの設定です。
type Config struct {
	Driver      string // "sqlite" または "postgres"
	DSN         string
	AutoMigrate bool
}

// Opener はDSNからgorm.DBを開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

var gormConfig = &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

// OpenerFor はドライバ名に対応するOpenerを返します。
func OpenerFor(driver string) (Opener, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite":
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), gormConfig)
		}, nil
	case "postgres", "postgresql":
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gormConfig)
		}, nil
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}
}

// ConnectWithRetry はtimeoutが経過するまでretryInterval間隔で接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "interval", retryInterval)
		time.Sleep(retryInterval)
	}
}

// OpenDB は設定に従ってデータベースへ接続し、必要ならmodelsをマイグレーションします。
func OpenDB(cfg Config, models ...any) (*gorm.DB, error) {
	open, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := ConnectWithRetry(cfg.DSN, connectTimeout, open)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate && len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return db, nil
}
