package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jwalitptl/walkin-api/internal/config"
	"github.com/jwalitptl/walkin-api/internal/repository"
	"github.com/jwalitptl/walkin-api/internal/repository/memory"
	"github.com/jwalitptl/walkin-api/internal/repository/postgres"
	redisrepo "github.com/jwalitptl/walkin-api/internal/repository/redis"
	"github.com/jwalitptl/walkin-api/pkg/logger"
	"github.com/jwalitptl/walkin-api/pkg/metrics"
)

// app holds the stores and ambient services shared by every command.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
	store   repository.PatientStore
	backup  repository.BackupCache
	closers []func() error
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	log := logger.NewLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	log.SetGlobal()

	a := &app{
		cfg:     cfg,
		log:     log,
		metrics: metrics.NewMetrics(cfg.Metrics.Namespace),
	}

	switch cfg.Database.Store {
	case "postgres":
		db, err := postgres.NewDB(postgres.Options{
			URL:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			a.Close()
			return nil, err
		}
		a.store = postgres.NewPatientStore(db)
	default:
		log.Warn("using in-memory patient store; records are lost on restart")
		a.store = memory.NewPatientStore()
	}

	if cfg.Redis.Enabled {
		client, err := redisrepo.NewClient(ctx, redisrepo.Config{
			URL:          cfg.Redis.URL,
			Key:          cfg.Redis.Key,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("backup cache: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		a.backup = redisrepo.NewBackupCache(client, cfg.Redis.Key, log.With("backup").Zerolog())
	} else {
		a.backup = memory.NewBackupCache()
	}

	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Error(err, "failed to close resource")
		}
	}
	a.closers = nil
}
