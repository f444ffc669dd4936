package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sandeepkv93/questd/internal/config"
	"github.com/sandeepkv93/questd/internal/gateway"
	"github.com/sandeepkv93/questd/internal/logging"
	"github.com/sandeepkv93/questd/internal/notify"
	"github.com/sandeepkv93/questd/internal/quests"
	"github.com/sandeepkv93/questd/internal/reconcile"
	"github.com/sandeepkv93/questd/internal/scheduler"
	"github.com/sandeepkv93/questd/internal/storage"
	"github.com/sandeepkv93/questd/internal/update"
)

// app owns every long-lived service behind the UI.
type app struct {
	Logger     *zap.Logger
	Repo       *storage.SQLiteRepository
	Engine     *scheduler.Engine
	Feed       *notify.Feed
	Gateway    gateway.Gateway
	Store      *quests.Store
	Reconciler *reconcile.Reconciler

	cancel context.CancelFunc
	done   chan struct{}
}

func openApp(ctx context.Context, cfg config.Config) (*app, error) {
	logger, err := logging.New(cfg.LogPath, cfg.LogVerbose)
	if err != nil {
		return nil, err
	}

	repo, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open store: %w", err)
	}

	gw, err := newGateway(ctx, cfg, logger)
	if err != nil {
		_ = repo.Close()
		_ = logger.Sync()
		return nil, err
	}

	engine := scheduler.NewEngine(cfg.SchedulerBuffer)
	feed := notify.NewFeed(engine, notify.Options{
		Capacity: cfg.NotifyCapacity,
		TTL:      cfg.NotifyTTL,
		Logger:   logger.Named("notify"),
	})
	docs := storage.NewDocuments(repo)
	store := quests.NewStore(quests.Options{
		Generator: gw,
		Notifier:  feed,
		Persister: docs,
		Logger:    logger.Named("quests"),
	})
	if err := store.Load(ctx, docs); err != nil {
		_ = repo.Close()
		_ = logger.Sync()
		return nil, fmt.Errorf("load quests: %w", err)
	}

	rec := reconcile.New(store, gw, feed, reconcile.Config{
		OverdueInterval:     cfg.OverdueInterval,
		InactivityInterval:  cfg.InactivityInterval,
		InactivityThreshold: cfg.InactivityThreshold,
		MaxConcurrent:       cfg.MaxConcurrent,
		Logger:              logger.Named("reconcile"),
	})

	fields := []zap.Field{
		zap.String("db", cfg.DBPath),
		zap.Bool("offline", cfg.Offline),
		zap.Int("quests", len(store.List(quests.Filter{}))),
	}
	if saved, ok, err := docs.LastSaved(ctx); err != nil {
		logger.Warn("read last save time", zap.Error(err))
	} else if ok {
		fields = append(fields, zap.Time("last_saved", saved))
	}
	logger.Info("questd opened", fields...)

	return &app{
		Logger:     logger,
		Repo:       repo,
		Engine:     engine,
		Feed:       feed,
		Gateway:    gw,
		Store:      store,
		Reconciler: rec,
	}, nil
}

func newGateway(ctx context.Context, cfg config.Config, logger *zap.Logger) (gateway.Gateway, error) {
	if cfg.Offline {
		logger.Info("gateway offline")
		return gateway.NewOfflineGateway(), nil
	}
	client, err := gateway.NewGenAIClient(ctx, gateway.GenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.GatewayTimeout,
		Logger:  logger.Named("gateway"),
	})
	if err != nil {
		return nil, fmt.Errorf("create gateway: %w", err)
	}
	return client, nil
}

// Start launches the expiry engine, the feed pump and the reconciler.
func (a *app) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})

	a.Engine.Start()
	go func() {
		defer close(a.done)
		a.Feed.Run(ctx)
	}()
	if err := a.Reconciler.Start(ctx); err != nil {
		return fmt.Errorf("start reconciler: %w", err)
	}
	return nil
}

func (a *app) Deps() update.Deps {
	return update.Deps{
		Store:   a.Store,
		Feed:    a.Feed,
		Advisor: a.Gateway,
		Logger:  a.Logger.Named("ui"),
	}
}

// Close stops background work before releasing the database.
func (a *app) Close() error {
	a.Reconciler.Stop()
	if a.cancel != nil {
		a.cancel()
		<-a.done
	}
	a.Engine.Stop()
	err := a.Repo.Close()
	_ = a.Logger.Sync()
	return err
}
