package cmd

import (
	"context"
	"fmt"

	"region-sync/core/config"
	"region-sync/core/logger"
	"region-sync/core/mongodb"
	"region-sync/core/region"
	"region-sync/core/regionstore"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// environment is what every command needs to reach the regions collection.
type environment struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *mongo.Client
	adapter *regionstore.Adapter
	driver  *regionstore.Driver
}

// bootstrap loads the configuration, connects to MongoDB and verifies the
// regions collection answers.
func bootstrap(ctx context.Context) (*environment, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	region.DefaultFlags.RegisterEnum(cfg.Regions.EnumFlags...)

	client, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	logg.Info("Connected to MongoDB", zap.String("uri", mongodb.Redact(cfg.Mongo.URI)))

	coll := regionstore.NewMongoCollection(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection))
	if err := coll.EnsureIndexes(ctx); err != nil {
		logg.Warn("Failed to ensure region indexes", zap.String("namespace", coll.Namespace()), zap.Error(err))
	}

	count, err := mongodb.Verify(ctx, client, cfg.Mongo)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	logg.Info("Regions collection ready", zap.String("namespace", coll.Namespace()), zap.Int64("documents", count))

	adapter := regionstore.New(coll, regionstore.Options{
		BatchTimeout:   cfg.Mongo.BatchTimeout,
		MaxConcurrency: cfg.Mongo.MaxConcurrency,
		Logger:         logg,
	})

	return &environment{
		cfg:     cfg,
		logger:  logg,
		client:  client,
		adapter: adapter,
		driver:  regionstore.NewDriver(adapter, cfg.Regions.Worlds),
	}, nil
}

func (e *environment) Close(ctx context.Context) {
	if err := e.client.Disconnect(ctx); err != nil {
		e.logger.Warn("Failed to disconnect from MongoDB", zap.Error(err))
	}
	_ = e.logger.Sync()
}
