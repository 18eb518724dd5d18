package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"region-sync/core/database"
	"region-sync/core/journal"
	"region-sync/core/loader"
	"region-sync/core/logger"
	"region-sync/core/middleware/auth"
	"region-sync/core/middleware/rayid"
	"region-sync/core/oplog"
	"region-sync/core/region"
	"region-sync/core/storage"

	"region-sync/feature/replication"
	"region-sync/feature/snapshot"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "region-sync/docs/swagger"
)

// @title Region Sync API
// @version 1.0
// @description API for replicating protected regions through MongoDB.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the region sync server",
	Long:  `Loads the regions of every configured world, tails the oplog for remote changes and serves the HTTP API.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// 1. Configuration, logger and MongoDB
		env, err := bootstrap(ctx)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		cfg, logg := env.cfg, env.logger
		zap.ReplaceGlobals(logg)

		// 2. Load regions into the in-memory managers
		registry := region.NewMemoryRegistry(cfg.Regions.Worlds...)
		loaded, err := env.driver.Populate(ctx, registry)
		if err != nil {
			logg.Fatal("Failed to load regions", zap.Error(err))
		}
		logg.Info("Loaded regions", zap.Int("count", loaded), zap.Strings("worlds", registry.Worlds()))

		// 3. Replication journal (Optional)
		var recorder replication.Recorder
		var reader replication.JournalReader
		if cfg.Database.Enabled {
			if db, err := database.Connect(cfg.Database); err != nil {
				logg.Warn("Optional journal database connection failed", zap.Error(err))
			} else {
				j := journal.New(db)
				if err := j.Migrate(ctx); err != nil {
					logg.Warn("Journal migration failed", zap.Error(err))
				} else {
					recorder, reader = j, j
					logg.Info("Replication journal enabled", zap.String("driver", cfg.Database.Driver))
				}
			}
		}

		// 4. Replication session
		source := oplog.NewMongoSource(env.client, cfg.Oplog.Database, cfg.Oplog.Collection, cfg.Oplog.AwaitTime)
		session := replication.NewSession(env.adapter, registry, source, replication.Options{
			Config:      cfg.Oplog,
			Namespace:   cfg.Mongo.Namespace(),
			LoadTimeout: cfg.Mongo.Timeout(),
			Recorder:    recorder,
			Logger:      logg,
		})
		if err := session.Start(ctx); err != nil {
			logg.Error("Replication not started", zap.Error(err))
		}

		// 5. Snapshot storage (Optional)
		var snapshots *snapshot.Service
		if cfg.Regions.Snapshots {
			store, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			snapshots = snapshot.NewService(store, cfg.Storage, env.driver, registry, logg)
		}

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager()
		mgr.Register(replication.NewFeature(session, registry, env.driver, reader, logg))
		mgr.Register(snapshot.NewFeature(snapshots, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 2.5 Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 3. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.Timeout())
		defer cancel()
		if err := session.Stop(shutdownCtx); err != nil {
			logg.Warn("Replication did not stop cleanly", zap.Error(err))
		}
		_ = app.ShutdownWithTimeout(5 * time.Second)
		env.Close(shutdownCtx)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
