package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"stocktake/core/config"
	"stocktake/core/database"
	"stocktake/core/loader"
	"stocktake/core/logger"
	"stocktake/core/middleware/auth"
	"stocktake/core/middleware/rayid"
	"stocktake/core/storage"

	"stocktake/feature/catalog"
	"stocktake/feature/stocktake"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "stocktake/docs/swagger"
)

// @title Stocktake API
// @version 1.0
// @description API for POS physical-inventory reconciliation.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the stocktake server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database (the record store is mandatory)
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		logg.Info("Connected to record store", zap.String("driver", cfg.Database.Driver))

		// 4. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 5. Initialize Storage (optional report archive)
		var store storage.Client
		if cfg.Storage.Enabled() {
			store, err = storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			logg.Info("Report archive enabled", zap.String("bucket", cfg.Storage.Bucket))
		} else {
			logg.Warn("No storage endpoint configured, report archiving disabled")
		}

		// 6. Initialize Feature Loader
		mgr := loader.NewManager()

		// Register Features. The catalog doubles as the engine's snapshot
		// source and its adjustment sink.
		catalogFeature, err := catalog.NewFeature(db, logg)
		if err != nil {
			logg.Fatal("Failed to initialize catalog", zap.Error(err))
		}
		stocktakeFeature, err := stocktake.NewFeature(
			db,
			catalogFeature.Service(),
			catalogFeature.Service(),
			store,
			cfg.Storage.Bucket,
			cfg.Stocktake,
			logg,
		)
		if err != nil {
			logg.Fatal("Failed to initialize stocktake", zap.Error(err))
		}
		mgr.Register(catalogFeature)
		mgr.Register(stocktakeFeature)

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
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
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
