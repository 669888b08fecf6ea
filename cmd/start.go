package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mod-manager/core/loader"
	"mod-manager/core/logger"
	"mod-manager/core/middleware/auth"
	"mod-manager/core/middleware/rayid"
	"mod-manager/feature/collections"
	modsfeature "mod-manager/feature/mods"
	"mod-manager/feature/resolver"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "mod-manager/docs/swagger"
)

// @title Mod Manager API
// @version 1.0
// @description API for resolving mod packages into per-collection file maps.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the mod manager server",
	Long:  `Discovers packages, loads collections and starts the HTTP server with all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// 1. Wire configuration, storage, database and collections
		a, err := bootstrap(ctx)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := a.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 2. Background rebuilds
		a.manager.Start(ctx)

		// 3. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             a.cfg.Server.BodyLimit,
			Immutable:             true,
		})

		// 4. Initialize Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(resolver.NewFeature(a.manager.Router(), logg))
		mgr.Register(collections.NewFeature(a.manager, logg))
		mgr.Register(modsfeature.NewFeature(a.store, a.engine, logg))

		// Middleware: ray id first so every log line carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Debug("Request started",
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

		// Swagger documentation is public
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey, Public: []string{"/swagger"}}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", a.cfg.Server.Address()))
			if err := app.Listen(a.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		cancel()
		a.manager.Stop()
		a.cache.Reset()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
