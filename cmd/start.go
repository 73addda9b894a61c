package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"storagebox/core/loader"
	"storagebox/core/logger"
	"storagebox/core/middleware/auth"
	"storagebox/core/middleware/ratelimit"
	"storagebox/core/middleware/rayid"
	"storagebox/feature/bank"
	"storagebox/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "storagebox/docs/swagger"
)

// @title Storagebox API
// @version 1.0
// @description Hands out pool items exactly once per deduplication id.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the storagebox server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// 1. Configuration, logger and backends
		a, err := bootstrap(ctx)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer a.close()
		logg := a.logger
		zap.ReplaceGlobals(logg)
		logg.Info("Tables ready",
			zap.String("backend", a.cfg.Bank.Backend),
			zap.String("items", a.tables.Items.Name()),
			zap.String("ledger", a.tables.Ledger.Name()))

		// 2. Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 3. Feature Loader
		mgr := loader.NewManager(logg)
		mgr.Register(bank.NewFeature(a.bank))
		mgr.Register(integrity.NewFeature(a.integrity))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request logging with ray id
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

		// 3. Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 4. Per-client rate limit, keyed by API key when one is sent
		if a.cfg.Server.RateLimited() {
			store := ratelimit.NewStore(a.cfg.Server.RateRPS, a.cfg.Server.RateBurst)
			store.StartJanitor(ctx)
			app.Use(ratelimit.New(ratelimit.Config{Store: store, KeyHeader: auth.Header}))
			logg.Info("Rate limiting enabled",
				zap.Float64("rps", a.cfg.Server.RateRPS),
				zap.Int("burst", a.cfg.Server.RateBurst))
		}

		// 5. Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))

		// 6. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			if err := app.Listen(a.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
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
