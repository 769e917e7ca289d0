package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/transcrypt/transcrypt/internal/auth"
	"github.com/transcrypt/transcrypt/internal/config"
	"github.com/transcrypt/transcrypt/internal/funding"
	"github.com/transcrypt/transcrypt/internal/keygen"
	"github.com/transcrypt/transcrypt/internal/middleware"
	"github.com/transcrypt/transcrypt/internal/notification"
	"github.com/transcrypt/transcrypt/internal/provision"
	"github.com/transcrypt/transcrypt/internal/stellar"
	"github.com/transcrypt/transcrypt/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes. The ledger
// gateway is constructed in main and handed in; nothing here reaches for
// process-wide state.
type Deps struct {
	Cfg     config.Config
	DB      *pgxpool.Pool
	Cache   *redis.Client
	Gateway stellar.Gateway
	Logger  *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Gateway == nil {
		return fmt.Errorf("ledger gateway is required")
	}
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New())
	if d.Cfg.IsDev() {
		// Plain text access log in dev: [HH:MM:SS] 200 -  145ms METHOD /path
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	} else {
		app.Use(middleware.Audit(d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	var walletRepo wallet.Repository
	if d.DB != nil {
		walletRepo = wallet.NewPostgresRepository(d.DB)
	} else {
		walletRepo = wallet.NewMemoryRepository()
	}

	retrier := funding.NewRetrier(d.Gateway, funding.RetrierConfig{
		MaxAttempts:  d.Cfg.FundingMaxAttempts,
		InitialDelay: d.Cfg.FundingInitialDelay,
		SettleDelay:  d.Cfg.FundingSettleDelay,
	}, d.Logger)

	notifier := notification.NewLoggerNotifier(d.Logger)
	provisioner := provision.NewProvisioner(retrier, keygen.Ed25519Generator{}, notifier, d.Cfg.ProvisionTimeout, d.Logger)
	walletSvc := wallet.NewService(walletRepo, provisioner, retrier, d.Gateway, auth.BcryptVerifier{}, d.Cfg.Network, d.Logger)
	walletHandler := wallet.NewHandler(walletSvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	var idem fiber.Handler
	if d.Cache != nil {
		idem = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	rateLimiter := middleware.AccessRateLimit(d.Cache, d.Cfg.AccessPerMinute)

	RegisterWalletRoutes(api, walletHandler, idem, rateLimiter)

	return nil
}
