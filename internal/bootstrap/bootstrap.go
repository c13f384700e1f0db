package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/aaeducates/backend/internal/app/authz"
	appControllers "github.com/aaeducates/backend/internal/app/controllers"
	appMigrations "github.com/aaeducates/backend/internal/app/migrations"
	appRepos "github.com/aaeducates/backend/internal/app/repositories"
	appRoutes "github.com/aaeducates/backend/internal/app/routes"
	appServices "github.com/aaeducates/backend/internal/app/services"
	"github.com/aaeducates/backend/internal/config"
	"github.com/aaeducates/backend/internal/db"
	appMiddleware "github.com/aaeducates/backend/internal/middleware"
	pkgAuth "github.com/aaeducates/backend/internal/pkg/auth"
	"github.com/aaeducates/backend/internal/pkg/helpers"
	"github.com/aaeducates/backend/internal/pkg/logger"
	"github.com/aaeducates/backend/internal/pkg/metrics"
	"github.com/aaeducates/backend/internal/pkg/payments"
	"github.com/aaeducates/backend/internal/pkg/revocation"
	"github.com/aaeducates/backend/internal/pkg/websocket"
	"github.com/aaeducates/backend/internal/seed"
)

// Infrastructure holds the backends chosen by configuration
type Infrastructure struct {
	Stores   *appRepos.Stores
	Database *db.PostgresDB // nil with the memory driver
	Revoked  revocation.List
	Redis    *redis.Client // nil when no Redis address is configured
	Gateway  payments.Gateway
}

// Close releases every connection held by the infrastructure
func (i *Infrastructure) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.Database != nil {
		i.Database.Close()
	}
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Metrics        *metrics.Metrics
	Hub            *websocket.Hub
	Catalog        *appServices.Catalog
	AuthService    *appServices.AuthService
	PaymentService *appServices.PaymentService
	AuthMiddleware *appMiddleware.AuthMiddleware
	Handlers       appRoutes.Handlers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: cfg.Logging.Format == "text",
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupInfrastructure opens storage, the revocation list and the payment gateway.
func SetupInfrastructure(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{}

	if err := setupStorage(ctx, cfg, lgr, infra); err != nil {
		infra.Close()
		return nil, err
	}

	if err := setupRevocation(ctx, cfg, lgr, infra); err != nil {
		infra.Close()
		return nil, err
	}

	infra.Gateway = setupGateway(cfg, lgr)

	if err := seed.CreateDefaultAdmin(ctx, infra.Stores, seed.AdminAccount{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	}, lgr); err != nil {
		// Startup continues; the admin can be created later
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
	}

	return infra, nil
}

func setupStorage(ctx context.Context, cfg *config.Config, lgr zerolog.Logger, infra *Infrastructure) error {
	if cfg.Database.Driver == config.DriverMemory {
		lgr.Warn().Msg("Using in-memory storage; data is lost on restart")
		infra.Stores = appRepos.NewMemoryStores()
		return nil
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return err
	}
	infra.Database = database
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, logger.Component("migrations"))
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}

	infra.Stores = appRepos.NewPostgresStores(database)
	return nil
}

func setupRevocation(ctx context.Context, cfg *config.Config, lgr zerolog.Logger, infra *Infrastructure) error {
	if cfg.Redis.Addr == "" {
		lgr.Info().Msg("No Redis configured; revoked tokens are kept in memory")
		infra.Revoked = revocation.NewMemoryList()
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to reach Redis")
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Token revocation backed by Redis")
	infra.Redis = client
	infra.Revoked = revocation.NewRedisList(client)
	return nil
}

func setupGateway(cfg *config.Config, lgr zerolog.Logger) payments.Gateway {
	if cfg.Payments.Gateway == config.GatewayStripe {
		lgr.Info().Str("baseURL", cfg.Payments.BaseURL).Msg("Payments go through Stripe")
		return payments.NewStripeGateway(
			cfg.Payments.SecretKey,
			cfg.Payments.BaseURL,
			helpers.ParseDuration(cfg.Payments.Timeout, 15*time.Second),
		)
	}
	lgr.Warn().Msg("Using the sandbox payment gateway; no money moves")
	return payments.NewSandboxGateway(cfg.Payments.FrontendURL + "/sandbox-checkout")
}

// BuildDependencies initializes the authorization engine, services and controllers.
func BuildDependencies(cfg *config.Config, infra *Infrastructure, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr}
	deps.Metrics = metrics.New()

	deps.Hub = websocket.NewHub(logger.Component("websocket"))
	go deps.Hub.Run()

	dir := appRepos.NewProfileDirectory(infra.Stores)
	engine := authz.NewEngine(authz.DefaultPolicy(), dir)
	resolver := appServices.NewReferenceResolver(infra.Stores)

	deps.Catalog = appServices.NewCatalog(infra.Stores, engine, dir, resolver, deps.Hub, deps.Metrics)
	community := appServices.NewCommunityService(deps.Catalog, infra.Stores)

	jwtService := pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 168*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
	deps.AuthService = appServices.NewAuthService(infra.Stores, dir, jwtService, infra.Revoked, deps.Metrics)

	deps.PaymentService = appServices.NewPaymentService(infra.Stores, dir, resolver, infra.Gateway,
		appServices.PaymentConfig{
			Currency:    cfg.Payments.Currency,
			FrontendURL: cfg.Payments.FrontendURL,
		}, deps.Metrics)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService)

	wsLogger := logger.Component("websocket")
	deps.Handlers = appRoutes.Handlers{
		Auth:      appControllers.NewAuthController(deps.AuthService, logger.Component("auth")),
		User:      appControllers.NewUserController(deps.AuthService),
		Payment:   appControllers.NewPaymentController(deps.PaymentService, logger.Component("payments")),
		Community: appControllers.NewCommunityController(community),
		ChatWS: websocket.NewHandler(deps.Hub, community,
			websocket.NewMessageHandler(deps.Catalog.Messages, wsLogger),
			cfg.Server.AllowedOrigins, wsLogger),
	}

	return deps
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger())
	if cfg.Metrics.Enabled {
		router.Use(deps.Metrics.Middleware())
		router.GET(cfg.Metrics.Path, deps.Metrics.Handler())
	}

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Handlers, deps.AuthMiddleware, deps.Catalog)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
