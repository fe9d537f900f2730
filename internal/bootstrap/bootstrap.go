package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/commune-social/commune/internal/app/auth"
	appControllers "github.com/commune-social/commune/internal/app/controllers"
	appMigrations "github.com/commune-social/commune/internal/app/migrations"
	appRepos "github.com/commune-social/commune/internal/app/repositories"
	appRoutes "github.com/commune-social/commune/internal/app/routes"
	appServices "github.com/commune-social/commune/internal/app/services"
	"github.com/commune-social/commune/internal/config"
	"github.com/commune-social/commune/internal/db"
	appMiddleware "github.com/commune-social/commune/internal/middleware"
	pkgAuth "github.com/commune-social/commune/internal/pkg/auth"
	"github.com/commune-social/commune/internal/pkg/helpers"
	"github.com/commune-social/commune/internal/pkg/logger"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	CommunityService     appServices.CommunityService
	MembershipService    appServices.MembershipService
	ModerationService    appServices.ModerationService
	PostService          appServices.PostService
	CommunityController  *appControllers.CommunityController
	MembershipController *appControllers.MembershipController
	ModerationController *appControllers.ModerationController
	PostController       *appControllers.PostController
	AuthMiddleware       *appMiddleware.AuthMiddleware
	Repos                *appRepos.Repositories
	JWTService           *pkgAuth.JWTService
	AuthzService         *appAuth.AuthorizationService
	RedisClient          *redis.Client
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection established")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations applied")

	return dbPool, nil
}

// BuildDependencies initializes repositories, services and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	redisClient, err := db.NewRedisClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	deps.RedisClient = redisClient
	if redisClient != nil {
		lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis community cache enabled")
	}

	cacheTTL := helpers.ParseDuration(cfg.Redis.CacheTTL, 5*time.Minute)
	communityCache := appRepos.NewCommunityCache(redisClient, cacheTTL)

	deps.AuthzService = appAuth.NewAuthorizationService(
		deps.Repos.MembershipRepository,
		deps.Repos.ModeratorRepository,
		deps.Repos.BanRepository,
	)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.CommunityService = appServices.NewCommunityService(
		deps.Repos.CommunityRepository,
		deps.Repos.MembershipRepository,
		deps.Repos.ModeratorRepository,
		deps.Repos.BanRepository,
		deps.Repos.PostRepository,
		deps.Repos.UserRepository,
		communityCache,
		deps.AuthzService,
		lgr,
	)
	deps.MembershipService = appServices.NewMembershipService(
		deps.Repos.CommunityRepository,
		deps.Repos.MembershipRepository,
		deps.Repos.ModeratorRepository,
		deps.Repos.BanRepository,
		communityCache,
		deps.AuthzService,
		lgr,
	)
	deps.ModerationService = appServices.NewModerationService(
		deps.Repos.CommunityRepository,
		deps.Repos.MembershipRepository,
		deps.Repos.ModeratorRepository,
		deps.Repos.BanRepository,
		deps.Repos.UserRepository,
		communityCache,
		deps.AuthzService,
		lgr,
	)
	deps.PostService = appServices.NewPostService(
		deps.Repos.CommunityRepository,
		deps.Repos.MembershipRepository,
		deps.Repos.BanRepository,
		deps.Repos.PostRepository,
		communityCache,
		deps.AuthzService,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.CommunityController = appControllers.NewCommunityController(deps.CommunityService)
	deps.MembershipController = appControllers.NewMembershipController(deps.CommunityService, deps.MembershipService)
	deps.ModerationController = appControllers.NewModerationController(deps.CommunityService, deps.ModerationService)
	deps.PostController = appControllers.NewPostController(deps.CommunityService, deps.PostService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.CommunityController,
		deps.MembershipController,
		deps.ModerationController,
		deps.PostController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
