package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/campuslink/campuslink/internal/app/auth"
	appControllers "github.com/campuslink/campuslink/internal/app/controllers"
	appMigrations "github.com/campuslink/campuslink/internal/app/migrations"
	appRepos "github.com/campuslink/campuslink/internal/app/repositories"
	appRoutes "github.com/campuslink/campuslink/internal/app/routes"
	appServices "github.com/campuslink/campuslink/internal/app/services"
	"github.com/campuslink/campuslink/internal/config"
	"github.com/campuslink/campuslink/internal/db"
	pkgAuth "github.com/campuslink/campuslink/internal/pkg/auth"
	"github.com/campuslink/campuslink/internal/pkg/imagehost"
	"github.com/campuslink/campuslink/internal/pkg/logger"
)

// Dependencies holds the wired application components
type Dependencies struct {
	Repos       *appRepos.Repositories
	JWTService  *pkgAuth.JWTService
	Authz       appAuth.AuthorizationService
	ImageHost   imagehost.ImageHost
	Controllers appRoutes.Controllers
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	migrator := appMigrations.NewMigrator(database.Pool)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database ready")
	return database, nil
}

// BuildDependencies wires repositories, services and controllers
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + cfg.Server.Port
	}
	host, err := imagehost.NewLocalHost(cfg.Server.StoragePath, baseURL+"/uploads")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize image storage")
		return nil, fmt.Errorf("failed to initialize image storage: %w", err)
	}
	deps.ImageHost = host

	accessExp, _ := time.ParseDuration(cfg.JWT.AccessTokenExpiration)
	refreshExp, _ := time.ParseDuration(cfg.JWT.RefreshTokenExpiration)
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  accessExp,
		RefreshTokenExp: refreshExp,
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.Authz = appAuth.NewAuthorizationService(
		deps.Repos.Organizations,
		deps.Repos.Opportunities,
		deps.Repos.Signups,
	)

	authService := appServices.NewAuthService(deps.Repos.Users, deps.Repos.Tokens, deps.JWTService)
	userService := appServices.NewUserService(deps.Repos.Users, deps.Repos.Organizations, deps.Repos.Signups)
	orgService := appServices.NewOrganizationService(deps.Repos.Organizations, deps.Authz, database, deps.ImageHost)
	oppService := appServices.NewOpportunityService(
		deps.Repos.Opportunities,
		deps.Repos.Organizations,
		deps.Repos.Signups,
		deps.Authz,
		database,
		deps.ImageHost,
		cfg.Features.LegacyOpportunityWindow,
	)
	signupService := appServices.NewSignupService(deps.Repos.Signups, deps.Repos.Opportunities, deps.Authz, database)

	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(authService),
		User:         appControllers.NewUserController(userService),
		Organization: appControllers.NewOrganizationController(orgService, signupService, oppService),
		Opportunity:  appControllers.NewOpportunityController(oppService),
		Signup:       appControllers.NewSignupController(signupService),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware, routes and static
// serving for uploaded images.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.Default()

	appRoutes.SetupRoutes(router, deps.Controllers, deps.JWTService)

	if _, err := os.Stat(cfg.Server.StoragePath); os.IsNotExist(err) {
		if err := os.MkdirAll(cfg.Server.StoragePath, os.ModePerm); err != nil {
			lgr.Error().Err(err).Str("path", cfg.Server.StoragePath).Msg("Failed to create uploads directory")
		}
	}
	router.Static("/uploads", cfg.Server.StoragePath)

	return router
}
