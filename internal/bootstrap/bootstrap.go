package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/collegeapi/internal/app/controllers"
	appMigrations "github.com/yigit/collegeapi/internal/app/migrations"
	appRepos "github.com/yigit/collegeapi/internal/app/repositories"
	appRoutes "github.com/yigit/collegeapi/internal/app/routes"
	appServices "github.com/yigit/collegeapi/internal/app/services"
	"github.com/yigit/collegeapi/internal/config"
	"github.com/yigit/collegeapi/internal/db"
	appMiddleware "github.com/yigit/collegeapi/internal/middleware"
	pkgAuth "github.com/yigit/collegeapi/internal/pkg/auth"
	"github.com/yigit/collegeapi/internal/pkg/filestorage"
	"github.com/yigit/collegeapi/internal/pkg/helpers"
	"github.com/yigit/collegeapi/internal/pkg/logger"
	"github.com/yigit/collegeapi/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	FileStorage    *filestorage.LocalStorage
	JWTService     *pkgAuth.JWTService
	Pictures       *appServices.ProfilePictureManager
	AccountCreator *appServices.AccountCreator

	AuthService    *appServices.AuthService
	FacultyService appServices.FacultyService
	StudentService appServices.StudentService

	AuthController    *appControllers.AuthController
	FacultyController *appControllers.FacultyController
	StudentController *appControllers.StudentController
	AuthMiddleware    *appMiddleware.AuthMiddleware

	Logger zerolog.Logger
}

// LoadConfigAndSetupLogger loads .env, the configuration file and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Err(err).Msg("Failed to read .env file, continuing with the process environment")
	}

	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

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
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(dbPool, lgr).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Media.Root, cfg.Media.URLPrefix)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 24*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	pictureCfg := appServices.DefaultPictureConfig()
	pictureCfg.MaxBytes = cfg.Media.MaxUploadBytes
	pictureCfg.MaxDimension = cfg.Media.MaxImageDimension
	pictureCfg.AllowedTypes = cfg.Media.AllowedTypes

	deps.Pictures = appServices.NewProfilePictureManager(
		deps.FileStorage,
		deps.Repos.StudentRepository,
		pictureCfg,
		lgr.With().Str("component", "profile_pictures").Logger(),
	)

	deps.AccountCreator = appServices.NewAccountCreator(
		deps.Repos.UserRepository,
		deps.Repos.FacultyRepository,
		deps.Repos.StudentRepository,
		deps.Pictures,
		nil,
		lgr,
	)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.JWTService,
		lgr,
	)
	deps.FacultyService = appServices.NewFacultyService(
		deps.Repos.FacultyRepository,
		deps.Repos.StudentRepository,
		deps.AccountCreator,
		lgr,
	)
	deps.StudentService = appServices.NewStudentService(
		deps.Repos.StudentRepository,
		deps.AccountCreator,
		deps.Pictures,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.FacultyController = appControllers.NewFacultyController(deps.FacultyService)
	deps.StudentController = appControllers.NewStudentController(deps.StudentService, cfg.Server.PublicURL, lgr)

	return deps, nil
}

// SeedDefaultData creates the default faculty account when enabled. Failures
// are logged and do not stop startup.
func SeedDefaultData(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	if !cfg.Seed.Enabled {
		deps.Logger.Info().Msg("Default data seeding disabled")
		return
	}

	account := seed.FacultyAccount{
		Username:      cfg.Seed.Username,
		Password:      cfg.Seed.Password,
		Email:         cfg.Seed.Email,
		FirstName:     cfg.Seed.FirstName,
		LastName:      cfg.Seed.LastName,
		Subject:       cfg.Seed.Subject,
		ContactNumber: cfg.Seed.ContactNumber,
		Address:       cfg.Seed.Address,
	}
	if _, err := seed.CreateDefaultFaculty(ctx, deps.Repos.UserRepository, deps.AccountCreator, account, deps.Logger); err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
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
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(appMiddleware.BodyLimit(cfg.Server.MaxRequestBytes))
	router.MaxMultipartMemory = cfg.Media.MaxUploadBytes

	appRoutes.SetupSwagger(router)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.FacultyController,
		deps.StudentController,
		deps.AuthMiddleware,
	)

	return router
}
