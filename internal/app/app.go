package app

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/templui/thumbnailer/internal/config"
	"github.com/templui/thumbnailer/internal/db"
	"github.com/templui/thumbnailer/internal/metrics"
	"github.com/templui/thumbnailer/internal/middleware"
	"github.com/templui/thumbnailer/internal/repository"
	"github.com/templui/thumbnailer/internal/service"
	"github.com/templui/thumbnailer/internal/storage"
)

type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Storage         storage.Storage
	Metrics         *metrics.Prom // nil when METRICS_ENABLED=false
	AuthLimiter     *middleware.RateLimiter
	AuthService     *service.AuthService
	UserService     *service.UserService
	ImageService    *service.ImageService
	ExpiringService *service.ExpiringService
	AccessService   *service.AccessService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	a, err := build(cfg, database)
	if err != nil {
		if closeErr := db.Close(database); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
		return nil, err
	}
	return a, nil
}

// build runs migrations and wires everything on top of an open database.
func build(cfg *config.Config, database *sqlx.DB) (*App, error) {
	// Run database migrations
	err := db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	tierRepository := repository.NewTierRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	imageRepository := repository.NewImageRepository(database)
	expiringRepository := repository.NewExpiringImageRepository(database)

	// Storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Metrics
	var m metrics.Metrics = metrics.Noop{}
	var prom *metrics.Prom
	if cfg.MetricsEnabled {
		prom = metrics.NewProm("thumbnailer")
		m = prom
	}

	// Services
	expiringService := service.NewExpiringService(expiringRepository, fileStorage, m)
	thumbnailService := service.NewThumbnailService(fileStorage, m)
	imageService := service.NewImageService(
		imageRepository,
		fileStorage,
		thumbnailService,
		expiringService,
		m,
		service.ImageServiceOptions{
			Links:                  service.Links{BaseURL: cfg.AppURL},
			MaxUploadSize:          cfg.UploadMaxSize,
			MaxPixels:              cfg.UploadMaxPixels,
			RollbackPartialUploads: cfg.RollbackPartialUploads,
		},
	)
	accessService := service.NewAccessService(imageRepository, fileStorage)
	authService := service.NewAuthService(
		userRepository,
		tierRepository,
		tokenRepository,
		cfg.JWTSecret,
		cfg.JWTExpiry,
	)
	userService := service.NewUserService(userRepository, tierRepository, expiringRepository, fileStorage)

	return &App{
		Cfg:             cfg,
		DB:              database,
		Storage:         fileStorage,
		Metrics:         prom,
		AuthLimiter:     middleware.NewAuthRateLimiter(),
		AuthService:     authService,
		UserService:     userService,
		ImageService:    imageService,
		ExpiringService: expiringService,
		AccessService:   accessService,
	}, nil
}

func (a *App) Close() error {
	if a.AuthLimiter != nil {
		a.AuthLimiter.Stop()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
