package routes

import (
	"net/http"

	"github.com/templui/thumbnailer/internal/app"
	"github.com/templui/thumbnailer/internal/handler"
	"github.com/templui/thumbnailer/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler(app.DB, app.Cfg.AppName)
	auth := handler.NewAuthHandler(app.AuthService)
	images := handler.NewImageHandler(app.ImageService, app.Cfg.UploadMaxSize)
	access := handler.NewAccessHandler(app.AccessService)
	expiring := handler.NewExpiringHandler(app.ExpiringService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /{$}", home.Overview)
	mux.HandleFunc("GET /healthz", home.Health)

	if app.Metrics != nil {
		mux.Handle("GET /metrics", app.Metrics.Handler())
	}

	// Auth (rate limited)
	rateLimiter := middleware.RateLimit(app.AuthLimiter)
	mux.HandleFunc("POST /auth/register", rateLimiter(auth.Register))
	mux.HandleFunc("POST /auth/token", rateLimiter(auth.Token))

	// Expiring links need no credentials
	mux.HandleFunc("GET /expiring-images/{fileName}", expiring.Serve)

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	mux.HandleFunc("GET /images/{$}", middleware.RequireAuth(images.List))
	mux.HandleFunc("POST /images/{$}", middleware.RequireAuth(images.Upload))
	mux.HandleFunc("GET /images/{ownerID}/images/{fileName}", middleware.RequireAuth(access.Serve))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", home.NotFound)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.TokenAuth(app.AuthService),
	)

	return handler
}
