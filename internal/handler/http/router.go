package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mresitgokce1/inventory-multi-brand-api/docs"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/auth"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/config"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/domain"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/service"
	"github.com/mresitgokce1/inventory-multi-brand-api/internal/storage"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/health"
	"github.com/mresitgokce1/inventory-multi-brand-api/pkg/middleware"
)

// mediaCacheSeconds is the Cache-Control max-age for served images. Image
// keys change on reupload, so long caching is safe.
const mediaCacheSeconds = 86400

// NewRouter creates a chi router with all API routes registered.
func NewRouter(
	cfg *config.Config,
	authService *service.AuthService,
	brandService *service.BrandService,
	categoryService *service.CategoryService,
	productService *service.ProductService,
	qrService *service.QRCodeService,
	jwtManager *auth.JWTManager,
	store storage.Storage,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RealIP)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		Environment:      cfg.Environment,
	}))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("inventory-api"))
	if cfg.OTELEnabled {
		r.Use(middleware.Tracing("inventory-api"))
	}
	r.Use(middleware.RequestLogger(logger))

	// Health check and metrics endpoints
	r.Get("/healthz", healthHandler.LivenessHandler())
	r.Get("/readyz", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// API documentation
	r.Get("/api/schema", docs.ServeSpec)
	r.Get("/api/docs", docs.ServeUI)

	// Pprof debug endpoints with IP allowlist
	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	validate := tokenValidator(jwtManager)

	// Auth endpoints
	authHandler := NewAuthHandler(authService, CookieOptions{
		Domain: cfg.CookieDomain,
		Secure: !cfg.IsDevelopment(),
		MaxAge: int(jwtManager.RefreshExpiry().Seconds()),
	}, logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
	})

	// Brand management endpoints
	brandHandler := NewBrandHandler(brandService, logger)

	r.Route("/api/brands", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(validate))

		r.Get("/", brandHandler.List)
		r.Get("/{id}", brandHandler.Get)

		// Brand lifecycle is admin only.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(domain.RoleAdmin)))

			r.Post("/", brandHandler.Create)
			r.Put("/{id}", brandHandler.Update)
			r.Patch("/{id}", brandHandler.Update)
			r.Delete("/{id}", brandHandler.Delete)
		})
	})

	// Category management endpoints
	categoryHandler := NewCategoryHandler(categoryService, logger)

	r.Route("/api/categories", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(validate))

		r.Get("/", categoryHandler.List)
		r.Post("/", categoryHandler.Create)
		r.Get("/{id}", categoryHandler.Get)
		r.Put("/{id}", categoryHandler.Update)
		r.Patch("/{id}", categoryHandler.Update)
		r.Delete("/{id}", categoryHandler.Delete)
	})

	// Product management endpoints, including QR code generation
	productHandler := NewProductHandler(productService, cfg.MaxUploadBytes, logger)
	qrHandler := NewQRCodeHandler(qrService, store, logger)

	r.Route("/api/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(validate))

		r.Get("/", productHandler.List)
		r.Post("/", productHandler.Create)
		r.Get("/{id}", productHandler.Get)
		r.Put("/{id}", productHandler.Update)
		r.Patch("/{id}", productHandler.Update)
		r.Delete("/{id}", productHandler.Delete)
		r.Post("/{id}/qr-code", qrHandler.Generate)
	})

	// Public storefront endpoints
	publicHandler := NewPublicHandler(productService, store, logger)

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/products", publicHandler.ListProducts)
		r.Get("/products/{id}", publicHandler.GetProduct)

		// A valid bearer token upgrades QR resolution visibility; no token
		// resolves publicly.
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthOptional(validate))

			r.Get("/qr/{code}", qrHandler.Resolve)
		})
	})

	// Processed product images
	mediaHandler := NewMediaHandler(store, logger)

	r.Route("/media", func(r chi.Router) {
		r.Use(middleware.CacheControl(mediaCacheSeconds))

		r.Get("/*", mediaHandler.Serve)
	})

	return r
}
