package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mochaaless/p4Backend/internal/service"
	"github.com/mochaaless/p4Backend/pkg/health"
	"github.com/mochaaless/p4Backend/pkg/middleware"
)

// RouterConfig carries the services and tunables the router needs.
type RouterConfig struct {
	Products       *service.ProductService
	Carts          *service.CartService
	Checkout       *service.CheckoutService
	Users          *service.UserService
	Health         *health.Handler
	Logger         *slog.Logger
	CORSOrigins    []string
	RateLimitRPS   int
	RateLimitBurst int
}

// NewRouter creates a chi router with all shop routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(cfg.CORSOrigins...))
	r.Use(middleware.Metrics())
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLog(cfg.Logger))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Logger))
	}

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	productHandler := NewProductHandler(cfg.Products, cfg.Logger)
	cartHandler := NewCartHandler(cfg.Carts, cfg.Logger)
	orderHandler := NewOrderHandler(cfg.Checkout, cfg.Logger)
	userHandler := NewUserHandler(cfg.Users, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.Get("/", userHandler.List)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Post("/", productHandler.Create)
			r.Get("/{id}", productHandler.Get)
			r.Put("/{id}", productHandler.Update)
			r.Delete("/{id}", productHandler.Delete)
		})

		r.Route("/carts", func(r chi.Router) {
			r.Get("/", cartHandler.Get)
			r.Post("/", cartHandler.AddItem)
			r.Delete("/", cartHandler.Remove)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.Checkout)
			r.Get("/", orderHandler.List)
		})
	})

	return r
}
