package api

import (
	"net/http"

	"github.com/dom/whats-cookin/internal/api/handlers"
	"github.com/dom/whats-cookin/internal/api/middleware"
	"github.com/dom/whats-cookin/internal/config"
	"github.com/dom/whats-cookin/internal/metrics"
	"github.com/dom/whats-cookin/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// aiBurst is how many AI calls a user may fire back to back before the per-minute rate applies.
const aiBurst = 5

func NewRouter(services *service.Services, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(logger, m))
	r.Use(chiMiddleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Whats Cookin AI"}`))
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, logger)
	recipeHandler := handlers.NewRecipeHandler(services.Recipe, logger)
	kitchenHandler := handlers.NewKitchenHandler(services.Kitchen, cfg.MaxUploadBytes, logger)
	aiLimiter := middleware.NewUserRateLimiter(cfg.AIRatePerMinute, aiBurst)

	// Public auth routes
	r.Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(services.Auth, logger))

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.List)
			r.Post("/", recipeHandler.Create)
			r.Delete("/{id}", recipeHandler.Delete)
		})

		r.Group(func(r chi.Router) {
			r.Use(aiLimiter.Middleware)
			r.Post("/analyze-ingredients", kitchenHandler.AnalyzeIngredients)
			r.Post("/get-recipes", kitchenHandler.GetRecipes)
		})
	})

	return r
}
