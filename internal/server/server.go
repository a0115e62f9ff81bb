package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"archipelago-scent/internal/config"
	"archipelago-scent/internal/database"
	"archipelago-scent/internal/media"
	custommiddleware "archipelago-scent/internal/middleware"
	"archipelago-scent/internal/repository"
	"archipelago-scent/internal/service"
	"archipelago-scent/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	store  database.Store
	redis  *redis.Client
}

// NewServer wires repositories, services and handlers onto a chi router.
// redisClient may be nil, in which case rate limiting is off.
func NewServer(cfg *config.Config, logger *zap.Logger, store database.Store, redisClient *redis.Client, uploader media.Uploader) *Server {
	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      NewRouter(cfg, logger, store, redisClient, uploader),
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		store:  store,
		redis:  redisClient,
	}

	return server
}

// NewRouter builds the HTTP handler tree
func NewRouter(cfg *config.Config, logger *zap.Logger, store database.Store, redisClient *redis.Client, uploader media.Uploader) http.Handler {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, !cfg.IsProduction()))

	// Health check endpoint
	router.Get("/health", healthHandler(store, redisClient))

	// Initialize repositories
	userRepo := repository.NewUserRepository(store)
	islandRepo := repository.NewIslandRepository(store)
	productRepo := repository.NewProductRepository(store)
	quizRepo := repository.NewQuizRepository(store)
	orderRepo := repository.NewOrderRepository(store)
	themeRepo := repository.NewThemeRepository(store)
	faqRepo := repository.NewFAQRepository(store)

	// Initialize services
	tokenService := service.NewTokenService(userRepo, cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authService := service.NewAuthService(userRepo, tokenService)
	catalogService := service.NewCatalogService(islandRepo, productRepo)
	quizService := service.NewQuizService(quizRepo, islandRepo, productRepo)
	orderService := service.NewOrderService(orderRepo)
	contentService := service.NewContentService(themeRepo, faqRepo)

	// Initialize handlers
	authHandler := transport.NewAuthHandler(authService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	quizHandler := transport.NewQuizHandler(quizService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)
	contentHandler := transport.NewContentHandler(contentService, logger)
	uploadHandler := transport.NewUploadHandler(uploader, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(tokenService, logger)

	// Register routes
	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authMiddleware, rateLimiter(cfg, redisClient, logger, "login"))
		catalogHandler.RegisterRoutes(r, authMiddleware)
		quizHandler.RegisterRoutes(r, authMiddleware, rateLimiter(cfg, redisClient, logger, "quiz"))
		orderHandler.RegisterRoutes(r, authMiddleware, rateLimiter(cfg, redisClient, logger, "orders"))
		contentHandler.RegisterRoutes(r, authMiddleware)
		uploadHandler.RegisterRoutes(r, authMiddleware)
	})

	return router
}

// rateLimiter returns a limiter with its own counter namespace, or a passthrough
// when Redis is absent or limiting is disabled
func rateLimiter(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger, scope string) func(http.Handler) http.Handler {
	if redisClient == nil || !cfg.RateLimit.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	return custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "rate_limit:" + scope,
	}, logger)
}

func healthHandler(store database.Store, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		storeHealth := database.Health(ctx, store)
		status := http.StatusOK
		report := map[string]interface{}{
			"status": "ok",
			"store":  storeHealth,
		}
		if storeHealth["status"] != "up" {
			status = http.StatusServiceUnavailable
			report["status"] = "degraded"
		}

		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				// Reported only; rate limiting fails open
				report["redis"] = map[string]string{"status": "down", "error": err.Error()}
			} else {
				report["redis"] = map[string]string{"status": "up"}
			}
		}

		custommiddleware.RespondWithJSON(w, status, report)
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close store connection
	if s.store != nil {
		if err := s.store.Close(ctx); err != nil {
			s.logger.Error("Failed to close document store", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
