// Package server provides the HTTP server of the storefront API.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/SatishMhobiya/e-commerce-backend/internal/config"
	apperrors "github.com/SatishMhobiya/e-commerce-backend/internal/errors"
	"github.com/SatishMhobiya/e-commerce-backend/internal/handler"
	"github.com/SatishMhobiya/e-commerce-backend/internal/health"
	"github.com/SatishMhobiya/e-commerce-backend/internal/metrics"
	"github.com/SatishMhobiya/e-commerce-backend/internal/middleware"
)

// Server represents the HTTP server.
type Server struct {
	router       *mux.Router
	httpServer   *http.Server
	handlers     *handler.Handlers
	roles        middleware.RoleChecker
	healthCheck  *health.HealthChecker
	metrics      *metrics.Metrics
	errorHandler *apperrors.Handler
	logger       *zap.Logger
	cfg          *config.Config
}

// NewServer creates a new HTTP server. m may be nil, in which case request
// metrics are not recorded.
func NewServer(
	cfg *config.Config,
	handlers *handler.Handlers,
	roles middleware.RoleChecker,
	healthCheck *health.HealthChecker,
	m *metrics.Metrics,
	errorHandler *apperrors.Handler,
	logger *zap.Logger,
) *Server {
	router := mux.NewRouter()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		router:       router,
		httpServer:   httpServer,
		handlers:     handlers,
		roles:        roles,
		healthCheck:  healthCheck,
		metrics:      m,
		errorHandler: errorHandler,
		logger:       logger,
		cfg:          cfg,
	}
}

// SetupRoutes configures all HTTP routes.
func (s *Server) SetupRoutes() {
	middlewareChain := []func(http.Handler) http.Handler{
		middleware.Recovery(s.errorHandler, s.logger),
		middleware.RequestID,
		middleware.Logging(s.logger),
	}
	if s.metrics != nil {
		middlewareChain = append(middlewareChain, metrics.MetricsMiddleware(s.metrics))
	}
	middlewareChain = append(middlewareChain, middleware.CORS(s.cfg.Server.AllowedOrigins))

	if s.cfg.RateLimiter.Enabled {
		rateLimiter := middleware.NewRateLimiter(
			s.cfg.RateLimiter.RequestsPerSecond,
			s.cfg.RateLimiter.BurstSize,
			s.errorHandler,
			s.logger,
		)
		middlewareChain = append(middlewareChain, rateLimiter.Limit)
	}

	if s.cfg.Server.RequestTimeout > 0 {
		middlewareChain = append(middlewareChain, middleware.Timeout(s.cfg.Server.RequestTimeout))
	}

	chain := middleware.Chain(middlewareChain...)
	s.router.Use(func(next http.Handler) http.Handler {
		return chain(next)
	})

	s.router.HandleFunc("/health", s.healthCheck.LivenessHandler).Methods(http.MethodGet)
	s.router.HandleFunc("/ready", s.healthCheck.ReadinessHandler).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	h := s.handlers
	admin := middleware.AdminOnly(s.roles, s.errorHandler, s.logger)
	adminOnly := func(fn http.HandlerFunc) http.Handler {
		return admin(fn)
	}

	// Users
	user := v1.PathPrefix("/user").Subrouter()
	user.HandleFunc("/new", h.NewUser).Methods(http.MethodPost)
	user.Handle("/all", adminOnly(h.AllUsers)).Methods(http.MethodGet)
	user.HandleFunc("/{id}", h.GetUser).Methods(http.MethodGet)
	user.Handle("/{id}", adminOnly(h.DeleteUser)).Methods(http.MethodDelete)

	// Products and their reviews. Fixed paths are registered before /{id}.
	product := v1.PathPrefix("/product").Subrouter()
	product.Handle("/new", adminOnly(h.NewProduct)).Methods(http.MethodPost)
	product.HandleFunc("/all", h.SearchProducts).Methods(http.MethodGet)
	product.HandleFunc("/latest", h.LatestProducts).Methods(http.MethodGet)
	product.HandleFunc("/categories", h.ProductCategories).Methods(http.MethodGet)
	product.Handle("/admin-products", adminOnly(h.AdminProducts)).Methods(http.MethodGet)
	product.HandleFunc("/reviews/{id}", h.ProductReviews).Methods(http.MethodGet)
	product.HandleFunc("/review/new/{id}", h.NewReview).Methods(http.MethodPost)
	product.HandleFunc("/review/{id}", h.DeleteReview).Methods(http.MethodDelete)
	product.HandleFunc("/{id}", h.GetProduct).Methods(http.MethodGet)
	product.Handle("/{id}", adminOnly(h.UpdateProduct)).Methods(http.MethodPut)
	product.Handle("/{id}", adminOnly(h.DeleteProduct)).Methods(http.MethodDelete)

	// Orders
	order := v1.PathPrefix("/order").Subrouter()
	order.HandleFunc("/new", h.NewOrder).Methods(http.MethodPost)
	order.HandleFunc("/my", h.MyOrders).Methods(http.MethodGet)
	order.Handle("/all", adminOnly(h.AllOrders)).Methods(http.MethodGet)
	order.HandleFunc("/{id}", h.GetOrder).Methods(http.MethodGet)
	order.Handle("/{id}", adminOnly(h.ProcessOrder)).Methods(http.MethodPut)
	order.Handle("/{id}", adminOnly(h.DeleteOrder)).Methods(http.MethodDelete)

	// Coupons
	coupon := v1.PathPrefix("/coupon").Subrouter()
	coupon.Handle("/new", adminOnly(h.NewCoupon)).Methods(http.MethodPost)
	coupon.Handle("/all", adminOnly(h.AllCoupons)).Methods(http.MethodGet)
	coupon.HandleFunc("/{id}", h.GetCoupon).Methods(http.MethodGet)
	coupon.Handle("/{id}", adminOnly(h.UpdateCoupon)).Methods(http.MethodPut)
	coupon.Handle("/{id}", adminOnly(h.DeleteCoupon)).Methods(http.MethodDelete)

	// Admin dashboard
	stats := v1.PathPrefix("/stats").Subrouter()
	stats.Handle("/stats", adminOnly(h.DashboardStats)).Methods(http.MethodGet)
	stats.Handle("/pie", adminOnly(h.PieCharts)).Methods(http.MethodGet)
	stats.Handle("/bar", adminOnly(h.BarCharts)).Methods(http.MethodGet)
	stats.Handle("/line", adminOnly(h.LineCharts)).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(middleware.HeaderRequestID)
		s.errorHandler.WriteErrorResponse(w, http.StatusNotFound, apperrors.KindNotFound, "endpoint not found", requestID)
	})

	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(middleware.HeaderRequestID)
		s.errorHandler.WriteErrorResponse(w, http.StatusMethodNotAllowed, apperrors.KindValidation, "method not allowed", requestID)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server",
		zap.Int("port", s.cfg.Server.Port),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
