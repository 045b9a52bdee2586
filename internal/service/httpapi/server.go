package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/cafe-manager/internal/metrics"
	"github.com/vladislavdragonenkov/cafe-manager/internal/service/order"
)

// Server — HTTP JSON API поверх сервиса заказов.
type Server struct {
	service *order.Service
	router  *chi.Mux
	server  *http.Server
	logger  *log.Entry
	metrics *metrics.HTTPMetrics
}

// Option настраивает необязательные зависимости сервера.
type Option func(*Server)

// WithHTTPMetrics включает метрики HTTP-запросов.
func WithHTTPMetrics(m *metrics.HTTPMetrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger задаёт логгер вместо логгера по умолчанию.
func WithLogger(logger *log.Entry) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer создаёт сервер с роутером и таймаутами.
func NewServer(addr string, service *order.Service, opts ...Option) *Server {
	s := &Server{
		service: service,
		logger:  log.WithField("component", "http-api"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.newRouter()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Router возвращает http.Handler; используется сервером и тестами.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run блокируется до остановки сервера.
func (s *Server) Run() error {
	s.logger.WithField("addr", s.server.Addr).Info("http api listening")
	return s.server.ListenAndServe()
}

// Shutdown корректно останавливает сервер.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) newRouter() *chi.Mux {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(s.observeRequests)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", s.createOrder)
			r.Get("/", s.listOrders)
			r.Get("/profit", s.calculateProfit)
			r.Route("/{orderID}", func(r chi.Router) {
				r.Get("/", s.getOrder)
				r.Delete("/", s.deleteOrder)
				r.Patch("/status", s.updateOrderStatus)
				r.Put("/dishes", s.replaceOrderDishes)
			})
		})
		r.Get("/dishes", s.listDishes)
	})

	return router
}

// observeRequests снимает метрики по шаблону маршрута, а не сырому пути,
// чтобы не раздувать кардинальность лейблов.
func (s *Server) observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		started := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(r.Method, route, ww.Status(), started)
	})
}
