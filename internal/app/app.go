package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/cafe-manager/internal/health"
	"github.com/vladislavdragonenkov/cafe-manager/internal/metrics"
	"github.com/vladislavdragonenkov/cafe-manager/internal/service/httpapi"
	"github.com/vladislavdragonenkov/cafe-manager/internal/service/order"
	"github.com/vladislavdragonenkov/cafe-manager/internal/version"
)

// Run собирает зависимости и блокируется до отмены контекста
// или фатальной ошибки одного из серверов.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	storage, err := initStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := storage.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("failed to close storage")
		}
	}()

	// Kafka опционален: без брокеров события просто не публикуются.
	kafkaPublisher, _ := initKafkaPublisher(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaPublisher, logger)

	serviceOpts := []order.Option{
		order.WithMetrics(metrics.NewOrderMetrics()),
		order.WithLogger(logger.WithField("layer", "service")),
	}
	if kafkaPublisher != nil {
		serviceOpts = append(serviceOpts, order.WithEventPublisher(kafkaPublisher))
	}
	orderService := order.NewService(storage.Repo, storage.Catalog, serviceOpts...)

	apiServer := httpapi.NewServer(
		cfg.HTTPAddr,
		orderService,
		httpapi.WithHTTPMetrics(metrics.NewHTTPMetrics()),
		httpapi.WithLogger(logger.WithField("layer", "http")),
	)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	if storage.Store != nil {
		healthHandler.RegisterChecker("storage", healthcheck.NewPingChecker("storage", storage.Store, 2*time.Second))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Run()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("api server shutdown with error")
		}
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()

	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
