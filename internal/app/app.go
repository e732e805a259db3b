package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/ecom/internal/health"
	"github.com/vladislavdragonenkov/ecom/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ecom/internal/service/catalog"
	"github.com/vladislavdragonenkov/ecom/internal/service/idempotency"
	"github.com/vladislavdragonenkov/ecom/internal/service/order"
	"github.com/vladislavdragonenkov/ecom/internal/service/outbox"
	"github.com/vladislavdragonenkov/ecom/internal/service/rest"
	"github.com/vladislavdragonenkov/ecom/internal/service/user"
	"github.com/vladislavdragonenkov/ecom/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run запускает сервис: REST API, сервер метрик и фоновые воркеры.
// Блокируется до отмены ctx или фатальной ошибки HTTP-сервера.
func Run(ctx context.Context, cfg Config) error {
	cfg.ApplyLogLevel()
	logger := log.WithField("component", "app")
	logger.Info(version.String())

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	kafkaProducer, _ := initKafkaProducer(cfg.KafkaBrokers, logger)
	defer closeKafka(kafkaProducer, logger)

	orderSvc := order.NewService(deps.TxManager, logger.WithField("component", "order-service"))
	catalogSvc := catalog.NewService(deps.TxManager, logger.WithField("component", "catalog-service"))
	userSvc := user.NewService(deps.TxManager, logger.WithField("component", "user-service"))

	handler := rest.NewHandler(orderSvc, catalogSvc, userSvc, deps.IdemRepo, logger.WithField("component", "rest"))

	var workersWG sync.WaitGroup
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	if kafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicOrderEvents)
		dlqPublisher := kafka.NewOutboxPublisher(kafkaProducer, kafka.TopicDeadLetterQueue)
		worker := outbox.NewWorker(
			deps.OutboxRepo,
			publisher,
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(dlqPublisher),
		)
		workersWG.Add(1)
		go func() {
			defer workersWG.Done()
			worker.Run(workerCtx)
		}()
	} else {
		logger.Info("kafka is not configured, outbox worker is disabled")
	}

	cleanup := idempotency.NewCleanupWorker(
		deps.IdemRepo,
		idempotency.WithLogger(logger.WithField("component", "idempotency-cleanup-worker")),
	)
	workersWG.Add(1)
	go func() {
		defer workersWG.Done()
		cleanup.Run(workerCtx)
	}()

	healthHandler := healthcheck.NewHandler(version.String())
	healthHandler.RegisterChecker("storage", healthcheck.NewProbe("storage", func() error {
		checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return deps.Ping(checkCtx)
	}))
	if kafkaProducer != nil {
		healthHandler.RegisterChecker("kafka", healthcheck.NewProbe("kafka", kafkaProducer.Healthy))
	} else {
		// Без Kafka сервис работает, но события заказов не публикуются.
		healthHandler.RegisterChecker("kafka", healthcheck.NewDegradedProbe("kafka", func() error {
			return errors.New("kafka is not configured, order events are not published")
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	apiSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("REST API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		stopWorkers()
		workersWG.Wait()
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		stopWorkers()
		workersWG.Wait()
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

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
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
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
