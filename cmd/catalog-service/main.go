package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/product-catalog/internal/awsclient"
	"github.com/iyhunko/product-catalog/internal/config"
	"github.com/iyhunko/product-catalog/internal/generation"
	httpAPI "github.com/iyhunko/product-catalog/internal/http"
	"github.com/iyhunko/product-catalog/internal/http/controller"
	"github.com/iyhunko/product-catalog/internal/inventory"
	"github.com/iyhunko/product-catalog/internal/logger"
	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/iyhunko/product-catalog/internal/repository/sql"
	"github.com/iyhunko/product-catalog/internal/service"
	sqspkg "github.com/iyhunko/product-catalog/internal/sqs"
	"github.com/iyhunko/product-catalog/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)
	logger.InitJSONLogger(conf.DebugMode)
	if !conf.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.StartDB(ctx, conf.Database)
	handleErr("starting database", err)
	defer db.Close()

	// Create repositories
	productRepository := sql.NewProductRepository(db)
	recommendationRepository := sql.NewRecommendationRepository(db)
	eventRepository := sql.NewEventRepository(db)
	transactionalRepository := sql.NewTransactionalRepository(db)

	awsCfg, err := awsclient.Load(ctx, conf.AWS)
	handleErr("loading AWS config", err)
	publisher := sqspkg.NewPublisher(awsclient.NewSQS(awsCfg), conf.AWS.SQSQueueURL)
	imageStore := storage.NewImageStore(awsclient.NewS3(awsCfg), conf.AWS.ImageBucket)

	inventoryClient := inventory.NewClient(conf.Inventory.BaseURL, conf.CallTimeout)
	generationClient := generation.NewClient(conf.Generation)

	random := service.NewRandom()
	upcs := service.NewUPCGenerator()
	fallback := service.DefaultFallback{}

	catalogService := service.NewCatalogService(service.Dependencies{
		Products:      productRepository,
		Transactor:    transactionalRepository,
		Outbox:        eventRepository,
		Publisher:     publisher,
		Images:        imageStore,
		Inventory:     inventoryClient,
		Generator:     service.NewProductGenerator(generationClient, fallback, random, conf.Generation.Timeout),
		Engine:        service.NewRecommendationEngine(generationClient, fallback, random, upcs, productRepository, conf.Generation.Timeout, conf.CallTimeout),
		Store:         service.NewRecommendationStore(productRepository, recommendationRepository, transactionalRepository, upcs),
		Random:        random,
		Topic:         conf.AWS.EventsTopic,
		CallTimeout:   conf.CallTimeout,
		MaxImageBytes: conf.AWS.MaxImageBytes,
	})

	// Republish events whose first publish failed
	outboxWorker := service.NewOutboxWorker(eventRepository, publisher, conf.Outbox.Interval, conf.CallTimeout)
	go outboxWorker.Start(ctx)

	// Start HTTP server
	router := httpAPI.InitRouter(gin.New(),
		controller.New(),
		controller.NewProductController(catalogService),
		controller.NewRecommendationController(catalogService),
	)
	router.MaxMultipartMemory = conf.AWS.MaxImageBytes
	httpServer := &http.Server{
		Addr:              ":" + conf.HTTPServer.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("HTTP server starting", slog.String("port", conf.HTTPServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			handleErr("listening to HTTP requests", err)
		}
	}()

	metricsServer := metrics.StartMetricsServer(conf)

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")
	outboxWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down HTTP server", slog.Any("err", err))
	}
	metrics.Shutdown(shutdownCtx, metricsServer)
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
