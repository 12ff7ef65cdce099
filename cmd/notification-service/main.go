package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iyhunko/product-catalog/internal/awsclient"
	"github.com/iyhunko/product-catalog/internal/config"
	"github.com/iyhunko/product-catalog/internal/logger"
	sqspkg "github.com/iyhunko/product-catalog/internal/sqs"
)

func main() {
	conf, err := config.LoadFromEnv()
	handleErr("loading config", err)
	logger.InitJSONLogger(conf.DebugMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awsclient.Load(ctx, conf.AWS)
	handleErr("loading AWS config", err)
	consumer := sqspkg.NewConsumer(awsclient.NewSQS(awsCfg), conf.AWS.SQSQueueURL, sqspkg.LogEvent)

	slog.Info("Notification service started. Listening for lifecycle events...")
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Consumer error", slog.Any("err", err))
	}
	slog.Info("Shutting down gracefully...")
}

func handleErr(msg string, err error) {
	if err != nil {
		slog.Error("error while "+msg, slog.Any("err", err))
		os.Exit(1)
	}
}
