package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/gbatdev/gcp-billing-report-go/internal/adapter/driven/bigquery"
	"github.com/gbatdev/gcp-billing-report-go/internal/adapter/driven/config"
	"github.com/gbatdev/gcp-billing-report-go/internal/adapter/driven/export"
	"github.com/gbatdev/gcp-billing-report-go/internal/adapter/driven/slack"
	"github.com/gbatdev/gcp-billing-report-go/internal/adapter/driving/cli"
	"github.com/gbatdev/gcp-billing-report-go/internal/application/usecase"
	"github.com/gbatdev/gcp-billing-report-go/pkg/console"
	"github.com/gbatdev/gcp-billing-report-go/pkg/version"
)

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	logger.SetLevel(logrus.WarnLevel)
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	}
	return logger
}

func main() {
	logger := newLogger()

	app := cli.NewCLIApp(version.Version)

	billingRepo := bigquery.NewBillingRepository(logger)
	notifierRepo := slack.NewNotifierRepository(logger)
	exportRepo := export.NewExportRepository()
	configRepo := config.NewConfigRepository()
	consoleImpl := console.NewConsole()

	reportUseCase := usecase.NewReportUseCase(
		billingRepo,
		notifierRepo,
		exportRepo,
		consoleImpl,
		logger,
	)

	app.SetReportUseCase(reportUseCase)
	app.SetConfigRepository(configRepo)

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
