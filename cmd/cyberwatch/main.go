package main

import (
	"context"
	"crypto/aes"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ca-risken/common/pkg/logging"
	"github.com/ca-risken/common/pkg/profiler"
	"github.com/ca-risken/common/pkg/tracer"
	"github.com/gassara-kys/envconfig"
	"github.com/shipsafe/cyberwatch/pkg/auth"
	"github.com/shipsafe/cyberwatch/pkg/db"
	"github.com/shipsafe/cyberwatch/pkg/github"
	"github.com/shipsafe/cyberwatch/pkg/llm"
	"github.com/shipsafe/cyberwatch/pkg/notify"
	"github.com/shipsafe/cyberwatch/pkg/scanner"
	"github.com/shipsafe/cyberwatch/pkg/server"
)

const (
	nameSpace   = "shipsafe"
	serviceName = "cyberwatch"

	shutdownTimeout = 30 * time.Second
)

var appLogger = logging.NewLogger()

func getFullServiceName() string {
	return fmt.Sprintf("%s.%s", nameSpace, serviceName)
}

func main() {
	ctx := context.Background()
	var conf server.AppConfig
	err := envconfig.Process("", &conf)
	if err != nil {
		appLogger.Fatal(ctx, err.Error())
	}

	pTypes, err := profiler.ConvertProfileTypeFrom(conf.ProfileTypes)
	if err != nil {
		appLogger.Fatal(ctx, err.Error())
	}
	pExporter, err := profiler.ConvertExporterTypeFrom(conf.ProfileExporter)
	if err != nil {
		appLogger.Fatal(ctx, err.Error())
	}
	pc := profiler.Config{
		ServiceName:  getFullServiceName(),
		EnvName:      conf.EnvName,
		ProfileTypes: pTypes,
		ExporterType: pExporter,
	}
	err = pc.Start()
	if err != nil {
		appLogger.Fatal(ctx, err.Error())
	}
	defer pc.Stop()

	tc := &tracer.Config{
		ServiceName: getFullServiceName(),
		Environment: conf.EnvName,
		Debug:       conf.TraceDebug,
	}
	tracer.Start(tc)
	defer tracer.Stop()

	cipherBlock, err := aes.NewCipher([]byte(conf.DataKey))
	if err != nil {
		appLogger.Fatalf(ctx, "Failed to create cipher block, err=%+v", err)
	}
	dbClient, err := db.NewClient(&db.Config{
		Host:     conf.DBHost,
		Port:     conf.DBPort,
		User:     conf.DBUser,
		Password: conf.DBPassword,
		Schema:   conf.DBSchema,
	}, appLogger)
	if err != nil {
		appLogger.Fatalf(ctx, "Failed to create DB client, err=%+v", err)
	}

	githubClient := github.NewGithubClient(conf.GithubBaseURL, time.Duration(conf.GithubTimeoutSec)*time.Second, appLogger)
	llmClient := llm.NewClient(conf.GroqAPIKey, conf.GroqBaseURL, time.Duration(conf.CompletionTimeoutSec)*time.Second, appLogger)
	sessionClient := auth.NewSessionClient(conf.AuthBaseURL, conf.AuthAPIKey, time.Duration(conf.AuthTimeoutSec)*time.Second)
	notifier := notify.NewNotifier(conf.PublicAppURL, conf.NotifyAvatarURL, time.Duration(conf.NotifyTimeoutSec)*time.Second, appLogger)
	scanSvc := scanner.NewScanner(githubClient, llmClient, dbClient, &scanner.Config{
		StageModel:         conf.StageModel,
		ExplainerModel:     conf.ExplainerModel,
		FallbackModel:      conf.FallbackModel,
		MaxDetectFiles:     conf.MaxDetectFiles,
		MaxFileContentSize: conf.MaxFileContentSize,
	}, appLogger)

	srv := server.NewServer(&server.Dependencies{
		SessionVerifier: sessionClient,
		Scanner:         scanSvc,
		GithubClient:    githubClient,
		ScanRepo:        dbClient,
		MonitoredRepo:   dbClient,
		SettingsRepo:    dbClient,
		UserRepo:        dbClient,
		Notifier:        notifier,
		CipherBlock:     cipherBlock,
		AppURL:          conf.PublicAppURL,
	}, appLogger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", conf.HTTPPort),
		Handler: srv.Router(),
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		appLogger.Infof(ctx, "Start the cyberwatch HTTP server..., port=%d", conf.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatalf(ctx, "Failed to serve HTTP, err=%+v", err)
		}
	}()

	<-sigCtx.Done()
	appLogger.Info(ctx, "Shutdown signal received...")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorf(ctx, "Failed to shutdown HTTP server gracefully, err=%+v", err)
	}
	// Let in-flight automated scans run to completion before the process exits.
	srv.WaitDetached()
	appLogger.Info(ctx, "Shutdown complete")
}
