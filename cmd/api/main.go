package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"bizportal/internal/captcha"
	"bizportal/internal/http/handlers"
	"bizportal/internal/http/httpapi"
	"bizportal/internal/infra"
	"bizportal/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	var store storage.ObjectStore
	if cfg.S3Bucket != "" {
		store, err = storage.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object storage")
		}
	} else {
		store, err = storage.NewFileStore(cfg.StorageBasePath, cfg.StorageBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init file storage")
		}
		logger.Warn().Msg("S3_BUCKET not set, storing uploads on the local filesystem")
	}

	verifier := captcha.New(cfg.CaptchaSecret, cfg.CaptchaVerifyURL)
	if !verifier.Enabled() {
		logger.Warn().Msg("CAPTCHA_SECRET not set, captcha verification disabled")
	}

	runner := infra.NewSQLRunner(dbpool, logger)
	app := handlers.NewApp(runner, logger, cfg, store, verifier)
	router := httpapi.NewRouter(app, cfg, runner)

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
