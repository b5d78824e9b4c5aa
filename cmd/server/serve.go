package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/npezzotti/smartshop/internal/api"
	"github.com/npezzotti/smartshop/internal/config"
	"github.com/npezzotti/smartshop/internal/database"
	"github.com/npezzotti/smartshop/internal/ocr"
	"github.com/npezzotti/smartshop/internal/realtime"
	"github.com/npezzotti/smartshop/internal/stats"
	"github.com/npezzotti/smartshop/internal/uploads"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and websocket server",
		Long: `Start the HTTP API, the realtime websocket endpoint and the stats endpoint.

Examples:
  smartshop serve
  SMARTSHOP_REALTIME_BUS=redis smartshop serve --config smartshop.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, logger)
		},
	}
}

func newBus(ctx context.Context, cfg *config.Config, logger zerolog.Logger, rooms *realtime.Rooms) (realtime.Bus, error) {
	if cfg.BusDriver != config.BusRedis {
		return realtime.NewLocalBus(rooms), nil
	}

	return realtime.NewRedisBus(ctx, logger, realtime.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, rooms)
}

func newUploadStore(ctx context.Context, cfg *config.Config) (uploads.Store, error) {
	if cfg.UploadBackend != config.UploadsS3 {
		return uploads.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL)
	}

	return uploads.NewS3Store(ctx, uploads.S3Config{
		Endpoint:        cfg.S3.Endpoint,
		Region:          cfg.S3.Region,
		Bucket:          cfg.S3.Bucket,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		UsePathStyle:    cfg.S3.UsePathStyle,
		PublicURL:       cfg.S3.PublicURL,
	})
}

func runServe(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	dbConn, err := database.NewPgRepository(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error().Err(err).Msg("db close")
		}
	}()

	if cfg.AutoMigrate {
		if err := database.Migrate(dbConn.DB(), false); err != nil {
			return err
		}
		logger.Info().Msg("database schema is up to date")
	}

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux, "smartshop")
	statsUpdater.Run()
	defer statsUpdater.Stop()

	rooms := realtime.NewRooms()
	bus, err := newBus(ctx, cfg, logger, rooms)
	if err != nil {
		return fmt.Errorf("realtime bus: %w", err)
	}
	logger.Info().Str("bus", cfg.BusDriver).Msg("realtime bus ready")

	rt := realtime.NewService(logger, dbConn, rooms, bus, statsUpdater, cfg.BotReplyDelay)

	files, err := newUploadStore(ctx, cfg)
	if err != nil {
		rt.Shutdown(ctx)
		return fmt.Errorf("upload store: %w", err)
	}

	posters := ocr.NewRunner(logger, cfg.OCRCommand, cfg.OCRTimeout)

	srv := api.NewApp(mux, logger, rt, dbConn, statsUpdater, files, posters, cfg)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	var serveErr error
	select {
	case sig := <-sigs:
		logger.Info().Str("signal", sig.String()).Msg("received signal")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown")
	}

	logger.Info().Msg("shutting down realtime service...")
	if err := rt.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("realtime shutdown")
	}

	logger.Info().Msg("shutdown complete")
	return serveErr
}
