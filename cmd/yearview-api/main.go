package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/kpessa/yearview/internal/auth"
	"github.com/kpessa/yearview/internal/config"
	"github.com/kpessa/yearview/internal/database"
	"github.com/kpessa/yearview/internal/event"
	"github.com/kpessa/yearview/internal/export"
	"github.com/kpessa/yearview/internal/logging"
	"github.com/kpessa/yearview/internal/remote"
	"github.com/kpessa/yearview/internal/scheduler"
	"github.com/kpessa/yearview/internal/server"
	"github.com/kpessa/yearview/internal/store"
	"github.com/kpessa/yearview/internal/sync"
)

var (
	cfgFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "yearview-api",
		Short: "Year planner backend service",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("signing-secret", "", "Token signing secret (overrides env)")
	cmd.PersistentFlags().String("google-credentials", defaults.GetString("google.credentials_file"), "Google Calendar credentials file")
	cmd.PersistentFlags().Bool("sync-enabled", defaults.GetBool("sync.enabled"), "Enable Google Calendar sync")
	cmd.PersistentFlags().Duration("sync-interval", defaults.GetDuration("sync.interval"), "Background sync interval")
	cmd.PersistentFlags().String("sync-user", defaults.GetString("sync.user"), "User id to sync on the background schedule")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "auth.signing_secret", "signing-secret")
	bindFlag(cmd, "google.credentials_file", "google-credentials")
	bindFlag(cmd, "sync.enabled", "sync-enabled")
	bindFlag(cmd, "sync.interval", "sync-interval")
	bindFlag(cmd, "sync.user", "sync-user")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	tokenManager := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(appConfig.AuthSigningSecret),
		Issuer:        appConfig.AuthIssuer,
		Audience:      appConfig.AuthAudience,
	})

	storage, err := store.NewService(store.ServiceConfig{
		Database:   db,
		Clock:      time.Now,
		IDProvider: event.NewUUIDProvider(),
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	exporter, err := export.NewExporter(export.ExporterConfig{Clock: time.Now})
	if err != nil {
		return err
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var runner *scheduler.Runner
	if appConfig.SyncEnabled {
		runner, err = buildSyncRunner(signalCtx, appConfig, storage, logger)
		if err != nil {
			return err
		}

		if appConfig.SyncUser != "" {
			cron, err := scheduler.NewScheduler(runner, logger)
			if err != nil {
				return err
			}
			if _, err := cron.ScheduleUser(appConfig.SyncUser, appConfig.SyncInterval); err != nil {
				return err
			}
			cron.Start()
			defer cron.Stop()

			// First pass at startup; the cron takes over afterwards.
			go func() {
				runCtx, cancel := context.WithTimeout(signalCtx, appConfig.SyncInterval)
				defer cancel()
				if _, err := runner.RunOnce(runCtx, appConfig.SyncUser, time.Now().Year()); err != nil && !errors.Is(err, scheduler.ErrStaleRun) {
					logger.Warn("startup sync failed", zap.Error(err))
				}
			}()
		}
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		TokenManager: tokenManager,
		Store:        storage,
		Runner:       runner,
		Exporter:     exporter,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func buildSyncRunner(ctx context.Context, appConfig config.AppConfig, storage *store.Service, logger *zap.Logger) (*scheduler.Runner, error) {
	calendarService, err := remote.NewCalendarService(ctx, option.WithCredentialsFile(appConfig.GoogleCredentials))
	if err != nil {
		return nil, err
	}
	client, err := remote.NewClient(remote.ClientConfig{Service: calendarService, Logger: logger})
	if err != nil {
		return nil, err
	}
	engine, err := sync.NewEngine(sync.EngineConfig{
		Clock:      time.Now,
		IDProvider: event.NewUUIDProvider(),
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	return scheduler.NewRunner(scheduler.RunnerConfig{
		Store:   storage,
		Engine:  engine,
		Fetcher: client,
		Clock:   time.Now,
		Logger:  logger,
	})
}
