package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/julienbonastre/plaza-helpers/internal/config"
	"github.com/julienbonastre/plaza-helpers/internal/database"
	"github.com/julienbonastre/plaza-helpers/internal/handlers"
	"github.com/julienbonastre/plaza-helpers/internal/logger"
	"github.com/julienbonastre/plaza-helpers/internal/plaza"
	"github.com/julienbonastre/plaza-helpers/internal/sync"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file (default: ./config.yaml if present)")
	port := flag.String("port", "", "Server port, overrides the config")
	testMode := flag.Bool("test", false, "Use the Plaza test environment for the default credentials")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *port != "" {
		cfg.App.Port = *port
	}
	if *testMode {
		cfg.Plaza.TestMode = true
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.DefaultConfig().TimeFormat,
	})
	if err != nil {
		os.Stderr.WriteString("failed to create logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.SeedInitialData(); err != nil {
		return err
	}

	encKey, err := encryptionKey(cfg)
	if err != nil {
		if !errors.Is(err, database.ErrNoEncryptionKey) {
			return err
		}
		log.Warn("no encryption key configured, stored accounts are disabled",
			zap.String("env", database.EncryptionKeyEnv))
	}

	var defaultClient *plaza.Client
	if cfg.Plaza.PublicKey != "" {
		defaultClient, err = plaza.NewClient(plaza.Config{
			PublicKey:           cfg.Plaza.PublicKey,
			PrivateKey:          cfg.Plaza.PrivateKey,
			TestMode:            cfg.Plaza.TestMode,
			SkipSSLVerification: cfg.Plaza.SkipSSLVerification,
			BaseURL:             cfg.Plaza.BaseURL,
			Logger:              log,
		})
		if err != nil {
			return err
		}
		log.Info("default Plaza credentials loaded",
			zap.String("base_url", defaultClient.BaseURL()),
			zap.Bool("test_mode", defaultClient.IsTestMode()))
	} else {
		log.Warn("no default Plaza credentials, requests must select an account")
	}

	syncService := sync.NewService(db, log, sync.Options{
		RequestsPerMinute: cfg.Sync.RequestsPerMinute,
		MaxPages:          cfg.Sync.MaxPages,
	})
	h := handlers.NewHandler(db, syncService, handlers.Options{
		EncryptionKey: encKey,
		DefaultClient: defaultClient,
		SyncTimeout:   cfg.Sync.Timeout,
		Logger:        log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           logger.Middleware(log.Named("http"), h.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting Plaza helper", zap.String("addr", "http://localhost"+server.Addr), zap.String("env", cfg.App.Env))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// encryptionKey prefers the configured key over PLAZA_ENCRYPTION_KEY
func encryptionKey(cfg *config.Config) ([]byte, error) {
	if cfg.Database.EncryptionKey != "" {
		return database.ParseEncryptionKey(cfg.Database.EncryptionKey)
	}
	return database.GetEncryptionKey()
}
