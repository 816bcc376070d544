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

	"rfpdesk/internal/analysis"
	"rfpdesk/internal/auth"
	"rfpdesk/internal/db"
	"rfpdesk/internal/extract"
	"rfpdesk/internal/ocr"
	"rfpdesk/internal/pipeline"
	"rfpdesk/internal/server"
	"rfpdesk/internal/storage"
	"rfpdesk/internal/store"
	"rfpdesk/pkg/types"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	documentsRepo := store.NewDocumentRepository(pool)
	analysesRepo := store.NewAnalysisRepository(pool)
	chatRepo := store.NewChatRepository(pool)

	objects, err := buildObjectStore(ctx, config)
	if err != nil {
		return err
	}

	authClient := auth.NewClient(config.SupabaseProjectID, config.SupabaseServiceKey)

	ocrClient := ocr.NewClient(ocr.Config{
		APIKey:  config.MistralAPIKey,
		BaseURL: config.MistralBaseURL,
	}, logger)

	extractor := extract.NewSelector(ocrClient, logger)

	analyzer := analysis.NewClient(analysis.Config{
		APIKey:  config.MistralAPIKey,
		BaseURL: config.MistralBaseURL,
		Model:   config.MistralModel,
	}, logger)

	pipe := pipeline.New(
		pipeline.Config{MaxUploadBytes: config.MaxUploadBytes},
		objects,
		documentsRepo,
		analysesRepo,
		extractor,
		analyzer,
		logger,
	)

	runs := pipeline.NewRegistry()

	jwkCache, err := jwk.NewCache(context.Background(), httprc.NewClient())
	if err != nil {
		return fmt.Errorf("failed to initilaize jwk cache: %w", err)
	}

	err = jwkCache.Register(context.Background(), config.SupabaseJWKSURL)
	if err != nil {
		return fmt.Errorf("failed to register supabase jwk with cache: %w", err)
	}

	srv, err := server.New(
		config,
		logger,
		authClient,
		documentsRepo,
		analysesRepo,
		chatRepo,
		objects,
		pipe,
		runs,
		analyzer,
		jwkCache,
		config.SupabaseJWKSURL,
	)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

func buildObjectStore(ctx context.Context, config *types.Config) (storage.ObjectStore, error) {
	switch config.StorageBackend {
	case "supabase", "":
		return storage.NewSupabaseStorage(config.SupabaseProjectID, config.SupabaseServiceKey, config.StorageBucketName), nil
	case "s3":
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Storage(awsConfig, config.StorageBucketName, config.StorageS3Endpoint), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", config.StorageBackend)
	}
}
