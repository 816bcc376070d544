package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"rfpdesk/internal/analysis"
	"rfpdesk/internal/db"
	"rfpdesk/internal/extract"
	"rfpdesk/internal/ocr"
	"rfpdesk/internal/pipeline"
	"rfpdesk/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// processCommand runs the full intake pipeline on a local file without the
// HTTP server. Useful for trying out a document or debugging extraction.
var processCommand = &cli.Command{
	Name:      "process",
	Usage:     "Run the intake pipeline on a local file",
	ArgsUsage: "<path-to-file>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "user",
			Usage: "User ID to attribute the document to",
			Value: "cli",
		},
	},
	Action: func(c *cli.Context) error {
		path := c.Args().First()
		if path == "" {
			return fmt.Errorf("provide a file path")
		}

		logger := logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})

		config, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, config)
		if err != nil {
			return err
		}
		defer pool.Close()

		documentsRepo := store.NewDocumentRepository(pool)
		analysesRepo := store.NewAnalysisRepository(pool)

		objects, err := buildObjectStore(ctx, config)
		if err != nil {
			return err
		}

		ocrClient := ocr.NewClient(ocr.Config{
			APIKey:  config.MistralAPIKey,
			BaseURL: config.MistralBaseURL,
		}, logger)

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
			extract.NewSelector(ocrClient, logger),
			analyzer,
			logger,
		)

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read file: %w", err)
		}

		fileType := mime.TypeByExtension(filepath.Ext(path))

		up := pipeline.Upload{
			UserID:   c.String("user"),
			FileName: filepath.Base(path),
			FileType: fileType,
			Size:     int64(len(data)),
			Data:     data,
		}

		documentID, err := pipe.Run(ctx, up, func(progress int) {
			label, _ := pipeline.Describe(progress)
			logger.WithFields(logrus.Fields{"progress": progress, "phase": label}).Info("pipeline progress")
		})
		if err != nil {
			return err
		}

		doc, err := documentsRepo.Document(ctx, documentID)
		if err != nil {
			return fmt.Errorf("fetch document: %w", err)
		}

		record, err := analysesRepo.AnalysisByDocumentID(ctx, documentID)
		if err != nil {
			return fmt.Errorf("fetch analysis: %w", err)
		}

		pp.Println(doc)
		pp.Println(record)

		return nil
	},
}
