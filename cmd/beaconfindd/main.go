// Command beaconfindd is the local file-search indexing daemon: it walks
// the configured scan directories once, then watches them for changes,
// keeping a full-text index up to date and answering queries over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/beaconfind/beaconfind/internal/classify"
	"github.com/beaconfind/beaconfind/internal/config"
	"github.com/beaconfind/beaconfind/internal/extract"
	"github.com/beaconfind/beaconfind/internal/httpapi"
	"github.com/beaconfind/beaconfind/internal/keyword"
	"github.com/beaconfind/beaconfind/internal/ledger"
	"github.com/beaconfind/beaconfind/internal/logging"
	"github.com/beaconfind/beaconfind/internal/maintainer"
	"github.com/beaconfind/beaconfind/internal/searcher"
	"github.com/beaconfind/beaconfind/internal/walker"
	"github.com/beaconfind/beaconfind/internal/watcher"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "beaconfindd: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Verbosity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "beaconfindd: failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("fatal startup error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	overrides, err := config.LoadOverrides(cfg.OverridesPath)
	if err != nil {
		return fmt.Errorf("load overrides: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	index, err := keyword.Open(filepath.Join(cfg.DataDir, "bleve"))
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer index.Close()

	pathLedger, err := ledger.Open(filepath.Join(cfg.DataDir, "paths.db"))
	if err != nil {
		return fmt.Errorf("open path ledger: %w", err)
	}
	defer pathLedger.Close()

	registry, classifier := buildRegistry(cfg, overrides, logger)
	if classifier != nil {
		defer classifier.Close()
	}

	m := maintainer.New(index, registry, logger)

	sentinelPath := filepath.Join(cfg.DataDir, "initial_processing")
	w := walker.New(cfg.ScanDirectories, registry.SupportedExtensions(), m, index, sentinelPath, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("initial walk: %w", err)
	}

	debounce := time.Duration(overrides.DebounceSeconds) * time.Second
	watchSvc := watcher.New(cfg.ScanDirectories, registry.SupportedExtensions(), m, pathLedger, debounce, overrides.CommitBatchSize, logger)
	if err := watchSvc.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watchSvc.Stop()

	srv := httpapi.New(searcher.New(index, logger), cfg.Port, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Warn("search server stopped", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)

	cancel()
	return nil
}

// buildRegistry wires every extractor, tolerating a missing or
// unusable image-classifier model: extraction keeps working for every
// other format, just without image classification. The returned
// classifier (nil if unavailable) is owned by the caller for shutdown.
func buildRegistry(cfg *config.Config, overrides config.Overrides, logger *zap.Logger) (*extract.Registry, *classify.Classifier) {
	extractors := []extract.Extractor{
		extract.NewTextExtractor(),
		extract.NewCSVExtractor(),
		extract.NewPDFExtractor(),
		extract.NewSpreadsheetExtractor(),
		extract.NewSlideshowExtractor(),
		extract.NewEXIFExtractor(),
	}

	var classifier *classify.Classifier
	if cfg.ModelPath != "" {
		c, err := classify.NewClassifier(cfg.ModelPath, overrides.WorkerPoolSize*64)
		if err != nil {
			logger.Warn("image classifier unavailable, continuing without it", zap.Error(err))
		} else {
			classifier = c
			extractors = append(extractors, extract.NewImageClassifierExtractor(classifier))
		}
	}

	registry := extract.NewRegistry(logger, extractors...)
	registry.SetPoolSize(overrides.WorkerPoolSize)
	return registry, classifier
}
