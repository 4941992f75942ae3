package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drawsheet/internal/config"
	"drawsheet/internal/handler"
	"drawsheet/internal/parser"
	_ "drawsheet/internal/parser/claude"
	_ "drawsheet/internal/parser/gemini"
	_ "drawsheet/internal/parser/openai"
	_ "drawsheet/internal/parser/openrouter"
	"drawsheet/internal/port"
	"drawsheet/internal/repository/postgres"
	"drawsheet/internal/router"
	"drawsheet/internal/schema"
	"drawsheet/internal/service"
	"drawsheet/internal/storage/noop"
	s3storage "drawsheet/internal/storage/s3"
)

// @title Drawsheet API
// @version 1.0
// @description Extracts engineering parameters from drawing images into a fixed datasheet schema.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	sessionRepo := postgres.NewSessionRepo(db)
	extractionRepo := postgres.NewExtractionRepo(db)

	// Initialize storage
	var storage port.ObjectStorage
	switch cfg.Storage.Provider {
	case "s3":
		archive, archiveErr := s3storage.NewArchive(context.Background(), &cfg.S3)
		if archiveErr != nil {
			return fmt.Errorf("failed to initialize S3 archive: %w", archiveErr)
		}
		storage = archive
	case "", "noop":
		storage = noop.New()
	default:
		return fmt.Errorf("unknown storage provider: %s", cfg.Storage.Provider)
	}
	archiving := cfg.Storage.Provider == "s3"

	// Initialize extraction pipeline
	s, err := schema.ByName(cfg.Extraction.Schema)
	if err != nil {
		return err
	}
	policy, err := parser.ParseMissingPolicy(cfg.Extraction.MissingPolicy)
	if err != nil {
		return err
	}
	backend, err := parser.BuildBackend(&cfg.Parser)
	if err != nil {
		return fmt.Errorf("failed to initialize vision backend: %w", err)
	}
	opts := parser.NormalizeOptions{Missing: policy, StripUnits: cfg.Extraction.StripUnits}
	extractor := parser.NewExtractor(backend, s, opts)

	// Initialize services
	sessionSvc := service.NewSessionService(sessionRepo, extractionRepo, cfg.Session)
	extractionSvc := service.NewExtractionService(extractor, sessionRepo, extractionRepo, storage, service.ExtractionConfig{
		MaxImageBytes:   cfg.Extraction.MaxImageSizeMB << 20,
		Bucket:          cfg.S3.Bucket,
		PresignSeconds:  cfg.Extraction.PresignSeconds,
		ArchiveDrawings: archiving,
	})

	// Initialize handlers
	exporter := handler.NewExporter(cfg.Extraction.Schema, cfg.Extraction.CSVBOM)
	checks := map[string]handler.Pinger{"database": db}
	if archiving {
		checks["storage"] = handler.PingerFunc(func(ctx context.Context) error {
			return storage.Ping(ctx, cfg.S3.Bucket)
		})
	}
	r := router.Setup(sessionSvc, router.Handlers{
		Session:    handler.NewSessionHandler(sessionSvc, exporter),
		Extraction: handler.NewExtractionHandler(extractionSvc, exporter),
		Schema:     handler.NewSchemaHandler(cfg.Extraction.Schema, s, opts),
		Health:     handler.NewHealthHandler(checks),
	}, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s (schema=%s, missing=%s, storage=%s)",
			cfg.Server.Port, cfg.Extraction.Schema, policy, cfg.Storage.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		log.Printf("Received %s, shutting down", sig)
	}

	// Extractions in flight are given the write timeout to finish.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Println("Server stopped")
	return nil
}
