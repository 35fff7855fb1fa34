package main

import (
	"context"
	"flag"
	"log"

	"github.com/notifid/logextractor/internal/api/rest"
	"github.com/notifid/logextractor/internal/infrastructure/archive"
	"github.com/notifid/logextractor/internal/infrastructure/config"
	"github.com/notifid/logextractor/internal/infrastructure/identity"
	"github.com/notifid/logextractor/internal/infrastructure/logstore"
	"github.com/notifid/logextractor/internal/infrastructure/notification"
	"github.com/notifid/logextractor/internal/infrastructure/telemetry"
	"github.com/notifid/logextractor/internal/service/extraction"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel)

	ctx := context.Background()
	provider, err := telemetry.Initialize(ctx, &telemetry.Config{
		ServiceName:    "logextractor-api",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   cfg.Telemetry.SamplingRate,
		ExportTimeout:  cfg.Telemetry.ExportTimeout,
		BatchTimeout:   cfg.Telemetry.BatchTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(ctx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()

	store := logstore.NewClient(logstore.Config{
		URL:      cfg.LogStore.URL,
		Username: cfg.LogStore.Username,
		Password: cfg.LogStore.Password,
		Timeout:  cfg.LogStore.Timeout,
	}, logger)

	notifs := notification.NewClient(notification.Config{
		BaseURL:        cfg.Notification.BaseURL,
		SearchPageSize: cfg.Notification.SearchPageSize,
		Timeout:        cfg.Notification.Timeout,
	}, logger)

	resolver := identity.NewClient(identity.Config{
		EnsureRecipientURL: cfg.Identity.EnsureRecipientURL,
		TaxIDLookupURL:     cfg.Identity.TaxIDLookupURL,
		OrgLookupURL:       cfg.Identity.OrgLookupURL,
		EncodedIpaURL:      cfg.Identity.EncodedIpaURL,
		Timeout:            cfg.Identity.Timeout,
	}, logger)

	assembler := archive.NewAssembler(cfg.Archive.WorkDir, logger)

	svc := extraction.NewService(extraction.Config{
		Index:          cfg.LogStore.Index,
		TimestampField: cfg.LogStore.TimestampField,
		LogFileName:    cfg.Archive.LogFileName,
		CSVPageSize:    cfg.Archive.CSVPageSize,
	}, store, notifs, resolver, assembler, logger)

	server := rest.NewServer(cfg, svc, logger)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
