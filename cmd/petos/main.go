package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/petos-app/petos/internal/admin"
	"github.com/petos-app/petos/internal/caption"
	"github.com/petos-app/petos/internal/config"
	"github.com/petos-app/petos/internal/database"
	"github.com/petos-app/petos/internal/identity"
	"github.com/petos-app/petos/internal/polaroid"
	"github.com/petos-app/petos/internal/repository"
	"github.com/petos-app/petos/internal/service"
	"github.com/petos-app/petos/internal/storage"
	"github.com/petos-app/petos/internal/web"
	"github.com/petos-app/petos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logr := logger.New()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	usageRepo := repository.NewUsageRepository(db)
	codeRepo := repository.NewAccessCodeRepository(db)

	uploader, err := storage.NewUploader(storage.Config{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicBaseURL,
		UsePathStyle:  cfg.S3UsePathStyle,
		Prefix:        cfg.S3Prefix,
	})
	if err != nil {
		log.Fatalf("storage uploader: %v", err)
	}

	sessions := identity.NewStore(cfg.SessionSecret)
	compositor := polaroid.NewCompositor(cfg.AssetsDir, logr)
	captions := caption.NewGenerator(cfg, logr)

	metering := service.NewMeteringService(cfg, logr, usageRepo)
	access := service.NewAccessService(codeRepo)
	generation := service.NewGenerationService(logr, captions, compositor, uploader, usageRepo)

	webServer := web.NewServer(cfg, logr, sessions, metering, access, generation)

	adminServer := admin.NewServer(cfg.AdminListenAddr, cfg.AdminUsername, cfg.AdminPassword, logr, codeRepo, usageRepo)
	go func() {
		if err := adminServer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logr.Error("admin server stopped", "err", err)
		}
	}()

	if err := webServer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logr.Error("web server stopped", "err", err)
	}
}
