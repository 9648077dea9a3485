package root

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/lariod12/meosjourney-sub000/internal/blob"
	"github.com/lariod12/meosjourney-sub000/internal/config"
	"github.com/lariod12/meosjourney-sub000/internal/engine"
	"github.com/lariod12/meosjourney-sub000/internal/notify"
	"github.com/lariod12/meosjourney-sub000/internal/storage"
)

// app bundles everything a command needs: resolved config, the service,
// the image store, and a cleanup that closes the database and flushes logs.
type app struct {
	cfg    *config.Config
	db     *sql.DB
	svc    *engine.Service
	blobs  *blob.FileStore
	logger *zap.Logger
}

func openApp(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	path, err := storage.ResolveDBPath(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	blobDir := cfg.BlobDir
	if blobDir == "" {
		blobDir, err = blob.DefaultDir()
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	blobs, err := blob.NewFileStore(blobDir)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	var sink notify.Sink = notify.NopSink{}
	if cfg.WebhookURL != "" {
		sink = notify.NewWebhookSink(cfg.WebhookURL, logger)
	}

	svc := engine.NewService(db, engine.Options{
		AutoApprove: cfg.AutoApprove,
		GrowMaxXP:   cfg.GrowMaxXP,
		Locales:     cfg.Locales,
		Timezone:    cfg.Timezone,
		Blobs:       blobs,
		Sink:        sink,
		Logger:      logger,
	})

	cleanup := func() {
		_ = db.Close()
		_ = logger.Sync()
	}
	return &app{cfg: cfg, db: db, svc: svc, blobs: blobs, logger: logger}, cleanup, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = lvl
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
