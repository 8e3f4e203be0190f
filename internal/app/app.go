package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/snackcounter/internal/config"
	"github.com/abrezinsky/snackcounter/internal/handlers"
	"github.com/abrezinsky/snackcounter/internal/logger"
	"github.com/abrezinsky/snackcounter/internal/metrics"
	"github.com/abrezinsky/snackcounter/internal/repository"
	"github.com/abrezinsky/snackcounter/internal/services"
	"github.com/abrezinsky/snackcounter/internal/uploads"
	"github.com/abrezinsky/snackcounter/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

// App holds all application dependencies
type App struct {
	cfg       config.Config
	log       logger.Logger
	handlers  *handlers.Handlers
	store     repository.Store
	files     uploads.Store
	hub       *websocket.Hub
	cancelHub context.CancelFunc
	menuURL   string
}

// New creates and initializes a new application instance from cfg
func New(ctx context.Context, log logger.Logger, cfg config.Config) (*App, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	files, assets, err := openUploads(ctx, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	menuURL := lanURL(cfg.MenuURL, realNetworkProvider{})

	// Initialize services
	snackService := services.NewSnackService(log, store, files)
	menuService := services.NewMenuService(menuURL)
	m := metrics.New()
	snackService.SetRecorder(m)

	// Initialize WebSocket hub with DI
	hubCtx, cancel := context.WithCancel(context.Background())
	hub := websocket.New(log, snackService)
	hub.Start(hubCtx)
	snackService.SetBroadcaster(hub)
	m.RegisterGauge("websocket_clients", "Connected websocket clients.", func() float64 {
		return float64(hub.ClientCount())
	})

	h := handlers.New(snackService, menuService, files, hub, log)
	h.Assets = assets
	h.Metrics = m
	h.Health = store
	h.MaxUploadBytes = cfg.MaxUploadBytes
	h.RequestTimeout = cfg.RequestTimeout

	return &App{
		cfg:       cfg,
		log:       log,
		handlers:  h,
		store:     store,
		files:     files,
		hub:       hub,
		cancelHub: cancel,
		menuURL:   menuURL,
	}, nil
}

func openStore(ctx context.Context, cfg config.Config) (repository.Store, error) {
	switch cfg.StoreDriver {
	case "", config.StoreSQLite:
		repo, err := repository.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return repo, nil
	case config.StoreMongo:
		repo, err := repository.NewMongo(ctx, repository.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
			Timeout:  cfg.MongoTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// openUploads returns the blob store and, for disk uploads, the handler serving them
func openUploads(ctx context.Context, cfg config.Config) (uploads.Store, http.Handler, error) {
	switch cfg.UploadDriver {
	case "", config.UploadDisk:
		disk, err := uploads.NewDiskStore(cfg.UploadDir)
		if err != nil {
			return nil, nil, err
		}
		return disk, disk.Handler(), nil
	case config.UploadS3:
		s3, err := uploads.NewS3Store(ctx, uploads.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			PublicBaseURL:   cfg.S3PublicBaseURL,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		return s3, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown upload driver %q", cfg.UploadDriver)
	}
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// MenuURL returns the address encoded in the counter QR code
func (a *App) MenuURL() string {
	return a.menuURL
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancelHub != nil {
		a.cancelHub()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("Failed to close store", "error", err)
		}
	}
}

// Run serves HTTP until ctx is canceled, then shuts the server down gracefully
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(a.cfg.Port),
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.log.Info("Server starting", "addr", srv.Addr, "store", a.cfg.StoreDriver, "uploads", a.cfg.UploadDriver)
	a.log.Info("Menu URL", "url", a.menuURL)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		a.log.Info("Server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
