package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cli/browser"
	"github.com/damacus/bucket-drop/internal/config"
	"github.com/damacus/bucket-drop/internal/handlers"
	"github.com/damacus/bucket-drop/internal/logger"
	"github.com/damacus/bucket-drop/internal/metrics"
	customMiddleware "github.com/damacus/bucket-drop/internal/middleware"
	"github.com/damacus/bucket-drop/internal/renderer"
	"github.com/damacus/bucket-drop/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// shutdownTimeout bounds how long in-flight requests get to finish.
var shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(os.Stderr, "")
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(os.Stderr, cfg.LogLevel)

	if cfg.EnvFileErr != nil {
		logger.Warn().Err(cfg.EnvFileErr).Str("path", cfg.EnvPath).Msg("settings file not loaded")
	}
	var credErr *services.CredentialsError
	if err := cfg.Credentials.Validate(); errors.As(err, &credErr) {
		logger.Warn().Str("detail", credErr.Detail()).Msg("credentials incomplete, uploads will fail until they are set")
	}

	factory, err := services.NewStoreFactory(cfg.Backend, services.StoreOptions{
		UseSSL:       cfg.UseSSL,
		UsePathStyle: cfg.UsePathStyle,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("storage backend")
	}
	store, err := factory.NewStore(cfg.Credentials)
	if err != nil {
		logger.Fatal().Err(err).Str("endpoint", cfg.Credentials.Endpoint).Msg("failed to create storage client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := newServer(serverDeps{
		picker:   services.DialogPicker{Title: "Select a file to upload"},
		previews: services.NewPreviewResolver(cfg.IconBaseURL, cfg.IconTimeout),
		uploader: services.NewUploader(store, cfg.Credentials, cfg.UploadTimeout),
		quit:     stop,
	})

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.ListenAddr).Msg("failed to listen")
	}

	if err := run(ctx, e, ln, cfg.OpenBrowser); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
	logger.Info().Msg("bye")
}

type serverDeps struct {
	picker   services.FilePicker
	previews handlers.Previewer
	uploader handlers.ObjectUploader
	quit     func()
}

func newServer(deps serverDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Handlers
	uploadHandler := handlers.NewUploadHandler(deps.picker, deps.previews, deps.uploader)
	appHandler := handlers.NewAppHandler(deps.quit)

	// Middleware
	e.Use(middleware.Recover())
	e.Use(customMiddleware.RequestID())
	e.Use(customMiddleware.ContextLogger())
	e.Use(customMiddleware.RequestLogger())
	e.Use(customMiddleware.LocalOnly())
	e.Use(customMiddleware.SecurityHeaders())
	e.Use(customMiddleware.CSRF())

	// Template Renderer
	e.Renderer = renderer.New()

	e.GET("/health", appHandler.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	e.GET("/", uploadHandler.Index)
	e.POST("/form", uploadHandler.FormControls)
	e.POST("/upload", uploadHandler.Upload)
	e.POST("/quit", appHandler.Quit)

	return e
}

// run serves e on ln until ctx is done, then shuts down gracefully.
func run(ctx context.Context, e *echo.Echo, ln net.Listener, openBrowser bool) error {
	e.Listener = ln

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve: %w", err)
		}
	}()

	url := "http://" + ln.Addr().String() + "/"
	logger.Info().Str("url", url).Msg("uploader ready")
	if openBrowser {
		if err := browser.OpenURL(url); err != nil {
			logger.Warn().Err(err).Str("url", url).Msg("could not open a browser, visit the url manually")
		}
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := e.Shutdown(shutdownCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		// A request is still waiting on the file dialog or the provider.
		logger.Warn().Dur("timeout", shutdownTimeout).Msg("requests still in flight, closing connections")
		if err := e.Close(); err != nil {
			return fmt.Errorf("close: %w", err)
		}
		return nil
	}
	return err
}
