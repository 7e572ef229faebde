package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/kumpulhq/kumpul-server/internal/auth"
	"github.com/kumpulhq/kumpul-server/internal/config"
	"github.com/kumpulhq/kumpul-server/internal/core"
	"github.com/kumpulhq/kumpul-server/internal/media"
	"github.com/kumpulhq/kumpul-server/internal/media/janus"
	"github.com/kumpulhq/kumpul-server/internal/media/livekit"
	"github.com/kumpulhq/kumpul-server/internal/store"
	"github.com/kumpulhq/kumpul-server/internal/store/sqlite"
	transporthttp "github.com/kumpulhq/kumpul-server/internal/transport/http"
)

// App wires together storage, the relay hub, and the HTTP transport.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:     []byte(cfg.JWTSecret),
		Issuer:     cfg.JWTIssuer,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}
	authService := auth.NewService(st, jwtConfig)

	engine, err := mediaEngine(cfg.Media, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	hub := core.NewHub(st, logger)
	server := transporthttp.NewServer(hub, st, authService, engine, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		store:           st,
		log:             logger,
	}, nil
}

// mediaEngine selects the media backend from configuration.
func mediaEngine(cfg config.MediaConfig, logger *zerolog.Logger) (media.Engine, error) {
	switch cfg.Mode {
	case "", "none":
		logger.Info().Msg("media backend disabled")
		return media.Noop{}, nil
	case "janus":
		if cfg.JanusAdminURL == "" {
			return nil, fmt.Errorf("media mode janus requires janus_admin_url")
		}
		logger.Info().Str("admin_url", cfg.JanusAdminURL).Msg("using janus media backend")
		return janus.New(cfg.JanusAdminURL, cfg.JanusAdminSecret), nil
	case "livekit":
		if cfg.LiveKitAPIKey == "" || cfg.LiveKitAPISecret == "" {
			return nil, fmt.Errorf("media mode livekit requires api key and secret")
		}
		logger.Info().Str("url", cfg.LiveKitURL).Msg("using livekit media backend")
		return livekit.New(cfg.LiveKitAPIKey, cfg.LiveKitAPISecret, cfg.LiveKitURL), nil
	default:
		return nil, fmt.Errorf("unknown media mode %q", cfg.Mode)
	}
}

// Run starts the hub and the HTTP server, blocking until the context is
// cancelled or the server fails.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go a.hub.Run(ctx)

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
