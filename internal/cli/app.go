package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"bookkeeping/internal/api"
	"bookkeeping/internal/config"
	"bookkeeping/internal/gateway"
	"bookkeeping/internal/log"
	"bookkeeping/internal/storage"
	"bookkeeping/internal/token"
	"bookkeeping/internal/ui"
	"bookkeeping/internal/uievents"
	"bookkeeping/internal/upload"
)

// App is the fully wired data-access layer.
type App struct {
	Config   *config.Config
	Logger   *log.Logger
	Tokens   *token.Store
	Gateway  *gateway.Client
	API      *api.Client
	Uploader *upload.Uploader
	UI       ui.Surface
	// Bridge is set when AMQP_URL is configured.
	Bridge *uievents.Bridge

	closers []func() error
}

// NewApp builds every client on top of kv. When AMQP_URL is set, UI side
// effects go to the log and to the AMQP bridge; otherwise to the log only.
func NewApp(cfg *config.Config, kv storage.KV, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	app := &App{Config: cfg, Logger: logger}

	var surface ui.Surface = ui.NewLogSurface(logger)
	if cfg.AMQPURL != "" {
		bridge, err := uievents.Dial(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			return nil, fmt.Errorf("connect UI bridge: %w", err)
		}
		app.Bridge = bridge
		app.closers = append(app.closers, bridge.Close)
		surface = ui.Multi{surface, bridge}
	}
	app.UI = surface

	policy, err := gateway.PolicyByName(cfg.ErrorPolicy)
	if err != nil {
		app.Close()
		return nil, err
	}

	httpClient := &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: log.NewTransport(nil, logger),
	}

	app.Tokens = token.NewStore(kv, logger)
	app.Gateway, err = gateway.New(gateway.Config{
		BaseURL:       cfg.APIBaseURL,
		HTTPClient:    httpClient,
		Tokens:        app.Tokens,
		UI:            surface,
		ErrorPolicy:   policy,
		ToastDuration: cfg.ToastDuration,
		LoginPath:     cfg.LoginPath,
		Logger:        logger,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.API = api.New(app.Gateway)

	app.Uploader, err = upload.New(upload.Config{
		BaseURL:     cfg.APIBaseURL,
		HTTPClient:  httpClient,
		Tokens:      app.Tokens,
		UI:          surface,
		Concurrency: cfg.UploadConcurrency,
		Logger:      logger,
	})
	if err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// Close releases what NewApp opened. Storage is owned by the caller.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// ShowLoading is what a screen does before it starts a call; the gateway
// hides the indicator when the call settles.
func (a *App) ShowLoading(ctx context.Context) {
	a.UI.ShowLoading(ctx, true)
}
