package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"

	"lighter-relay/internal/alerts"
	"lighter-relay/internal/config"
	"lighter-relay/internal/lighter/rest"
	"lighter-relay/internal/lighter/ws"
	"lighter-relay/internal/market"
	"lighter-relay/internal/metrics"
	"lighter-relay/internal/relay"
	"lighter-relay/internal/state"
	"lighter-relay/internal/state/sqlite"
	"lighter-relay/internal/timescale"
	"lighter-relay/internal/webhook"

	"go.uber.org/zap"
)

type App struct {
	cfg       *config.Config
	creds     *config.Credentials
	log       *zap.Logger
	store     *sqlite.Store
	rest      *rest.Client
	stream    *market.Stream
	resolver  *market.Resolver
	manager   *relay.Manager
	submitter *relay.Submitter
	prom      *metrics.Prometheus
	alerts    *alerts.Telegram
	history   *timescale.Writer
	handler   *webhook.Handler

	paused         atomic.Bool
	operatorWarned bool
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.State.SQLitePath), 0o755); err != nil {
		return nil, err
	}
	store, err := sqlite.New(cfg.State.SQLitePath)
	if err != nil {
		return nil, err
	}

	creds := config.LoadCredentials(cfg.REST.BaseURL)
	restClient := rest.New(creds.BaseURL, cfg.REST.Timeout, log)
	resolver := market.NewResolver(restClient, log)

	var wsClient *ws.Client
	if cfg.WS.Enabled {
		wsClient = ws.New(cfg.WS.URL, cfg.WS.ReconnectDelay, cfg.WS.PingInterval, log)
	}

	m := metrics.NewNoop()
	var prom *metrics.Prometheus
	if cfg.Metrics.Enabled {
		prom = metrics.NewPrometheus()
		m = prom.Metrics
	}

	history, err := timescale.New(cfg.History, log)
	if err != nil {
		return nil, err
	}
	alertsClient := alerts.NewTelegram(cfg.Telegram, log)

	a := &App{
		cfg:       cfg,
		creds:     creds,
		log:       log,
		store:     store,
		rest:      restClient,
		stream:    market.NewStream(wsClient, resolver, log),
		resolver:  resolver,
		manager:   relay.NewManager(restClient, *creds, store, log),
		submitter: relay.NewSubmitter(log, m),
		prom:      prom,
		alerts:    alertsClient,
		history:   history,
	}
	a.handler = webhook.New(webhook.Options{
		Log:       log,
		Creds:     creds,
		Resolver:  resolver,
		Clients:   a.manager,
		Submitter: a.submitter,
		Metrics:   m,
		Store:     store,
		History:   history,
		Notifier:  alertsClient,
		Paused:    &a.paused,
	})
	return a, nil
}

func (a *App) Run(ctx context.Context) error {
	defer a.store.Close()
	defer a.history.Close()

	if paused, err := state.LoadPaused(ctx, a.store); err != nil {
		a.log.Warn("paused flag load failed", zap.Error(err))
	} else if paused {
		a.paused.Store(true)
		a.log.Info("relay starts paused")
	}

	a.history.Start(ctx)
	if a.cfg.WS.Enabled {
		if err := a.stream.Start(ctx); err != nil {
			a.log.Warn("market stream unavailable", zap.Error(err))
		}
	}
	a.startOperator(ctx)
	a.startMetricsServer(ctx)

	server := &http.Server{
		Addr:    a.cfg.Server.Address,
		Handler: a.handler.Router(),
	}
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("webhook server listening", zap.String("address", a.cfg.Server.Address))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.log.Warn("server shutdown failed", zap.Error(err))
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) startMetricsServer(ctx context.Context) {
	if a.prom == nil {
		return
	}
	mux := http.NewServeMux()
	mux.Handle(a.cfg.Metrics.Path, a.prom.Handler())
	server := &http.Server{Addr: a.cfg.Metrics.Address, Handler: mux}
	go func() {
		a.log.Info("metrics server listening", zap.String("address", a.cfg.Metrics.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Warn("metrics server failed", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
}
