package app

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/functionland/blox-wizard/internal/account"
	"github.com/functionland/blox-wizard/internal/chain"
	"github.com/functionland/blox-wizard/internal/config"
	"github.com/functionland/blox-wizard/internal/container"
	"github.com/functionland/blox-wizard/internal/docker"
	"github.com/functionland/blox-wizard/internal/gateway"
	"github.com/functionland/blox-wizard/internal/node"
	"github.com/functionland/blox-wizard/internal/onboarding"
	"github.com/functionland/blox-wizard/internal/onboarding/repo"
	"github.com/functionland/blox-wizard/internal/peer"
	"github.com/functionland/blox-wizard/internal/pool"
	"github.com/functionland/blox-wizard/internal/ratelimit"
	"github.com/functionland/blox-wizard/internal/router"
	"github.com/functionland/blox-wizard/internal/session"
	"github.com/functionland/blox-wizard/internal/shell"
	"github.com/functionland/blox-wizard/internal/webui"
)

// Service is a background component with a start/stop lifecycle.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
}

// App is the wired wizard: routes plus background services.
type App struct {
	Handler    http.Handler
	Onboarding *onboarding.Service
	Accounts   *account.Service
	Monitor    *pool.Monitor
	services   []Service
	logger     *zap.SugaredLogger
}

type options struct {
	runner shell.Runner
	repo   repo.Repository
	client *http.Client
}

type Option func(*options)

// WithRunner replaces the process runner used for docker and docker-exec calls.
func WithRunner(r shell.Runner) Option { return func(o *options) { o.runner = r } }

// WithRepository replaces the onboarding state store.
func WithRepository(r repo.Repository) Option { return func(o *options) { o.repo = r } }

// WithHTTPClient replaces the client used by the http backend transport.
func WithHTTPClient(c *http.Client) Option { return func(o *options) { o.client = c } }

// NewRepository opens the configured state store.
func NewRepository(cfg *config.Config) (repo.Repository, error) {
	return repo.NewFileRepo(cfg.State.File)
}

// NewBackend builds the gateway client for the configured transport.
func NewBackend(cfg *config.Config, runner shell.Runner, client *http.Client, logger *zap.SugaredLogger) *gateway.Client {
	var t gateway.Transport
	switch cfg.Backend.Transport {
	case "docker-exec":
		t = gateway.NewDockerExecTransport(runner, cfg.Docker.Binary, cfg.Backend.Container, cfg.Backend.URL)
	default:
		t = gateway.NewHTTPTransport(cfg.Backend.URL, client)
	}
	return gateway.NewClient(t, cfg.Backend.Timeout, logger.Named("gateway"))
}

func New(cfg *config.Config, logger *zap.SugaredLogger, opts ...Option) (*App, error) {
	o := options{runner: shell.ExecRunner{}, client: &http.Client{}}
	for _, fn := range opts {
		fn(&o)
	}
	if o.repo == nil {
		r, err := NewRepository(cfg)
		if err != nil {
			return nil, fmt.Errorf("open state store: %w", err)
		}
		o.repo = r
	}

	backend := NewBackend(cfg, o.runner, o.client, logger)
	pools := chain.NewClient(cfg.Chain.URL, cfg.Chain.Timeout)
	allow := container.NewAllowList(cfg.Docker.Containers...)
	ctl := container.NewDocker(o.runner, cfg.Docker.Binary, cfg.Docker.Timeout, cfg.Docker.LogTail, allow, logger.Named("docker"))

	progress := onboarding.NewService(o.repo)
	accounts := account.NewService(backend, progress, logger.Named("account"))

	wf := pool.NewWorkflow(backend, pools, ctl, pool.Options{
		RestartSet:      cfg.Docker.RestartSet,
		RestartTimeout:  cfg.Docker.Timeout,
		ConfirmAttempts: cfg.Pool.ConfirmAttempts,
		ConfirmInterval: cfg.Pool.ConfirmInterval,
	}, logger.Named("pool"))
	monitor := pool.NewMonitor(wf, accounts, cfg.Pool.PollInterval, logger.Named("pool"))

	sessions, err := session.NewManager(cfg.Session.Secret, cfg.Session.TTL)
	if err != nil {
		return nil, err
	}
	ui, err := webui.NewHandler(progress, accounts, sessions, logger.Named("webui"))
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}

	handler := router.RegisterRoutes(router.Deps{
		Logger:     logger.Named("http"),
		Sessions:   sessions,
		SessionReq: cfg.Session.Required,
		Limiter:    ratelimit.New(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst),
		MaxWait:    cfg.RateLimit.MaxWait,

		Account:    account.NewHandler(accounts, logger),
		Peer:       peer.NewHandler(backend, progress, logger),
		Node:       node.NewHandler(backend, logger),
		Docker:     docker.NewHandler(ctl, allow.Names(), logger),
		Pool:       pool.NewHandler(wf, monitor, accounts, pools, progress, logger),
		Onboarding: onboarding.NewHandler(progress, logger),
		Session:    session.NewHandler(sessions, logger),
		WebUI:      ui,
	})

	return &App{
		Handler:    handler,
		Onboarding: progress,
		Accounts:   accounts,
		Monitor:    monitor,
		services:   []Service{monitor},
		logger:     logger,
	}, nil
}

// Start launches the background services.
func (a *App) Start(ctx context.Context) error {
	for _, s := range a.services {
		if err := s.Start(ctx); err != nil {
			return fmt.Errorf("start %s: %w", s.Name(), err)
		}
		a.logger.Infow("service started", "service", s.Name())
	}
	return nil
}

// Stop stops the background services in reverse order.
func (a *App) Stop() {
	for i := len(a.services) - 1; i >= 0; i-- {
		s := a.services[i]
		if err := s.Stop(); err != nil {
			a.logger.Warnw("service stop failed", "service", s.Name(), "err", err)
			continue
		}
		a.logger.Infow("service stopped", "service", s.Name())
	}
}
