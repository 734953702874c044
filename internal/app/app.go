// Package app wires configuration, logging, storage, the upstream client,
// the tracker, and the chat transport into one runnable unit.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"rifttracker/internal/bot"
	"rifttracker/internal/config"
	"rifttracker/internal/notify"
	"rifttracker/internal/registry"
	"rifttracker/internal/riot"
	"rifttracker/internal/tracker"
	"rifttracker/internal/transport"
	"rifttracker/internal/transport/telegram"
	"rifttracker/pkg/logx"
)

type App struct {
	cfgm *config.Manager
	logs *logx.Service
	log  logx.Logger

	store   registry.Store
	client  *riot.Client
	catalog *riot.Catalog
	adapter transport.Adapter
	tracker *tracker.Tracker
	router  *bot.Router

	updates chan transport.Update
	cancel  context.CancelFunc
	trackerEnabled bool
}

func New(cfgPath string, secrets config.Secrets) (*App, error) {
	cfgm := config.NewManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))
	cfgm.SetLogger(log.With(logx.String("comp", "config")))

	pollTimeout, err := config.DurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout, 10*time.Second)
	if err != nil {
		return nil, err
	}
	adapter, err := telegram.New(telegram.Config{
		Token:       secrets.TelegramToken,
		PollTimeout: pollTimeout,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		return nil, err
	}

	storeCfg, err := mapStorageConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := registry.Open(storeCfg, log.With(logx.String("comp", "registry")))
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("storage.driver %q disables persistence; the tracker requires it", cfg.Storage.Driver)
	}
	log.Info("registry opened", logx.String("driver", storeCfg.Driver))

	riotCfg, err := mapRiotConfig(cfg, secrets.RiotAPIKey)
	if err != nil {
		return nil, err
	}
	client := riot.NewClient(riotCfg, log.With(logx.String("comp", "riot")))
	catalog := riot.NewCatalog(client, log.With(logx.String("comp", "catalog")))

	dispatcher := notify.NewChatDispatcher(adapter,
		transport.ChatTarget{ChatID: cfg.Telegram.ChatID, ThreadID: cfg.Telegram.ThreadID},
		catalog, riotCfg.Region, log.With(logx.String("comp", "notify")))

	interval, err := config.DurationField("tracker.interval", cfg.Tracker.Interval, 5*time.Minute)
	if err != nil {
		return nil, err
	}
	tr := tracker.New(tracker.Config{
		Interval:       interval,
		DefaultAccount: cfg.Tracker.DefaultAccount,
	}, client, store, dispatcher, log.With(logx.String("comp", "tracker")))

	router := bot.NewRouter(adapter, log.With(logx.String("comp", "bot")))
	bot.NewCommands(tr, client, catalog, riotCfg.Region).RegisterAll(router)

	return &App{
		cfgm:           cfgm,
		logs:           logSvc,
		log:            log,
		store:          store,
		client:         client,
		catalog:        catalog,
		adapter:        adapter,
		tracker:        tr,
		router:         router,
		updates:        make(chan transport.Update, 128),
		trackerEnabled: cfg.Tracker.Enabled,
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	if err := a.adapter.Start(runCtx, a.updates); err != nil {
		cancel()
		return err
	}
	go a.router.Run(runCtx, a.updates)

	if err := a.adapter.SetCommands(runCtx, a.router.MenuCommands()); err != nil {
		a.log.Warn("command menu update failed", logx.Err(err))
	}

	// Warm the champion catalog so the first announcement has icons.
	go a.catalog.Refresh(runCtx)

	if a.trackerEnabled {
		// Give seeded placeholder entries a chance before the first cycle.
		go func() {
			if fixed, err := a.tracker.Reconcile(runCtx); err != nil {
				a.log.Warn("reconcile failed", logx.Err(err))
			} else if fixed > 0 {
				a.log.Info("accounts reconciled", logx.Int("count", fixed))
			}
		}()
		if err := a.tracker.Start(runCtx); err != nil {
			cancel()
			return err
		}
	} else {
		a.log.Warn("tracker disabled by config, commands only")
	}

	// Config hot reload: logging level/sinks and poll cadence.
	go a.watchConfig(runCtx)

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		a.log.Debug("sd_notify failed", logx.Err(err))
	} else if sent {
		a.log.Debug("sd_notify ready sent")
	}

	a.log.Info("started")
	return nil
}

func (a *App) watchConfig(ctx context.Context) {
	sub := a.cfgm.Subscribe(1)
	defer a.cfgm.Unsubscribe(sub)

	go func() {
		if err := a.cfgm.Watch(ctx); err != nil && ctx.Err() == nil {
			a.log.Warn("config watch stopped", logx.Err(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-sub:
			if !ok {
				return
			}
			a.applyConfig(ctx, cfg)
		}
	}
}

// applyConfig applies the reloadable subset of a new config. Changes to
// storage, credentials, or upstream routing require a restart.
func (a *App) applyConfig(ctx context.Context, cfg *config.Config) {
	a.logs.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	interval, err := config.DurationField("tracker.interval", cfg.Tracker.Interval, 5*time.Minute)
	if err != nil {
		a.log.Warn("reload rejected tracker.interval", logx.Err(err))
	} else {
		a.tracker.SetInterval(ctx, interval)
	}

	a.log.Info("config reloaded")
}

func (a *App) Stop(ctx context.Context) error {
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)

	if a.cancel != nil {
		a.cancel()
	}
	a.tracker.Stop()
	if err := a.adapter.Stop(ctx); err != nil {
		a.log.Warn("adapter stop failed", logx.Err(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("registry close failed", logx.Err(err))
	}
	a.log.Info("stopped")
	return a.logs.Close()
}
