package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"maestro/internal/assetcache"
	"maestro/internal/config"
	"maestro/internal/daemon"
	"maestro/internal/ipc"
	"maestro/internal/jobs"
	"maestro/internal/logging"
	"maestro/internal/notifications"
	"maestro/internal/services/portal"
	"maestro/internal/session"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := session.Open(cfg)
	if err != nil {
		logger.Error("open session store", logging.Error(err))
		return
	}
	defer store.Close()

	client, err := portal.New(cfg.Portal.BaseURL, cfg.RequestTimeout(), portal.WithTokenSource(func() string {
		sess, err := store.Current(context.Background())
		if err != nil || sess == nil {
			return ""
		}
		return sess.Token
	}))
	if err != nil {
		logger.Error("create portal client", logging.Error(err))
		return
	}

	cache := assetcache.NewFromConfig(client, cfg, logger)
	watchers := jobs.NewManager(client, jobs.OptionsFromConfig(cfg), logger)
	notifier := notifications.NewService(cfg)

	d, err := daemon.New(cfg, store, client, cache, watchers, notifier, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	server, err := ipc.NewServer(ctx, cfg.SocketPath(), d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		return
	}
	defer server.Close()
	server.Serve()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	// An IPC stop closes the daemon's Done channel; a signal cancels
	// the context. Either one terminates the process.
	select {
	case <-ctx.Done():
	case <-d.Done():
	}
	logger.Info("maestrod shutting down")
}
