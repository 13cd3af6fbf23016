package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"maestro/internal/assetcache"
	"maestro/internal/config"
	"maestro/internal/ipc"
	"maestro/internal/logging"
	"maestro/internal/services/portal"
	"maestro/internal/session"
)

type commandContext struct {
	socketFlag *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(socketFlag, configFlag *string) *commandContext {
	return &commandContext{
		socketFlag: socketFlag,
		configFlag: configFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) socketPath() string {
	if c.socketFlag != nil && strings.TrimSpace(*c.socketFlag) != "" {
		return *c.socketFlag
	}
	if cfg := c.configValue(); cfg != nil {
		return cfg.SocketPath()
	}
	return filepath.Join(os.TempDir(), "maestro.sock")
}

// openStore opens the session database. Callers own the returned store
// and must close it.
func (c *commandContext) openStore() (*session.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return session.Open(cfg)
}

// portalClient builds a portal client whose bearer token tracks the
// stored session, so a re-login mid-process is picked up on the next
// request.
func (c *commandContext) portalClient(store *session.Store) (*portal.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return portal.New(cfg.Portal.BaseURL, cfg.RequestTimeout(), portal.WithTokenSource(func() string {
		sess, err := store.Current(context.Background())
		if err != nil || sess == nil {
			return ""
		}
		return sess.Token
	}))
}

// requireSession loads the stored session and fails with a login hint
// when no credentials are present.
func (c *commandContext) requireSession(ctx context.Context, store *session.Store) (*session.Session, error) {
	sess, err := store.Current(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.LoggedIn() {
		return nil, errors.New("not logged in; run `maestro login` first")
	}
	return sess, nil
}

// withSession is the common open-store/require-login preamble for
// commands that talk to the backend.
func (c *commandContext) withSession(ctx context.Context, fn func(store *session.Store, sess *session.Session, client *portal.Client) error) error {
	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sess, err := c.requireSession(ctx, store)
	if err != nil {
		return err
	}
	client, err := c.portalClient(store)
	if err != nil {
		return err
	}
	return fn(store, sess, client)
}

// assetCache builds an asset cache bound to the portal client; the
// snapshot path comes from the loaded config so CLI invocations warm
// from the daemon's snapshots.
func (c *commandContext) assetCache(client *portal.Client) *assetcache.Cache {
	return assetcache.NewFromConfig(client, c.configValue(), cliLogger())
}

// resolveAssetID prefers an explicit flag over the session's current
// asset pointer.
func resolveAssetID(flag string, sess *session.Session) (string, error) {
	if id := strings.TrimSpace(flag); id != "" {
		return id, nil
	}
	if sess != nil && sess.CurrentAssetID != "" {
		return sess.CurrentAssetID, nil
	}
	return "", errors.New("no asset selected; pass --asset or run `maestro setup upload` first")
}

func (c *commandContext) withClient(fn func(*ipc.Client) error) error {
	client, err := c.dialClient()
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

func (c *commandContext) dialClient() (*ipc.Client, error) {
	socket := c.socketPath()
	client, err := ipc.Dial(socket)
	if err != nil {
		return nil, wrapDialError(err, socket)
	}
	return client, nil
}

func wrapDialError(err error, socket string) error {
	switch {
	case errors.Is(err, syscall.ENOENT) || os.IsNotExist(err):
		return fmt.Errorf("connect to daemon: socket %s not found; start the daemon with `maestro start`", socket)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to daemon: socket %s refused the connection; verify the daemon is running", socket)
	default:
		return fmt.Errorf("connect to daemon: %w", err)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// cliLogger returns a logger for CLI-side components; command output
// goes to stdout, so internals stay quiet.
func cliLogger() *slog.Logger {
	return logging.NewNop()
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
