package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"maestro/internal/daemonctl"
	"maestro/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the maestro daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			launched, err := daemonctl.EnsureStarted(ctx.socketPath(), exe, launchOptions(ctx), 10*time.Second)
			if err != nil {
				return err
			}
			if launched {
				fmt.Fprintln(stdout, "Daemon started")
			} else {
				fmt.Fprintln(stdout, "Daemon already running")
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the maestro daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			err := daemonctl.Stop(ctx.socketPath(), 5*time.Second)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the maestro daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			exe, err := daemonExecutable()
			if err != nil {
				return err
			}

			err = daemonctl.Stop(ctx.socketPath(), 5*time.Second)
			if err != nil && !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				return err
			}
			if err == nil {
				fmt.Fprintln(stdout, "Daemon stopped")
			}

			if _, err := daemonctl.EnsureStarted(ctx.socketPath(), exe, launchOptions(ctx), 10*time.Second); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "Daemon restarted")
			return nil
		},
	}

	daemonStatusCmd := &cobra.Command{
		Use:   "daemon-status",
		Short: "Show the daemon's internal state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Status()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Running", statusOK, fmt.Sprintf("pid %d since %s", resp.PID, resp.StartedAt), colorize))
				fmt.Fprintln(out, renderStatusLine("Logged in", boolKind(resp.LoggedIn), resp.Email, colorize))
				if resp.CurrentAssetID != "" {
					fmt.Fprintln(out, renderStatusLine("Asset", statusInfo, resp.CurrentAssetID, colorize))
				}
				if resp.WatchingJob {
					fmt.Fprintln(out, renderStatusLine("Watching job", statusInfo, resp.CurrentJobID, colorize))
				}
				if resp.LastError != "" {
					fmt.Fprintln(out, renderStatusLine("Last error", statusWarn, resp.LastError, colorize))
				}
				return nil
			})
		},
	}

	return []*cobra.Command{startCmd, stopCmd, restartCmd, daemonStatusCmd}
}

func boolKind(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusWarn
}

// daemonExecutable resolves the maestrod binary, expected alongside the
// CLI.
func daemonExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	candidate := filepath.Join(filepath.Dir(exe), "maestrod")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "maestrod", nil
}

func launchOptions(ctx *commandContext) daemonctl.LaunchOptions {
	opts := daemonctl.LaunchOptions{}
	if ctx.configFlag != nil {
		if cfg := strings.TrimSpace(*ctx.configFlag); cfg != "" {
			opts.ConfigPath = cfg
		}
	}
	return opts
}
