package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"maestro/internal/services/portal"
	"maestro/internal/session"
)

func newSetupCommand(ctx *commandContext) *cobra.Command {
	setupCmd := &cobra.Command{
		Use:   "setup",
		Short: "Onboarding: upload source material for content generation",
	}
	setupCmd.AddCommand(newSetupUploadCommand(ctx))
	return setupCmd
}

func newSetupUploadCommand(ctx *commandContext) *cobra.Command {
	var docPath string
	var hooksPath string
	var attachmentPath string
	var watch bool

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload onboarding material and start processing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
				doc, err := readTextFile(docPath, "--doc")
				if err != nil {
					return err
				}
				hooks, err := readTextFile(hooksPath, "--hooks")
				if err != nil {
					return err
				}

				req := portal.UploadContextRequest{
					MentorID:      sess.UserID,
					OnboardingDoc: doc,
					HookAnalysis:  hooks,
				}
				if attachmentPath != "" {
					file, err := os.Open(attachmentPath)
					if err != nil {
						return fmt.Errorf("open attachment: %w", err)
					}
					defer file.Close()
					req.Filename = filepath.Base(attachmentPath)
					req.File = file
				}

				result, err := client.UploadContext(cmd.Context(), req)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if !result.Async {
					if err := store.SetCurrentAsset(cmd.Context(), result.AssetID); err != nil {
						return err
					}
					fmt.Fprintf(out, "Upload processed, asset %s is ready\n", result.AssetID)
					return nil
				}

				if err := store.SetCurrentJob(cmd.Context(), result.JobID); err != nil {
					return err
				}
				if err := store.RecordJob(cmd.Context(), session.JobRecord{
					JobID:  result.JobID,
					Kind:   "upload",
					Status: "pending",
				}); err != nil {
					return err
				}
				fmt.Fprintf(out, "Upload accepted, processing as job %s\n", result.JobID)

				if watch {
					return watchJobInline(cmd, ctx, client, store, result.JobID)
				}
				fmt.Fprintln(out, "Track progress with `maestro jobs watch` or let the daemon follow it.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&docPath, "doc", "", "Path to the onboarding document (required)")
	cmd.Flags().StringVar(&hooksPath, "hooks", "", "Path to the hook analysis document (required)")
	cmd.Flags().StringVar(&attachmentPath, "file", "", "Optional supporting file to attach")
	cmd.Flags().BoolVar(&watch, "watch", false, "Poll the job until it finishes")
	return cmd
}

func readTextFile(path, flag string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New(flag + " is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", flag, err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("%s file %s is empty", flag, path)
	}
	return content, nil
}
