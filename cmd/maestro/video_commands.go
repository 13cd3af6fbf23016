package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"maestro/internal/services/portal"
	"maestro/internal/session"
)

func newVideoCommand(ctx *commandContext) *cobra.Command {
	videoCmd := &cobra.Command{
		Use:   "video",
		Short: "Produce and track the avatar presenter video",
	}
	videoCmd.AddCommand(newVideoGenerateCommand(ctx))
	videoCmd.AddCommand(newVideoStatusCommand(ctx))
	return videoCmd
}

func newVideoGenerateCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string
	var scriptPath string
	var sourceURL string
	var fastMode bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Start an avatar video render",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
				req := portal.VideoRequest{SourceURL: strings.TrimSpace(sourceURL)}
				if cmd.Flags().Changed("fast") {
					req.FastMode = &fastMode
				}

				if scriptPath != "" {
					script, err := readTextFile(scriptPath, "--script")
					if err != nil {
						return err
					}
					req.ScriptText = script
				} else {
					assetID, err := resolveAssetID(assetFlag, sess)
					if err != nil {
						return errors.New("pass --script or select an asset with --asset")
					}
					req.AssetID = assetID
				}

				talkID, err := client.GenerateVideo(cmd.Context(), req)
				if err != nil {
					return err
				}
				if req.AssetID != "" {
					ctx.assetCache(client).Invalidate(req.AssetID)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Video render started (talk %s)\n", talkID)
				fmt.Fprintln(out, "Check progress with `maestro video status`; the daemon notifies when it is ready.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	cmd.Flags().StringVar(&scriptPath, "script", "", "Path to a script file to render instead of the asset")
	cmd.Flags().StringVar(&sourceURL, "source-url", "", "Presenter source image URL")
	cmd.Flags().BoolVar(&fastMode, "fast", false, "Use the faster, lower fidelity render pipeline")
	return cmd
}

func newVideoStatusCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string
	var talkID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the state of the avatar video render",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
				talkID = strings.TrimSpace(talkID)
				if talkID == "" {
					assetID, err := resolveAssetID(assetFlag, sess)
					if err != nil {
						return err
					}
					asset, err := ctx.assetCache(client).Refresh(cmd.Context(), assetID)
					if err != nil {
						return err
					}
					talkID = asset.VideoTalkID
					if talkID == "" {
						fmt.Fprintln(cmd.OutOrStdout(), "No video render yet; run `maestro video generate` first.")
						return nil
					}
				}

				video, err := client.VideoStatus(cmd.Context(), talkID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, video)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Talk:   %s\n", video.TalkID)
				fmt.Fprintf(out, "Status: %s\n", video.Status)
				if video.ResultURL != "" {
					fmt.Fprintf(out, "URL:    %s\n", video.ResultURL)
				}
				if video.Detail != "" {
					fmt.Fprintf(out, "Detail: %s\n", video.Detail)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	cmd.Flags().StringVar(&talkID, "talk", "", "Query a talk id directly")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}
