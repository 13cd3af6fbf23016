package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"maestro/internal/assetcache"
	"maestro/internal/services/portal"
	"maestro/internal/session"
)

var mediaTypes = []string{"instagram_post", "facebook_ad", "linkedin_banner", "youtube_thumbnail"}

func newMediaCommand(ctx *commandContext) *cobra.Command {
	mediaCmd := &cobra.Command{
		Use:   "media",
		Short: "Produce promotional images and ad copy",
	}
	mediaCmd.AddCommand(newMediaGenerateCommand(ctx))
	mediaCmd.AddCommand(newMediaListCommand(ctx))
	mediaCmd.AddCommand(newMediaCopyCommand(ctx))
	return mediaCmd
}

func newMediaGenerateCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string
	var mediaType string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a promotional image for the selected concept",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
				mediaType = strings.TrimSpace(mediaType)
				if mediaType == "" {
					return fmt.Errorf("--type is required (one of: %s)", strings.Join(mediaTypes, ", "))
				}
				assetID, err := resolveAssetID(assetFlag, sess)
				if err != nil {
					return err
				}
				cache := ctx.assetCache(client)
				asset, err := cache.Snapshot(cmd.Context(), assetID)
				if err != nil {
					return err
				}
				if asset.SelectedConcept == nil {
					return errors.New("no concept selected; run `maestro concepts select` first")
				}

				// The render endpoint keys media off the asset record.
				if _, err := client.GenerateImage(cmd.Context(), assetID, mediaType, conceptText(asset.SelectedConcept)); err != nil {
					return err
				}
				cache.Invalidate(assetID)

				fmt.Fprintf(cmd.OutOrStdout(), "Image requested (%s); it will appear in `maestro media list` once rendered.\n", mediaType)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	cmd.Flags().StringVar(&mediaType, "type", "", "Media type, e.g. instagram_post")
	return cmd
}

func newMediaListCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the generated promotional media",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
				assetID, err := resolveAssetID(assetFlag, sess)
				if err != nil {
					return err
				}
				asset, err := ctx.assetCache(client).Snapshot(cmd.Context(), assetID)
				if err != nil {
					return err
				}
				view := assetcache.Media(asset)
				if asJSON {
					return writeJSON(cmd, view)
				}

				out := cmd.OutOrStdout()
				if len(view.Images) == 0 {
					fmt.Fprintln(out, "No media yet; run `maestro media generate` first.")
				} else {
					rows := make([][]string, 0, len(view.Images))
					for _, image := range view.Images {
						rows = append(rows, []string{
							image.MediaType,
							image.Status,
							truncate(image.Title, 40),
							image.ImageURL,
						})
					}
					table := renderTable(
						[]string{"Type", "Status", "Title", "URL"},
						rows,
						nil,
					)
					fmt.Fprintln(out, table)
				}

				if view.VideoTalkID != "" {
					fmt.Fprintln(out)
					fmt.Fprintf(out, "Video: %s (%s)\n", view.VideoTalkID, view.VideoStatus)
					if view.VideoURL != "" {
						fmt.Fprintf(out, "  %s\n", view.VideoURL)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newMediaCopyCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string
	var mediaType string

	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Generate marketing copy for a media type",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
				mediaType = strings.TrimSpace(mediaType)
				if mediaType == "" {
					return fmt.Errorf("--type is required (one of: %s)", strings.Join(mediaTypes, ", "))
				}
				assetID, err := resolveAssetID(assetFlag, sess)
				if err != nil {
					return err
				}

				adCopy, err := client.GenerateMarketing(cmd.Context(), assetID, mediaType)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), adCopy)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	cmd.Flags().StringVar(&mediaType, "type", "", "Media type, e.g. facebook_ad")
	return cmd
}
