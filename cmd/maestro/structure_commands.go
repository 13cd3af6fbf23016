package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"maestro/internal/services/portal"
	"maestro/internal/session"
)

func newStructureCommand(ctx *commandContext) *cobra.Command {
	structureCmd := &cobra.Command{
		Use:   "structure",
		Short: "Develop the slide-by-slide webinar outline",
	}
	structureCmd.AddCommand(newStructureGenerateCommand(ctx))
	structureCmd.AddCommand(newStructureShowCommand(ctx))
	return structureCmd
}

func newStructureGenerateCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the outline from the selected concept",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
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

				structure, err := client.GenerateStructure(cmd.Context(), assetID, conceptText(asset.SelectedConcept))
				if err != nil {
					return err
				}
				cache.Invalidate(assetID)

				fmt.Fprintln(cmd.OutOrStdout(), "Structure generated:")
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), structure)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	return cmd
}

func newStructureShowCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the current outline",
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

				out := cmd.OutOrStdout()
				if len(asset.Structure) == 0 && strings.TrimSpace(asset.StructureContent) == "" {
					fmt.Fprintln(out, "No structure yet; run `maestro structure generate` first.")
					return nil
				}
				if asJSON {
					return writeJSON(cmd, map[string]any{
						"slides":  asset.Structure,
						"content": asset.StructureContent,
						"version": asset.StructureVersion,
					})
				}

				if len(asset.Structure) > 0 {
					rows := make([][]string, 0, len(asset.Structure))
					for _, slide := range asset.Structure {
						rows = append(rows, []string{
							strconv.Itoa(slide.SlideNumber),
							slide.Section,
							slide.Title,
							truncate(slide.Description, 50),
						})
					}
					table := renderTable(
						[]string{"#", "Section", "Title", "Description"},
						rows,
						[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
					)
					fmt.Fprintln(out, table)
					return nil
				}
				fmt.Fprintln(out, asset.StructureContent)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

// conceptText flattens the selected concept into the prose block the
// generation endpoints expect.
func conceptText(c *portal.Concept) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", c.Title)
	fmt.Fprintf(&b, "Big Idea: %s\n", c.BigIdea)
	if c.Hook != "" {
		fmt.Fprintf(&b, "Hook: %s\n", c.Hook)
	}
	if c.Mechanism != "" {
		fmt.Fprintf(&b, "Mechanism: %s\n", c.Mechanism)
	}
	if len(c.StructurePoints) > 0 {
		b.WriteString("Structure Points:\n")
		for _, p := range c.StructurePoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	if c.CTASentence != "" {
		fmt.Fprintf(&b, "CTA: %s\n", c.CTASentence)
	}
	return b.String()
}
