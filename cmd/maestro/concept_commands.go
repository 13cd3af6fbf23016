package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"maestro/internal/assetcache"
	"maestro/internal/services/portal"
	"maestro/internal/session"
)

func newConceptsCommand(ctx *commandContext) *cobra.Command {
	conceptsCmd := &cobra.Command{
		Use:   "concepts",
		Short: "Generate, review, and select webinar concepts",
	}
	conceptsCmd.AddCommand(newConceptsGenerateCommand(ctx))
	conceptsCmd.AddCommand(newConceptsListCommand(ctx))
	conceptsCmd.AddCommand(newConceptsShowCommand(ctx))
	conceptsCmd.AddCommand(newConceptsSelectCommand(ctx))
	conceptsCmd.AddCommand(newConceptsRefineCommand(ctx))
	return conceptsCmd
}

func newConceptsGenerateCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate concept candidates from the onboarding material",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
				assetID, err := resolveAssetID(assetFlag, sess)
				if err != nil {
					return err
				}
				if _, err := client.GenerateConcepts(cmd.Context(), assetID); err != nil {
					return err
				}

				cache := ctx.assetCache(client)
				cache.Invalidate(assetID)
				asset, err := cache.Refresh(cmd.Context(), assetID)
				if err != nil {
					return err
				}
				views := assetcache.Concepts(asset)
				fmt.Fprintf(cmd.OutOrStdout(), "Generated %d concept candidates\n", len(views))
				fmt.Fprintln(cmd.OutOrStdout(), "Review them with `maestro concepts list`.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	return cmd
}

func newConceptsListCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the concept candidates",
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
				views := assetcache.Concepts(asset)
				if asJSON {
					return writeJSON(cmd, views)
				}
				if len(views) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No concepts yet; run `maestro concepts generate` first.")
					return nil
				}

				rows := make([][]string, 0, len(views))
				for i, view := range views {
					score := ""
					if view.Concept.EvaluationScore != nil {
						score = strconv.FormatFloat(*view.Concept.EvaluationScore, 'f', 1, 64)
					}
					selected := ""
					if view.Selected {
						selected = "*"
					}
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						selected,
						view.Concept.Title,
						truncate(view.Concept.BigIdea, 50),
						score,
					})
				}
				table := renderTable(
					[]string{"#", "Sel", "Title", "Big Idea", "Score"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight},
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newConceptsShowCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <number>",
		Short: "Show one concept in full",
		Args:  cobra.ExactArgs(1),
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
				view, err := conceptByNumber(asset, args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, view)
				}
				printConcept(cmd, view)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}

func newConceptsSelectCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string

	cmd := &cobra.Command{
		Use:   "select <number>",
		Short: "Select a concept as the webinar direction",
		Args:  cobra.ExactArgs(1),
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
				view, err := conceptByNumber(asset, args[0])
				if err != nil {
					return err
				}

				selected, err := client.SelectConcept(cmd.Context(), assetID, view.Ref.Index, view.Ref.FromImproved())
				if err != nil {
					return err
				}
				cache.Invalidate(assetID)

				fmt.Fprintf(cmd.OutOrStdout(), "Selected concept: %s\n", selected.Title)
				fmt.Fprintln(cmd.OutOrStdout(), "Submit it for approval with `maestro approvals submit concept`.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	return cmd
}

func newConceptsRefineCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string
	var feedback string

	cmd := &cobra.Command{
		Use:   "refine <number>",
		Short: "Rework a concept with your feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
				if strings.TrimSpace(feedback) == "" {
					return errors.New("--feedback is required")
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
				view, err := conceptByNumber(asset, args[0])
				if err != nil {
					return err
				}

				// The backend's concept handle is the asset id plus the
				// list index; the ref resolution above already rejected
				// stale listings.
				conceptID := fmt.Sprintf("%s_%d", assetID, view.Ref.Index)
				if _, err := client.RefineConcept(cmd.Context(), assetID, conceptID, feedback); err != nil {
					return err
				}
				cache.Invalidate(assetID)
				fmt.Fprintln(cmd.OutOrStdout(), "Concept refinement requested; run `maestro concepts list` to see the result.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	cmd.Flags().StringVar(&feedback, "feedback", "", "What should change about the concept")
	return cmd
}

// conceptByNumber resolves a 1-based display number from `concepts
// list` into a concept view.
func conceptByNumber(asset *portal.Asset, arg string) (assetcache.ConceptView, error) {
	number, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return assetcache.ConceptView{}, fmt.Errorf("invalid concept number %q", arg)
	}
	views := assetcache.Concepts(asset)
	if number < 1 || number > len(views) {
		return assetcache.ConceptView{}, fmt.Errorf("concept %d out of range (%d available)", number, len(views))
	}
	return views[number-1], nil
}

func printConcept(cmd *cobra.Command, view assetcache.ConceptView) {
	out := cmd.OutOrStdout()
	c := view.Concept
	fmt.Fprintf(out, "Title:    %s\n", c.Title)
	if view.Selected {
		fmt.Fprintln(out, "Selected: yes")
	}
	fmt.Fprintf(out, "Big idea: %s\n", c.BigIdea)
	if c.Hook != "" {
		fmt.Fprintf(out, "Hook:     %s\n", c.Hook)
	}
	if c.NarrativeAngle != "" {
		fmt.Fprintf(out, "Angle:    %s\n", c.NarrativeAngle)
	}
	if c.Mechanism != "" {
		fmt.Fprintf(out, "Mechanism: %s\n", c.Mechanism)
	}
	if len(c.StructurePoints) > 0 {
		fmt.Fprintln(out, "Structure points:")
		for _, p := range c.StructurePoints {
			fmt.Fprintf(out, "  - %s\n", p)
		}
	}
	if c.CTASentence != "" {
		fmt.Fprintf(out, "CTA:      %s\n", c.CTASentence)
	}
	if c.EvaluationScore != nil {
		fmt.Fprintf(out, "Score:    %.1f\n", *c.EvaluationScore)
	}
	if c.EvaluationNotes != "" {
		fmt.Fprintf(out, "Notes:    %s\n", c.EvaluationNotes)
	}
}
