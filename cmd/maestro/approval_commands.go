package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"maestro/internal/approvals"
	"maestro/internal/services/portal"
	"maestro/internal/session"
)

func newApprovalsCommand(ctx *commandContext) *cobra.Command {
	approvalsCmd := &cobra.Command{
		Use:   "approvals",
		Short: "Track and submit content for admin review",
	}
	approvalsCmd.AddCommand(newApprovalsStatusCommand(ctx))
	approvalsCmd.AddCommand(newApprovalsSubmitCommand(ctx))
	approvalsCmd.AddCommand(newApprovalsSubmitAllCommand(ctx))
	approvalsCmd.AddCommand(newApprovalsHistoryCommand(ctx))
	return approvalsCmd
}

func newApprovalsStatusCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the review state of every content item",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
				assetID, err := resolveAssetID(assetFlag, sess)
				if err != nil {
					return err
				}
				asset, err := ctx.assetCache(client).Refresh(cmd.Context(), assetID)
				if err != nil {
					return err
				}

				items := approvals.Collect(asset)
				summary := approvals.Summarize(items)
				if asJSON {
					return writeJSON(cmd, map[string]any{
						"items":   items,
						"summary": summary,
					})
				}

				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "Nothing to review yet")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					notes := truncate(item.AdminNotes, 40)
					rows = append(rows, []string{
						string(item.Kind),
						item.Key,
						truncate(item.Title, 40),
						string(item.State()),
						notes,
					})
				}
				table := renderTable(
					[]string{"Kind", "Item", "Title", "State", "Admin Notes"},
					rows,
					nil,
				)
				fmt.Fprintln(out, table)

				if summary.AllApproved {
					fmt.Fprintln(out, "All content approved; the funnel is ready to publish.")
				}
				for _, change := range summary.NeedsChanges {
					fmt.Fprintf(out, "Changes requested on %s %s: %s\n", change.Kind, change.Key, change.Notes)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newApprovalsSubmitCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string

	cmd := &cobra.Command{
		Use:   "submit <concept|structure|emails>",
		Short: "Submit one content type for admin review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
				contentType, err := contentTypeFromArg(args[0])
				if err != nil {
					return err
				}
				assetID, err := resolveAssetID(assetFlag, sess)
				if err != nil {
					return err
				}

				ack, err := client.SubmitForApproval(cmd.Context(), assetID, contentType)
				if err != nil {
					return err
				}
				ctx.assetCache(client).Invalidate(assetID)

				message := strings.TrimSpace(ack.Message)
				if message == "" {
					message = fmt.Sprintf("%s submitted for review", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), message)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	return cmd
}

func newApprovalsSubmitAllCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string

	cmd := &cobra.Command{
		Use:   "submit-all",
		Short: "Submit everything that is not yet under review",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
				assetID, err := resolveAssetID(assetFlag, sess)
				if err != nil {
					return err
				}
				cache := ctx.assetCache(client)
				asset, err := cache.Refresh(cmd.Context(), assetID)
				if err != nil {
					return err
				}

				items := approvals.Collect(asset)
				submitter := approvals.NewSubmitter(submitFuncs(client, assetID), cliLogger())
				submitted, err := submitter.SubmitAll(cmd.Context(), items)
				cache.Invalidate(assetID)

				out := cmd.OutOrStdout()
				for _, item := range submitted {
					fmt.Fprintf(out, "Submitted %s %s\n", item.Kind, item.Key)
				}
				if err != nil {
					return err
				}
				if len(submitted) == 0 {
					fmt.Fprintln(out, "Everything is already submitted or reviewed")
				}
				if hasUnsubmittedMedia(items) {
					fmt.Fprintln(out, "Note: media items have no review endpoint; share them with your admin directly.")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	return cmd
}

// submitFuncs maps the review kinds onto the backend's per-content-type
// submission endpoint. Sequences and media fan out to one call per
// item even though the backend flags the content type as a whole; the
// repeat calls are idempotent upserts on its side.
func submitFuncs(client *portal.Client, assetID string) map[approvals.Kind]approvals.SubmitFunc {
	submit := func(contentType string) approvals.SubmitFunc {
		return func(ctx context.Context, item approvals.Item) error {
			_, err := client.SubmitForApproval(ctx, assetID, contentType)
			return err
		}
	}
	return map[approvals.Kind]approvals.SubmitFunc{
		approvals.KindConcept:  submit(portal.ContentConcept),
		approvals.KindSequence: submit(portal.ContentEmailSequence),
	}
}

// hasUnsubmittedMedia reports whether submit-all left media behind.
// The review backend only accepts concept, structure, and email
// submissions, so pending media gets a notice instead of a call.
func hasUnsubmittedMedia(items []approvals.Item) bool {
	for _, item := range items {
		if item.Kind == approvals.KindMedia && !item.Submitted() {
			return true
		}
	}
	return false
}

func newApprovalsHistoryCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string
	var contentArg string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past review decisions for the asset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
				assetID, err := resolveAssetID(assetFlag, sess)
				if err != nil {
					return err
				}
				contentType := ""
				if strings.TrimSpace(contentArg) != "" {
					contentType, err = contentTypeFromArg(contentArg)
					if err != nil {
						return err
					}
				}

				records, err := client.ApprovalHistory(cmd.Context(), assetID, contentType)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, records)
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No review history yet")
					return nil
				}

				rows := make([][]string, 0, len(records))
				for _, r := range records {
					rows = append(rows, []string{
						r.ContentType,
						fmt.Sprintf("v%d", r.Version),
						r.Status,
						r.SubmittedAt,
						truncate(r.AdminNotes, 40),
					})
				}
				table := renderTable(
					[]string{"Content", "Version", "Status", "Submitted", "Notes"},
					rows,
					nil,
				)
				fmt.Fprintln(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	cmd.Flags().StringVar(&contentArg, "content", "", "Filter by content type (concept, structure, emails)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func contentTypeFromArg(arg string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "concept":
		return portal.ContentConcept, nil
	case "structure":
		return portal.ContentStructure, nil
	case "emails", "email", "email_sequence":
		return portal.ContentEmailSequence, nil
	default:
		return "", fmt.Errorf("unknown content type %q (expected concept, structure, or emails)", arg)
	}
}
