package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"maestro/internal/assetcache"
	"maestro/internal/services"
	"maestro/internal/services/portal"
	"maestro/internal/session"
	"maestro/internal/stage"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session, stage timeline, and daemon state",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			sess, err := store.Current(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Session", colorize) {
				fmt.Fprintln(out, line)
			}
			if !sess.LoggedIn() {
				fmt.Fprintln(out, renderStatusLine("Login", statusWarn, "Not logged in; run `maestro login`", colorize))
				printDaemonSection(cmd, ctx, colorize)
				return nil
			}
			fmt.Fprintln(out, renderStatusLine("Login", statusOK, sess.Email, colorize))
			if sess.CurrentAssetID != "" {
				fmt.Fprintln(out, renderStatusLine("Asset", statusInfo, sess.CurrentAssetID, colorize))
			}
			if sess.CurrentJobID != "" {
				fmt.Fprintln(out, renderStatusLine("Job in flight", statusInfo, sess.CurrentJobID, colorize))
			}

			client, err := ctx.portalClient(store)
			if err != nil {
				return err
			}
			profile, err := client.Profile(cmd.Context(), sess.UserID)
			if errors.Is(err, services.ErrNotFound) {
				fmt.Fprintln(out, renderStatusLine("Profile", statusWarn, "Not created yet; run `maestro profile edit`", colorize))
				printDaemonSection(cmd, ctx, colorize)
				return nil
			}
			if err != nil {
				return err
			}

			current := stage.Parse(profile.CurrentStage)

			if asJSON {
				return writeJSON(cmd, statusDocument(sess, profile, current))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Stage Timeline", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, s := range stage.All() {
				kind := statusInfo
				detail := ""
				switch stage.Classify(s, current) {
				case stage.Completed:
					kind = statusOK
					detail = "done"
				case stage.Current:
					kind = statusWarn
					detail = "current"
				case stage.Pending:
					detail = "pending"
				}
				fmt.Fprintln(out, renderStatusLine(s.Label(), kind, detail, colorize))
			}

			step := stage.NextStep(current)
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Next: %s\n", step.Title)
			fmt.Fprintf(out, "  %s\n", step.Description)
			fmt.Fprintf(out, "  Run: %s\n", step.Command)

			printStageDrift(cmd, ctx, store, client, sess, current, colorize)
			printDaemonSection(cmd, ctx, colorize)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}

// printStageDrift compares the profile stage against the asset contents
// and reports inconsistencies. Drift is reported, never repaired; the
// backend owns the stage.
func printStageDrift(cmd *cobra.Command, ctx *commandContext, store *session.Store, client *portal.Client, sess *session.Session, current stage.Stage, colorize bool) {
	if sess.CurrentAssetID == "" {
		return
	}
	cache := ctx.assetCache(client)
	asset, err := cache.Snapshot(cmd.Context(), sess.CurrentAssetID)
	if err != nil || asset == nil {
		return
	}

	mismatches := stage.Reconcile(current, stageEvidence(asset))
	if len(mismatches) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Stage Drift", colorize) {
		fmt.Fprintln(out, line)
	}
	for _, m := range mismatches {
		fmt.Fprintln(out, renderStatusLine(m.Stage.Label(), statusWarn, m.Detail, colorize))
	}
}

// stageEvidence projects an asset into the reconciler's evidence,
// folding in the per-content approval signals.
func stageEvidence(asset *portal.Asset) stage.Evidence {
	base := assetcache.Evidence(asset)
	return stage.Evidence{
		HasAsset:          base.HasAsset,
		HasConcepts:       base.HasConcepts,
		HasSelection:      base.HasSelection,
		HasStructure:      base.HasStructure,
		HasEmailPlan:      base.HasEmailPlan,
		HasVideo:          base.HasVideo,
		ConceptApproved:   approvedStatus(asset.ConceptApprovalStatus) || asset.ReadyToPublish,
		StructureApproved: approvedStatus(asset.StructureApprovalStatus),
		EmailsApproved:    approvedStatus(asset.EmailApprovalStatus),
	}
}

func approvedStatus(status string) bool {
	return status == "approved"
}

func printDaemonSection(cmd *cobra.Command, ctx *commandContext, colorize bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	for _, line := range renderSectionHeader("Daemon", colorize) {
		fmt.Fprintln(out, line)
	}

	client, err := ctx.dialClient()
	if err != nil {
		fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "Not running; start it with `maestro start`", colorize))
		return
	}
	defer client.Close()

	resp, err := client.Status()
	if err != nil || resp == nil {
		fmt.Fprintln(out, renderStatusLine("Daemon", statusError, "Status request failed", colorize))
		return
	}
	fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, fmt.Sprintf("Running (pid %d)", resp.PID), colorize))
	if resp.WatchingJob {
		fmt.Fprintln(out, renderStatusLine("Watching job", statusInfo, resp.CurrentJobID, colorize))
	}
	if resp.LastError != "" {
		fmt.Fprintln(out, renderStatusLine("Last error", statusWarn, resp.LastError, colorize))
	}
}

func statusDocument(sess *session.Session, profile *portal.Profile, current stage.Stage) map[string]any {
	timeline := make([]map[string]string, 0, len(stage.All()))
	for _, s := range stage.All() {
		timeline = append(timeline, map[string]string{
			"stage": string(s),
			"state": string(stage.Classify(s, current)),
		})
	}
	step := stage.NextStep(current)
	return map[string]any{
		"email":            sess.Email,
		"current_asset_id": sess.CurrentAssetID,
		"current_job_id":   sess.CurrentJobID,
		"stage":            string(current),
		"stage_label":      current.Label(),
		"timeline":         timeline,
		"next_step": map[string]string{
			"title":       step.Title,
			"description": step.Description,
			"command":     step.Command,
		},
	}
}
