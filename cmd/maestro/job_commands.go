package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"maestro/internal/jobs"
	"maestro/internal/services"
	"maestro/internal/services/portal"
	"maestro/internal/session"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and follow background processing jobs",
	}
	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsStatusCommand(ctx))
	jobsCmd.AddCommand(newJobsWatchCommand(ctx))
	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show recent jobs from the local history",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.RecentJobs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs recorded")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					r.JobID,
					r.Kind,
					r.Status,
					fmt.Sprintf("%d%%", r.Progress),
					r.UpdatedAt,
				})
			}
			table := renderTable(
				[]string{"Job", "Kind", "Status", "Progress", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			)
			fmt.Fprintln(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of jobs to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newJobsStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status [job-id]",
		Short: "Fetch the live status of a job",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
				jobID := ""
				if len(args) > 0 {
					jobID = strings.TrimSpace(args[0])
				}
				if jobID == "" {
					jobID = sess.CurrentJobID
				}
				if jobID == "" {
					return errors.New("no job id given and no job is in flight")
				}

				job, err := client.JobStatus(cmd.Context(), jobID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, job)
				}
				printJob(cmd, job)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}

func newJobsWatchCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [job-id]",
		Short: "Poll a job until it reaches a terminal state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
				jobID := ""
				if len(args) > 0 {
					jobID = strings.TrimSpace(args[0])
				}
				if jobID == "" {
					jobID = sess.CurrentJobID
				}
				if jobID == "" {
					return errors.New("no job id given and no job is in flight")
				}
				return watchJobInline(cmd, ctx, client, store, jobID)
			})
		},
	}
	return cmd
}

// watchJobInline polls one job in the foreground, mirroring progress to
// stdout and the local job history. The daemon performs the same follow
// in the background; the local history upsert keeps the two in sync.
func watchJobInline(cmd *cobra.Command, ctx *commandContext, client *portal.Client, store *session.Store, jobID string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	manager := jobs.NewManager(client, jobs.OptionsFromConfig(cfg), cliLogger())
	watch, err := manager.Watch(cmd.Context(), jobID, jobs.Hooks{
		OnProgress: func(u jobs.Update) {
			fmt.Fprintf(out, "Job %s: %s %d%%", jobID, u.Job.Status, u.Job.Progress)
			if u.Job.Message != "" {
				fmt.Fprintf(out, " (%s)", u.Job.Message)
			}
			fmt.Fprintln(out)
		},
	})
	if err != nil {
		return err
	}

	job, err := watch.Wait(cmd.Context())
	switch {
	case errors.Is(err, services.ErrTimeout):
		fmt.Fprintf(out, "Job %s is still running; gave up waiting\n", jobID)
		return err
	case errors.Is(err, services.ErrJobFailed):
		recordJobResult(cmd, store, job)
		detail := ""
		if job != nil {
			detail = firstNonEmpty(job.Error, job.Message)
		}
		if detail != "" {
			return fmt.Errorf("job %s failed: %s", jobID, detail)
		}
		return fmt.Errorf("job %s failed", jobID)
	case err != nil:
		return err
	}

	recordJobResult(cmd, store, job)
	fmt.Fprintf(out, "Job %s completed\n", jobID)
	if job != nil && job.AssetID != "" {
		if err := store.SetCurrentAsset(cmd.Context(), job.AssetID); err != nil {
			return err
		}
		if err := store.SetCurrentJob(cmd.Context(), ""); err != nil {
			return err
		}
		fmt.Fprintf(out, "Asset %s is ready\n", job.AssetID)
	}
	return nil
}

func recordJobResult(cmd *cobra.Command, store *session.Store, job *portal.Job) {
	if job == nil {
		return
	}
	_ = store.RecordJob(cmd.Context(), session.JobRecord{
		JobID:    job.JobID,
		AssetID:  job.AssetID,
		Status:   string(job.Status),
		Progress: job.Progress,
		Message:  job.Message,
		Error:    job.Error,
	})
}

func printJob(cmd *cobra.Command, job *portal.Job) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job:      %s\n", job.JobID)
	fmt.Fprintf(out, "Status:   %s\n", job.Status)
	fmt.Fprintf(out, "Progress: %d%%\n", job.Progress)
	if job.Message != "" {
		fmt.Fprintf(out, "Message:  %s\n", job.Message)
	}
	if job.Error != "" {
		fmt.Fprintf(out, "Error:    %s\n", job.Error)
	}
	if job.AssetID != "" {
		fmt.Fprintf(out, "Asset:    %s\n", job.AssetID)
	}
}
