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

func newEmailsCommand(ctx *commandContext) *cobra.Command {
	emailsCmd := &cobra.Command{
		Use:   "emails",
		Short: "Build and inspect the launch email sequences",
	}
	emailsCmd.AddCommand(newEmailsGenerateCommand(ctx))
	emailsCmd.AddCommand(newEmailsListCommand(ctx))
	emailsCmd.AddCommand(newEmailsShowCommand(ctx))
	emailsCmd.AddCommand(newEmailsRedraftCommand(ctx))
	return emailsCmd
}

func newEmailsGenerateCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string
	var productDetails string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the full launch email plan",
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
				structure := strings.TrimSpace(asset.StructureContent)
				if structure == "" && len(asset.Structure) == 0 {
					return errors.New("no structure yet; run `maestro structure generate` first")
				}

				plan, err := client.GenerateEmails(cmd.Context(), assetID, structure, productDetails)
				if err != nil {
					return err
				}
				cache.Invalidate(assetID)

				grouped := assetcache.GroupEmails(plan)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Generated %d emails across %d sequences\n", len(plan.Emails), len(grouped))
				fmt.Fprintln(out, "Review them with `maestro emails list`.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	cmd.Flags().StringVar(&productDetails, "product", "", "Product details to weave into the sales emails")
	return cmd
}

func newEmailsListCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the generated emails grouped by sequence",
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
				if asset.EmailPlan == nil || len(asset.EmailPlan.Emails) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No emails yet; run `maestro emails generate` first.")
					return nil
				}

				grouped := assetcache.GroupEmails(asset.EmailPlan)
				if asJSON {
					return writeJSON(cmd, grouped)
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, key := range assetcache.SequenceKeys() {
					emails := grouped[key]
					if len(emails) == 0 {
						continue
					}
					for _, line := range renderSectionHeader(sequenceLabel(key), colorize) {
						fmt.Fprintln(out, line)
					}
					rows := make([][]string, 0, len(emails))
					for _, entry := range emails {
						rows = append(rows, []string{
							strconv.Itoa(entry.Order),
							entry.Email.Day,
							entry.Email.Purpose,
							truncate(entry.Email.Subject, 50),
						})
					}
					table := renderTable(
						[]string{"#", "Day", "Purpose", "Subject"},
						rows,
						[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
					)
					fmt.Fprintln(out, table)
					fmt.Fprintln(out)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of tables")
	return cmd
}

func newEmailsShowCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string

	cmd := &cobra.Command{
		Use:   "show <number>",
		Short: "Show one email in full",
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
				entry, err := emailByNumber(asset, args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Day:       %s\n", entry.Email.Day)
				fmt.Fprintf(out, "Segment:   %s\n", entry.Email.Segment)
				fmt.Fprintf(out, "Purpose:   %s\n", entry.Email.Purpose)
				fmt.Fprintf(out, "Subject:   %s\n", entry.Email.Subject)
				if entry.Email.Preheader != "" {
					fmt.Fprintf(out, "Preheader: %s\n", entry.Email.Preheader)
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, entry.Email.Body)
				if entry.Email.CTA != "" {
					fmt.Fprintln(out)
					fmt.Fprintf(out, "CTA: %s\n", entry.Email.CTA)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	return cmd
}

func newEmailsRedraftCommand(ctx *commandContext) *cobra.Command {
	var assetFlag string

	cmd := &cobra.Command{
		Use:   "redraft <number>",
		Short: "Rewrite one email from its outline",
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
				entry, err := emailByNumber(asset, args[0])
				if err != nil {
					return err
				}

				outline := fmt.Sprintf("Day: %s\nPurpose: %s\nSubject: %s", entry.Email.Day, entry.Email.Purpose, entry.Email.Subject)
				conceptContext := ""
				if asset.SelectedConcept != nil {
					conceptContext = conceptText(asset.SelectedConcept)
				}
				draft, err := client.GenerateSingleEmail(cmd.Context(), outline, conceptContext)
				if err != nil {
					return err
				}
				cache.Invalidate(assetID)

				fmt.Fprintln(cmd.OutOrStdout(), draft)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&assetFlag, "asset", "", "Asset id (defaults to the current asset)")
	return cmd
}

// emailByNumber resolves the 1-based order shown in `emails list`,
// which counts across sequences in display order.
func emailByNumber(asset *portal.Asset, arg string) (assetcache.SequenceEmail, error) {
	number, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return assetcache.SequenceEmail{}, fmt.Errorf("invalid email number %q", arg)
	}
	if asset.EmailPlan == nil {
		return assetcache.SequenceEmail{}, errors.New("no emails yet; run `maestro emails generate` first")
	}
	grouped := assetcache.GroupEmails(asset.EmailPlan)
	for _, key := range assetcache.SequenceKeys() {
		for _, entry := range grouped[key] {
			if entry.Order == number {
				return entry, nil
			}
		}
	}
	return assetcache.SequenceEmail{}, fmt.Errorf("email %d not found", number)
}

func sequenceLabel(key assetcache.SequenceKey) string {
	switch key {
	case assetcache.SequencePreWebinar:
		return "Pre-Webinar"
	case assetcache.SequencePostWebinar:
		return "Post-Webinar"
	case assetcache.SequenceReplay:
		return "Replay"
	case assetcache.SequenceSales:
		return "Sales"
	default:
		return string(key)
	}
}
