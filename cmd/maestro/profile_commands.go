package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"maestro/internal/services"
	"maestro/internal/services/portal"
	"maestro/internal/session"
	"maestro/internal/stage"
)

func newProfileCommand(ctx *commandContext) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect and edit the mentor business profile",
	}
	profileCmd.AddCommand(newProfileShowCommand(ctx))
	profileCmd.AddCommand(newProfileEditCommand(ctx))
	return profileCmd
}

func newProfileShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display the stored business profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
				profile, err := client.Profile(cmd.Context(), sess.UserID)
				if errors.Is(err, services.ErrNotFound) {
					fmt.Fprintln(cmd.OutOrStdout(), "No profile yet; run `maestro profile edit` to create one.")
					return nil
				}
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, profile)
				}

				rows := [][]string{
					{"Name", firstNonEmpty(profile.FullName, profile.Name)},
					{"Email", profile.Email},
					{"Company", profile.CompanyName},
					{"Website", profile.WebsiteURL},
					{"Niche", profile.Niche},
					{"Target audience", profile.TargetAudience},
					{"Pain points", truncate(profile.AudiencePainPoints, 60)},
					{"Promise", truncate(profile.TransformationPromise, 60)},
					{"Mechanism", truncate(profile.UniqueMechanism, 60)},
					{"Stage", stage.Parse(profile.CurrentStage).Label()},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newProfileEditCommand(ctx *commandContext) *cobra.Command {
	fields := map[string]*string{}
	register := func(cmd *cobra.Command, name, usage string) *string {
		value := new(string)
		cmd.Flags().StringVar(value, name, "", usage)
		fields[name] = value
		return value
	}

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Update profile fields (only the provided flags change)",
	}

	register(cmd, "name", "Full name")
	register(cmd, "company", "Company name")
	register(cmd, "website", "Website URL")
	register(cmd, "niche", "Business niche")
	register(cmd, "method", "Method description")
	register(cmd, "audience", "Target audience")
	register(cmd, "pain-points", "Audience pain points")
	register(cmd, "promise", "Transformation promise")
	register(cmd, "mechanism", "Unique mechanism")
	register(cmd, "story", "Personal story")
	register(cmd, "philosophy", "Philosophy")
	register(cmd, "objections", "Key objections")
	register(cmd, "testimonials", "Testimonials")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return ctx.withSession(cmd.Context(), func(store *session.Store, sess *session.Session, client *portal.Client) error {
			update := portal.ProfileUpdate{}
			assigned := false
			assign := func(target **string, flag string) {
				if cmd.Flags().Changed(flag) {
					value := strings.TrimSpace(*fields[flag])
					*target = &value
					assigned = true
				}
			}
			assign(&update.FullName, "name")
			assign(&update.CompanyName, "company")
			assign(&update.WebsiteURL, "website")
			assign(&update.Niche, "niche")
			assign(&update.MethodDescription, "method")
			assign(&update.TargetAudience, "audience")
			assign(&update.AudiencePainPoints, "pain-points")
			assign(&update.TransformationPromise, "promise")
			assign(&update.UniqueMechanism, "mechanism")
			assign(&update.PersonalStory, "story")
			assign(&update.Philosophy, "philosophy")
			assign(&update.KeyObjections, "objections")
			assign(&update.Testimonials, "testimonials")

			if !assigned {
				return errors.New("no fields to update; pass at least one flag")
			}

			profile, err := client.UpdateProfile(cmd.Context(), sess.UserID, update)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile updated (stage: %s)\n", stage.Parse(profile.CurrentStage).Label())
			return nil
		})
	}

	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if max <= 3 || len(value) <= max {
		return value
	}
	return value[:max-3] + "..."
}
