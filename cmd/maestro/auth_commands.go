package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"maestro/internal/services"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var email string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the portal and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			email = strings.TrimSpace(email)
			if email == "" {
				value, err := promptLine(cmd, "Email: ")
				if err != nil {
					return err
				}
				email = value
			}
			if password == "" {
				value, err := promptLine(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = value
			}

			client, err := ctx.portalClient(store)
			if err != nil {
				return err
			}
			token, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				return loginError(err)
			}
			if err := store.SaveLogin(cmd.Context(), token.AccessToken, token.UserID, token.Email, token.FullName); err != nil {
				return fmt.Errorf("store session: %w", err)
			}

			name := strings.TrimSpace(token.FullName)
			if name == "" {
				name = token.Email
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email address")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session",
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
			if !sess.LoggedIn() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	var email string
	var password string
	var name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new mentor account",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			email = strings.TrimSpace(email)
			name = strings.TrimSpace(name)
			if email == "" || password == "" || name == "" {
				return errors.New("--email, --password and --name are required")
			}

			client, err := ctx.portalClient(store)
			if err != nil {
				return err
			}
			user, err := client.Register(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s\n", user.Email)
			fmt.Fprintln(cmd.OutOrStdout(), "Run `maestro login` to start a session.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email address")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	return cmd
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session identity",
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
			if asJSON {
				return writeJSON(cmd, map[string]any{
					"logged_in":        sess.LoggedIn(),
					"user_id":          sess.UserID,
					"email":            sess.Email,
					"full_name":        sess.FullName,
					"current_asset_id": sess.CurrentAssetID,
					"current_job_id":   sess.CurrentJobID,
				})
			}
			out := cmd.OutOrStdout()
			if !sess.LoggedIn() {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}
			fmt.Fprintf(out, "Email:     %s\n", sess.Email)
			fmt.Fprintf(out, "Name:      %s\n", sess.FullName)
			fmt.Fprintf(out, "User ID:   %s\n", sess.UserID)
			if sess.CurrentAssetID != "" {
				fmt.Fprintf(out, "Asset:     %s\n", sess.CurrentAssetID)
			}
			if sess.CurrentJobID != "" {
				fmt.Fprintf(out, "Job:       %s\n", sess.CurrentJobID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	return cmd
}

func promptLine(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func loginError(err error) error {
	if errors.Is(err, services.ErrAuth) {
		return errors.New("login failed: invalid email or password")
	}
	return err
}
