package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func (a *CLIApp) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password != "" {
				return a.wire.Auth.Login(cmd.Context(), username, password)
			}
			return a.interactiveLogin(cmd.Context(), username)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func (a *CLIApp) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session tokens",
		RunE: func(*cobra.Command, []string) error {
			return a.wire.Auth.Logout()
		},
	}
}

// interactiveLogin prompts for whatever credentials are missing.
func (a *CLIApp) interactiveLogin(ctx context.Context, username string) error {
	if !a.isTTY() {
		return fmt.Errorf("no terminal to prompt for credentials; use --username and --password")
	}

	var err error
	if strings.TrimSpace(username) == "" {
		username, err = pterm.DefaultInteractiveTextInput.Show("Username")
		if err != nil {
			return err
		}
	}
	password, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
	if err != nil {
		return err
	}
	return a.wire.Auth.Login(ctx, strings.TrimSpace(username), password)
}
