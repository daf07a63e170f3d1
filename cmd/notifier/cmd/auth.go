package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"class_openings_notifier/internal/infra/mailer"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(authCmd)
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorizes the sender mailbox for XOAUTH2 and caches the token.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		oauthCfg, err := mailer.LoadOAuthConfig(cfg.Mail.OAuthCredentialsFile)
		if err != nil {
			return err
		}
		store := mailer.NewTokenStore(oauthCfg, cfg.Mail.OAuthTokenFile)

		state := uuid.NewString()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Open this URL in a browser and approve access:")
		fmt.Fprintln(out, store.AuthCodeURL(state))
		fmt.Fprint(out, "Paste the 'code' parameter from the redirect URL: ")

		code, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && code == "" {
			return fmt.Errorf("could not read authorization code: %w", err)
		}
		code = strings.TrimSpace(code)
		if code == "" {
			return fmt.Errorf("authorization code is empty")
		}

		if _, err := store.Exchange(cmd.Context(), code); err != nil {
			return err
		}
		fmt.Fprintf(out, "Token saved to %s\n", cfg.Mail.OAuthTokenFile)
		return nil
	},
}
