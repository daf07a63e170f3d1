package cmd

import (
	"errors"
	"fmt"

	"class_openings_notifier/internal/app"
	"class_openings_notifier/internal/infra/console"
	idb "class_openings_notifier/internal/infra/database"
	"class_openings_notifier/internal/infra/logger"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	recipientsCmd.AddCommand(recipientsAddCmd, recipientsRemoveCmd, recipientsListCmd, recipientsExistsCmd, recipientsShowCmd)
	rootCmd.AddCommand(recipientsCmd)
}

var recipientsCmd = &cobra.Command{
	Use:     "recipients",
	Aliases: []string{"users"},
	Short:   "Manages the email roster.",
}

// withRoster opens the database for the duration of fn.
func withRoster(cmd *cobra.Command, fn func(svc *app.RosterService, db *idb.DB) error) error {
	db, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(app.NewRosterService(idb.NewSQLRecipientRepository(db)), db)
}

var recipientsAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Adds an email address to the roster.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRoster(cmd, func(svc *app.RosterService, _ *idb.DB) error {
			email, err := svc.AddRecipient(cmd.Context(), args[0])
			if errors.Is(err, idb.ErrDuplicateRecipient) {
				logger.Log.WithField("recipient", email).Warn("Recipient already on the roster")
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already on the roster\n", email)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", email)
			return nil
		})
	},
}

var recipientsRemoveCmd = &cobra.Command{
	Use:     "remove <email>",
	Aliases: []string{"delete"},
	Short:   "Removes an email address from the roster.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRoster(cmd, func(svc *app.RosterService, _ *idb.DB) error {
			email, err := svc.RemoveRecipient(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", email)
			return nil
		})
	},
}

var recipientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints the roster.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRoster(cmd, func(svc *app.RosterService, _ *idb.DB) error {
			list, err := svc.ListRecipients(cmd.Context())
			if err != nil {
				return err
			}
			console.RenderRecipients(cmd.OutOrStdout(), list)
			return nil
		})
	},
}

var recipientsExistsCmd = &cobra.Command{
	Use:   "exists <email>",
	Short: "Exits non-zero unless the address is on the roster.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRoster(cmd, func(svc *app.RosterService, _ *idb.DB) error {
			ok, err := svc.RecipientExists(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: %w", args[0], idb.ErrRecipientNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is on the roster\n", args[0])
			return nil
		})
	},
}

var recipientsShowCmd = &cobra.Command{
	Use:   "show <email>",
	Short: "Prints the openings a recipient has already been emailed about.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRoster(cmd, func(_ *app.RosterService, db *idb.DB) error {
			email, err := app.NormalizeEmail(args[0])
			if err != nil {
				return err
			}
			records, err := idb.NewSQLNotificationRepository(db).ListByRecipient(cmd.Context(), email)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Date", "Time", "Level", "Sent at"})
			for _, r := range records {
				t.AppendRow(table.Row{r.ClassDate, r.ClassTime, r.ClassLevel, r.SentAt.Format("2006-01-02 15:04:05")})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		})
	},
}
