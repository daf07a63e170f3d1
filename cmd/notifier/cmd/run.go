package cmd

import (
	"os"

	"class_openings_notifier/internal/infra/console"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Checks the schedule once, emails new openings and prints a summary.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := newOpeningsService(cfg, db)
		if err != nil {
			return err
		}

		report := svc.RunOnce(ctx)
		console.RenderRun(os.Stdout, report)
		return nil
	},
}
