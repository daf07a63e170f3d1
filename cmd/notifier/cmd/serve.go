package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"class_openings_notifier/internal/app"
	"class_openings_notifier/internal/infra/console"
	"class_openings_notifier/internal/infra/logger"
	"class_openings_notifier/internal/infra/scheduler"

	"github.com/spf13/cobra"
)

const cycleTimeout = 15 * time.Minute

var runImmediately bool

func init() {
	serveCmd.Flags().BoolVar(&runImmediately, "now", false, "run one cycle right away before waiting for the schedule")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the openings check on the configured cron schedule until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := newOpeningsService(cfg, db)
		if err != nil {
			return err
		}

		sched := scheduler.NewOpeningsScheduler(
			svc,
			logger.Component("scheduler"),
			cfg.CronSpec,
			cfg.Location(),
			cycleTimeout,
			func(report *app.RunReport) { console.RenderRun(os.Stdout, report) },
		)
		if err := sched.Start(ctx); err != nil {
			return err
		}
		if runImmediately {
			go sched.RunCycle()
		}

		<-ctx.Done()
		logger.Log.Info("Shutting down application...")
		sched.Stop()
		logger.Log.Info("Application shut down gracefully.")
		return nil
	},
}
