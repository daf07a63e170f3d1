package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"class_openings_notifier/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReportHandler receives the report of every finished cycle.
type ReportHandler func(report *app.RunReport)

// OpeningsScheduler runs the openings cycle on a cron spec, one cycle at a time.
type OpeningsScheduler struct {
	cronEngine  *cron.Cron
	openingsSvc app.OpeningsService
	logger      *logrus.Entry
	cronSpec    string
	jobTimeout  time.Duration
	onReport    ReportHandler

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running sync.Mutex
}

func NewOpeningsScheduler(
	openingsSvc app.OpeningsService,
	logger *logrus.Entry,
	cronSpec string, // e.g., "*/10 * * * *" (every 10 minutes)
	location *time.Location,
	jobTimeout time.Duration,
	onReport ReportHandler,
) *OpeningsScheduler {
	cl := cronLogger{logger: logger}
	return &OpeningsScheduler{
		cronEngine: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(cl),
			// A slow walk must never overlap the next tick: both would read
			// the ledger before either records, and send duplicates.
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		openingsSvc: openingsSvc,
		logger:      logger,
		cronSpec:    cronSpec,
		jobTimeout:  jobTimeout,
		onReport:    onReport,
	}
}

// Start registers the job and starts the cron engine. Cycles run under ctx.
func (s *OpeningsScheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting openings scheduler...")

	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Info("Cron job triggered for openings check.")
		s.RunCycle()
	})
	if err != nil {
		return fmt.Errorf("could not add openings cron job %q: %w", s.cronSpec, err)
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.cronSpec).Info("Openings scheduler started.")
	return nil
}

// RunCycle runs one cycle synchronously and hands the report to the handler.
// It returns at once if another cycle is still in progress.
func (s *OpeningsScheduler) RunCycle() {
	if !s.running.TryLock() {
		s.logger.Warn("Previous openings cycle still running, skipping.")
		return
	}
	defer s.running.Unlock()

	s.mu.Lock()
	base := s.ctx
	s.mu.Unlock()
	if base == nil {
		base = context.Background()
	}

	ctx, cancel := context.WithTimeout(base, s.jobTimeout)
	defer cancel()

	report := s.openingsSvc.RunOnce(ctx)
	s.logger.WithFields(logrus.Fields{
		"openings":   len(report.Openings),
		"deliveries": len(report.Deliveries),
		"evicted":    report.Evicted,
		"took":       report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("Openings cycle finished.")
	if s.onReport != nil {
		s.onReport(report)
	}
}

// Stop cancels a running cycle and waits for it to return.
func (s *OpeningsScheduler) Stop() {
	s.logger.Info("Stopping openings scheduler...")
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Openings scheduler gracefully stopped.")
}

// cronLogger routes cron's own logs through logrus.
type cronLogger struct {
	logger *logrus.Entry
}

func (l cronLogger) fields(keysAndValues []any) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.WithFields(l.fields(keysAndValues)).Debugf("cron: %s", msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.WithFields(l.fields(keysAndValues)).WithError(err).Errorf("cron: %s", msg)
}
