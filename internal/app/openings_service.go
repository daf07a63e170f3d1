package app

import (
	"context"
	"time"

	"class_openings_notifier/internal/domain/notification"
	"class_openings_notifier/internal/domain/slot"
	"class_openings_notifier/internal/infra/scraper"

	"github.com/sirupsen/logrus"
)

// NoOpeningsMessage is printed when a run finds nothing bookable.
const NoOpeningsMessage = "No class openings at this time"

// ScheduleWalker yields the open slots of one schedule walk.
type ScheduleWalker interface {
	Walk(ctx context.Context) (*scraper.WalkResult, error)
}

// RunReport summarises one pipeline cycle.
type RunReport struct {
	StartedAt   time.Time
	FinishedAt  time.Time
	Openings    []slot.ClassSlot
	Weeks       int
	Days        int
	Invalidated int64
	WalkErr     error
	Deliveries  []Delivery
	DispatchErr error
	Evicted     int64
	EvictErr    error
}

// OpeningsService runs the whole cycle: walk, dispatch, evict.
type OpeningsService interface {
	RunOnce(ctx context.Context) *RunReport
}

type OpeningsServiceImpl struct {
	walker     ScheduleWalker
	dispatcher DispatchService
	notifRepo  notification.Repository
	location   *time.Location
	logger     *logrus.Entry
	now        func() time.Time
}

func NewOpeningsServiceImpl(
	walker ScheduleWalker,
	dispatcher DispatchService,
	nr notification.Repository,
	location *time.Location,
	logger *logrus.Entry,
) *OpeningsServiceImpl {
	return &OpeningsServiceImpl{
		walker:     walker,
		dispatcher: dispatcher,
		notifRepo:  nr,
		location:   location,
		logger:     logger,
		now:        time.Now,
	}
}

// RunOnce never fails; every problem ends up in the report.
func (s *OpeningsServiceImpl) RunOnce(ctx context.Context) *RunReport {
	report := &RunReport{StartedAt: s.now()}
	s.logger.Info("Starting openings check")

	result, err := s.walker.Walk(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Schedule walk failed")
		report.WalkErr = err
	}
	if result != nil {
		report.Openings = result.Slots
		report.Weeks = result.Weeks
		report.Days = result.Days
		report.Invalidated = result.Invalidated
	}

	if len(report.Openings) == 0 {
		s.logger.Info(NoOpeningsMessage)
	} else {
		s.logger.WithField("openings", len(report.Openings)).Info("Found class openings")
		report.Deliveries, report.DispatchErr = s.dispatcher.Dispatch(ctx, report.Openings)
		if report.DispatchErr != nil {
			s.logger.WithError(report.DispatchErr).Error("Dispatch failed")
		}
	}

	now := s.now().In(s.location)
	report.Evicted, report.EvictErr = s.notifRepo.EvictPast(ctx, now)
	if report.EvictErr != nil {
		s.logger.WithError(report.EvictErr).Error("Failed to evict past notifications")
	} else if report.Evicted > 0 {
		s.logger.WithField("evicted", report.Evicted).Info("Evicted past notifications")
	}

	report.FinishedAt = s.now()
	return report
}
