package yield

import (
	"context"
	"time"

	"github.com/diego28e/backend-wealth-builder/internal/logger"
	"github.com/diego28e/backend-wealth-builder/internal/rrule"
)

// Notifier receives a short markdown summary after every run.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type Scheduler struct {
	accruer  *Accruer
	schedule *rrule.Schedule
	notifier Notifier
	notifyCh chan struct{}
	now      func() time.Time
}

// NewScheduler runs accruer at every occurrence of schedule. notifier may
// be nil.
func NewScheduler(accruer *Accruer, schedule *rrule.Schedule, notifier Notifier) *Scheduler {
	return &Scheduler{
		accruer:  accruer,
		schedule: schedule,
		notifier: notifier,
		notifyCh: make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Notify triggers an immediate run. Non-blocking if a run is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// Start blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	log := logger.FromContext(ctx)
	log.Info().Str("schedule", s.schedule.String()).Msg("yield scheduler started")

	for {
		next, err := s.schedule.Next(s.now())
		if err != nil {
			log.Error().Err(err).Msg("yield scheduler has no next run, stopping")
			return
		}
		log.Debug().Time("next_run", next).Msg("yield run scheduled")

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info().Msg("yield scheduler stopped")
			return
		case <-timer.C:
			s.run(ctx)
		case <-s.notifyCh:
			timer.Stop()
			log.Info().Msg("yield run triggered manually")
			s.run(ctx)
		}
	}
}

func (s *Scheduler) run(ctx context.Context) {
	log := logger.FromContext(ctx)
	report, err := s.accruer.Run(ctx, s.now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("yield run failed")
		return
	}
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, report.Markdown()); err != nil {
		log.Warn().Err(err).Msg("failed to send yield run summary")
	}
}
