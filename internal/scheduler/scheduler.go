package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/splitnest/debt-service/internal/service"
)

// RateSource supplies the key rate quoted in overdue reminders.
// A failing source only drops the hint, never the sweep.
type RateSource interface {
	GetKeyRate() (float64, error)
}

// Scheduler runs the daily due-date reminder sweep
type Scheduler struct {
	svc   *service.Service
	rates RateSource
	log   *logrus.Logger
	cron  *cron.Cron
}

// NewScheduler initializes the scheduler
func NewScheduler(svc *service.Service, rates RateSource, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		svc:   svc,
		rates: rates,
		log:   log,
		cron:  cron.New(),
	}
}

// Start registers the sweep with the given cron spec and starts the cron
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.RunSweep); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Infof("Reminder scheduler started with spec %q", spec)
	return nil
}

// Stop stops the cron, waiting for a running sweep to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunSweep performs one reminder sweep
func (s *Scheduler) RunSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var rateHint float64
	if s.rates != nil {
		rate, err := s.rates.GetKeyRate()
		if err != nil {
			s.log.Warnf("Reminder sweep: key rate unavailable: %v", err)
		} else {
			rateHint = rate
		}
	}

	reminded, err := s.svc.RemindDueDebts(ctx, rateHint)
	if err != nil {
		s.log.Errorf("Reminder sweep failed: %v", err)
		return
	}
	s.log.Debugf("Reminder sweep done, %d reminders created", reminded)
}
