package service

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerService runs the recurring digest jobs on a cron runner. The bot
// wires exactly one of the two schedules: a fixed wall-clock time when
// REPORT_TIME is set, an interval otherwise.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	return &SchedulerService{cron: cron.New(cron.WithLocation(loc))}
}

// ScheduleDaily registers job to fire once a day at the given HH:MM.
func (s *SchedulerService) ScheduleDaily(at string, job func()) (cron.EntryID, error) {
	spec, err := buildDailySpec(at)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// ScheduleInterval registers job to fire every interval.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %s", interval)
	}
	return s.cron.AddFunc("@every "+interval.String(), job)
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for any running job to finish.
func (s *SchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

// buildDailySpec turns "HH:MM" into a five-field cron spec.
func buildDailySpec(at string) (string, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return "", fmt.Errorf("invalid time %q, expected HH:MM: %w", at, err)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}
