package orchestrator

import (
	"context"
	"log"
	"time"
)

// NextRun returns the next instant at hour:minute local time: today if that
// is still in the future, otherwise tomorrow.
func NextRun(now time.Time, hour, minute int) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// RunDaily runs the pipeline every day at the configured local time. A
// failed run is logged and the loop continues to the next day; there is no
// backoff or skip-ahead, so a long run simply delays the next iteration.
func (p *Pipeline) RunDaily(ctx context.Context) error {
	for {
		next := NextRun(p.now(), p.Cfg.ScheduleHour, p.Cfg.ScheduleMinute)
		log.Printf("Next scheduled run at %s", next.Format("2006-01-02 15:04"))

		select {
		case <-time.After(time.Until(next)):
		case <-ctx.Done():
			return ctx.Err()
		}

		if err := p.RunOnce(ctx); err != nil {
			log.Printf("Scheduled run failed: %v", err)
		}
	}
}
