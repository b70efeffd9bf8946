// Package backup runs world backups on a cron schedule.
package backup

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/npclabs/mc-server-wrapper/log"
)

// Worker triggers scheduled world backups through the same serialized
// path the HTTP handler uses.
type Worker struct {
	schedule string
	run      func() (string, error)
	cron     *cron.Cron
}

// NewWorker creates a worker. An empty schedule disables it; run is the
// backup entry point, expected to do its own locking and recording.
func NewWorker(schedule string, run func() (string, error)) *Worker {
	return &Worker{schedule: schedule, run: run}
}

// Start begins the schedule. Returns an error for an invalid cron
// expression.
func (w *Worker) Start() error {
	if w.schedule == "" {
		log.Info().Msg("scheduled backups disabled")
		return nil
	}

	w.cron = cron.New()
	_, err := w.cron.AddFunc(w.schedule, func() {
		log.Info().Msg("scheduled backup starting")
		path, err := w.run()
		if err != nil {
			log.Error().Err(err).Msg("scheduled backup failed")
			return
		}
		log.Info().Str("archive", path).Msg("scheduled backup complete")
	})
	if err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", w.schedule, err)
	}

	w.cron.Start()
	log.Info().Str("schedule", w.schedule).Msg("scheduled backups enabled")
	return nil
}

// Stop halts the schedule and waits for an in-flight backup to finish.
func (w *Worker) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
	log.Info().Msg("backup worker stopped")
}
