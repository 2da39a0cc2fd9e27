package commands

import (
	"fmt"
	"time"

	"github.com/wonny/swingscan/internal/scheduler"
	"github.com/wonny/swingscan/internal/scheduler/jobs"
)

// scheduledJobs lists every job the daemon registers
func (a *app) scheduledJobs() []scheduler.Job {
	return []scheduler.Job{
		jobs.NewDailyScanJob(a.service, a.cfg.Scan.Cron, a.log),
		jobs.NewTaxonomyJob(a.listings, a.taxonomy, a.log),
	}
}

// newScheduler registers scheduledJobs in the configured timezone
func (a *app) newScheduler() (*scheduler.Scheduler, error) {
	loc, err := time.LoadLocation(a.cfg.Scan.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	opts := scheduler.DefaultOptions()
	opts.Location = loc
	s := scheduler.New(a.log, opts)

	for _, job := range a.scheduledJobs() {
		if err := s.AddJob(job); err != nil {
			return nil, err
		}
	}
	return s, nil
}
