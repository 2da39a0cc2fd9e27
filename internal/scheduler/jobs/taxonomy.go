package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/swingscan/internal/universe"
	"github.com/wonny/swingscan/pkg/logger"
)

// ListingSource is satisfied by twse.Client
type ListingSource interface {
	FetchInstruments(ctx context.Context) ([]universe.Instrument, error)
}

// TaxonomyJob refreshes names and sectors from the exchange listings
type TaxonomyJob struct {
	source   ListingSource
	taxonomy *universe.Taxonomy
	logger   *logger.Logger
}

// NewTaxonomyJob creates a job merging listings into taxonomy
func NewTaxonomyJob(source ListingSource, taxonomy *universe.Taxonomy, log *logger.Logger) *TaxonomyJob {
	return &TaxonomyJob{
		source:   source,
		taxonomy: taxonomy,
		logger:   log,
	}
}

// Name returns the job name
func (j *TaxonomyJob) Name() string {
	return "taxonomy_refresh"
}

// Schedule returns the cron schedule (weekdays 08:30, before the open)
func (j *TaxonomyJob) Schedule() string {
	return "0 30 8 * * 1-5"
}

// Run executes the refresh. Existing entries are only overwritten by
// non-empty fields.
func (j *TaxonomyJob) Run(ctx context.Context) error {
	instruments, err := j.source.FetchInstruments(ctx)
	if err != nil {
		return fmt.Errorf("fetch listings: %w", err)
	}

	before := j.taxonomy.Len()
	j.taxonomy.Add(instruments...)

	j.logger.WithFields(map[string]interface{}{
		"fetched": len(instruments),
		"before":  before,
		"after":   j.taxonomy.Len(),
	}).Info("Taxonomy refreshed")
	return nil
}
