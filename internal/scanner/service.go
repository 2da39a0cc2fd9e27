package scanner

import (
	"context"
	"fmt"

	"github.com/wonny/swingscan/internal/contracts"
	"github.com/wonny/swingscan/internal/universe"
	"github.com/wonny/swingscan/pkg/logger"
)

// Service runs scans over a configured universe and stores the reports
type Service struct {
	scanner  *Scanner
	universe *universe.Universe
	repo     contracts.ReportRepository
	log      *logger.Logger
}

// NewService wires a scanner to its universe and report store.
// repo may be nil when reports are not persisted.
func NewService(s *Scanner, u *universe.Universe, repo contracts.ReportRepository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{scanner: s, universe: u, repo: repo, log: log.WithField("module", "scan_service")}
}

// Run scans symbols, or the whole universe when symbols is empty. A partial
// report from a cancelled scan is still stored.
func (s *Service) Run(ctx context.Context, symbols []string, progress contracts.ProgressFunc) (*contracts.ScanReport, error) {
	instruments, err := s.resolve(symbols)
	if err != nil {
		return nil, err
	}

	report, scanErr := s.scanner.Scan(ctx, instruments, progress)
	if report == nil {
		return nil, scanErr
	}

	if s.repo != nil {
		// cancellation of ctx must not prevent storing the rows we have
		if err := s.repo.SaveReport(context.WithoutCancel(ctx), report); err != nil {
			s.log.WithError(err).WithField("scan_id", report.ID).Error("Failed to save report")
		} else {
			s.log.Infof("Stored report %s with %d rows", report.ID, len(report.Results))
		}
	}
	return report, scanErr
}

// Repository returns the report store, possibly nil
func (s *Service) Repository() contracts.ReportRepository {
	return s.repo
}

func (s *Service) resolve(symbols []string) ([]universe.Instrument, error) {
	if len(symbols) == 0 {
		if s.universe == nil {
			return nil, ErrEmptyUniverse
		}
		return s.universe.Instruments, nil
	}
	if s.universe == nil {
		return (&universe.Universe{}).Subset(symbols)
	}
	out, err := s.universe.Subset(symbols)
	if err != nil {
		return nil, fmt.Errorf("resolve symbols: %w", err)
	}
	return out, nil
}
