package revalidate

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
	"autoscraper/internal/interfaces"
	"autoscraper/internal/services/runner"
)

// Service periodically re-runs stored scrapers against their example URLs
// and refreshes last_validated for the ones that still extract fully. Records
// that stop working are logged but never deleted; rebuilding is a deliberate
// operator action.
type Service struct {
	repository interfaces.ScraperRepository
	runner     *runner.Runner
	config     common.RevalidationConfig
	cron       *cron.Cron
	logger     arbor.ILogger

	mu      sync.Mutex
	running bool
}

// NewService creates the revalidation service
func NewService(repository interfaces.ScraperRepository, r *runner.Runner, config common.RevalidationConfig, logger arbor.ILogger) *Service {
	return &Service{
		repository: repository,
		runner:     r,
		config:     config,
		cron:       cron.New(),
		logger:     logger,
	}
}

// Start registers the cron schedule and begins running. A disabled config is
// a no-op so callers can wire the service unconditionally.
func (s *Service) Start() error {
	if !s.config.Enabled {
		s.logger.Debug().Msg("Revalidation disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.logger.Warn().Err(err).Msg("Scheduled revalidation failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid revalidation schedule %q: %w", s.config.Schedule, err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", s.config.Schedule).Msg("Revalidation scheduler started")
	return nil
}

// Stop halts the scheduler and waits for an in-flight run to finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Summary reports one revalidation sweep
type Summary struct {
	Checked int `json:"checked"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
}

// RunOnce revalidates stored scrapers oldest-first, up to the configured
// limit. Overlapping runs are skipped.
func (s *Service) RunOnce(ctx context.Context) (*Summary, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Debug().Msg("Revalidation already in progress, skipping")
		return &Summary{}, nil
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	records, err := s.repository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scrapers for revalidation: %w", err)
	}

	// Oldest validation first
	sort.Slice(records, func(i, j int) bool {
		return records[i].LastValidated.Before(records[j].LastValidated)
	})
	if s.config.Limit > 0 && len(records) > s.config.Limit {
		records = records[:s.config.Limit]
	}

	summary := &Summary{}
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if record.ExampleURL == "" {
			continue
		}
		summary.Checked++

		full, err := s.repository.GetKind(ctx, record.Domain, record.Kind)
		if err != nil {
			s.logger.Warn().Err(err).Str("domain", record.Domain).Msg("Failed to load scraper for revalidation")
			summary.Failed++
			continue
		}

		extraction := s.runner.RunRecord(ctx, full, full.ExampleURL)
		if extraction.Complete {
			summary.Passed++
			if err := s.repository.TouchValidated(ctx, record.Domain, record.Kind, time.Now()); err != nil {
				s.logger.Warn().Err(err).Str("domain", record.Domain).Msg("Failed to refresh last_validated")
			}
			continue
		}

		summary.Failed++
		s.logger.Warn().
			Str("domain", record.Domain).
			Str("kind", string(record.Kind)).
			Str("error", extraction.Error).
			Msg("Stored scraper no longer extracts fully")
	}

	s.logger.Info().
		Int("checked", summary.Checked).
		Int("passed", summary.Passed).
		Int("failed", summary.Failed).
		Msg("Revalidation sweep completed")

	return summary, nil
}
