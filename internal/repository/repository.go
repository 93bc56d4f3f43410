package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
	"autoscraper/internal/interfaces"
	"autoscraper/internal/models"
)

const (
	scraperPrefix  = "scrapers/"
	metadataPrefix = "metadata/"
)

// ScraperRepo is the blob-backed ScraperRepository. Each record is stored as
// two blobs: the artifact source under scrapers/ and the JSON metadata under
// metadata/. Per-domain locks make Save atomic within a domain without
// serializing saves across domains.
type ScraperRepo struct {
	blobs  interfaces.BlobStorage
	logger arbor.ILogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a repository over the given blob storage
func New(blobs interfaces.BlobStorage, logger arbor.ILogger) *ScraperRepo {
	return &ScraperRepo{
		blobs:  blobs,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func sourceKey(domain string, kind models.ScraperKind) string {
	return scraperPrefix + models.RecordKey(domain, kind) + ".js"
}

func metadataKey(domain string, kind models.ScraperKind) string {
	return metadataPrefix + models.RecordKey(domain, kind) + ".json"
}

// domainLock returns the mutex guarding one domain's records
func (r *ScraperRepo) domainLock(domain string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[domain]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[domain] = lock
	}
	return lock
}

// Save upserts the record for (domain, kind). Regeneration replaces the
// prior record and bumps its version; when the companion kind exists the
// pipeline links on both sides are set.
func (r *ScraperRepo) Save(ctx context.Context, record *models.ScraperRecord) error {
	if record.Domain == "" {
		return fmt.Errorf("record has no domain")
	}
	if record.Source == "" {
		return fmt.Errorf("record for %s has no source", record.Domain)
	}

	lock := r.domainLock(record.Domain)
	lock.Lock()
	defer lock.Unlock()

	// Replacing an existing record continues its version sequence
	if existing, err := r.loadMetadata(ctx, record.Domain, record.Kind); err == nil {
		record.Version = nextVersion(existing.Version)
		if record.CreatedAt.IsZero() {
			record.CreatedAt = existing.CreatedAt
		}
	} else if !errors.Is(err, interfaces.ErrKeyNotFound) {
		return fmt.Errorf("failed to check existing record: %w", err)
	} else if record.Version == "" {
		record.Version = "1"
	}

	// Link with the companion kind when it is already stored
	companionKind := models.OppositeKind(record.Kind)
	companion, err := r.loadMetadata(ctx, record.Domain, companionKind)
	switch {
	case err == nil:
		record.PipelineLink = models.RecordKey(record.Domain, companionKind)
		companion.PipelineLink = models.RecordKey(record.Domain, record.Kind)
		if err := r.writeMetadata(ctx, companion); err != nil {
			return fmt.Errorf("failed to update companion pipeline link: %w", err)
		}
	case errors.Is(err, interfaces.ErrKeyNotFound):
		record.PipelineLink = ""
	default:
		return fmt.Errorf("failed to check companion record: %w", err)
	}

	if err := r.blobs.Put(ctx, sourceKey(record.Domain, record.Kind), []byte(record.Source)); err != nil {
		return fmt.Errorf("failed to store scraper source: %w", err)
	}
	if err := r.writeMetadata(ctx, record); err != nil {
		return fmt.Errorf("failed to store scraper metadata: %w", err)
	}

	r.logger.Info().
		Str("domain", record.Domain).
		Str("kind", string(record.Kind)).
		Str("version", record.Version).
		Bool("linked", record.PipelineLink != "").
		Msg("Scraper saved")

	return nil
}

// Get returns the record for a domain, preferring content when both kinds
// exist
func (r *ScraperRepo) Get(ctx context.Context, domain string) (*models.ScraperRecord, error) {
	record, err := r.GetKind(ctx, domain, models.ScraperKindContent)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, interfaces.ErrScraperNotFound) {
		return nil, err
	}
	return r.GetKind(ctx, domain, models.ScraperKindList)
}

// GetKind returns the record of a specific kind for a domain
func (r *ScraperRepo) GetKind(ctx context.Context, domain string, kind models.ScraperKind) (*models.ScraperRecord, error) {
	record, err := r.loadMetadata(ctx, domain, kind)
	if errors.Is(err, interfaces.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s (%s)", interfaces.ErrScraperNotFound, domain, kind)
	}
	if err != nil {
		return nil, err
	}

	source, err := r.blobs.Get(ctx, sourceKey(domain, kind))
	if errors.Is(err, interfaces.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s (%s) metadata present but source missing", interfaces.ErrScraperNotFound, domain, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load scraper source: %w", err)
	}
	record.Source = string(source)
	return record, nil
}

// GetByURL resolves the scraper for an arbitrary URL: first by the URL's
// host, then by matching stored url_pattern expressions
func (r *ScraperRepo) GetByURL(ctx context.Context, url string) (*models.ScraperRecord, error) {
	domain, err := common.DomainFromURL(url)
	if err == nil {
		record, getErr := r.Get(ctx, domain)
		if getErr == nil {
			return record, nil
		}
		if !errors.Is(getErr, interfaces.ErrScraperNotFound) {
			return nil, getErr
		}
	}

	records, err := r.listMetadata(ctx)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if record.URLPattern == "" {
			continue
		}
		// Patterns match from the start of the URL, so a foreign URL that
		// merely embeds a stored domain does not resolve to its scraper
		matched, matchErr := regexp.MatchString("^(?:"+record.URLPattern+")", url)
		if matchErr != nil {
			r.logger.Warn().Err(matchErr).Str("pattern", record.URLPattern).Msg("Invalid stored url_pattern")
			continue
		}
		if matched {
			return r.GetKind(ctx, record.Domain, record.Kind)
		}
	}

	return nil, fmt.Errorf("%w: no scraper matches %s", interfaces.ErrScraperNotFound, url)
}

// GetPipeline returns the linked (list, content) pair for a domain
func (r *ScraperRepo) GetPipeline(ctx context.Context, domain string) (*models.ScraperRecord, *models.ScraperRecord, error) {
	list, err := r.GetKind(ctx, domain, models.ScraperKindList)
	if errors.Is(err, interfaces.ErrScraperNotFound) {
		return nil, nil, fmt.Errorf("%w: %s has no list scraper", interfaces.ErrIncompletePipeline, domain)
	}
	if err != nil {
		return nil, nil, err
	}

	content, err := r.GetKind(ctx, domain, models.ScraperKindContent)
	if errors.Is(err, interfaces.ErrScraperNotFound) {
		return nil, nil, fmt.Errorf("%w: %s has no content scraper", interfaces.ErrIncompletePipeline, domain)
	}
	if err != nil {
		return nil, nil, err
	}

	return list, content, nil
}

// List returns all records ordered by domain, then kind
func (r *ScraperRepo) List(ctx context.Context) ([]*models.ScraperRecord, error) {
	records, err := r.listMetadata(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Domain != records[j].Domain {
			return records[i].Domain < records[j].Domain
		}
		return records[i].Kind < records[j].Kind
	})
	return records, nil
}

// TouchValidated refreshes a record's last_validated timestamp
func (r *ScraperRepo) TouchValidated(ctx context.Context, domain string, kind models.ScraperKind, at time.Time) error {
	lock := r.domainLock(domain)
	lock.Lock()
	defer lock.Unlock()

	record, err := r.loadMetadata(ctx, domain, kind)
	if errors.Is(err, interfaces.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s (%s)", interfaces.ErrScraperNotFound, domain, kind)
	}
	if err != nil {
		return err
	}

	record.LastValidated = at
	return r.writeMetadata(ctx, record)
}

func (r *ScraperRepo) loadMetadata(ctx context.Context, domain string, kind models.ScraperKind) (*models.ScraperRecord, error) {
	data, err := r.blobs.Get(ctx, metadataKey(domain, kind))
	if err != nil {
		return nil, err
	}
	var record models.ScraperRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("corrupt metadata for %s (%s): %w", domain, kind, err)
	}
	return &record, nil
}

func (r *ScraperRepo) writeMetadata(ctx context.Context, record *models.ScraperRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	return r.blobs.Put(ctx, metadataKey(record.Domain, record.Kind), data)
}

// listMetadata loads every stored metadata record without sources
func (r *ScraperRepo) listMetadata(ctx context.Context) ([]*models.ScraperRecord, error) {
	keys, err := r.blobs.List(ctx, metadataPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	records := make([]*models.ScraperRecord, 0, len(keys))
	for _, key := range keys {
		if !strings.HasSuffix(key, ".json") {
			continue
		}
		data, err := r.blobs.Get(ctx, key)
		if err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("Failed to read metadata entry")
			continue
		}
		var record models.ScraperRecord
		if err := json.Unmarshal(data, &record); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("Skipping corrupt metadata entry")
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}

func nextVersion(current string) string {
	n, err := strconv.Atoi(current)
	if err != nil || n < 1 {
		return "1"
	}
	return strconv.Itoa(n + 1)
}
