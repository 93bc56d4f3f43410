package badger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"autoscraper/internal/common"
	"autoscraper/internal/interfaces"
)

// BlobEntry is the stored record for one blob
type BlobEntry struct {
	Key       string `badgerhold:"key"`
	Data      []byte
	UpdatedAt time.Time
}

// Store is an embedded Badger blob store, for deployments that want a single
// database file instead of a directory tree
type Store struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

// NewStore opens the Badger database at the configured path
func NewStore(logger arbor.ILogger, config *common.BadgerStoreConfig) (*Store, error) {
	if config.ResetOnStartup {
		if _, err := os.Stat(config.Path); err == nil {
			logger.Debug().Str("path", config.Path).Msg("Deleting existing database (reset_on_startup=true)")
			if err := os.RemoveAll(config.Path); err != nil {
				logger.Warn().Err(err).Str("path", config.Path).Msg("Failed to delete database directory")
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("Badger blob store initialized")

	return &Store{store: store, logger: logger}, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	entry := BlobEntry{
		Key:       key,
		Data:      data,
		UpdatedAt: time.Now(),
	}
	if err := s.store.Upsert(key, &entry); err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var entry BlobEntry
	err := s.store.Get(key, &entry)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return entry.Data, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	var entry BlobEntry
	err := s.store.Get(key, &entry)
	if err == badgerhold.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var entries []BlobEntry
	if err := s.store.Find(&entries, nil); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Key, prefix) {
			keys = append(keys, entry.Key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.store.Delete(key, BlobEntry{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
