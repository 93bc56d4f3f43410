package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"autoscraper/internal/common"
	"autoscraper/internal/interfaces"
	"autoscraper/internal/storage/badger"
	"autoscraper/internal/storage/local"
)

// NewBlobStorage creates the configured storage backend
func NewBlobStorage(logger arbor.ILogger, config *common.Config) (interfaces.BlobStorage, error) {
	switch config.Storage.Backend {
	case "local", "":
		return local.NewStore(logger, &config.Storage.Local)
	case "badger":
		return badger.NewStore(logger, &config.Storage.Badger)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (use 'local' or 'badger')", config.Storage.Backend)
	}
}
