package db

import (
	"context"
	"fmt"
	"time"

	"yuvai/internal/config"
	"yuvai/internal/models"
)

// AccountStore is keyed by username. PutAccount only creates: it returns
// ErrDuplicateUsername and leaves the store untouched if the key exists.
type AccountStore interface {
	GetAccount(ctx context.Context, username string) (*models.Account, error)
	PutAccount(ctx context.Context, account *models.Account) error
	CountAccounts(ctx context.Context) (int, error)
}

// HistoryStore keeps the auxiliary lists: analysis history and user corrections.
type HistoryStore interface {
	AppendHistory(ctx context.Context, entry *models.HistoryEntry) error
	ListHistory(ctx context.Context, username string, limit int) ([]models.HistoryEntry, error)
	PruneHistory(ctx context.Context, before time.Time) (int64, error)
	AddCorrection(ctx context.Context, correction *models.Correction) error
	ListCorrections(ctx context.Context, limit int) ([]models.Correction, error)
}

// Store is implemented by every persistence adapter.
type Store interface {
	AccountStore
	HistoryStore
	Ping(ctx context.Context) error
	Close() error
}

// Open connects the adapter selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.StoreFile, "":
		return NewFileStore(cfg.DataFile)
	case config.StorePostgres:
		database, err := New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			database.Close()
			return nil, err
		}
		return database, nil
	case config.StoreMongo:
		return NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.StoreDriver)
	}
}

// stampTime sets t to the current UTC time when it is unset.
func stampTime(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}
