package history

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/prodscan/backend/config"
	"github.com/prodscan/backend/internal/domain"
)

// Store is a history repository that owns resources
type Store interface {
	domain.HistoryRepository
	io.Closer
}

// Open builds the history store named by cfg.Type.
// It returns a nil Store when history is disabled.
func Open(ctx context.Context, cfg config.HistoryConfig) (Store, error) {
	switch cfg.Type {
	case "", "none":
		log.Printf("[HISTORY] Scan history disabled")
		return nil, nil
	case "memory":
		log.Printf("[HISTORY] Using in-memory scan history (capacity %d)", cfg.Capacity)
		return NewMemoryStore(cfg.Capacity), nil
	case "sqlite", "postgres":
		store, err := NewSQLStore(ctx, cfg.Type, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported history type: %s", cfg.Type)
	}
}
