package jobs

import (
	"context"
	"log"
	"time"

	"yuvai/internal/db"
)

// HistoryPruner deletes analysis history older than the retention period.
type HistoryPruner struct {
	store     db.HistoryStore
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

// NewHistoryPruner creates a new history pruner.
func NewHistoryPruner(store db.HistoryStore, retention, interval time.Duration) *HistoryPruner {
	return &HistoryPruner{
		store:     store,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

// Start begins the background prune loop. A non-positive retention disables it.
func (p *HistoryPruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		log.Println("History pruner disabled (HISTORY_RETENTION <= 0)")
		return
	}
	log.Printf("History pruner started (retention: %v, interval: %v)", p.retention, p.interval)

	p.Prune(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("History pruner stopped")
			return
		case <-ticker.C:
			p.Prune(ctx)
		}
	}
}

// Prune runs one pass and returns the number of entries removed.
func (p *HistoryPruner) Prune(ctx context.Context) int64 {
	cutoff := p.now().Add(-p.retention)
	n, err := p.store.PruneHistory(ctx, cutoff)
	if err != nil {
		log.Printf("History pruner: failed to prune: %v", err)
		return 0
	}
	if n > 0 {
		log.Printf("History pruner: removed %d entries older than %s", n, cutoff.Format(time.RFC3339))
	}
	return n
}
