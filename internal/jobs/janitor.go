package jobs

import (
	"context"
	"log"
	"time"

	"recshelf/internal/db"
)

// Janitor hard-deletes recommendations once both the sender and the
// recipient have removed them from their views. Until then the shared row
// stays so the other party keeps their copy.
type Janitor struct {
	db       *db.DB
	interval time.Duration
}

// NewJanitor creates a new janitor.
func NewJanitor(database *db.DB, interval time.Duration) *Janitor {
	return &Janitor{
		db:       database,
		interval: interval,
	}
}

// Start begins the background purge loop.
func (j *Janitor) Start(ctx context.Context) {
	log.Printf("Janitor started (interval: %v)", j.interval)

	// Run immediately on start
	j.purge(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Janitor stopped")
			return
		case <-ticker.C:
			j.purge(ctx)
		}
	}
}

func (j *Janitor) purge(ctx context.Context) {
	purged, err := j.db.PurgeHiddenRecommendations(ctx)
	if err != nil {
		log.Printf("Janitor: failed to purge hidden recommendations: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("Janitor: purged %d recommendations hidden by both parties", purged)
	}
}
