package review

import (
	"context"
	"log"
	"time"
)

const cleanupInterval = 1 * time.Minute

// StartCleanup runs a background loop that removes queue entries whose item
// hashes expired without being reviewed. The ZSET member would otherwise
// linger forever since sorted set members carry no TTL of their own.
func StartCleanup(ctx context.Context, queue *Queue) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[review] cleanup loop stopped")
			return
		case <-ticker.C:
			cleanOrphanedEntries(ctx, queue)
		}
	}
}

// cleanOrphanedEntries removes queue members whose detail hash no longer
// exists (expired or deleted out of band).
func cleanOrphanedEntries(ctx context.Context, queue *Queue) {
	ids, err := queue.Pending(ctx)
	if err != nil {
		log.Printf("[review] cleanup: failed to list queue: %v", err)
		return
	}

	removed := 0
	for _, id := range ids {
		exists, err := queue.rdb.Exists(ctx, keyItemPrefix+id).Result()
		if err != nil {
			continue
		}
		if exists == 0 {
			if err := queue.rdb.ZRem(ctx, keyReviewQueue, id).Err(); err != nil {
				log.Printf("[review] cleanup: failed to remove %s: %v", id, err)
			} else {
				removed++
			}
		}
	}

	if removed > 0 {
		log.Printf("[review] cleanup: removed %d orphaned entries", removed)
	}
}
