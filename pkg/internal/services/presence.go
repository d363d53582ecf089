package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nexocrm/messaging/pkg/internal/cache"
	"github.com/nexocrm/messaging/pkg/internal/database"
	"github.com/nexocrm/messaging/pkg/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const presenceKey = "messaging:presence"

// PresenceTTL is how long a heartbeat keeps an account online.
const PresenceTTL = 60 * time.Second

var lastSeenQueue = make(map[string]time.Time)
var lastSeenLock sync.Mutex

// HeartbeatPresence marks the account online for PresenceTTL and queues a
// durable last-seen update for the next flush.
func HeartbeatPresence(userId string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	if err := cache.R.ZAdd(ctx, presenceKey, redis.Z{
		Score:  float64(now.Add(PresenceTTL).UnixMilli()),
		Member: userId,
	}).Err(); err != nil {
		return fmt.Errorf("unable to update presence entry: %v", err)
	}

	lastSeenLock.Lock()
	lastSeenQueue[userId] = now
	lastSeenLock.Unlock()

	return nil
}

func CheckOnlineAccount(userId string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	score, err := cache.R.ZScore(ctx, presenceKey, userId).Result()
	if err != nil {
		return false
	}
	return int64(score) > time.Now().UnixMilli()
}

// ListOnlineAccounts prunes expired entries and returns the ids of every
// account with a live heartbeat.
func ListOnlineAccounts() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now().UnixMilli()
	cache.R.ZRemRangeByScore(ctx, presenceKey, "-inf", fmt.Sprintf("%d", now))

	entries, err := cache.R.ZRangeByScore(ctx, presenceKey, &redis.ZRangeBy{
		Min: fmt.Sprintf("(%d", now),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("unable to list presence entries: %v", err)
	}

	return entries, nil
}

// FlushLastSeen writes the queued heartbeats to the accounts table. Scheduled
// every five minutes; the durable timestamp is only a fallback for display
// when the live presence feed has no entry.
func FlushLastSeen() {
	lastSeenLock.Lock()
	if len(lastSeenQueue) == 0 {
		lastSeenLock.Unlock()
		return
	}
	pending := lastSeenQueue
	lastSeenQueue = make(map[string]time.Time)
	lastSeenLock.Unlock()

	for id, seenAt := range pending {
		if err := database.C.Model(&models.Account{}).
			Where("id = ?", id).
			Update("last_seen_at", seenAt).Error; err != nil {
			// One bad row must not drop the rest of the batch
			log.Error().Err(err).Str("account", id).
				Msg("An error occurred when flushing a last seen timestamp...")
			continue
		}
	}
}

// FormatLastSeen renders the relative recency string shown next to offline
// users: fresh contacts get a minute/hour wording, anything beyond a day
// falls back to the absolute date.
func FormatLastSeen(seenAt *time.Time, now time.Time) string {
	if seenAt == nil {
		return "offline"
	}

	diff := now.Sub(*seenAt)
	switch {
	case diff < 5*time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(diff.Hours()))
	default:
		return seenAt.Format("2006-01-02")
	}
}
