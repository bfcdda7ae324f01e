package worker

// dlq.go: dead letter queue.
// Jobs that fail MaxAttempts times are parked in dlq:{queue} for inspection
// and can be pushed back with RequeueDLQ once the cause is fixed.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with metadata for debugging.
type DLQEntry struct {
	Queue    string          `json:"queue"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	FailedAt time.Time       `json:"failed_at"`
	Attempts int             `json:"attempts"`
}

// SendToDLQ parks a failed job. Errors are logged, never returned: the job
// has already been consumed from its queue.
func SendToDLQ(ctx context.Context, q pusher, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		Queue:    queue,
		Type:     jobType,
		Payload:  payload,
		Reason:   reason,
		FailedAt: time.Now().UTC(),
		Attempts: attempts,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: failed to marshal entry")
		return
	}

	key := DLQPrefix + queue
	if err := q.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: failed to push")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the number of parked jobs, for /health.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// PeekDLQ returns up to n entries, oldest first, without removing them.
func PeekDLQ(ctx context.Context, rdb *redis.Client, queue string, n int64) ([]DLQEntry, error) {
	raw, err := rdb.LRange(ctx, DLQPrefix+queue, -n, -1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]DLQEntry, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var e DLQEntry
		if err := json.Unmarshal([]byte(raw[i]), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// RequeueDLQ moves every parked job back onto its queue with a fresh
// attempt counter and returns how many were moved.
func RequeueDLQ(ctx context.Context, rdb *redis.Client, queue string) (int, error) {
	moved := 0
	for {
		raw, err := rdb.RPop(ctx, DLQPrefix+queue).Result()
		if err == redis.Nil {
			return moved, nil
		}
		if err != nil {
			return moved, err
		}
		var e DLQEntry
		if err := json.Unmarshal([]byte(raw), &e); err != nil || e.Type == "" {
			log.Warn().Str("queue", queue).Msg("dlq: dropping unreadable entry")
			continue
		}
		encoded, err := json.Marshal(Job{Type: e.Type, Payload: e.Payload})
		if err != nil {
			return moved, err
		}
		if err := rdb.LPush(ctx, queue, encoded).Err(); err != nil {
			return moved, err
		}
		moved++
	}
}
