package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	JobReciboEmail = "recibo_email"

	// MaxAttempts is how many times a job runs before it is parked in the DLQ.
	MaxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// HandlerFunc processes one job payload. A returned error re-queues the job
// until MaxAttempts is reached.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// Handlers maps Job.Type to its processor.
type Handlers map[string]HandlerFunc

// pusher is the slice of the Redis client the retry path needs.
type pusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP. A nil Dispatcher, or one built
// without a client, reports Enabled() == false.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// Enabled reports whether jobs can be queued.
func (d *Dispatcher) Enabled() bool { return d != nil && d.rdb != nil }

// EnqueueReciboEmail pushes a receipt email job to Redis.
func (d *Dispatcher) EnqueueReciboEmail(ctx context.Context, payload ReciboEmailPayload) error {
	return d.enqueue(ctx, QueueEmail, JobReciboEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	if !d.Enabled() {
		return errors.New("dispatcher: redis not configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming QueueEmail.
// Each goroutine blocks on BRPOP, idle until a job arrives. The returned
// WaitGroup is done once every worker has seen ctx cancelled.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers Handlers) *sync.WaitGroup {
	if numWorkers < 1 {
		numWorkers = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, rdb, id, handlers)
		}(i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
	return &wg
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers Handlers) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueEmail).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("worker: brpop failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

// processJob runs one raw job and decides its fate: done, re-queued with
// Attempts+1, or moved to the DLQ.
func processJob(ctx context.Context, q pusher, handlers Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, q, queue, "", json.RawMessage(fmt.Sprintf("%q", raw)), "payload invalido", 0)
		return
	}

	handler, ok := handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, q, queue, job.Type, job.Payload, "tipo de job desconocido", job.Attempts)
		return
	}

	log.Debug().Str("type", job.Type).Str("queue", queue).Int("attempt", job.Attempts+1).Msg("processing job")
	err := handler(ctx, job.Payload)
	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= MaxAttempts {
		SendToDLQ(ctx, q, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}
	log.Warn().Err(err).Str("type", job.Type).Int("attempts", job.Attempts).Msg("job failed, re-queued")
	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		log.Error().Err(mErr).Msg("failed to marshal job for retry")
		return
	}
	if pErr := q.LPush(ctx, queue, encoded).Err(); pErr != nil {
		log.Error().Err(pErr).Str("queue", queue).Msg("failed to re-queue job")
	}
}
