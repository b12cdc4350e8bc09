package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Nombres de jobs y colas. Las colas son listas de Redis: LPUSH para
// publicar, BRPOP para consumir (at-least-once por convencion).
const (
	JobCreditAcceptance = "credit.acceptance"

	AcceptanceQueueKey = "ecs:jobs:acceptance"
	IngestQueueKey     = "ecs:ingest"
)

// AcceptancePayload es la carga del job de aceptacion de oferta.
type AcceptancePayload struct {
	OfferID string `json:"offer_id"`
	UserID  string `json:"user_id"`
}

// Envelope envuelve un job en la cola con su nombre y momento de encolado.
type Envelope struct {
	Job        string          `json:"job"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Enqueuer publica jobs fire-and-forget.
type Enqueuer interface {
	Enqueue(ctx context.Context, job string, payload any) error
}

// RedisQueue implementa una cola de jobs sobre una lista de Redis.
type RedisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal job payload: %w", err)
	}
	envelope, err := json.Marshal(Envelope{
		Job:        job,
		Payload:    body,
		EnqueuedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal job envelope: %w", err)
	}

	if err := q.client.LPush(ctx, q.key, envelope).Err(); err != nil {
		return fmt.Errorf("lpush job: %w", err)
	}
	return nil
}

// Dequeue bloquea hasta timeout esperando el proximo job. Devuelve nil sin
// error cuando el timeout vence sin trabajo.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Envelope, error) {
	result, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("brpop job: %w", err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("brpop job: unexpected reply length %d", len(result))
	}

	var envelope Envelope
	if err := json.Unmarshal([]byte(result[1]), &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal job envelope: %w", err)
	}
	return &envelope, nil
}
