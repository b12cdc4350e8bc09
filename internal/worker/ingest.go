package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"empathic-credit/internal/domain"
	"empathic-credit/internal/service"
)

// IngestConsumer drena la cola de eventos emocionales publicada por los
// dispositivos de captura. Cada mensaje es un lote JSON de eventos.
type IngestConsumer struct {
	logger      *zap.Logger
	client      *redis.Client
	queueKey    string
	emotionServ *service.EmotionService
}

func NewIngestConsumer(logger *zap.Logger, client *redis.Client, queueKey string, emotionServ *service.EmotionService) *IngestConsumer {
	return &IngestConsumer{
		logger:      logger,
		client:      client,
		queueKey:    queueKey,
		emotionServ: emotionServ,
	}
}

// Run consume la cola hasta que el contexto se cancele. Un mensaje invalido
// se loguea y descarta; el loop continua.
func (c *IngestConsumer) Run(ctx context.Context) error {
	c.logger.Info("ingest consumer started", zap.String("queue", c.queueKey))
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("ingest consumer stopping")
			return ctx.Err()
		default:
		}

		result, err := c.client.BRPop(ctx, 5*time.Second, c.queueKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			c.logger.Error("brpop failed", zap.Error(err))
			continue
		}
		if len(result) != 2 {
			continue
		}

		if err := c.ProcessMessage(ctx, []byte(result[1])); err != nil {
			c.logger.Error("error processing emotional data", zap.Error(err))
		}
	}
}

type ingestMessage struct {
	EventID           string    `json:"event_id"`
	UserID            string    `json:"user_id"`
	CapturedAt        time.Time `json:"captured_at"`
	EmotionPrimary    string    `json:"emotion_primary"`
	EmotionConfidence float64   `json:"emotion_confidence"`
	Arousal           float64   `json:"arousal"`
	Valence           float64   `json:"valence"`
}

// ProcessMessage decodifica y persiste un lote de eventos.
func (c *IngestConsumer) ProcessMessage(ctx context.Context, body []byte) error {
	var batch []ingestMessage
	if err := json.Unmarshal(body, &batch); err != nil {
		return fmt.Errorf("unmarshal ingest batch: %w", err)
	}

	events := make([]domain.EmotionalEvent, len(batch))
	now := time.Now().UTC()
	for i, m := range batch {
		events[i] = domain.EmotionalEvent{
			UserID:            m.UserID,
			EventID:           m.EventID,
			EmotionPrimary:    m.EmotionPrimary,
			EmotionConfidence: m.EmotionConfidence,
			Arousal:           m.Arousal,
			Valence:           m.Valence,
			CapturedAt:        m.CapturedAt,
			ReceivedAt:        now,
		}
	}

	if err := c.emotionServ.Ingest(ctx, events); err != nil {
		return err
	}
	c.logger.Info("emotional data batch processed", zap.Int("count", len(events)))
	return nil
}
