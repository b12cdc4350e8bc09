package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"empathic-credit/internal/domain"
)

// EmotionalEventRepository define el contrato de persistencia de eventos
// emocionales.
type EmotionalEventRepository interface {
	Ingest(ctx context.Context, events []domain.EmotionalEvent) error
	GetRecent(ctx context.Context, userID string, since time.Time, limit int) ([]domain.EmotionalEvent, error)
}

// PgEmotionalEventRepository implementa EmotionalEventRepository usando pgxpool.
type PgEmotionalEventRepository struct {
	pool *pgxpool.Pool
}

func NewPgEmotionalEventRepository(pool *pgxpool.Pool) *PgEmotionalEventRepository {
	return &PgEmotionalEventRepository{pool: pool}
}

// Ingest inserta un lote de eventos. event_id es unico; los duplicados hacen
// fallar el lote completo para que el productor lo vea.
func (r *PgEmotionalEventRepository) Ingest(ctx context.Context, events []domain.EmotionalEvent) error {
	const query = `
		INSERT INTO emotional_events
			(id, user_id, event_id, emotion_primary, emotion_confidence, arousal, valence, captured_at, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(query,
			e.ID,
			e.UserID,
			e.EventID,
			e.EmotionPrimary,
			e.EmotionConfidence,
			e.Arousal,
			e.Valence,
			e.CapturedAt,
			e.ReceivedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range events {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert emotional events: %w", err)
		}
	}
	return nil
}

// GetRecent devuelve los eventos del usuario posteriores a since, ordenados
// de mas reciente a mas antiguo por captura.
func (r *PgEmotionalEventRepository) GetRecent(ctx context.Context, userID string, since time.Time, limit int) ([]domain.EmotionalEvent, error) {
	const query = `
		SELECT id, user_id, event_id, emotion_primary, emotion_confidence, arousal, valence, captured_at, received_at
		FROM emotional_events
		WHERE user_id = $1 AND captured_at > $2
		ORDER BY captured_at DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent emotional events: %w", err)
	}
	defer rows.Close()

	var events []domain.EmotionalEvent
	for rows.Next() {
		var e domain.EmotionalEvent
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.EventID,
			&e.EmotionPrimary,
			&e.EmotionConfidence,
			&e.Arousal,
			&e.Valence,
			&e.CapturedAt,
			&e.ReceivedAt,
		); err != nil {
			return nil, fmt.Errorf("scan emotional event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read emotional events: %w", err)
	}
	return events, nil
}
