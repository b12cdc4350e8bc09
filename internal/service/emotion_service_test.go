package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"empathic-credit/internal/domain"
)

func validEvent() domain.EmotionalEvent {
	return domain.EmotionalEvent{
		UserID:            "u1",
		EventID:           "e1",
		EmotionPrimary:    "joy",
		EmotionConfidence: 0.9,
		Arousal:           0.4,
		Valence:           0.8,
		CapturedAt:        time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
		ReceivedAt:        time.Date(2026, 8, 15, 10, 0, 5, 0, time.UTC),
	}
}

func TestEmotionIngest_PersistsBatchAndAssignsIDs(t *testing.T) {
	repo := &mockEmotionRepo{}
	svc := NewEmotionService(zap.NewNop(), repo)

	events := []domain.EmotionalEvent{validEvent()}
	if err := svc.Ingest(context.Background(), events); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.ingested) != 1 {
		t.Fatalf("expected one batch, got %d", len(repo.ingested))
	}
	if repo.ingested[0][0].ID == "" {
		t.Fatal("expected an assigned id")
	}
}

func TestEmotionIngest_EmptyBatchIsNoop(t *testing.T) {
	repo := &mockEmotionRepo{}
	svc := NewEmotionService(zap.NewNop(), repo)

	if err := svc.Ingest(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.ingested) != 0 {
		t.Fatal("no repository call expected")
	}
}

func TestEmotionIngest_RejectsInvalidEvents(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.EmotionalEvent)
	}{
		{"missing user id", func(e *domain.EmotionalEvent) { e.UserID = "" }},
		{"missing event id", func(e *domain.EmotionalEvent) { e.EventID = "" }},
		{"missing captured at", func(e *domain.EmotionalEvent) { e.CapturedAt = time.Time{} }},
		{"confidence out of range", func(e *domain.EmotionalEvent) { e.EmotionConfidence = 1.2 }},
		{"arousal out of range", func(e *domain.EmotionalEvent) { e.Arousal = -0.1 }},
		{"valence out of range", func(e *domain.EmotionalEvent) { e.Valence = 2 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockEmotionRepo{}
			svc := NewEmotionService(zap.NewNop(), repo)

			event := validEvent()
			tc.mutate(&event)

			err := svc.Ingest(context.Background(), []domain.EmotionalEvent{event})
			if !errors.Is(err, ErrIngestion) {
				t.Fatalf("expected ErrIngestion, got %v", err)
			}
			if len(repo.ingested) != 0 {
				t.Fatal("invalid batch must not reach the repository")
			}
		})
	}
}

func TestEmotionIngest_DuplicateEventIDMapsToIngestionError(t *testing.T) {
	repo := &mockEmotionRepo{ingestErr: &pgconn.PgError{Code: "23505"}}
	svc := NewEmotionService(zap.NewNop(), repo)

	err := svc.Ingest(context.Background(), []domain.EmotionalEvent{validEvent()})
	if !errors.Is(err, ErrIngestion) {
		t.Fatalf("expected ErrIngestion, got %v", err)
	}
}

func TestEmotionIngest_OtherRepositoryErrorsPassThrough(t *testing.T) {
	dbErr := errors.New("connection reset")
	repo := &mockEmotionRepo{ingestErr: dbErr}
	svc := NewEmotionService(zap.NewNop(), repo)

	err := svc.Ingest(context.Background(), []domain.EmotionalEvent{validEvent()})
	if errors.Is(err, ErrIngestion) {
		t.Fatal("infrastructure errors must not map to ErrIngestion")
	}
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected the repository error, got %v", err)
	}
}
