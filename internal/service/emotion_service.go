package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"empathic-credit/internal/domain"
	"empathic-credit/internal/repository"
)

// EmotionService coordina la ingesta de eventos emocionales.
type EmotionService struct {
	logger      *zap.Logger
	emotionRepo repository.EmotionalEventRepository
}

func NewEmotionService(logger *zap.Logger, emotionRepo repository.EmotionalEventRepository) *EmotionService {
	return &EmotionService{
		logger:      logger,
		emotionRepo: emotionRepo,
	}
}

// Ingest valida y persiste un lote de eventos. El lote es todo-o-nada; un
// duplicado de event_id o un campo fuera de rango lo rechaza completo.
func (s *EmotionService) Ingest(ctx context.Context, events []domain.EmotionalEvent) error {
	if len(events) == 0 {
		return nil
	}

	for i := range events {
		e := &events[i]
		if err := validateEvent(*e); err != nil {
			return fmt.Errorf("%w: event %d: %v", ErrIngestion, i, err)
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
	}

	if err := s.emotionRepo.Ingest(ctx, events); err != nil {
		if repository.IsUniqueViolation(err) {
			return fmt.Errorf("%w: duplicate event_id in batch: %v", ErrIngestion, err)
		}
		return err
	}

	s.logger.Info("emotional events ingested", zap.Int("count", len(events)))
	return nil
}

func validateEvent(e domain.EmotionalEvent) error {
	if e.UserID == "" {
		return fmt.Errorf("missing user_id")
	}
	if e.EventID == "" {
		return fmt.Errorf("missing event_id")
	}
	if e.CapturedAt.IsZero() {
		return fmt.Errorf("missing captured_at")
	}
	if e.EmotionConfidence < 0 || e.EmotionConfidence > 1 {
		return fmt.Errorf("emotion_confidence %f outside [0,1]", e.EmotionConfidence)
	}
	if e.Arousal < 0 || e.Arousal > 1 {
		return fmt.Errorf("arousal %f outside [0,1]", e.Arousal)
	}
	if e.Valence < 0 || e.Valence > 1 {
		return fmt.Errorf("valence %f outside [0,1]", e.Valence)
	}
	return nil
}
