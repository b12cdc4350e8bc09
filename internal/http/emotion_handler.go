package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"empathic-credit/internal/domain"
	"empathic-credit/internal/service"
)

// EmotionHandler recibe lotes de eventos emocionales por HTTP.
type EmotionHandler struct {
	logger      *zap.Logger
	emotionServ *service.EmotionService
	limiter     RateLimiter
}

func NewEmotionHandler(logger *zap.Logger, emotionServ *service.EmotionService, limiter RateLimiter) *EmotionHandler {
	return &EmotionHandler{
		logger:      logger,
		emotionServ: emotionServ,
		limiter:     limiter,
	}
}

type emotionalEventRequest struct {
	EventID           string    `json:"event_id" binding:"required,uuid"`
	UserID            string    `json:"user_id" binding:"required,uuid"`
	CapturedAt        time.Time `json:"captured_at" binding:"required"`
	EmotionPrimary    string    `json:"emotion_primary" binding:"required"`
	EmotionConfidence float64   `json:"emotion_confidence"`
	Arousal           float64   `json:"arousal"`
	Valence           float64   `json:"valence"`
}

// Ingest maneja POST /v1/emotions/ingest.
func (h *EmotionHandler) Ingest(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	if h.limiter != nil && !h.limiter.Allow(claims.ClientID) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}

	var req []emotionalEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid ingest request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	events := make([]domain.EmotionalEvent, len(req))
	now := time.Now().UTC()
	for i, e := range req {
		events[i] = domain.EmotionalEvent{
			UserID:            e.UserID,
			EventID:           e.EventID,
			EmotionPrimary:    e.EmotionPrimary,
			EmotionConfidence: e.EmotionConfidence,
			Arousal:           e.Arousal,
			Valence:           e.Valence,
			CapturedAt:        e.CapturedAt,
			ReceivedAt:        now,
		}
	}

	if err := h.emotionServ.Ingest(c.Request.Context(), events); err != nil {
		if errors.Is(err, service.ErrIngestion) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("ingest failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not ingest events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "processed", "count": len(events)})
}
