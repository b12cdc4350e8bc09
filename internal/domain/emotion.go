package domain

import "time"

// Emociones primarias segun la clasificacion de Ekman, mas las etiquetas
// extendidas que emiten los dispositivos de captura.
const (
	EmotionHappiness = "happiness"
	EmotionSadness   = "sadness"
	EmotionFear      = "fear"
	EmotionAnger     = "anger"
	EmotionSurprise  = "surprise"
	EmotionDisgust   = "disgust"
)

// EmotionalEvent es una lectura emocional capturada por un dispositivo.
// Arousal y valence siguen el modelo circumplejo, normalizados a [0,1].
type EmotionalEvent struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	EventID           string    `json:"event_id"`
	EmotionPrimary    string    `json:"emotion_primary"`
	EmotionConfidence float64   `json:"emotion_confidence"`
	Arousal           float64   `json:"arousal"`
	Valence           float64   `json:"valence"`
	CapturedAt        time.Time `json:"captured_at"`
	ReceivedAt        time.Time `json:"received_at"`
}
