package domain

// FeatureVector resume el historial transaccional y emocional reciente de un
// usuario. Es la entrada del modelo de riesgo y del calculo de oferta. Se
// deriva bajo demanda en cada decision, nunca se persiste por si solo.
type FeatureVector struct {
	// Transaccionales
	AverageDailySpend    float64 `json:"average_daily_spend"`    // >= 0
	AvgDailyTransactions int     `json:"avg_daily_transactions"` // >= 0
	MaxSingleTransaction float64 `json:"max_single_transaction"` // >= 0
	IncomeVolatility     float64 `json:"income_volatility"`      // [0,1]

	// Emocionales
	AverageEmotionalStability float64 `json:"average_emotional_stability"` // [-1,1]
	StressEventsCount         int     `json:"stress_events_count"`         // >= 0
	PositiveEmotionRatio      float64 `json:"positive_emotion_ratio"`      // [-1,1]
	EmotionalVolatility       float64 `json:"emotional_volatility"`        // [0,1]

	// Ponderadas en el tiempo
	RecentEmotionalTrend  float64 `json:"recent_emotional_trend"` // [-1,1]
	SpendingPatternChange float64 `json:"spending_pattern_change"` // [-1,1]

	// Derivadas
	EmotionalSpendingCorrelation float64 `json:"emotional_spending_correlation"` // [-1,1]
}

// Values devuelve los campos en orden fijo, listo para persistir como vector.
func (f FeatureVector) Values() []float32 {
	return []float32{
		float32(f.AverageDailySpend),
		float32(f.AvgDailyTransactions),
		float32(f.MaxSingleTransaction),
		float32(f.IncomeVolatility),
		float32(f.AverageEmotionalStability),
		float32(f.StressEventsCount),
		float32(f.PositiveEmotionRatio),
		float32(f.EmotionalVolatility),
		float32(f.RecentEmotionalTrend),
		float32(f.SpendingPatternChange),
		float32(f.EmotionalSpendingCorrelation),
	}
}
