package service

import (
	"math"
	"testing"
	"time"

	"empathic-credit/internal/domain"
)

func almostEqual(t *testing.T, got, want float64, label string) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s: expected %f, got %f", label, want, got)
	}
}

func txnAt(amount float64, day int, hour int) domain.Transaction {
	return domain.Transaction{
		ID:         "t",
		UserID:     "u1",
		Amount:     amount,
		Currency:   "USD",
		OccurredAt: time.Date(2026, 8, day, hour, 0, 0, 0, time.UTC),
	}
}

func eventAt(valence, arousal float64, emotion string, minute int) domain.EmotionalEvent {
	return domain.EmotionalEvent{
		UserID:         "u1",
		Valence:        valence,
		Arousal:        arousal,
		EmotionPrimary: emotion,
		CapturedAt:     time.Date(2026, 8, 1, 12, minute, 0, 0, time.UTC),
	}
}

func TestCreateFeatures_EmptyInputsAreNeutral(t *testing.T) {
	var agg FeatureAggregator
	features := agg.CreateFeatures(nil, nil)

	if features != (domain.FeatureVector{}) {
		t.Fatalf("expected neutral vector, got %+v", features)
	}
}

func TestAverageDailySpend_GroupsByCalendarDay(t *testing.T) {
	txns := []domain.Transaction{
		txnAt(100, 1, 9),
		txnAt(50, 1, 20),
		txnAt(30, 2, 9),
	}
	// Dia 1 suma 150, dia 2 suma 30: promedio de totales diarios.
	almostEqual(t, averageDailySpend(txns), 90, "average daily spend")
}

func TestAvgDailyTransactions_RoundsMeanDailyCount(t *testing.T) {
	txns := []domain.Transaction{
		txnAt(10, 1, 9),
		txnAt(10, 1, 10),
		txnAt(10, 2, 9),
	}
	// 2 y 1 transacciones por dia: promedio 1.5 redondea a 2.
	if got := avgDailyTransactions(txns); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := avgDailyTransactions(nil); got != 0 {
		t.Fatalf("expected 0 for empty input, got %d", got)
	}
}

func TestMaxSingleTransaction_UsesAbsoluteAmount(t *testing.T) {
	txns := []domain.Transaction{
		txnAt(20, 1, 9),
		txnAt(-500, 1, 10),
		txnAt(100, 2, 9),
	}
	almostEqual(t, maxSingleTransaction(txns), 500, "max single transaction")
}

func TestIncomeVolatility(t *testing.T) {
	if got := incomeVolatility([]domain.Transaction{txnAt(100, 1, 9)}); got != 0 {
		t.Fatalf("expected 0 for a single transaction, got %f", got)
	}

	uniform := []domain.Transaction{txnAt(100, 1, 9), txnAt(100, 2, 9), txnAt(100, 3, 9)}
	almostEqual(t, incomeVolatility(uniform), 0, "uniform amounts")

	// stdev/mean mayor a 1 queda acotado.
	spread := []domain.Transaction{txnAt(1, 1, 9), txnAt(1000, 2, 9)}
	almostEqual(t, incomeVolatility(spread), 1.0, "capped volatility")

	// Dos montos 150 y 50: media 100, stdev muestral sqrt(5000).
	pair := []domain.Transaction{txnAt(150, 1, 9), txnAt(50, 2, 9)}
	almostEqual(t, incomeVolatility(pair), math.Sqrt(5000)/100, "pair volatility")
}

func TestStressEventsCount(t *testing.T) {
	events := []domain.EmotionalEvent{
		eventAt(0.2, 0.5, "sadness", 1), // valence bajo
		eventAt(0.5, 0.8, "surprise", 2), // arousal alto
		eventAt(0.5, 0.5, "Anger", 3),    // emocion de estres, case-insensitive
		eventAt(0.5, 0.5, "calm", 4),     // neutro
	}
	if got := stressEventsCount(events); got != 3 {
		t.Fatalf("expected 3 stress events, got %d", got)
	}
}

func TestStressEventsCount_EventCountsOnce(t *testing.T) {
	events := []domain.EmotionalEvent{
		eventAt(0.1, 0.9, "fear", 1), // califica por las tres vias
	}
	if got := stressEventsCount(events); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestPositiveEmotionRatio(t *testing.T) {
	events := []domain.EmotionalEvent{
		eventAt(0.9, 0.5, "surprise", 1), // valence alto
		eventAt(0.2, 0.5, "Joy", 2),      // emocion positiva
		eventAt(0.2, 0.5, "sadness", 3),  // ninguna
	}
	almostEqual(t, positiveEmotionRatio(events), 2.0/3.0, "positive ratio")
	almostEqual(t, positiveEmotionRatio(nil), 0, "empty ratio")
}

func TestEmotionalVolatility_SortsByCaptureTime(t *testing.T) {
	// Desordenados a proposito; en orden cronologico: 0.2, 0.8, 0.5.
	events := []domain.EmotionalEvent{
		eventAt(0.5, 0.5, "calm", 3),
		eventAt(0.2, 0.5, "calm", 1),
		eventAt(0.8, 0.5, "calm", 2),
	}
	// Deltas |0.6| y |0.3| promedian 0.45.
	almostEqual(t, emotionalVolatility(events), 0.45, "emotional volatility")

	if got := emotionalVolatility(events[:1]); got != 0 {
		t.Fatalf("expected 0 for a single event, got %f", got)
	}
}

func TestRecentEmotionalTrend(t *testing.T) {
	events := []domain.EmotionalEvent{
		eventAt(0.2, 0.5, "calm", 1),
		eventAt(0.2, 0.5, "calm", 2),
		eventAt(0.8, 0.5, "calm", 3),
		eventAt(0.8, 0.5, "calm", 4),
	}
	almostEqual(t, recentEmotionalTrend(events), 0.6, "upward trend")

	if got := recentEmotionalTrend(events[:1]); got != 0 {
		t.Fatalf("expected 0 for a single event, got %f", got)
	}
}

func TestSpendingPatternChange(t *testing.T) {
	if got := spendingPatternChange([]domain.Transaction{txnAt(10, 1, 9), txnAt(10, 2, 9), txnAt(10, 3, 9)}); got != 0 {
		t.Fatalf("expected 0 with fewer than four transactions, got %f", got)
	}

	txns := []domain.Transaction{
		txnAt(100, 1, 9),
		txnAt(100, 2, 9),
		txnAt(150, 3, 9),
		txnAt(150, 4, 9),
	}
	almostEqual(t, spendingPatternChange(txns), 0.5, "fifty percent increase")

	jump := []domain.Transaction{
		txnAt(10, 1, 9),
		txnAt(10, 2, 9),
		txnAt(100, 3, 9),
		txnAt(100, 4, 9),
	}
	almostEqual(t, spendingPatternChange(jump), 1.0, "clamped increase")
}

func TestEmotionalSpendingCorrelation(t *testing.T) {
	highSpend := []domain.Transaction{txnAt(200, 1, 9)}
	positive := []domain.EmotionalEvent{eventAt(0.8, 0.5, "joy", 1)}
	almostEqual(t, emotionalSpendingCorrelation(highSpend, positive), 0.3, "high spend high valence")

	lowSpend := []domain.Transaction{txnAt(20, 1, 9)}
	negative := []domain.EmotionalEvent{eventAt(0.3, 0.5, "sadness", 1)}
	almostEqual(t, emotionalSpendingCorrelation(lowSpend, negative), 0.2, "low spend low valence")

	almostEqual(t, emotionalSpendingCorrelation(highSpend, negative), 0.0, "mixed case")
	almostEqual(t, emotionalSpendingCorrelation(nil, positive), 0.0, "no transactions")
}
