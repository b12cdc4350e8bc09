package service

import (
	"math"
	"sort"
	"strings"

	"empathic-credit/internal/domain"
)

// FeatureAggregator deriva el feature vector a partir del historial crudo.
// Puro y deterministico: sin I/O, sin estado. Entradas vacias producen
// defaults neutros, nunca error.
type FeatureAggregator struct{}

const dateLayout = "2006-01-02"

var stressEmotions = map[string]bool{
	"anger":   true,
	"fear":    true,
	"anxiety": true,
	"stress":  true,
}

var positiveEmotions = map[string]bool{
	"joy":         true,
	"happiness":   true,
	"excitement":  true,
	"contentment": true,
}

// CreateFeatures construye el vector de 11 campos desde transacciones y
// eventos emocionales. Ambas secuencias pueden estar vacias por separado.
func (FeatureAggregator) CreateFeatures(transactions []domain.Transaction, events []domain.EmotionalEvent) domain.FeatureVector {
	return domain.FeatureVector{
		AverageDailySpend:    averageDailySpend(transactions),
		AvgDailyTransactions: avgDailyTransactions(transactions),
		MaxSingleTransaction: maxSingleTransaction(transactions),
		IncomeVolatility:     incomeVolatility(transactions),

		AverageEmotionalStability: averageEmotionalStability(events),
		StressEventsCount:         stressEventsCount(events),
		PositiveEmotionRatio:      positiveEmotionRatio(events),
		EmotionalVolatility:       emotionalVolatility(events),

		RecentEmotionalTrend:  recentEmotionalTrend(events),
		SpendingPatternChange: spendingPatternChange(transactions),

		EmotionalSpendingCorrelation: emotionalSpendingCorrelation(transactions, events),
	}
}

// averageDailySpend agrupa montos por dia calendario y promedia los totales
// diarios.
func averageDailySpend(transactions []domain.Transaction) float64 {
	if len(transactions) == 0 {
		return 0.0
	}

	dailySpends := make(map[string]float64)
	for _, t := range transactions {
		day := t.OccurredAt.Format(dateLayout)
		dailySpends[day] += t.Amount
	}

	var total float64
	for _, spend := range dailySpends {
		total += spend
	}
	return total / float64(len(dailySpends))
}

// avgDailyTransactions agrupa por dia calendario y redondea el promedio de
// conteos diarios.
func avgDailyTransactions(transactions []domain.Transaction) int {
	if len(transactions) == 0 {
		return 0
	}

	dailyCounts := make(map[string]int)
	for _, t := range transactions {
		day := t.OccurredAt.Format(dateLayout)
		dailyCounts[day]++
	}

	var total int
	for _, count := range dailyCounts {
		total += count
	}
	return int(math.Round(float64(total) / float64(len(dailyCounts))))
}

func maxSingleTransaction(transactions []domain.Transaction) float64 {
	var maxAmount float64
	for _, t := range transactions {
		if amount := math.Abs(t.Amount); amount > maxAmount {
			maxAmount = amount
		}
	}
	return maxAmount
}

// incomeVolatility es el coeficiente de variacion (stdev/mean) de los montos,
// acotado a 1.0.
func incomeVolatility(transactions []domain.Transaction) float64 {
	if len(transactions) < 2 {
		return 0.0
	}

	amounts := make([]float64, len(transactions))
	for i, t := range transactions {
		amounts[i] = t.Amount
	}

	meanAmount := mean(amounts)
	if meanAmount == 0 {
		return 0.0
	}
	return math.Min(1.0, sampleStdev(amounts)/meanAmount)
}

// averageEmotionalStability usa el valence como proxy de estabilidad.
// Sin datos devuelve 0 (neutro, no negativo).
func averageEmotionalStability(events []domain.EmotionalEvent) float64 {
	if len(events) == 0 {
		return 0
	}

	valences := make([]float64, len(events))
	for i, e := range events {
		valences[i] = e.Valence
	}
	return mean(valences)
}

// stressEventsCount cuenta eventos estresantes: valence bajo, arousal alto o
// emocion primaria de estres. Cada evento cuenta una sola vez.
func stressEventsCount(events []domain.EmotionalEvent) int {
	count := 0
	for _, e := range events {
		if e.Valence < 0.3 || e.Arousal > 0.7 {
			count++
		} else if stressEmotions[strings.ToLower(e.EmotionPrimary)] {
			count++
		}
	}
	return count
}

// positiveEmotionRatio es la fraccion de eventos con valence alto o emocion
// primaria positiva.
func positiveEmotionRatio(events []domain.EmotionalEvent) float64 {
	if len(events) == 0 {
		return 0
	}

	positive := 0
	for _, e := range events {
		if e.Valence > 0.35 {
			positive++
		} else if positiveEmotions[strings.ToLower(e.EmotionPrimary)] {
			positive++
		}
	}
	return float64(positive) / float64(len(events))
}

// emotionalVolatility promedia los deltas absolutos de valence entre eventos
// cronologicamente consecutivos.
func emotionalVolatility(events []domain.EmotionalEvent) float64 {
	if len(events) < 2 {
		return 0.0
	}

	sorted := sortEventsByTime(events)
	var totalChange float64
	for i := 1; i < len(sorted); i++ {
		totalChange += math.Abs(sorted[i].Valence - sorted[i-1].Valence)
	}
	return totalChange / float64(len(sorted)-1)
}

// recentEmotionalTrend compara el valence medio de la mitad reciente contra
// la mitad anterior, acotado a [-1,1].
func recentEmotionalTrend(events []domain.EmotionalEvent) float64 {
	if len(events) < 2 {
		return 0.0
	}

	sorted := sortEventsByTime(events)
	mid := len(sorted) / 2

	older := make([]float64, 0, mid)
	for _, e := range sorted[:mid] {
		older = append(older, e.Valence)
	}
	recent := make([]float64, 0, len(sorted)-mid)
	for _, e := range sorted[mid:] {
		recent = append(recent, e.Valence)
	}

	return clamp(mean(recent)-mean(older), -1.0, 1.0)
}

// spendingPatternChange compara el monto medio reciente contra el anterior
// como ratio de cambio relativo, acotado a [-1,1]. Con menos de cuatro
// transacciones no hay señal suficiente.
func spendingPatternChange(transactions []domain.Transaction) float64 {
	if len(transactions) < 4 {
		return 0.0
	}

	sorted := make([]domain.Transaction, len(transactions))
	copy(sorted, transactions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})
	mid := len(sorted) / 2

	older := make([]float64, 0, mid)
	for _, t := range sorted[:mid] {
		older = append(older, t.Amount)
	}
	recent := make([]float64, 0, len(sorted)-mid)
	for _, t := range sorted[mid:] {
		recent = append(recent, t.Amount)
	}

	olderMean := mean(older)
	if olderMean == 0 {
		return 0.0
	}
	return clamp((mean(recent)-olderMean)/olderMean, -1.0, 1.0)
}

// emotionalSpendingCorrelation es una heuristica gruesa, no una correlacion
// estadistica real: una implementacion completa necesitaria datos alineados
// en el tiempo.
func emotionalSpendingCorrelation(transactions []domain.Transaction, events []domain.EmotionalEvent) float64 {
	if len(transactions) == 0 || len(events) == 0 {
		return 0.0
	}

	amounts := make([]float64, len(transactions))
	for i, t := range transactions {
		amounts[i] = t.Amount
	}
	valences := make([]float64, len(events))
	for i, e := range events {
		valences[i] = e.Valence
	}

	avgAmount := mean(amounts)
	avgValence := mean(valences)

	switch {
	case avgAmount > 100 && avgValence > 0.6:
		return 0.3
	case avgAmount < 50 && avgValence < 0.4:
		return 0.2
	default:
		return 0.0
	}
}

func sortEventsByTime(events []domain.EmotionalEvent) []domain.EmotionalEvent {
	sorted := make([]domain.EmotionalEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CapturedAt.Before(sorted[j].CapturedAt)
	})
	return sorted
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// sampleStdev es la desviacion estandar muestral (divisor n-1).
func sampleStdev(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}
	m := mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
