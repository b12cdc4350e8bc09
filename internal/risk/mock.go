package risk

import (
	"context"

	"empathic-credit/internal/domain"
)

// MockScorer permite tests y desarrollo local sin el modelo real.
type MockScorer struct {
	Score float64
	Err   error
	Calls int
}

func (m *MockScorer) Predict(ctx context.Context, features domain.FeatureVector) (float64, error) {
	m.Calls++
	return m.Score, m.Err
}
