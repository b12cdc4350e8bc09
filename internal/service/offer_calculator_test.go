package service

import (
	"math"
	"testing"

	"empathic-credit/internal/domain"
)

func neutralFeatures() domain.FeatureVector {
	return domain.FeatureVector{
		AverageDailySpend:    100,
		AvgDailyTransactions: 3,
		RecentEmotionalTrend: 0,
	}
}

func TestCalculateOffer_HighRiskIsRejectedWithoutTerms(t *testing.T) {
	var calc OfferCalculator
	for _, score := range []float64{0.75, 0.8, 1.0} {
		terms, err := calc.CalculateOffer(score, neutralFeatures())
		if err != nil {
			t.Fatalf("score %f: unexpected error: %v", score, err)
		}
		if terms.Status != domain.OfferStatusRejected {
			t.Fatalf("score %f: expected rejected, got %s", score, terms.Status)
		}
		if terms.CreditType != nil || terms.CreditLimit != nil || terms.APR != nil {
			t.Fatalf("score %f: rejected offer must not carry terms", score)
		}
	}
}

func TestCalculateOffer_ScoreOutsideRangeIsAnError(t *testing.T) {
	var calc OfferCalculator
	for _, score := range []float64{-0.1, 1.1} {
		if _, err := calc.CalculateOffer(score, neutralFeatures()); err == nil {
			t.Fatalf("score %f: expected error", score)
		}
	}
}

func TestCalculateOffer_CreditTypeFollowsRiskCategory(t *testing.T) {
	var calc OfferCalculator

	terms, err := calc.CalculateOffer(0.6, neutralFeatures())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *terms.CreditType != domain.CreditShortTerm {
		t.Fatalf("medium risk: expected short_term, got %s", *terms.CreditType)
	}

	terms, err = calc.CalculateOffer(0.3, neutralFeatures())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *terms.CreditType != domain.CreditLongTerm {
		t.Fatalf("low risk: expected long_term, got %s", *terms.CreditType)
	}

	terms, err = calc.CalculateOffer(0.1, neutralFeatures())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *terms.CreditType != domain.CreditLongTerm {
		t.Fatalf("very low risk: expected long_term, got %s", *terms.CreditType)
	}
}

// Los terminos finales quedan dentro de la banda de producto para cualquier
// combinacion de score y features extremos.
func TestCalculateOffer_TermsStayWithinProductBand(t *testing.T) {
	var calc OfferCalculator

	vectors := []domain.FeatureVector{
		{},
		{AverageDailySpend: 10000, AvgDailyTransactions: 2000, RecentEmotionalTrend: 1},
		{AverageDailySpend: 1, AvgDailyTransactions: 0, RecentEmotionalTrend: -1},
		{AverageDailySpend: 500, AvgDailyTransactions: 50, RecentEmotionalTrend: 0.5},
	}

	for score := 0.0; score < 0.75; score += 0.05 {
		for _, features := range vectors {
			terms, err := calc.CalculateOffer(score, features)
			if err != nil {
				t.Fatalf("score %f: unexpected error: %v", score, err)
			}
			if terms.Status != domain.OfferStatusOffered {
				t.Fatalf("score %f: expected offered, got %s", score, terms.Status)
			}
			if *terms.CreditLimit < minCreditLimit || *terms.CreditLimit > maxCreditLimit {
				t.Fatalf("score %f: credit limit %f outside band", score, *terms.CreditLimit)
			}
			if *terms.APR < minAPR || *terms.APR > maxAPR {
				t.Fatalf("score %f: apr %f outside band", score, *terms.APR)
			}
		}
	}
}

func TestCalculateBaseLimit(t *testing.T) {
	almostEqual(t, calculateBaseLimit(0), maxCreditLimit, "zero risk")
	almostEqual(t, calculateBaseLimit(1), minCreditLimit, "full risk floors")
	// Decaimiento cuadratico: score 0.5 retiene el 75% del maximo.
	almostEqual(t, calculateBaseLimit(0.5), 37500, "quadratic decay")
}

func TestCalculateInterestRate_MonotonicInRisk(t *testing.T) {
	apr0, err := calculateInterestRate(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	almostEqual(t, apr0, minAPR, "zero risk apr")

	apr1, err := calculateInterestRate(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	almostEqual(t, apr1, maxAPR, "full risk apr")

	prev := apr0
	for score := 0.1; score <= 1.0; score += 0.1 {
		apr, err := calculateInterestRate(score)
		if err != nil {
			t.Fatalf("score %f: unexpected error: %v", score, err)
		}
		if apr <= prev {
			t.Fatalf("score %f: apr %f not increasing from %f", score, apr, prev)
		}
		prev = apr
	}
}

func TestInterpolate(t *testing.T) {
	for _, bias := range []float64{0.5, 1, 1.75, 2.5} {
		lo, err := interpolate(0, 10, 20, bias, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		almostEqual(t, lo, 10, "metric 0 maps to min")

		hi, err := interpolate(1, 10, 20, bias, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		almostEqual(t, hi, 20, "metric 1 maps to max")
	}

	linear, err := interpolate(0.5, 0, 100, 1, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	almostEqual(t, linear, 50, "linear midpoint")

	inverted, err := interpolate(0, 10, 20, 2, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	almostEqual(t, inverted, 20, "inverted metric 0 maps to max")

	// Sesgo > 1 empuja la curva por debajo de la lineal.
	biased, err := interpolate(0.5, 0, 100, 2, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	almostEqual(t, biased, 25, "quadratic bias")

	if _, err := interpolate(1.2, 0, 1, 1, false); err == nil {
		t.Fatal("expected error for metric outside [0,1]")
	}
	if _, err := interpolate(-0.2, 0, 1, 1, false); err == nil {
		t.Fatal("expected error for metric outside [0,1]")
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		metric, lower, upper, want float64
	}{
		{metric: 10, lower: 50, upper: 5000, want: 0},
		{metric: 50, lower: 50, upper: 5000, want: 0},
		{metric: 9000, lower: 50, upper: 5000, want: 1},
		{metric: 0, lower: -1, upper: 1, want: 0.5},
		{metric: 2525, lower: 50, upper: 5000, want: 0.5},
	}
	for _, tc := range cases {
		got, err := normalize(tc.metric, tc.lower, tc.upper)
		if err != nil {
			t.Fatalf("normalize(%f): unexpected error: %v", tc.metric, err)
		}
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("normalize(%f): expected %f, got %f", tc.metric, tc.want, got)
		}
	}

	if _, err := normalize(1, 5, 5); err == nil {
		t.Fatal("expected error for equal bounds")
	}
}

func TestRoundTo(t *testing.T) {
	almostEqual(t, roundTo(0.123456, 4), 0.1235, "four decimals")
	almostEqual(t, roundTo(1234.567, 2), 1234.57, "two decimals")
}
