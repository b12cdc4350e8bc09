package service

import (
	"fmt"
	"math"

	"empathic-credit/internal/domain"
)

// OfferTerms es el resultado del calculo de oferta. Los terminos solo estan
// presentes cuando el status es "offered".
type OfferTerms struct {
	Status      domain.OfferStatus
	CreditType  *domain.CreditType
	CreditLimit *float64
	APR         *float64
}

// OfferCalculator deriva los terminos de credito de forma deterministica a
// partir del risk score y el feature vector. Puro: sin I/O ni estado.
type OfferCalculator struct{}

const (
	maxCreditLimit = 50000.0
	minCreditLimit = 1000.0
	minAPR         = 0.08
	maxAPR         = 0.25
)

// CalculateOffer aplica la politica de oferta. Alto riesgo corta de inmediato
// con una oferta rechazada sin terminos.
func (c OfferCalculator) CalculateOffer(riskScore float64, features domain.FeatureVector) (OfferTerms, error) {
	if riskScore < 0 || riskScore > 1 {
		return OfferTerms{}, fmt.Errorf("risk score %f outside [0,1]", riskScore)
	}

	category := domain.CategorizeRisk(riskScore)
	if category == domain.RiskHigh {
		return OfferTerms{Status: domain.OfferStatusRejected}, nil
	}

	baseLimit := calculateBaseLimit(riskScore)

	multiplier, err := limitMultiplier(riskScore, features)
	if err != nil {
		return OfferTerms{}, err
	}
	// Los multiplicadores pueden empujar el limite fuera de la banda de
	// producto; los terminos finales siempre quedan dentro de ella.
	adjustedLimit := roundTo(clamp(baseLimit*multiplier, minCreditLimit, maxCreditLimit), 2)

	apr, err := calculateInterestRate(riskScore)
	if err != nil {
		return OfferTerms{}, err
	}
	apr = roundTo(apr, 4)

	creditType := determineCreditType(category)

	return OfferTerms{
		Status:      domain.OfferStatusOffered,
		CreditType:  &creditType,
		CreditLimit: &adjustedLimit,
		APR:         &apr,
	}, nil
}

// calculateBaseLimit: relacion inversa, menor riesgo = mayor limite.
// Decaimiento cuadratico con piso en el limite minimo.
func calculateBaseLimit(riskScore float64) float64 {
	base := maxCreditLimit * (1 - riskScore*riskScore)
	return math.Max(minCreditLimit, base)
}

// limitMultiplier compone los cuatro factores de ajuste del limite. El
// producto es independiente del orden.
func limitMultiplier(riskScore float64, features domain.FeatureVector) (float64, error) {
	// Gasto diario promedio: por debajo de $50/dia siempre el multiplicador
	// minimo, por encima de $5000/dia siempre el maximo.
	normSpend, err := normalize(features.AverageDailySpend, 50, 5000)
	if err != nil {
		return 0, err
	}
	spendMultiplier, err := interpolate(normSpend, 1, 1.5, 2, false)
	if err != nil {
		return 0, err
	}

	// Transacciones diarias: fuertemente sesgado hacia volumenes altos.
	normTxns, err := normalize(float64(features.AvgDailyTransactions), 0.1, 1000)
	if err != nil {
		return 0, err
	}
	txnsMultiplier, err := interpolate(normTxns, 0.9, 1.8, 2.5, false)
	if err != nil {
		return 0, err
	}

	// Tendencia emocional: penaliza linealmente las tendencias a la baja.
	normTrend, err := normalize(features.RecentEmotionalTrend, -1, 1)
	if err != nil {
		return 0, err
	}
	trendMultiplier, err := interpolate(normTrend, 0.5, 1.5, 1, false)
	if err != nil {
		return 0, err
	}

	// Risk score (ya en [0,1]), invertido para que menor riesgo reciba mayor
	// multiplicador.
	riskMultiplier, err := interpolate(riskScore, 0.7, 1.2, 2, true)
	if err != nil {
		return 0, err
	}

	return spendMultiplier * txnsMultiplier * trendMultiplier * riskMultiplier, nil
}

// calculateInterestRate deriva el APR solo del risk score: mayor riesgo,
// mayor tasa.
func calculateInterestRate(riskScore float64) (float64, error) {
	return interpolate(riskScore, minAPR, maxAPR, 1.75, false)
}

func determineCreditType(category domain.RiskCategory) domain.CreditType {
	switch category {
	case domain.RiskHigh, domain.RiskMedium:
		return domain.CreditShortTerm
	default:
		return domain.CreditLongTerm
	}
}

// interpolate interpola entre minValue y maxValue con un factor de sesgo:
//
//	result = (maxValue - minValue) * metric^biasFactor + minValue
//
// metric debe estar en [0,1]; fuera de rango es un error de programacion.
// Con invert se usa (1 - metric), la "otra mitad" de la curva.
// biasFactor < 1 sesga hacia crecimiento rapido en valores bajos, == 1 es
// lineal, > 1 sesga hacia valores altos.
func interpolate(metric, minValue, maxValue, biasFactor float64, invert bool) (float64, error) {
	if metric < 0 || metric > 1 {
		return 0, fmt.Errorf("interpolate: metric %f outside [0,1]", metric)
	}
	if invert {
		metric = 1.0 - metric
	}
	return (maxValue-minValue)*math.Pow(metric, biasFactor) + minValue, nil
}

// normalize escala metric a [0,1] entre dos cotas: por debajo de lower mapea
// a 0, por encima de upper mapea a 1.
func normalize(metric, lower, upper float64) (float64, error) {
	if upper == lower {
		return 0, fmt.Errorf("normalize: bounds must differ, got %f", lower)
	}
	if metric <= lower {
		return 0.0, nil
	}
	if metric >= upper {
		return 1.0, nil
	}
	return (metric - lower) / (upper - lower), nil
}

func roundTo(v float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
