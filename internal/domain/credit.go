package domain

import "time"

// RiskCategory clasifica un risk score en bandas de negocio.
type RiskCategory string

const (
	RiskVeryLow RiskCategory = "very_low_risk"
	RiskLow     RiskCategory = "low_risk"
	RiskMedium  RiskCategory = "medium_risk"
	RiskHigh    RiskCategory = "high_risk"
)

// CategorizeRisk mapea un score [0,1] a su banda. Umbrales fijos de negocio.
func CategorizeRisk(score float64) RiskCategory {
	switch {
	case score >= 0.75:
		return RiskHigh
	case score >= 0.50:
		return RiskMedium
	case score >= 0.25:
		return RiskLow
	default:
		return RiskVeryLow
	}
}

// OfferStatus es el estado de ciclo de vida de una oferta.
type OfferStatus string

const (
	OfferStatusOffered  OfferStatus = "offered"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
	OfferStatusDenied   OfferStatus = "denied"
)

// CreditType distingue lineas de corto y largo plazo.
type CreditType string

const (
	CreditShortTerm CreditType = "short_term"
	CreditLongTerm  CreditType = "long_term"
)

// RiskAssessment es el resultado de una consulta al modelo de riesgo.
// Inmutable una vez creado; reutilizable mientras no expire.
type RiskAssessment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RiskScore float64   `json:"risk_score"` // [0,1], 4 decimales
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Category devuelve la banda de riesgo del assessment.
func (a RiskAssessment) Category() RiskCategory {
	return CategorizeRisk(a.RiskScore)
}

// CreditOffer es una oferta de credito emitida para un usuario. Los terminos
// (tipo, limite, APR) solo estan presentes cuando status es "offered"; una
// oferta rechazada se persiste sin terminos.
type CreditOffer struct {
	ID               string      `json:"id"`
	UserID           string      `json:"user_id"`
	RiskAssessmentID string      `json:"risk_assessment_id"`
	Status           OfferStatus `json:"status"`
	CreditType       *CreditType `json:"credit_type,omitempty"`
	CreditLimit      *float64    `json:"credit_limit,omitempty"`
	APR              *float64    `json:"apr,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	ExpiresAt        time.Time   `json:"expires_at"`
}

// Active indica si la oferta sigue aceptable en el instante dado.
func (o CreditOffer) Active(now time.Time) bool {
	return o.Status == OfferStatusOffered && now.Before(o.ExpiresAt)
}

// CreditAccount es la linea de credito activa de un usuario. A lo sumo una
// por usuario; su existencia bloquea nuevas solicitudes.
type CreditAccount struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ActiveLimit     float64    `json:"active_limit"`
	APR             float64    `json:"apr"`
	CreditType      CreditType `json:"credit_type"`
	CurrentBalance  float64    `json:"current_balance"`
	AvailableCredit float64    `json:"available_credit"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
