package service

import (
	"errors"

	"empathic-credit/internal/domain"
)

// Errores de negocio del pipeline de credito. Se propagan sin envolver hasta
// el boundary HTTP, que los mapea a status codes.
var (
	ErrAccountExists = errors.New("user already has an active credit account")
	ErrNoActiveOffer = errors.New("no active credit offer found")
	ErrOfferMismatch = errors.New("provided offer id does not match the active offer")
	ErrOfferExpired  = errors.New("credit offer has expired")
	ErrIngestion     = errors.New("emotional event ingestion failed")
)

// ActiveOfferError señala que ya existe una oferta activa y la transporta:
// los callers la tratan como exito idempotente, no como fallo.
type ActiveOfferError struct {
	Offer domain.CreditOffer
}

func (e *ActiveOfferError) Error() string {
	return "user already has an active credit offer"
}
