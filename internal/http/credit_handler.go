package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"empathic-credit/internal/service"
)

// CreditHandler mantiene dependencias para los endpoints de credito.
type CreditHandler struct {
	logger     *zap.Logger
	creditServ *service.CreditService
}

func NewCreditHandler(logger *zap.Logger, creditServ *service.CreditService) *CreditHandler {
	return &CreditHandler{
		logger:     logger,
		creditServ: creditServ,
	}
}

// Apply maneja POST /v1/credit/apply. Una oferta activa preexistente se
// devuelve como exito idempotente, no como conflicto.
func (h *CreditHandler) Apply(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid apply request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	offer, err := h.creditServ.ApplyForCreditLine(c.Request.Context(), req.UserID)
	if err != nil {
		var activeOffer *service.ActiveOfferError
		switch {
		case errors.As(err, &activeOffer):
			c.JSON(http.StatusOK, gin.H{"offer": activeOffer.Offer, "existing": true})
		case errors.Is(err, service.ErrAccountExists):
			c.JSON(http.StatusConflict, gin.H{"error": "user already has an active credit account"})
		default:
			h.logger.Error("apply for credit line failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process application"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"offer": offer})
}

// Accept maneja POST /v1/credit/offers/:offer_id/accept. La materializacion
// es asincronica; responde 202 con un token de seguimiento.
func (h *CreditHandler) Accept(c *gin.Context) {
	offerID := c.Param("offer_id")

	var req struct {
		UserID string `json:"user_id" binding:"required,uuid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid accept request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	trackingToken, err := h.creditServ.AcceptCreditOffer(c.Request.Context(), offerID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountExists):
			c.JSON(http.StatusConflict, gin.H{"error": "user already has an active credit account"})
		case errors.Is(err, service.ErrNoActiveOffer):
			c.JSON(http.StatusNotFound, gin.H{"error": "no active credit offer found"})
		case errors.Is(err, service.ErrOfferMismatch):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "offer id does not match the active offer"})
		case errors.Is(err, service.ErrOfferExpired):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "credit offer has expired"})
		default:
			h.logger.Error("accept credit offer failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not accept offer"})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"id":       trackingToken,
		"offer_id": offerID,
		"status":   "processing",
		"message":  "credit acceptance is being processed",
	})
}
