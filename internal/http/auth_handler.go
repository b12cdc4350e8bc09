package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"empathic-credit/internal/service"
)

// AuthHandler emite access tokens para clientes de servicio autenticados
// con client credentials.
type AuthHandler struct {
	logger           *zap.Logger
	jwtServ          *service.JWTService
	clientID         string
	clientSecretHash string
}

func NewAuthHandler(logger *zap.Logger, jwtServ *service.JWTService, clientID, clientSecretHash string) *AuthHandler {
	return &AuthHandler{
		logger:           logger,
		jwtServ:          jwtServ,
		clientID:         clientID,
		clientSecretHash: clientSecretHash,
	}
}

// Token maneja POST /v1/token.
func (h *AuthHandler) Token(c *gin.Context) {
	var req struct {
		ClientID     string `json:"client_id" binding:"required"`
		ClientSecret string `json:"client_secret" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid token request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if !h.validCredentials(req.ClientID, req.ClientSecret) {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.jwtServ.IssueAccessToken(req.ClientID)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, token)
}

func (h *AuthHandler) validCredentials(clientID, clientSecret string) bool {
	if h.clientID == "" || h.clientSecretHash == "" {
		return false
	}
	idMatch := subtle.ConstantTimeCompare([]byte(clientID), []byte(h.clientID)) == 1
	secretMatch := bcrypt.CompareHashAndPassword([]byte(h.clientSecretHash), []byte(clientSecret)) == nil
	return idMatch && secretMatch
}
