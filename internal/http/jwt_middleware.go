package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"empathic-credit/internal/service"
)

const contextClaimsKey = "client_claims"

// JWTAuthMiddleware exige un access token de cliente de servicio valido y
// deja sus claims disponibles para el handler.
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			abortUnauthenticated(c, http.StatusInternalServerError, "token verification unavailable")
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthenticated(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := jwtSvc.ParseAccessToken(token)
		if err != nil {
			abortUnauthenticated(c, http.StatusUnauthorized, "token invalid or expired")
			return
		}

		c.Set(contextClaimsKey, claims)
		c.Next()
	}
}

// bearerToken extrae el token del header Authorization; el esquema se
// compara sin distinguir mayusculas.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthenticated(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// GetAuthClaims recupera los claims del cliente autenticado, si los hay.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(contextClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}
