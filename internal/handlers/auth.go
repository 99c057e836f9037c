package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/seusdados/crm-service/internal/config"
	"github.com/seusdados/crm-service/internal/utils"
)

const (
	userIDKey     = "user_id"
	anonymousUser = "anonymous"
)

// TokenVerifier resolves a bearer token to a user id
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

type casdoorVerifier struct {
	client *casdoorsdk.Client
}

// NewCasdoorVerifier verifies Casdoor-issued JWTs against the configured certificate
func NewCasdoorVerifier(cfg config.CasdoorConfig) TokenVerifier {
	return &casdoorVerifier{
		client: casdoorsdk.NewClient(
			cfg.Endpoint,
			cfg.ClientID,
			cfg.ClientSecret,
			cfg.Certificate,
			cfg.OrganizationName,
			cfg.ApplicationName,
		),
	}
}

func (v *casdoorVerifier) VerifyToken(token string) (string, error) {
	claims, err := v.client.ParseJwtToken(token)
	if err != nil {
		return "", err
	}
	if claims.Id != "" {
		return claims.Id, nil
	}
	if claims.Name == "" {
		return "", fmt.Errorf("token carries no user identity")
	}
	return claims.Owner + "/" + claims.Name, nil
}

// AuthMiddleware sets user_id from the bearer token. A nil verifier disables
// authentication and every request runs as the anonymous user.
func AuthMiddleware(verifier TokenVerifier, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Set(userIDKey, anonymousUser)
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
				Code:    "unauthorized",
			})
			return
		}

		userID, err := verifier.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			utils.GetLoggerFromContext(c, logger).Warn("Rejected bearer token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid token",
				Code:    "unauthorized",
			})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}
