package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pkgerrors "ozo-backend/pkg/errors"
	"ozo-backend/pkg/logger"
)

const (
	// AuthHeaderKey is the header carrying the bearer token.
	AuthHeaderKey = "Authorization"
	// ContextSubjectKey is the gin context key holding the verified token subject.
	ContextSubjectKey = "subject"
)

// TokenVerifier resolves a bearer token to its subject.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// BearerAuth rejects requests without a valid "Authorization: Bearer <token>"
// header and stores the token subject for downstream handlers.
func BearerAuth(verifier TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, ok := strings.Cut(c.GetHeader(AuthHeaderKey), " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			logger.WithContext(c.Request.Context(), log).Debug("missing or malformed authorization header")
			abortUnauthorized(c, pkgerrors.NewUnauthorizedError("").Error())
			return
		}

		subject, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, err.Error())
			return
		}

		c.Set(ContextSubjectKey, subject)
		c.Request = c.Request.WithContext(logger.WithSubject(c.Request.Context(), subject))
		c.Next()
	}
}

// Subject returns the subject stored by BearerAuth.
func Subject(c *gin.Context) string {
	return c.GetString(ContextSubjectKey)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthorized",
		"message": message,
	})
}
