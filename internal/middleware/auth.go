package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ryakubu/auto-categorize-app/internal/config"
	apperrors "github.com/ryakubu/auto-categorize-app/internal/errors"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey = "userID"
	EmailKey  = "email"
)

// JWTClaims are the claims of an access token issued by the identity
// provider. The subject is the user's UUID.
type JWTClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func getJWTKey() []byte {
	return []byte(config.Get().JWTSecret)
}

// GenerateAccessToken signs a token the way the identity provider does. The
// service only verifies tokens; this is used by tests and local tooling.
func GenerateAccessToken(userID, email string, ttl time.Duration) (string, error) {
	cfg := config.Get()
	now := time.Now()
	claims := &JWTClaims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    cfg.JWTIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if cfg.JWTAudience != "" {
		claims.Audience = jwt.ClaimStrings{cfg.JWTAudience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTKey())
}

// ParseAccessToken verifies signature, expiry, audience and issuer and
// returns the claims of a token whose subject is a UUID.
func ParseAccessToken(tokenString string) (*JWTClaims, error) {
	cfg := config.Get()
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.JWTAudience != "" {
		opts = append(opts, jwt.WithAudience(cfg.JWTAudience))
	}
	if cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWTIssuer))
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return getJWTKey(), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid access token: %w", err)
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("invalid token subject %q", claims.Subject)
	}
	return claims, nil
}

// AuthMiddleware verifies the bearer token and sets the user in the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header is required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid authorization header format"))
			return
		}

		claims, err := ParseAccessToken(parts[1])
		if err != nil {
			RequestLogger(c).Debugw("rejected access token", "error", err)
			abortWithError(c, apperrors.ErrInvalidToken)
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}

func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}
