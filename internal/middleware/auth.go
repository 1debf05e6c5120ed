package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/vendas/vendas-backend/internal/config"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CustomClaims contains the custom claims carried by the bearer token
type CustomClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// TokenKey is the context key for the raw bearer token
	TokenKey contextKey = "token"
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// SubjectKey is the context key for the token subject
	SubjectKey contextKey = "subject"
)

// AuthMiddleware extracts the bearer token that is forwarded upstream and,
// when a secret is configured, verifies it locally first.
type AuthMiddleware struct {
	validator *validator.Validator
}

// NewAuthMiddleware creates a new AuthMiddleware. A config without a secret
// only requires the token to be present.
func NewAuthMiddleware(cfg config.JWTConfig) (*AuthMiddleware, error) {
	if !cfg.Enabled() {
		return &AuthMiddleware{}, nil
	}

	secret := []byte(cfg.Secret)
	jwtValidator, err := validator.New(
		func(ctx context.Context) (interface{}, error) {
			return secret, nil
		},
		validator.HS256,
		cfg.Issuer,
		[]string{cfg.Audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &AuthMiddleware{validator: jwtValidator}, nil
}

// Verifies reports whether tokens are checked locally
func (m *AuthMiddleware) Verifies() bool {
	return m.validator != nil
}

// Authenticate returns an Echo middleware that requires a bearer token
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "missing authorization header")
			}

			// Check Bearer prefix
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
				return unauthorizedError(c, "invalid authorization header format")
			}

			token := strings.TrimSpace(parts[1])
			ctx := context.WithValue(c.Request().Context(), TokenKey, token)

			if m.validator != nil {
				claims, err := m.validator.ValidateToken(c.Request().Context(), token)
				if err != nil {
					log.Debug().Err(err).Msg("Token validation failed")
					return unauthorizedError(c, "invalid token")
				}

				validatedClaims, ok := claims.(*validator.ValidatedClaims)
				if !ok {
					return unauthorizedError(c, "invalid claims")
				}
				ctx = context.WithValue(ctx, ClaimsKey, validatedClaims)
				ctx = context.WithValue(ctx, SubjectKey, validatedClaims.RegisteredClaims.Subject)
			}

			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetToken extracts the bearer token from the context
func GetToken(c echo.Context) string {
	if token, ok := c.Request().Context().Value(TokenKey).(string); ok {
		return token
	}
	return ""
}

// GetSubject extracts the verified token subject from the context
func GetSubject(c echo.Context) string {
	if sub, ok := c.Request().Context().Value(SubjectKey).(string); ok {
		return sub
	}
	return ""
}

// GetClaims extracts the validated claims from the context
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// GetCustomClaims extracts the custom claims from the context
func GetCustomClaims(c echo.Context) *CustomClaims {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		return custom
	}
	return nil
}
