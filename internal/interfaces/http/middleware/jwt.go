package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erp/pos/internal/infrastructure/auth"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey   = "jwt_claims"
	JWTIdentityKey = "jwt_identity"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// Roles allowed to force-close another user's shift
var SupervisorRoles = []string{"admin", "manager"}

// TokenValidator validates bearer tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Validator TokenValidator
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(v TokenValidator, logger *zap.Logger) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		Validator: v,
		SkipPaths: []string{"/health", "/health/ready", "/api/v1/health"},
		Logger:    logger,
	}
}

// JWTAuthMiddleware authenticates the caller and stores the identity
// (tenant, branch, user, role) in the gin and request contexts.
func JWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		header := c.GetHeader(AuthHeaderKey)
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, cfg.Logger, auth.ErrInvalidToken, "missing bearer token")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			abortUnauthorized(c, cfg.Logger, auth.ErrInvalidToken, "empty bearer token")
			return
		}

		claims, err := cfg.Validator.ValidateAccessToken(token)
		if err != nil {
			abortUnauthorized(c, cfg.Logger, err, "token validation failed")
			return
		}
		identity, err := claims.Identity()
		if err != nil {
			abortUnauthorized(c, cfg.Logger, auth.ErrInvalidClaims, "malformed identity claims")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTIdentityKey, identity)

		ctx := c.Request.Context()
		reqLogger := logger.FromContext(ctx).With(
			zap.String("tenant_id", claims.TenantID),
			zap.String("branch_id", claims.BranchID),
			zap.String("user_id", claims.UserID),
		)
		c.Request = c.Request.WithContext(logger.WithContext(ctx, reqLogger))

		c.Next()
	}
}

// RequireRole rejects callers whose role is not listed
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		if !claims.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Role "+claims.Role+" may not perform this action", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, reason string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path),
	)

	code, message := dto.ErrCodeTokenInvalid, "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		message = "Token is not yet valid"
	case errors.Is(err, auth.ErrMissingTenantID), errors.Is(err, auth.ErrMissingBranchID),
		errors.Is(err, auth.ErrMissingUserID), errors.Is(err, auth.ErrInvalidClaims):
		message = "Token does not identify a tenant, branch and user"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetIdentity retrieves the authenticated identity
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	if v, ok := c.Get(JWTIdentityKey); ok {
		if id, ok := v.(auth.Identity); ok {
			return id, true
		}
	}
	return auth.Identity{}, false
}
