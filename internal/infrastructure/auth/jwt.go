// Package auth validates the access tokens issued by the back-office
// identity provider.
package auth

import (
	"errors"
	"time"

	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingTenantID  = errors.New("missing tenant_id in claims")
	ErrMissingBranchID  = errors.New("missing branch_id in claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims identifies the caller: the tenant and branch the terminal is
// bound to, the user at the terminal and their role
type Claims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id"`
	BranchID string `json:"branch_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// JWTService signs and validates access tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
		now:        time.Now,
	}
}

// GenerateTokenInput contains input for token generation
type GenerateTokenInput struct {
	TenantID uuid.UUID
	BranchID uuid.UUID
	UserID   uuid.UUID
	Username string
	Role     string
}

// GenerateAccessToken signs an access token. Production tokens come from
// the identity provider; this is used by tooling and tests sharing the secret.
func (s *JWTService) GenerateAccessToken(input GenerateTokenInput) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.expiration)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.UserID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID: input.TenantID.String(),
		BranchID: input.BranchID.String(),
		UserID:   input.UserID.String(),
		Username: input.Username,
		Role:     input.Role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ValidateAccessToken validates an access token and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.TenantID == "" {
		return nil, ErrMissingTenantID
	}
	if claims.BranchID == "" {
		return nil, ErrMissingBranchID
	}
	if claims.UserID == "" {
		return nil, ErrMissingUserID
	}
	if _, err := claims.Identity(); err != nil {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// Identity is the parsed caller triple
type Identity struct {
	TenantID uuid.UUID
	BranchID uuid.UUID
	UserID   uuid.UUID
	Username string
	Role     string
}

// Identity parses the id claims
func (c *Claims) Identity() (Identity, error) {
	tenantID, err := uuid.Parse(c.TenantID)
	if err != nil {
		return Identity{}, err
	}
	branchID, err := uuid.Parse(c.BranchID)
	if err != nil {
		return Identity{}, err
	}
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		TenantID: tenantID,
		BranchID: branchID,
		UserID:   userID,
		Username: c.Username,
		Role:     c.Role,
	}, nil
}

// HasRole reports whether the caller holds any of the roles
func (c *Claims) HasRole(roles ...string) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}
