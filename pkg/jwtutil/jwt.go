package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"crm-service/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

// Decode failure classes. Callers must be able to tell an expired token
// (retryable via refresh) apart from every other failure.
var (
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenMalformed   = errors.New("token malformed")
	ErrTokenSignature   = errors.New("token signature invalid")
	ErrTokenUnsupported = errors.New("token unsupported")
)

var (
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
)

// Claims represents the JWT claims for an authenticated principal.
// Access tokens carry the full entitlement set so authorization checks
// stay stateless; refresh tokens carry only subject and tenant.
type Claims struct {
	UserID      string   `json:"userId,omitempty"`
	TenantID    string   `json:"tenantId,omitempty"`
	BranchID    string   `json:"branchId,omitempty"`
	GroupID     string   `json:"groupId,omitempty"`
	PositionID  string   `json:"positionId,omitempty"`
	RoleIDs     []string `json:"roleIds,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Roles       string   `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenSubject is the input for access token generation.
type TokenSubject struct {
	EsntlID     string
	UserID      string
	TenantID    string
	BranchID    string
	GroupID     string
	PositionID  string
	RoleIDs     []string
	Permissions []string
	Authorities string
}

// Initialize configures the signing key and token lifetimes
func Initialize(cfg *config.JWTConfig) {
	signingKey = []byte(cfg.SigningKey)
	accessTTL = time.Duration(cfg.AccessTTLSeconds) * time.Second
	refreshTTL = time.Duration(cfg.RefreshTTLSeconds) * time.Second
}

// AccessTTLSeconds returns the access token lifetime in seconds
func AccessTTLSeconds() int64 {
	return int64(accessTTL / time.Second)
}

// RefreshTTLSeconds returns the refresh token lifetime in seconds
func RefreshTTLSeconds() int64 {
	return int64(refreshTTL / time.Second)
}

// GenerateAccessToken creates a signed access token carrying the full
// principal context: identity, tenant, organizational attributes, role IDs,
// permission codes and the flattened authority string.
func GenerateAccessToken(subject TokenSubject) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      subject.UserID,
		TenantID:    subject.TenantID,
		BranchID:    subject.BranchID,
		GroupID:     subject.GroupID,
		PositionID:  subject.PositionID,
		RoleIDs:     subject.RoleIDs,
		Permissions: subject.Permissions,
		Roles:       subject.Authorities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.EsntlID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(signingKey)
}

// GenerateRefreshToken creates a signed refresh token with minimal claims
// (subject and tenant only) to bound the blast radius if it leaks.
func GenerateRefreshToken(esntlID, tenantID string) (string, error) {
	now := time.Now()
	claims := Claims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   esntlID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(refreshTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(signingKey)
}

// DecodeToken verifies the signature and expiry of a token and returns its
// claims. Failures are classified as ErrTokenExpired, ErrTokenMalformed,
// ErrTokenSignature or ErrTokenUnsupported.
func DecodeToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return signingKey, nil
	})

	if err != nil {
		return nil, classifyError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

func classifyError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrTokenSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenUnsupported, err)
	}
}
