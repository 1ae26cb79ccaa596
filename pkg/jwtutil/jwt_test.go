package jwtutil

import (
	"testing"

	"crm-service/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.JWTConfig {
	return &config.JWTConfig{
		SigningKey:        "test-signing-key-test-signing-key-test",
		AccessTTLSeconds:  1800,
		RefreshTTLSeconds: 604800,
	}
}

func testSubject() TokenSubject {
	return TokenSubject{
		EsntlID:     "ESNTL-0001",
		UserID:      "jdoe",
		TenantID:    "T1",
		BranchID:    "BR01",
		GroupID:     "GRP01",
		PositionID:  "POS01",
		RoleIDs:     []string{"ROLE_SALES", "ROLE_USER"},
		Permissions: []string{"API:orders:READ", "MENU:orders:READ"},
		Authorities: "ROLE_SALES,ROLE_USER",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	Initialize(testConfig())

	subject := testSubject()
	tokenString, err := GenerateAccessToken(subject)
	require.NoError(t, err)

	claims, err := DecodeToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, subject.EsntlID, claims.Subject)
	assert.Equal(t, subject.UserID, claims.UserID)
	assert.Equal(t, subject.TenantID, claims.TenantID)
	assert.Equal(t, subject.BranchID, claims.BranchID)
	assert.Equal(t, subject.GroupID, claims.GroupID)
	assert.Equal(t, subject.PositionID, claims.PositionID)
	assert.ElementsMatch(t, subject.RoleIDs, claims.RoleIDs)
	assert.ElementsMatch(t, subject.Permissions, claims.Permissions)
	assert.Equal(t, subject.Authorities, claims.Roles)
}

func TestRefreshTokenCarriesMinimalClaims(t *testing.T) {
	Initialize(testConfig())

	tokenString, err := GenerateRefreshToken("ESNTL-0001", "T1")
	require.NoError(t, err)

	claims, err := DecodeToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, "ESNTL-0001", claims.Subject)
	assert.Equal(t, "T1", claims.TenantID)
	assert.Empty(t, claims.UserID)
	assert.Empty(t, claims.RoleIDs)
	assert.Empty(t, claims.Permissions)
	assert.Empty(t, claims.Roles)
}

func TestExpiredTokenFailsDecode(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTTLSeconds = -60
	Initialize(cfg)

	tokenString, err := GenerateAccessToken(testSubject())
	require.NoError(t, err)

	_, err = DecodeToken(tokenString)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTamperedSignatureFailsDecode(t *testing.T) {
	Initialize(testConfig())
	tokenString, err := GenerateAccessToken(testSubject())
	require.NoError(t, err)

	other := testConfig()
	other.SigningKey = "a-completely-different-signing-key-now"
	Initialize(other)

	_, err = DecodeToken(tokenString)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestMalformedTokenFailsDecode(t *testing.T) {
	Initialize(testConfig())

	_, err := DecodeToken("not-a-jwt")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenTTLAccessors(t *testing.T) {
	Initialize(testConfig())
	assert.EqualValues(t, 1800, AccessTTLSeconds())
	assert.EqualValues(t, 604800, RefreshTTLSeconds())
}
