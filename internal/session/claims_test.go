package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderlist/tripsync/internal/apiclient"
)

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestDecodeClaims_CanonicalKeys(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{"role": "admin", "userId": "42"})

	claims, err := decodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, 42, claims.UserID)
}

func TestDecodeClaims_NamespacedRoleAndNameid(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{
		"http://schemas.microsoft.com/ws/2008/06/identity/claims/role": "user",
		"nameid": "17",
	})

	claims, err := decodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, 17, claims.UserID)
}

func TestDecodeClaims_NumericSubClaim(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{"role": "user", "sub": "23"})

	claims, err := decodeClaims(token)
	require.NoError(t, err)
	assert.Equal(t, 23, claims.UserID)
}

func TestDecodeClaims_MissingRole(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{"userId": "42"})

	_, err := decodeClaims(token)
	var claimsErr *apiclient.AuthClaimsError
	require.True(t, errors.As(err, &claimsErr))
	assert.Equal(t, "role", claimsErr.Claim)
}

func TestDecodeClaims_NonNumericIdentity(t *testing.T) {
	token := mintToken(t, jwt.MapClaims{"role": "user", "sub": "not-a-number"})

	_, err := decodeClaims(token)
	var claimsErr *apiclient.AuthClaimsError
	assert.True(t, errors.As(err, &claimsErr))
}

func TestDecodeClaims_MalformedToken(t *testing.T) {
	_, err := decodeClaims("definitely.not-base64url.a-token")

	var decodeErr *apiclient.TokenDecodeError
	assert.True(t, errors.As(err, &decodeErr))
}
