package session

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wanderlist/tripsync/internal/apiclient"
)

// Accepted claim-key aliases. The backend has issued both canonical and
// namespaced keys across its history; nothing beyond these is probed.
var (
	roleClaimKeys = []string{
		"role",
		"http://schemas.microsoft.com/ws/2008/06/identity/claims/role",
	}
	userIDClaimKeys = []string{"userId", "nameid", "sub"}
)

// tokenClaims is the identity the backend embeds in a login token.
type tokenClaims struct {
	Role   string
	UserID int
}

// decodeClaims base64url-decodes the token's payload segment and extracts the
// role and numeric identity claims. The signature is not verified here: the
// token was just issued by the backend over the login channel, and the client
// holds no verification key.
func decodeClaims(token string) (tokenClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return tokenClaims{}, &apiclient.TokenDecodeError{Err: err}
	}

	role, ok := firstString(claims, roleClaimKeys)
	if !ok {
		return tokenClaims{}, &apiclient.AuthClaimsError{Claim: "role"}
	}

	userID, ok := firstNumeric(claims, userIDClaimKeys)
	if !ok {
		return tokenClaims{}, &apiclient.AuthClaimsError{Claim: "user id"}
	}

	return tokenClaims{Role: role, UserID: userID}, nil
}

func firstString(claims jwt.MapClaims, keys []string) (string, bool) {
	for _, k := range keys {
		if v, ok := claims[k].(string); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func firstNumeric(claims jwt.MapClaims, keys []string) (int, bool) {
	for _, k := range keys {
		switch v := claims[k].(type) {
		case float64:
			return int(v), true
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
