package token

import (
	"crypto/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

// Class selects which key pair signs and verifies a token. It is never
// serialized into the payload: trusting a self-reported class would let
// a refresh token masquerade as an access token, so class is enforced
// purely by key separation.
type Class string

const (
	ClassAccess  Class = "access"
	ClassRefresh Class = "refresh"
)

// Claims is the signed payload of every issued token. TokenID is a
// ULID, so identifiers sort by issuance time.
type Claims struct {
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

func NewClaims(subject string, issuer string, ttl time.Duration) Claims {
	now := time.Now().UTC()
	return Claims{
		TokenID: ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}
