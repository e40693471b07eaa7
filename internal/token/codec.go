package token

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrKeyConfig means key material is missing or malformed. It can
	// only surface at construction time; a built Codec always has both
	// key pairs.
	ErrKeyConfig = errors.New("token key material missing or malformed")

	// ErrExpired means the signature checked out but expires_at is in
	// the past.
	ErrExpired = errors.New("token expired")

	// ErrInvalid covers a bad signature, a malformed token, or a token
	// signed by another class's key.
	ErrInvalid = errors.New("token invalid")
)

// KeyPairPEM holds one class's RSA key pair as base64-encoded PEM, the
// form the keys arrive in from the environment.
type KeyPairPEM struct {
	Private string
	Public  string
}

type CodecConfig struct {
	Access  KeyPairPEM
	Refresh KeyPairPEM
}

type keyPair struct {
	private *rsa.PrivateKey
	public  *rsa.PublicKey
}

// Codec signs claims into compact RS256 tokens and verifies them back.
// Access and Refresh use independent key pairs so possession of one
// class of token never allows forging the other.
type Codec struct {
	keys map[Class]keyPair
}

func NewCodec(cfg CodecConfig) (*Codec, error) {
	keys := map[Class]keyPair{}

	for class, pem := range map[Class]KeyPairPEM{
		ClassAccess:  cfg.Access,
		ClassRefresh: cfg.Refresh,
	} {
		kp, err := parseKeyPair(pem)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", class, err)
		}
		keys[class] = kp
	}

	return &Codec{keys: keys}, nil
}

func parseKeyPair(p KeyPairPEM) (keyPair, error) {
	if p.Private == "" || p.Public == "" {
		return keyPair{}, ErrKeyConfig
	}

	privPEM, err := base64.StdEncoding.DecodeString(p.Private)
	if err != nil {
		return keyPair{}, fmt.Errorf("%w: private key is not base64", ErrKeyConfig)
	}
	pubPEM, err := base64.StdEncoding.DecodeString(p.Public)
	if err != nil {
		return keyPair{}, fmt.Errorf("%w: public key is not base64", ErrKeyConfig)
	}

	private, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return keyPair{}, fmt.Errorf("%w: %v", ErrKeyConfig, err)
	}
	public, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return keyPair{}, fmt.Errorf("%w: %v", ErrKeyConfig, err)
	}

	return keyPair{private: private, public: public}, nil
}

func (c *Codec) Sign(class Class, claims Claims) (string, error) {
	kp, ok := c.keys[class]
	if !ok {
		return "", ErrKeyConfig
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(kp.private)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", class, err)
	}
	return signed, nil
}

func (c *Codec) Verify(class Class, tokenString string) (Claims, error) {
	kp, ok := c.keys[class]
	if !ok {
		return Claims{}, ErrKeyConfig
	}

	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	)

	_, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return kp.public, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrInvalid
	}

	if claims.TokenID == "" || claims.Subject == "" {
		return Claims{}, ErrInvalid
	}

	return claims, nil
}
