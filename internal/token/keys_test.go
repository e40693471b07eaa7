package token

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	testKeysOnce sync.Once
	testKeys     [2]KeyPairPEM
	testKeysErr  error
)

// testCodecConfig generates two distinct RSA key pairs once per test
// binary; key generation is slow enough to be worth caching.
func testCodecConfig(t *testing.T) CodecConfig {
	t.Helper()

	testKeysOnce.Do(func() {
		for i := range testKeys {
			testKeys[i], testKeysErr = generateKeyPairPEM()
			if testKeysErr != nil {
				return
			}
		}
	})
	require.NoError(t, testKeysErr)

	return CodecConfig{Access: testKeys[0], Refresh: testKeys[1]}
}

func generateKeyPairPEM() (KeyPairPEM, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return KeyPairPEM{}, err
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return KeyPairPEM{}, err
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})

	return KeyPairPEM{
		Private: base64.StdEncoding.EncodeToString(privPEM),
		Public:  base64.StdEncoding.EncodeToString(pubPEM),
	}, nil
}
