package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	codec, err := NewCodec(testCodecConfig(t))
	require.NoError(t, err)

	for _, class := range []Class{ClassAccess, ClassRefresh} {
		claims := NewClaims("user-1", "svc", time.Minute)

		signed, err := codec.Sign(class, claims)
		require.NoError(t, err)
		require.Equal(t, 3, len(strings.Split(signed, ".")))

		got, err := codec.Verify(class, signed)
		require.NoError(t, err)
		require.Equal(t, claims.TokenID, got.TokenID)
		require.Equal(t, "user-1", got.Subject)
		require.Equal(t, "svc", got.Issuer)
	}
}

func TestCodecRejectsCrossClassTokens(t *testing.T) {
	codec, err := NewCodec(testCodecConfig(t))
	require.NoError(t, err)

	refreshToken, err := codec.Sign(ClassRefresh, NewClaims("user-1", "svc", time.Minute))
	require.NoError(t, err)

	_, err = codec.Verify(ClassAccess, refreshToken)
	require.ErrorIs(t, err, ErrInvalid)

	accessToken, err := codec.Sign(ClassAccess, NewClaims("user-1", "svc", time.Minute))
	require.NoError(t, err)

	_, err = codec.Verify(ClassRefresh, accessToken)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestCodecReportsExpiry(t *testing.T) {
	codec, err := NewCodec(testCodecConfig(t))
	require.NoError(t, err)

	signed, err := codec.Sign(ClassAccess, NewClaims("user-1", "svc", -time.Minute))
	require.NoError(t, err)

	_, err = codec.Verify(ClassAccess, signed)
	require.ErrorIs(t, err, ErrExpired)
}

func TestCodecRejectsTamperedTokens(t *testing.T) {
	codec, err := NewCodec(testCodecConfig(t))
	require.NoError(t, err)

	signed, err := codec.Sign(ClassAccess, NewClaims("user-1", "svc", time.Minute))
	require.NoError(t, err)

	parts := strings.Split(signed, ".")
	require.Len(t, parts, 3)
	// Flip a character in the payload segment.
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = codec.Verify(ClassAccess, tampered)
	require.ErrorIs(t, err, ErrInvalid)

	_, err = codec.Verify(ClassAccess, "not-a-token")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestNewCodecRejectsMissingKeys(t *testing.T) {
	cfg := testCodecConfig(t)
	cfg.Refresh.Private = ""

	_, err := NewCodec(cfg)
	require.ErrorIs(t, err, ErrKeyConfig)

	_, err = NewCodec(CodecConfig{})
	require.ErrorIs(t, err, ErrKeyConfig)
}

func TestNewCodecRejectsGarbageKeys(t *testing.T) {
	cfg := testCodecConfig(t)
	cfg.Access.Public = "%%%not-base64%%%"

	_, err := NewCodec(cfg)
	require.ErrorIs(t, err, ErrKeyConfig)
}
