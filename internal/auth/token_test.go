package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func newTestCodec(t *testing.T, ttl time.Duration) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testSecret, ttl)
	require.NoError(t, err)
	return codec
}

func TestNewTokenCodec_RequiresSecret(t *testing.T) {
	_, err := NewTokenCodec("", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenCodec("   ", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenCodec(testSecret, 0)
	assert.Error(t, err)
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	token, err := codec.Issue("alice@example.com", time.Now())
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	subject, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)
}

func TestTokenCodec_Expired(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	token, err := codec.Issue("alice@example.com", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = codec.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenCodec_ValidUntilExpiry(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	// Issued half the TTL ago, so still inside the validity window.
	token, err := codec.Issue("alice@example.com", time.Now().Add(-30*time.Minute))
	require.NoError(t, err)

	subject, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)
}

func TestTokenCodec_TamperedSignature(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	token, err := codec.Issue("alice@example.com", time.Now())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Parse(tampered)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestTokenCodec_WrongKey(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	other, err := NewTokenCodec("a-different-secret", time.Hour)
	require.NoError(t, err)

	token, err := other.Issue("alice@example.com", time.Now())
	require.NoError(t, err)

	_, err = codec.Parse(token)
	assert.ErrorIs(t, err, ErrTokenSignature)
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := codec.Parse(token)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", token)
	}
}

func TestTokenCodec_MissingSubject(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	token, err := codec.Issue("", time.Now())
	require.NoError(t, err)

	_, err = codec.Parse(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenCodec_ErrorKindsDistinct(t *testing.T) {
	// The three failure kinds must stay distinguishable for telemetry even
	// though callers reject them identically.
	assert.False(t, errors.Is(ErrTokenExpired, ErrTokenSignature))
	assert.False(t, errors.Is(ErrTokenExpired, ErrTokenMalformed))
	assert.False(t, errors.Is(ErrTokenSignature, ErrTokenMalformed))
}
