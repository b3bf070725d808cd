package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Minute)

	raw, err := m.GenerateAccessToken("user-1", "bob@example.com", "local")
	require.NoError(t, err)

	claims, err := m.VerifyAccessToken(raw)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "bob@example.com", claims.Email)
	assert.Equal(t, "local", claims.Role)
}

func TestManager_RejectsForeignSecret(t *testing.T) {
	raw, err := NewManager("one", time.Minute).GenerateAccessToken("user-1", "a@b.c", "")
	require.NoError(t, err)

	_, err = NewManager("two", time.Minute).VerifyAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RejectsExpired(t *testing.T) {
	m := NewManager("s", time.Minute)
	issued := time.Now().UTC().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }

	raw, err := m.GenerateAccessToken("user-1", "a@b.c", "")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().UTC() }

	_, err = m.VerifyAccessToken(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_RejectsGarbage(t *testing.T) {
	_, err := NewManager("s", time.Minute).VerifyAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
