package auth_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-kiosk/auth"
)

func newTestGate() *auth.Gate {
	return auth.NewGate("test-secret", "admin", "hunter2")
}

func TestGate_LoginAndVerify(t *testing.T) {
	gate := newTestGate()

	token, err := gate.Login("admin", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := gate.Verify(token)
	require.NoError(t, err)
	assert.True(t, id.Admin)
	assert.Equal(t, "admin", id.Username)
}

func TestGate_Login_BadCredentials(t *testing.T) {
	gate := newTestGate()

	for _, tc := range []struct{ user, pass string }{
		{"admin", "wrong"},
		{"root", "hunter2"},
		{"", ""},
	} {
		_, err := gate.Login(tc.user, tc.pass)
		assert.ErrorIs(t, err, auth.ErrBadCredentials, "%s/%s", tc.user, tc.pass)
	}
}

func TestGate_Verify_TamperedToken(t *testing.T) {
	gate := newTestGate()

	token, err := gate.Login("admin", "hunter2")
	require.NoError(t, err)

	// Flip the signature.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + "AAAA"

	_, err = gate.Verify(tampered)
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestGate_Verify_WrongSecret(t *testing.T) {
	token, err := newTestGate().Login("admin", "hunter2")
	require.NoError(t, err)

	other := auth.NewGate("other-secret", "admin", "hunter2")
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, auth.ErrNoSession)
}

func TestIdentity_ContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.False(t, auth.FromContext(ctx).Admin, "anonymous by default")

	ctx = auth.WithIdentity(ctx, auth.Identity{Admin: true, Username: "admin"})
	id := auth.FromContext(ctx)
	assert.True(t, id.Admin)
	assert.Equal(t, "admin", id.Username)
}
