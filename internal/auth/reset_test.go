package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmarceta/meet-accounts-be/internal/models"
)

func resetUser() models.User {
	return models.User{ID: "user-123", PasswordHash: "$2a$10$abcdefghijklmnopqrstuv"}
}

func TestResetToken_RoundTrip(t *testing.T) {
	t.Parallel()

	gen := NewResetTokenGenerator([]byte("secret"), 24*time.Hour)
	user := resetUser()

	token := gen.Make(user)
	assert.True(t, gen.Check(user, token))
}

func TestResetToken_InvalidatedByPasswordChange(t *testing.T) {
	t.Parallel()

	gen := NewResetTokenGenerator([]byte("secret"), 24*time.Hour)
	user := resetUser()
	token := gen.Make(user)

	user.PasswordHash = "$2a$10$completelydifferenthashxx"
	assert.False(t, gen.Check(user, token))
}

func TestResetToken_InvalidatedByLogin(t *testing.T) {
	t.Parallel()

	gen := NewResetTokenGenerator([]byte("secret"), 24*time.Hour)
	user := resetUser()
	token := gen.Make(user)

	now := time.Now()
	user.LastLogin = &now
	assert.False(t, gen.Check(user, token))
}

func TestResetToken_Expired(t *testing.T) {
	t.Parallel()

	gen := NewResetTokenGenerator([]byte("secret"), 24*time.Hour)
	user := resetUser()

	gen.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }
	token := gen.Make(user)

	gen.now = time.Now
	assert.False(t, gen.Check(user, token))
}

func TestResetToken_Tampered(t *testing.T) {
	t.Parallel()

	gen := NewResetTokenGenerator([]byte("secret"), 24*time.Hour)
	user := resetUser()
	token := gen.Make(user)

	assert.False(t, gen.Check(user, token+"x"))
	assert.False(t, gen.Check(user, "zzzz-"+token))
	assert.False(t, gen.Check(user, "notoken"))
	assert.False(t, gen.Check(user, ""))
}

func TestResetToken_WrongSecret(t *testing.T) {
	t.Parallel()

	user := resetUser()
	token := NewResetTokenGenerator([]byte("one"), 24*time.Hour).Make(user)
	assert.False(t, NewResetTokenGenerator([]byte("two"), 24*time.Hour).Check(user, token))
}

func TestEncodeDecodeUID(t *testing.T) {
	t.Parallel()

	uid := EncodeUID("user-123")
	decoded, err := DecodeUID(uid)
	require.NoError(t, err)
	assert.Equal(t, "user-123", decoded)

	_, err = DecodeUID("!!!not-base64!!!")
	assert.Error(t, err)
}
