package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmarceta/meet-accounts-be/internal/models"
)

// ResetTokenGenerator mints single-use password-reset tokens. The MAC covers
// the user's current password hash and last login, so changing the password
// (or logging in) invalidates every token issued before it without any
// consumed-token bookkeeping.
type ResetTokenGenerator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewResetTokenGenerator creates a generator with the given validity window.
func NewResetTokenGenerator(secret []byte, ttl time.Duration) *ResetTokenGenerator {
	return &ResetTokenGenerator{secret: secret, ttl: ttl, now: time.Now}
}

// Make produces a reset token for the user's current credential state.
func (g *ResetTokenGenerator) Make(user models.User) string {
	ts := g.now().Unix()
	return fmt.Sprintf("%s-%s", strconv.FormatInt(ts, 36), g.mac(user, ts))
}

// Check reports whether a token is genuine, unexpired and still bound to the
// user's current credential state.
func (g *ResetTokenGenerator) Check(user models.User, token string) bool {
	tsPart, macPart, found := strings.Cut(token, "-")
	if !found {
		return false
	}
	ts, err := strconv.ParseInt(tsPart, 36, 64)
	if err != nil {
		return false
	}
	if !hmac.Equal([]byte(macPart), []byte(g.mac(user, ts))) {
		return false
	}
	age := g.now().Unix() - ts
	return age >= 0 && age <= int64(g.ttl.Seconds())
}

// mac keys the token to user identity, password hash and last login so any
// credential change breaks outstanding tokens.
func (g *ResetTokenGenerator) mac(user models.User, ts int64) string {
	var lastLogin int64
	if user.LastLogin != nil {
		lastLogin = user.LastLogin.Unix()
	}
	h := hmac.New(sha256.New, g.secret)
	fmt.Fprintf(h, "%s|%s|%d|%d", user.ID, user.PasswordHash, lastLogin, ts)
	return hex.EncodeToString(h.Sum(nil))[:32]
}

// EncodeUID encodes a user ID for embedding in a reset URL.
func EncodeUID(userID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(userID))
}

// DecodeUID reverses EncodeUID.
func DecodeUID(uid string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
