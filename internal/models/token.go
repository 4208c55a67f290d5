package models

import "time"

// RefreshToken is the stored record of an issued refresh token, keyed by the
// token's jti claim. A token is usable while RevokedAt is nil and ExpiresAt is
// in the future; rotation and logout set RevokedAt.
type RefreshToken struct {
	JTI       string     `json:"jti"`
	UserID    string     `json:"user_id"`
	IssuedAt  time.Time  `json:"issued_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}

// TokenPair bundles a freshly minted access/refresh pair.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}
