package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmarceta/meet-accounts-be/internal/auth"
	"github.com/dmarceta/meet-accounts-be/internal/models"
)

// TokenServiceProvider defines the interface for token lifecycle services.
type TokenServiceProvider interface {
	Issue(user models.User) (models.TokenPair, error)
	Refresh(refreshToken string) (models.TokenPair, error)
	Revoke(refreshToken string) error
	VerifyAccess(accessToken string) (*auth.Claims, error)
	PurgeExpired() (int64, error)
}

// TokenService manages the refresh-token allowlist behind the Issuer.
// Every issued refresh token gets a row keyed by jti; rotation and logout
// revoke the row, so a refresh token is good for exactly one use.
type TokenService struct {
	db       *sql.DB
	issuer   *auth.Issuer
	eventSvc EventServiceProvider
}

// NewTokenService creates a new TokenService.
func NewTokenService(db *sql.DB, issuer *auth.Issuer, eventSvc EventServiceProvider) *TokenService {
	return &TokenService{db: db, issuer: issuer, eventSvc: eventSvc}
}

// Issue mints a token pair for a user and records the refresh token.
func (s *TokenService) Issue(user models.User) (models.TokenPair, error) {
	pair, jti, expiresAt, err := s.issuer.IssuePair(user)
	if err != nil {
		return models.TokenPair{}, err
	}
	_, err = s.db.Exec(
		"INSERT INTO refresh_tokens (jti, user_id, issued_at, expires_at) VALUES (?, ?, ?, ?)",
		jti, user.ID, time.Now().UTC(), expiresAt.UTC(),
	)
	if err != nil {
		return models.TokenPair{}, err
	}
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. A token that is expired, malformed, unknown or already
// revoked fails with ErrInvalidToken.
func (s *TokenService) Refresh(refreshToken string) (models.TokenPair, error) {
	claims, err := s.issuer.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return models.TokenPair{}, ErrInvalidToken
	}

	if err := s.consume(claims.ID); err != nil {
		return models.TokenPair{}, err
	}

	var user models.User
	var isActive bool
	row := s.db.QueryRow("SELECT id, username, email, is_active FROM users WHERE id = ?", claims.Subject)
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &isActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.TokenPair{}, ErrInvalidToken
		}
		return models.TokenPair{}, err
	}
	if !isActive {
		return models.TokenPair{}, ErrInvalidToken
	}

	pair, err := s.Issue(user)
	if err != nil {
		return models.TokenPair{}, err
	}
	s.eventSvc.CreateEvent("token.refresh", "info", fmt.Sprintf("Refresh token rotated for %s", user.Username), &user.ID)
	return pair, nil
}

// Revoke blacklists a refresh token (logout). Revoking an unknown or already
// revoked token fails with ErrInvalidToken.
func (s *TokenService) Revoke(refreshToken string) error {
	claims, err := s.issuer.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return ErrInvalidToken
	}
	if err := s.consume(claims.ID); err != nil {
		return err
	}
	userID := claims.Subject
	s.eventSvc.CreateEvent("user.logout", "info", "Refresh token revoked on logout", &userID)
	return nil
}

// consume marks a live allowlist row revoked. The guarded UPDATE serializes
// concurrent rotations of the same token: exactly one caller wins the row.
func (s *TokenService) consume(jti string) error {
	res, err := s.db.Exec(
		"UPDATE refresh_tokens SET revoked_at = ? WHERE jti = ? AND revoked_at IS NULL AND expires_at > ?",
		time.Now().UTC(), jti, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrInvalidToken
	}
	return nil
}

// VerifyAccess validates an access token. Stateless: signature and expiry only.
func (s *TokenService) VerifyAccess(accessToken string) (*auth.Claims, error) {
	claims, err := s.issuer.Verify(accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// PurgeExpired deletes allowlist rows whose tokens have expired; they can no
// longer pass signature verification, so the rows are dead weight.
func (s *TokenService) PurgeExpired() (int64, error) {
	res, err := s.db.Exec("DELETE FROM refresh_tokens WHERE expires_at <= ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
