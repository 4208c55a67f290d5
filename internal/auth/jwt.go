package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmarceta/meet-accounts-be/internal/models"
)

// Token type claim values.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned for tokens that are malformed, expired, carry
// the wrong type, or fail signature verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims defines the JWT claims structure shared by access and refresh tokens.
type Claims struct {
	TokenType string `json:"token_type"`
	Username  string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// contextKey avoids collisions with other packages' context values.
type contextKey string

// UserClaimsKey is the context key under which the middleware stores the
// verified access-token claims.
const UserClaimsKey = contextKey("userClaims")

// Issuer mints and verifies signed access/refresh tokens.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewIssuer creates an Issuer signing with the given secret.
func NewIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssuePair mints a new access/refresh token pair for a user. The refresh
// token's jti is returned so callers can record it.
func (i *Issuer) IssuePair(user models.User) (pair models.TokenPair, refreshJTI string, expiresAt time.Time, err error) {
	now := time.Now()

	access, err := i.sign(Claims{
		TokenType: TokenTypeAccess,
		Username:  user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
		},
	})
	if err != nil {
		return models.TokenPair{}, "", time.Time{}, err
	}

	refreshJTI = uuid.New().String()
	expiresAt = now.Add(i.refreshTTL)
	refresh, err := i.sign(Claims{
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        refreshJTI,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	if err != nil {
		return models.TokenPair{}, "", time.Time{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, refreshJTI, expiresAt, nil
}

func (i *Issuer) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Verify parses a token string and checks its signature, expiry and type.
func (i *Issuer) Verify(tokenStr, wantType string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Middleware protects routes by requiring a valid Bearer access token. The
// verified claims are passed down via the request context.
func (i *Issuer) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var tokenStr string
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
					tokenStr = parts[1]
				}
			}
			if tokenStr == "" {
				writeUnauthorized(w, "Authentication credentials were not provided.")
				return
			}

			claims, err := i.Verify(tokenStr, TokenTypeAccess)
			if err != nil {
				writeUnauthorized(w, "Given token not valid for any token type.")
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext extracts the access-token claims stored by Middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*Claims)
	return claims, ok
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"detail":"` + detail + `"}`))
}
