package utils // package utils provides helpers for token issuance and password hashing

import (
	"errors" // sentinel error for failed verification
	"time"   // token lifetimes and the injectable clock

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Token lifetimes.  Access tokens authorize requests; refresh tokens are
// only exchanged for a new pair.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken is the single failure reported by Verify.  Bad signatures,
// malformed payloads and expired tokens all collapse into it so callers
// cannot tell which check failed.
var ErrInvalidToken = errors.New("invalid token")

// AuthPayload is the identity snapshot embedded in every token.  Role is the
// role at issuance time; a later role change only shows up after refresh.
type AuthPayload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Token types carried in the typ claim.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// claims is the JWT body: the payload fields, the token type plus exp/iat.
type claims struct {
	AuthPayload
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies access and refresh tokens.  It holds no
// mutable state; Now may be replaced in tests to simulate the clock.
type TokenService struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

// NewTokenService returns a TokenService with the standard lifetimes and the
// wall clock.
func NewTokenService(accessSecret, refreshSecret string) *TokenService {
	return &TokenService{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     AccessTokenTTL,
		RefreshTTL:    RefreshTokenTTL,
		Now:           time.Now,
	}
}

func (s *TokenService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// IssueAccessToken signs p with the access secret; it expires AccessTTL from now.
func (s *TokenService) IssueAccessToken(p AuthPayload) (string, error) {
	return s.sign(p, TokenAccess, s.AccessSecret, s.AccessTTL)
}

// IssueRefreshToken signs p with the refresh secret; it expires RefreshTTL from now.
func (s *TokenService) IssueRefreshToken(p AuthPayload) (string, error) {
	return s.sign(p, TokenRefresh, s.RefreshSecret, s.RefreshTTL)
}

// IssuePair returns a fresh access and refresh token for p.
func (s *TokenService) IssuePair(p AuthPayload) (access, refresh string, err error) {
	if access, err = s.IssueAccessToken(p); err != nil {
		return "", "", err
	}
	if refresh, err = s.IssueRefreshToken(p); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// VerifyAccess checks a token against the access secret.
func (s *TokenService) VerifyAccess(token string) (AuthPayload, error) {
	return s.Verify(token, s.AccessSecret, TokenAccess)
}

// VerifyRefresh checks a token against the refresh secret.
func (s *TokenService) VerifyRefresh(token string) (AuthPayload, error) {
	return s.Verify(token, s.RefreshSecret, TokenRefresh)
}

func (s *TokenService) sign(p AuthPayload, typ, secret string, ttl time.Duration) (string, error) {
	now := s.now().UTC()
	c := claims{
		AuthPayload: p,
		Type:        typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

// Verify parses token, checks its HMAC signature against secret and its
// expiry against the service clock, and returns the embedded payload.  The
// typ claim must equal typ, so an access token never passes as a refresh
// token even when both secrets are the same.
func (s *TokenService) Verify(token, secret, typ string) (AuthPayload, error) {
	var c claims
	tok, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		// Reject anything that is not HMAC; the token header picks the algorithm.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	},
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !tok.Valid {
		return AuthPayload{}, ErrInvalidToken
	}
	if c.Type != typ || c.UserID == "" || c.Role == "" {
		return AuthPayload{}, ErrInvalidToken
	}
	return c.AuthPayload, nil
}
