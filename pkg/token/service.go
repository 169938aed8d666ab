package token

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kind constants
const (
	SETUP_TOKEN_NAME   = "setup_token"
	SESSION_TOKEN_NAME = "session_token"
)

// Default token expiry durations
const (
	DefaultSetupTokenExpiry   = 5 * time.Minute
	DefaultSessionTokenExpiry = 7 * 24 * time.Hour
)

// Claims carries the token payload. Setup is true only on short-lived
// enrollment tokens; Role is present only on session tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role,omitempty"`
	Setup  bool   `json:"setup,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and validates the two bearer credentials used by the
// login flow: a short-lived setup token authorizing only 2FA enrollment, and
// a long-lived session token authorizing authenticated API access.
type TokenService interface {
	IssueSetupToken(userID uuid.UUID) (string, time.Time, error)
	IssueSessionToken(userID uuid.UUID, role string) (string, time.Time, error)
	ParseSetupToken(tokenStr string) (*Claims, error)
	ParseSessionToken(tokenStr string) (*Claims, error)
}

// JwtTokenService implements TokenService with HS256 signed JWTs.
// The signing secret is injected at construction, never read from the
// environment at call sites.
type JwtTokenService struct {
	secret   []byte
	issuer   string
	audience string

	SetupTokenExpiry   time.Duration
	SessionTokenExpiry time.Duration
}

// JwtTokenServiceOption is a function that configures a JwtTokenService
type JwtTokenServiceOption func(*JwtTokenService)

// WithSetupTokenExpiry sets the setup token expiry duration
func WithSetupTokenExpiry(expiry time.Duration) JwtTokenServiceOption {
	return func(s *JwtTokenService) {
		s.SetupTokenExpiry = expiry
	}
}

// WithSessionTokenExpiry sets the session token expiry duration
func WithSessionTokenExpiry(expiry time.Duration) JwtTokenServiceOption {
	return func(s *JwtTokenService) {
		s.SessionTokenExpiry = expiry
	}
}

// NewJwtTokenService creates a new JwtTokenService
func NewJwtTokenService(secret, issuer, audience string, options ...JwtTokenServiceOption) *JwtTokenService {
	s := &JwtTokenService{
		secret:             []byte(secret),
		issuer:             issuer,
		audience:           audience,
		SetupTokenExpiry:   DefaultSetupTokenExpiry,
		SessionTokenExpiry: DefaultSessionTokenExpiry,
	}

	for _, option := range options {
		option(s)
	}

	return s
}

// IssueSetupToken mints a short-lived token authorizing only the 2FA
// enrollment step for the given user.
func (s *JwtTokenService) IssueSetupToken(userID uuid.UUID) (string, time.Time, error) {
	return s.sign(Claims{
		UserID: userID.String(),
		Setup:  true,
	}, s.SetupTokenExpiry)
}

// IssueSessionToken mints a long-lived session token bound to the user and
// role. Issued only after successful 2FA verification.
func (s *JwtTokenService) IssueSessionToken(userID uuid.UUID, role string) (string, time.Time, error) {
	return s.sign(Claims{
		UserID: userID.String(),
		Role:   role,
	}, s.SessionTokenExpiry)
}

func (s *JwtTokenService) sign(claims Claims, expiry time.Duration) (string, time.Time, error) {
	now := time.Now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Minute)),
		Issuer:    s.issuer,
		Subject:   claims.UserID,
		ID:        uuid.New().String(),
		Audience:  jwt.ClaimStrings{s.audience},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := tok.SignedString(s.secret)
	if err != nil {
		slog.Error("Failed to sign JWT claim string!", "err", err)
		return "", time.Time{}, err
	}
	return ss, claims.ExpiresAt.Time, nil
}

// ParseSetupToken parses a setup token and rejects session tokens.
func (s *JwtTokenService) ParseSetupToken(tokenStr string) (*Claims, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if !claims.Setup {
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}

// ParseSessionToken parses a session token and rejects setup tokens.
func (s *JwtTokenService) ParseSessionToken(tokenStr string) (*Claims, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Setup {
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}

func (s *JwtTokenService) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !tok.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
