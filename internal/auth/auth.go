// Package auth implements the subscription-validation stub. Real billing
// never shipped: validation is a hardcoded allowlist behind a permanent
// bypass flag. A valid result is cached client-side as a signed token with
// a fixed six-hour window.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL matches the extension's cache window for a validation result.
const TokenTTL = 6 * time.Hour

var ErrNoSigningSecret = errors.New("no signing secret configured")

type Result struct {
	Valid  bool
	Plan   string
	UserID string
}

type Service struct {
	bypass     bool
	testEmails map[string]struct{}
	secret     []byte

	now func() time.Time
}

func New(bypass bool, testEmails []string, signingSecret string) *Service {
	allow := make(map[string]struct{}, len(testEmails))
	for _, e := range testEmails {
		allow[strings.ToLower(e)] = struct{}{}
	}

	return &Service{
		bypass:     bypass,
		testEmails: allow,
		secret:     []byte(signingSecret),
		now:        time.Now,
	}
}

// Validate checks whether the email belongs to an active subscriber. With
// the bypass flag set everything validates.
func (s *Service) Validate(email string) Result {
	if s.bypass {
		return Result{Valid: true, Plan: "bypass", UserID: "bypass-user"}
	}

	if _, ok := s.testEmails[strings.ToLower(email)]; ok {
		return Result{Valid: true, Plan: "pro", UserID: "test-user-123"}
	}

	return Result{Valid: false, Plan: "free", UserID: "unknown"}
}

type Claims struct {
	Email string `json:"email"`
	Plan  string `json:"plan"`
	jwt.RegisteredClaims
}

// IssueToken signs a token the client caches instead of revalidating on
// every page load.
func (s *Service) IssueToken(email string, res Result) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrNoSigningSecret
	}

	now := s.now()

	claims := Claims{
		Email: strings.ToLower(email),
		Plan:  res.Plan,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   res.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// CanIssueTokens reports whether a signing secret is configured.
func (s *Service) CanIssueTokens() bool {
	return len(s.secret) > 0
}

// VerifyToken parses and validates a token issued by IssueToken.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrNoSigningSecret
	}

	var claims Claims

	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}

			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	return &claims, nil
}
