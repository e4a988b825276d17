package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrExpired     = errors.New("token is expired")
	ErrNotValidYet = errors.New("token is not valid yet")
)

type Claims[T any] struct {
	jwt.RegisteredClaims
	Object T `json:"obj,omitempty"`
}

type Engine[T any] struct {
	Expiration time.Duration

	issuer string
	secret string
}

func NewEngine[T any](issuer, secret string, expiration time.Duration) *Engine[T] {
	return &Engine[T]{
		issuer:     issuer,
		secret:     secret,
		Expiration: expiration,
	}
}

// Generate signs obj for sub. The token is valid from issuedAt until
// issuedAt plus the engine expiration.
func (e *Engine[T]) Generate(sub string, obj T, issuedAt time.Time) (string, error) {
	claims := Claims[T]{
		Object: obj,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(e.Expiration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			Issuer:    e.issuer,
			Subject:   sub,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(e.secret))
}

type Verifier[T any] struct {
	secret string
	leeway time.Duration
}

func NewVerifier[T any](secret string) *Verifier[T] {
	return &Verifier[T]{secret: secret}
}

// WithLeeway tolerates clock skew between the issuer and this process.
func (v *Verifier[T]) WithLeeway(leeway time.Duration) *Verifier[T] {
	v.leeway = leeway
	return v
}

// Verify checks the signature, then the time claims against now. The
// time claims are checked here instead of by the parser so callers can
// pass their own clock.
func (v *Verifier[T]) Verify(token string, now time.Time) (*Claims[T], error) {
	var claims Claims[T]
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	_, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(v.secret), nil
	})
	if err != nil {
		return nil, err
	}

	if !claims.VerifyExpiresAt(now.Add(-v.leeway), true) {
		return nil, ErrExpired
	}

	if !claims.VerifyIssuedAt(now.Add(v.leeway), true) || !claims.VerifyNotBefore(now.Add(v.leeway), false) {
		return nil, ErrNotValidYet
	}

	return &claims, nil
}
