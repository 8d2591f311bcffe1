package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var (
	ErrMalformed  = errors.New("malformed token")
	ErrNoSubject  = errors.New("token has no subject")
	ErrNoExpiry   = errors.New("token has no expiry")
	ErrExpired    = errors.New("token expired")
	ErrBadSigning = errors.New("unexpected signing method")
)

// Claims represents the JWT payload issued by the teacher API.
type Claims struct {
	UserID   string `json:"userId,omitempty"`
	Name     string `json:"name,omitempty"`
	Lastname string `json:"lastname,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the teacher id carried by the token.
func (c Claims) Identity() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// DisplayName is "name lastname", or fallback when the token carries neither.
func (c Claims) DisplayName(fallback string) string {
	if n := strings.TrimSpace(c.Name + " " + c.Lastname); n != "" {
		return n
	}
	return fallback
}

// Check reports why the claims cannot back a session at now, or nil.
func (c Claims) Check(now time.Time) error {
	if c.Identity() == "" {
		return ErrNoSubject
	}
	if c.ExpiresAt == nil {
		return ErrNoExpiry
	}
	if !c.ExpiresAt.After(now) {
		return ErrExpired
	}
	return nil
}

// Decode reads the claims without verifying the signature; the backend owns the key.
func Decode(token string) (Claims, error) {
	var claims Claims
	if strings.Count(token, ".") != 2 {
		return Claims{}, ErrMalformed
	}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, errors.Wrap(ErrMalformed, err.Error())
	}
	return claims, nil
}

// Issue signs an HS256 access token for subject; used by the development API.
func Issue(subject, name, lastname, key string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := Claims{
		UserID:   subject,
		Name:     name,
		Lastname: lastname,
		Role:     "teacher",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "signing token")
	}
	return token, exp, nil
}

// Parse validates signature and expiry and returns claims.
func Parse(tokenStr, key string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrBadSigning
		}
		return []byte(key), nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	return *claims, nil
}
