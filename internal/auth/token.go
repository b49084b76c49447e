package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenTTL is how long an issued session token is accepted.
const TokenTTL = 30 * time.Minute

// ErrUnauthenticated is wrapped by every verification failure so callers can treat them alike.
var ErrUnauthenticated = errors.New("unauthenticated")

var (
	ErrTokenMalformed = fmt.Errorf("%w: malformed token", ErrUnauthenticated)
	ErrTokenExpired   = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrTokenInvalid   = fmt.Errorf("%w: invalid token", ErrUnauthenticated)
)

// TokenService issues and verifies HS256 session tokens whose subject is a user id.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now, used for both issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(secret string, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token for subject that expires TokenTTL from now.
func (s *TokenService) Issue(subject uint) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(subject), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify returns the subject of a validly signed, unexpired token.
// All failures wrap ErrUnauthenticated.
func (s *TokenService) Verify(tokenString string) (uint, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return 0, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, ErrTokenExpired
		default:
			return 0, ErrTokenInvalid
		}
	}

	if claims.Subject == "" {
		return 0, ErrTokenInvalid
	}
	subject, err := strconv.ParseUint(claims.Subject, 10, 0)
	if err != nil || subject == 0 {
		return 0, ErrTokenInvalid
	}

	return uint(subject), nil
}
