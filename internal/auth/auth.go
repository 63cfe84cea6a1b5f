package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken covers every verification failure: missing, malformed,
// expired, bad signature. Callers must not distinguish between them.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims embedded in a bearer token.
type Claims struct {
	Email  string `json:"email"`
	UserID int64  `json:"userId"`
	jwt.RegisteredClaims
}

// Verified is the identity resolved from a valid bearer token. Handlers
// receive it explicitly; nothing is attached to the request.
type Verified struct {
	UserID int64
	Email  string
}

type Service struct {
	secret     []byte
	tokenTTL   time.Duration
	bcryptCost int
}

func NewService(secret string, tokenTTL time.Duration, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		secret:     []byte(secret),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs a bearer token for the user, valid for the configured TTL.
func (s *Service) IssueToken(userID int64, email string) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.tokenTTL)
	claims := Claims{
		Email:  email,
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Authenticate verifies a bearer token and resolves the embedded identity.
// Every failure mode collapses into ErrInvalidToken.
func (s *Service) Authenticate(bearer string) (Verified, error) {
	token, err := jwt.ParseWithClaims(bearer, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return Verified{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 {
		return Verified{}, ErrInvalidToken
	}
	return Verified{UserID: claims.UserID, Email: claims.Email}, nil
}
