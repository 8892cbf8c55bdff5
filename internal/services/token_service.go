package services

import (
	"crypto/sha256"
	"errors"
	"strconv"
	"time"

	"clinicportal/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValidity — окно жизни ссылки подтверждения.
const TokenValidity = 15 * time.Minute

// TokenService выпускает и проверяет подписанные verification-токены,
// связывающие identity с email. Токен строго одноролевой: и audience,
// и ключ подписи зависят от роли, так что patient-токен никогда не пройдёт
// на clinician-эндпоинте.
type TokenService interface {
	Issue(role models.Role, identityID int, email string) (string, error)
	Redeem(token string, role models.Role) (identityID int, email string, err error)
}

type verifyClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type tokenService struct {
	secret string
	now    func() time.Time
}

func NewTokenService(secret string) TokenService {
	return &tokenService{secret: secret, now: time.Now}
}

// NewTokenServiceWithClock — для тестов окна действия.
func NewTokenServiceWithClock(secret string, now func() time.Time) TokenService {
	return &tokenService{secret: secret, now: now}
}

func (s *tokenService) keyFor(role models.Role) []byte {
	// роль подмешана в ключ: одна подпись не валидна для другой роли
	sum := sha256.Sum256([]byte(s.secret + ":verify:" + string(role)))
	return sum[:]
}

func audienceFor(role models.Role) string { return "verify:" + string(role) }

func (s *tokenService) Issue(role models.Role, identityID int, email string) (string, error) {
	now := s.now()
	claims := &verifyClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(identityID),
			Audience:  jwt.ClaimStrings{audienceFor(role)},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenValidity)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.keyFor(role))
}

func (s *tokenService) Redeem(token string, role models.Role) (int, string, error) {
	claims := &verifyClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.keyFor(role), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithAudience(audienceFor(role)))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, "", ErrTokenExpired
		}
		return 0, "", ErrTokenInvalid
	}
	if !parsed.Valid {
		return 0, "", ErrTokenInvalid
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, "", ErrTokenInvalid
	}
	return id, claims.Email, nil
}
