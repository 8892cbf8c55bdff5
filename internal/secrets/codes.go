package secrets

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrNoPepper = errors.New("secrets: code pepper is empty")

// CodeService хэширует 6-значные коды двумя независимыми способами:
//   - Hash/Verify — медленный bcrypt со случайной солью, единственный путь
//     проверки равенства;
//   - Digest — детерминированный sha256(pepper+":"+code) для уникального
//     индекса в БД.
//
// Digest — это ключ поиска, а не граница безопасности: при известном pepper
// всё пространство из 10^6 кодов перебирается оффлайн. Это осознанная
// слабость схемы с 6-значными кодами, а не дефект реализации.
type CodeService struct {
	pepper string
}

func NewCodeService(pepper string) (*CodeService, error) {
	if pepper == "" {
		return nil, ErrNoPepper
	}
	return &CodeService{pepper: pepper}, nil
}

func (s *CodeService) Hash(code string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *CodeService) Verify(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
}

func (s *CodeService) Digest(code string) string {
	sum := sha256.Sum256([]byte(s.pepper + ":" + code))
	return hex.EncodeToString(sum[:])
}
