package util

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword хэширует пароль с использованием bcrypt
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// CheckPassword проверяет, соответствует ли пароль хэшу
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// BurnPasswordCheck сравнивает пароль с фиктивным хэшем.
// Вызывается при входе несуществующего пользователя.
func BurnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = HashPassword("rentaldesk-dummy-password")
	})
	CheckPassword(password, dummyHash)
}
