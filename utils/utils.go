package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost - стоимость хеширования паролей. Тесты понижают ее до bcrypt.MinCost.
var BcryptCost = 12

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// NormalizeEmail приводит email к виду, в котором он хранится и сравнивается.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
