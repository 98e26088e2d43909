// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// Hasher создает bcrypt-хеш пароля с настраиваемой стоимостью.
// Verify сравнивает хеш с введённым паролем и возвращает только bool:
// вызывающий код не различает «неверный пароль» и «испорченный хеш».
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher хеширует и проверяет пароли.
type Hasher struct {
	cost int
}

// NewHasher создаёт Hasher. Стоимость вне допустимого bcrypt диапазона
// заменяется на bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash принимает пароль пользователя и возвращает его bcrypt‑хэш.
//
// Используется для безопасного хранения паролей в базе данных.
func (h *Hasher) Hash(password string) (string, error) {
	const op = "password.Hash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// Verify сравнивает bcrypt‑хэш с введённым паролем.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
