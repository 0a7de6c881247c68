// Package password хеширует и проверяет пароли с помощью bcrypt.
package password

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Cost стоимость bcrypt для новых хешей.
const Cost = 12

// MinLength минимальная длина пароля.
const MinLength = 6

// MaxBytes предел bcrypt: длина пароля в байтах, не в символах.
const MaxBytes = 72

// GetHash возвращает bcrypt-хеш пароля.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashedPassword), nil
}

// CompareHash возвращает nil, если пароль соответствует хешу.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	if err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("bookease-dummy-password"), Cost)
	return h
})

// CompareDummy выполняет сравнение с заведомо чужим хешем, чтобы ответ
// для несуществующего e-mail занимал столько же времени, сколько для существующего.
func CompareDummy(externalPassword string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(externalPassword))
}
