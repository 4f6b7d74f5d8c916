package auth

import "github.com/matthewhartstonge/argon2"

// HashPassword хэширует пароль argon2id c параметрами по умолчанию.
func HashPassword(password string) (string, error) {
	argon := argon2.DefaultConfig()
	encoded, err := argon.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// VerifyPassword сравнивает пароль с encoded-хэшем.
func VerifyPassword(encodedHash, password string) (bool, error) {
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
	if err != nil {
		return false, err
	}
	return ok, nil
}
