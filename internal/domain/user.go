package domain

import "time"

// User описывает учётную запись. PasswordHash — argon2-encoded строка,
// исходный пароль нигде не хранится.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

func NewUser(name, email, passwordHash string, isAdmin bool) *User {
	return &User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		IsAdmin:      isAdmin,
	}
}
