package models

import "time"

// User representa un usuario operativo del sistema (uso interno).
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // "dispatcher" u "operator"
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest contiene los datos para crear un usuario nuevo.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
}
