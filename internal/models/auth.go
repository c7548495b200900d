package models

import "time"

// LoginRequest representa las credenciales enviadas por el cliente.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserDTO es la representación mínima de un usuario en respuestas.
type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
}

// LoginResponse se retorna tras una autenticación exitosa.
type LoginResponse struct {
	Token     string    `json:"token"`
	User      UserDTO   `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ErrorResponse es la forma simple de error del API.
type ErrorResponse struct {
	Error string `json:"error"`
}
