package models

import (
	"time"

	"github.com/google/uuid"
)

// Role — роль пользователя в системе.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid сообщает, входит ли роль в допустимый набор.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User — учётная запись пользователя.
// PasswordHash никогда не сериализуется наружу.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity — данные аутентифицированного субъекта запроса,
// восстановленные из access-токена. Передаётся через context,
// а не через мутацию запроса.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   Role
}

// IsAdmin — субъект имеет административную роль.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
