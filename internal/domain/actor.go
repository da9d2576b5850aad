package domain

// Role роль пользователя, приходящая из токена
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Actor пользователь, выполняющий операцию
type Actor struct {
	UserID int64
	Role   Role
}

// IsAdmin returns true for staff accounts
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsValid проверяет, что роль известна
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}
