package models

// Role is the access level of a registered user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AllowedUser is one record in the allowed-users registry file.
// TelegramID is the opaque external identifier and is unique across records.
type AllowedUser struct {
	Name       string `json:"name"`
	NIK        string `json:"nik"`
	TelegramID string `json:"telegram_id"`
	Role       Role   `json:"role"`
}

// IsAdmin reports whether the record carries the admin role.
func (u AllowedUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}
