package models

// Rôles reconnus par la plateforme.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID         string `json:"user_id"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email"`
	Password   string `json:"-"`
	Role       string `json:"role"`
	Provider   string `json:"provider,omitempty"`
	ProviderID string `json:"-"`
}
