package domain

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleSales   = "sales"
)

type User struct {
	BaseModel
	Name         string  `gorm:"size:120;not null" json:"name"`
	Email        string  `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	Role         string  `gorm:"size:20;not null;default:sales" json:"role"`
	Avatar       *string `json:"avatar,omitempty"`
}

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleSales:
		return true
	}
	return false
}
