package models

// Role values assigned to users. Admin-tier roles unlock the admin API.
const (
	RoleCustomer   = "customer"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleSuperAdmin = "super_admin"
)

// User represents an authenticated customer or staff member.
type User struct {
	BaseModel
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `gorm:"uniqueIndex" json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `gorm:"default:customer" json:"role"`
	Addresses    []Address  `json:"addresses,omitempty"`
	Orders       []Order    `json:"orders,omitempty"`
	Favorites    []Favorite `json:"favorites,omitempty"`
}

// IsAdminTier reports whether the user may call admin endpoints.
func (u *User) IsAdminTier() bool {
	switch u.Role {
	case RoleAdmin, RoleManager, RoleSuperAdmin:
		return true
	}
	return false
}
