package domain

// Role differentiates regular sessions from the admin panel.
type Role string

const (
	RoleUser       Role = "USER"
	RoleSuperadmin Role = "SUPERADMIN"
)
