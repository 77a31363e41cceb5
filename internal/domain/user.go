package domain

// UserRole enumerates dashboard roles.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleManager UserRole = "manager"
	UserRoleEditor  UserRole = "editor"
)

// Actor identifies the user on whose behalf a request runs.
type Actor struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// CanManageFields reports whether the actor may edit field configurations.
func (a Actor) CanManageFields() bool {
	return a.Role == UserRoleAdmin || a.Role == UserRoleManager
}
