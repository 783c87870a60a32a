package application

import (
	"fmt"
	"strings"
)

// Role is the access-control category of a user.
type Role string

const (
	RoleUser         Role = "user"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

// ParseRole accepts exactly the three known role names, ignoring case and
// surrounding whitespace.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleUser:
		return RoleUser, nil
	case RoleProfessional:
		return RoleProfessional, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleProfessional, RoleAdmin:
		return true
	default:
		return false
	}
}

// View names a screen of the client application.
type View string

const (
	ViewUserDashboard         View = "/dashboard"
	ViewProfessionals         View = "/professionals"
	ViewProfessionalProfile   View = "/professionals/:id"
	ViewProfessionalDashboard View = "/professional"
	ViewAdminDashboard        View = "/admin"
)

// HomeView returns the landing view for a role.
func HomeView(role Role) (View, error) {
	switch role {
	case RoleAdmin:
		return ViewAdminDashboard, nil
	case RoleProfessional:
		return ViewProfessionalDashboard, nil
	case RoleUser:
		return ViewUserDashboard, nil
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
}

// Allows reports whether the role may open the view.
func (r Role) Allows(view View) bool {
	switch r {
	case RoleUser:
		return view == ViewUserDashboard || view == ViewProfessionals || view == ViewProfessionalProfile
	case RoleProfessional:
		return view == ViewProfessionalDashboard
	case RoleAdmin:
		return view == ViewAdminDashboard
	default:
		return false
	}
}

func requireView(principal Principal, view View) error {
	if principal.UserID == "" || !principal.Role.Allows(view) {
		return ErrUnauthorized
	}
	return nil
}
