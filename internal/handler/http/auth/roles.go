package auth

// Roles carried in the role claim.
const (
	// RoleAdmin may refresh the newsletter and manage the cache.
	RoleAdmin = "admin"

	// RoleViewer is accepted by nothing today; it lets tokens for read-only
	// dashboards be issued without granting admin rights.
	RoleViewer = "viewer"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleViewer
}
