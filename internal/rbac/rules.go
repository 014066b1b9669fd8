package rbac

// Permissions checked by the admin API.
const (
	PermTestsRead     = "tests:read"
	PermTestsWrite    = "tests:write"
	PermUsersRead     = "users:read"
	PermUsersWrite    = "users:write"
	PermSettingsRead  = "settings:read"
	PermSettingsWrite = "settings:write"
	PermMediaUpload   = "media:upload"
	PermDashboardView = "dashboard:view"
)

// Learner accounts may only touch their own profile; the panel is for admins.
var RolePermissions = map[string][]string{
	"user": {},
	"admin": {
		"*", // everything
	},
}
