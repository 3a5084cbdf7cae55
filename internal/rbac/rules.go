package rbac

// RolePermissions is the default admin/resident/guest policy. Residents get
// their own unit and account; guests get read-only visibility; admin is
// unrestricted.
var RolePermissions = map[string][]string{
	"guest": {
		"project:view",
		"unit:view",
	},
	"resident": {
		"project:view",
		"unit:view",
		"unit:view-own",
		"user:change_password",
		"user:view-own",
	},
	"admin": {
		"*", // everything, including project:manage and user:manage
	},
}
