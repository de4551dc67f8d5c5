package rbac

// RolePermissions is the default policy for the practice backend.
var RolePermissions = map[string][]string{
	"learner": {
		"exam:view",
		"enrollment:view-own",
		"attempt:create",
		"attempt:submit",
		"attempt:view-own",
		"learner:change-password",
	},
	"admin": {
		"*", // everything
	},
}
