package rbac

// Default policy. Session permissions cover start, view, pause, resume and submit.
var RolePermissions = map[string][]string{
	"student": {
		"exam:view",
		"session:*",
		"entitlement:view",
		"insights:click",
		"feedback:create",
		"notification:view",
	},
	"admin": {
		"*", // everything
	},
}
