package listing

// Role is a named permission group assigned to an authority on a node.
type Role string

// Roles, weakest first.
const (
	RoleConsumer     Role = "Consumer"
	RoleContributor  Role = "Contributor"
	RoleCollaborator Role = "Collaborator"
	RoleCoordinator  Role = "Coordinator"
	RoleSiteManager  Role = "SiteManager"
)

var rolePermissions = map[Role]Permissions{
	RoleConsumer:     {Read: true},
	RoleContributor:  {Read: true, Create: true},
	RoleCollaborator: {Read: true, Create: true, Edit: true},
	RoleCoordinator:  {Read: true, Create: true, Edit: true, Delete: true},
	RoleSiteManager:  {Read: true, Create: true, Edit: true, Delete: true},
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permissions returns the rights granted by r. Unknown roles grant nothing.
func (r Role) Permissions() Permissions {
	return rolePermissions[r]
}

// Or returns the union of p and o.
func (p Permissions) Or(o Permissions) Permissions {
	return Permissions{
		Read:   p.Read || o.Read,
		Create: p.Create || o.Create,
		Edit:   p.Edit || o.Edit,
		Delete: p.Delete || o.Delete,
	}
}
