package authdomain

import "fmt"

// Role is a permission tier. Tiers are totally ordered: viewer < player < editor < admin.
type Role string

const (
	RoleViewer Role = "viewer"
	RolePlayer Role = "player"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

var roleRank = map[Role]int{
	RoleViewer: 0,
	RolePlayer: 1,
	RoleEditor: 2,
	RoleAdmin:  3,
}

// IsValid checks if the role is a valid value.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants everything min grants. Unknown roles grant nothing.
func (r Role) AtLeast(min Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	return have >= roleRank[min]
}

// IsPrivileged reports whether r may see diagnostic references on failures.
func (r Role) IsPrivileged() bool {
	return r.AtLeast(RoleEditor)
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// ParseRole validates s as a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
