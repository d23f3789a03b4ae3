// Package directory holds the display entities resolved for listings.
package directory

import "strings"

// SystemUser is the synthetic account used for repository-created nodes.
const SystemUser = "System"

// EveryoneGroup is granted to every authenticated and guest user.
const EveryoneGroup = "GROUP_EVERYONE"

// GroupPrefix marks authority names that refer to groups.
const GroupPrefix = "GROUP_"

// Person is a user as displayed in listings.
type Person struct {
	UserName  string
	FirstName string
	LastName  string
	Email     string
}

// DisplayName returns "First Last", falling back to the user name.
func (p Person) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.UserName
	}
	return name
}

// SystemPerson is substituted when the System account has no person record.
func SystemPerson() Person {
	return Person{UserName: SystemUser, FirstName: SystemUser}
}

// UnknownPerson stands in for a user whose record is missing.
func UnknownPerson(userName string) Person {
	return Person{UserName: userName}
}

// IsGroup reports whether an authority name refers to a group.
func IsGroup(authority string) bool {
	return strings.HasPrefix(authority, GroupPrefix)
}

// Group is a user group.
type Group struct {
	ID          string
	DisplayName string
}

// Site is a collaboration site.
type Site struct {
	ShortName   string
	Title       string
	Description string
	NodeID      string
}
