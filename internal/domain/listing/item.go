// Package listing holds evaluated listing items and the page window applied
// to them.
package listing

import (
	"github.com/kailas-cloud/doclib/internal/domain/directory"
	"github.com/kailas-cloud/doclib/internal/domain/location"
	"github.com/kailas-cloud/doclib/internal/domain/node"
)

// Status is the lock or working-copy state of an item.
type Status string

// Item statuses.
const (
	StatusNone           Status = ""
	StatusWorkingCopy    Status = "workingcopy"
	StatusHasWorkingCopy Status = "hascopy"
	StatusLocked         Status = "locked"
)

// Permissions are the access-check results for the current user.
type Permissions struct {
	Read   bool
	Create bool
	Edit   bool
	Delete bool
}

// WorkingCopy links a working copy and its source document.
type WorkingCopy struct {
	Source       node.Ref // set on the working copy itself
	Copy         node.Ref // set on a document that has a working copy
	VersionLabel string
	Owner        *directory.Person
}

// Link describes the target of a folder or file link.
type Link struct {
	Target     node.Ref
	TargetName string
	Broken     bool
}

// Item is one evaluated node of a listing.
type Item struct {
	Node        node.Node
	Kind        node.Kind
	Status      Status
	WorkingCopy *WorkingCopy
	Link        *Link
	Permissions Permissions
	Creator     directory.Person
	Modifier    directory.Person
	LockOwner   *directory.Person
	Location    location.Descriptor
}

// Ref returns the item's node reference.
func (it Item) Ref() node.Ref { return it.Node.Ref() }

// Name returns the item's node name.
func (it Item) Name() string { return it.Node.Name() }
