package node

import (
	"slices"
	"time"
)

// Capability is a trait resolved once from a node's type and aspects.
type Capability uint8

// Capabilities.
const (
	CapContainer Capability = 1 << iota
	CapFolderLink
	CapFileLink
	CapWorkingCopy
	CapCheckedOut
	CapLocked
	CapTransferred
)

// Kind is the listing classification of a node.
type Kind string

// Kinds in classification order.
const (
	KindFolder     Kind = "folder"
	KindFolderLink Kind = "folderlink"
	KindFileLink   Kind = "filelink"
	KindDocument   Kind = "document"
)

// IsFolderLike reports whether items of this kind sort with folders.
func (k Kind) IsFolderLike() bool {
	return k == KindFolder || k == KindFolderLink
}

// Attrs carries the stored state of a node.
type Attrs struct {
	ID         string
	QName      string
	Type       string
	Name       string
	ParentID   string
	Ancestors  []string // root first, parent last
	Aspects    []string
	Properties map[string]string
	Tags       []string
	Created    time.Time
	Modified   time.Time
	Creator    string
	Modifier   string
}

// Node is an immutable repository entity with its capability set.
type Node struct {
	id        string
	qname     string
	nodeType  string
	name      string
	parentID  string
	ancestors []string
	aspects   map[string]struct{}
	props     map[string]string
	tags      []string
	created   time.Time
	modified  time.Time
	creator   string
	modifier  string
	caps      Capability
}

// Reconstruct builds a Node from stored attributes.
func Reconstruct(a Attrs) Node {
	aspects := make(map[string]struct{}, len(a.Aspects))
	for _, asp := range a.Aspects {
		if asp != "" {
			aspects[asp] = struct{}{}
		}
	}
	props := make(map[string]string, len(a.Properties))
	for k, v := range a.Properties {
		props[k] = v
	}
	qname := a.QName
	if qname == "" {
		qname = "cm:" + a.Name
	}

	n := Node{
		id:        a.ID,
		qname:     qname,
		nodeType:  a.Type,
		name:      a.Name,
		parentID:  a.ParentID,
		ancestors: slices.Clone(a.Ancestors),
		aspects:   aspects,
		props:     props,
		tags:      slices.Clone(a.Tags),
		created:   a.Created,
		modified:  a.Modified,
		creator:   a.Creator,
		modifier:  a.Modifier,
	}
	n.caps = n.resolveCapabilities()
	return n
}

func (n Node) resolveCapabilities() Capability {
	var c Capability
	if IsContainerType(n.nodeType) {
		c |= CapContainer
	}
	switch n.nodeType {
	case TypeFolderLink:
		c |= CapFolderLink
	case TypeFileLink:
		c |= CapFileLink
	}
	if n.HasAspect(AspectWorkingCopy) {
		c |= CapWorkingCopy
	}
	if n.HasAspect(AspectCheckedOut) {
		c |= CapCheckedOut
	}
	if n.HasAspect(AspectLockable) && n.props[PropLockType] != "" {
		c |= CapLocked
	}
	if n.HasAspect(AspectTransferred) {
		c |= CapTransferred
	}
	return c
}

// ID returns the node id.
func (n Node) ID() string { return n.id }

// Ref returns the default-store reference of the node.
func (n Node) Ref() Ref { return RefOf(n.id) }

// QName returns the qualified name of the node's association to its parent.
func (n Node) QName() string { return n.qname }

// Type returns the node's content model type.
func (n Node) Type() string { return n.nodeType }

// Name returns cm:name.
func (n Node) Name() string { return n.name }

// ParentID returns the primary parent id, empty for the repository root.
func (n Node) ParentID() string { return n.parentID }

// Ancestors returns ancestor ids, root first.
func (n Node) Ancestors() []string { return slices.Clone(n.ancestors) }

// Aspects returns the applied aspects, sorted.
func (n Node) Aspects() []string {
	out := make([]string, 0, len(n.aspects))
	for a := range n.aspects {
		out = append(out, a)
	}
	slices.Sort(out)
	return out
}

// HasAspect reports whether the aspect is applied.
func (n Node) HasAspect(aspect string) bool {
	_, ok := n.aspects[aspect]
	return ok
}

// Prop returns a property value, or "" when unset.
func (n Node) Prop(key string) string { return n.props[key] }

// Properties returns a copy of all properties.
func (n Node) Properties() map[string]string {
	out := make(map[string]string, len(n.props))
	for k, v := range n.props {
		out[k] = v
	}
	return out
}

// Tags returns the node's tag names.
func (n Node) Tags() []string { return slices.Clone(n.tags) }

// Created returns the creation time.
func (n Node) Created() time.Time { return n.created }

// Modified returns the last modification time.
func (n Node) Modified() time.Time { return n.modified }

// Creator returns the creating user name.
func (n Node) Creator() string { return n.creator }

// Modifier returns the last modifying user name.
func (n Node) Modifier() string { return n.modifier }

// Has reports whether the node carries a capability.
func (n Node) Has(c Capability) bool { return n.caps&c != 0 }

// Classify returns the listing kind: containers, then folder links, then
// file links, then documents.
func (n Node) Classify() Kind {
	switch {
	case n.Has(CapContainer):
		return KindFolder
	case n.Has(CapFolderLink):
		return KindFolderLink
	case n.Has(CapFileLink):
		return KindFileLink
	default:
		return KindDocument
	}
}

// IsWithin reports whether the node is rootID itself or one of its descendants.
func (n Node) IsWithin(rootID string) bool {
	return n.id == rootID || slices.Contains(n.ancestors, rootID)
}

// Segment is one step of a node's qualified path.
type Segment struct {
	QName string
	Name  string
}

// PathOf builds the qualified path of n from its ancestors, root first.
func PathOf(ancestors []Node, n Node) []Segment {
	segs := make([]Segment, 0, len(ancestors)+1)
	for _, a := range ancestors {
		segs = append(segs, Segment{QName: a.qname, Name: a.name})
	}
	return append(segs, Segment{QName: n.qname, Name: n.name})
}
