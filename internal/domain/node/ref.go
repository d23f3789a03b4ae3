package node

import (
	"fmt"
	"regexp"
	"strings"
)

// Default store coordinates.
const (
	DefaultStoreType = "workspace"
	DefaultStoreID   = "SpacesStore"
)

var (
	idRegex    = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	storeRegex = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// Ref identifies a node within a store: storeType://storeId/id.
type Ref struct {
	storeType string
	storeID   string
	id        string
}

// NewRef validates and creates a Ref from its three template arguments.
func NewRef(storeType, storeID, id string) (Ref, error) {
	if storeType == "" {
		storeType = DefaultStoreType
	}
	if storeID == "" {
		storeID = DefaultStoreID
	}
	if !storeRegex.MatchString(storeType) || !storeRegex.MatchString(storeID) {
		return Ref{}, fmt.Errorf("invalid store %s://%s", storeType, storeID)
	}
	if id == "" {
		return Ref{}, fmt.Errorf("node id is required")
	}
	if len(id) > 256 || !idRegex.MatchString(id) {
		return Ref{}, fmt.Errorf("invalid node id %q", id)
	}
	return Ref{storeType: storeType, storeID: storeID, id: id}, nil
}

// ParseRef accepts "workspace://SpacesStore/<id>" or a bare id.
func ParseRef(s string) (Ref, error) {
	storeType, rest, found := strings.Cut(s, "://")
	if !found {
		return NewRef(DefaultStoreType, DefaultStoreID, s)
	}
	storeID, id, found := strings.Cut(rest, "/")
	if !found {
		return Ref{}, fmt.Errorf("invalid node reference %q", s)
	}
	return NewRef(storeType, storeID, id)
}

// RefOf returns the default-store Ref of a node id without validation.
func RefOf(id string) Ref {
	return Ref{storeType: DefaultStoreType, storeID: DefaultStoreID, id: id}
}

// ID returns the node id.
func (r Ref) ID() string { return r.id }

// IsZero reports whether the ref is unset.
func (r Ref) IsZero() bool { return r.id == "" }

func (r Ref) String() string {
	if r.id == "" {
		return ""
	}
	return r.storeType + "://" + r.storeID + "/" + r.id
}
