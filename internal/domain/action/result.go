// Package action models multi-item copy, move and link outcomes.
package action

import "fmt"

// Kind is the multi-item action being performed.
type Kind string

// Action kinds.
const (
	KindCopy Kind = "copy-to"
	KindMove Kind = "move-to"
	KindLink Kind = "link-to"
)

// ParseKind validates an action name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindCopy, KindMove, KindLink:
		return k, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// ItemStatus is the processing outcome of a single item.
type ItemStatus string

// Item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of processing one node of a multi-item action.
type Result struct {
	nodeRef string
	name    string
	id      string // id of the node created by copy or link
	status  ItemStatus
	err     error
}

// NewOK creates a successful result.
func NewOK(nodeRef, name, id string) Result {
	return Result{nodeRef: nodeRef, name: name, id: id, status: StatusOK}
}

// NewError creates a failed result.
func NewError(nodeRef, name string, err error) Result {
	return Result{nodeRef: nodeRef, name: name, status: StatusError, err: err}
}

// NodeRef returns the source node reference as given by the caller.
func (r Result) NodeRef() string { return r.nodeRef }

// Name returns the source node name, if it was resolved.
func (r Result) Name() string { return r.name }

// ID returns the id of the created node, if any.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Success reports whether the item succeeded.
func (r Result) Success() bool { return r.status == StatusOK }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary aggregates per-item results.
type Summary struct {
	Results        []Result
	OverallSuccess bool
	SuccessCount   int
	FailureCount   int
}

// Summarize scans every result. OverallSuccess holds only when all items
// succeeded.
func Summarize(results []Result) Summary {
	s := Summary{Results: results}
	for _, r := range results {
		if r.Success() {
			s.SuccessCount++
		} else {
			s.FailureCount++
		}
	}
	s.OverallSuccess = len(results) > 0 && s.FailureCount == 0
	return s
}
