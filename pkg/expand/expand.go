// Package expand tracks which nodes of a tree are currently expanded.
//
// The package provides two pieces:
//
//   - [Set], a plain value type holding expanded node ids. Layout passes
//     consume sets by snapshot, so a pass never observes a half-applied
//     toggle.
//   - [Controller], the single owner of the mutable set. Hosts route node
//     activations through [Controller.Toggle] and subscribe to state
//     changes with [Controller.OnChange].
//
// Every node starts collapsed. Toggling an id that is not expandable
// (a leaf) is a deliberate no-op, not an error.
package expand

import (
	"maps"
	"slices"
)

// Set is a set of expanded node ids.
// The zero value is not usable - use NewSet.
type Set map[string]struct{}

// NewSet creates a set containing the given ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set.
func (s Set) Add(id string) { s[id] = struct{}{} }

// Remove deletes id from the set. Removing an absent id does nothing.
func (s Set) Remove(id string) { delete(s, id) }

// Len returns the number of ids in the set.
func (s Set) Len() int { return len(s) }

// Snapshot returns an independent copy of the set.
// Downstream layout passes should operate on snapshots so that later
// toggles cannot mutate a pass in flight.
func (s Set) Snapshot() Set {
	return maps.Clone(s)
}

// IDs returns the ids in sorted order for deterministic output
// (cache keys, serialization, tests).
func (s Set) IDs() []string {
	return slices.Sorted(maps.Keys(s))
}

// Prune removes every id not present in universe and returns the number
// of ids dropped. Hosts can use this to normalize a persisted set after
// the underlying tree changed shape.
func (s Set) Prune(universe Set) int {
	dropped := 0
	for id := range s {
		if !universe.Has(id) {
			delete(s, id)
			dropped++
		}
	}
	return dropped
}

// Controller owns the expanded set and applies toggle transitions.
//
// Each node is in exactly one of two states, collapsed or expanded, and
// starts collapsed. Toggling flips the state of that node only; unrelated
// nodes are never affected. Controller is not safe for concurrent use -
// it is meant to live on the host's UI goroutine, matching the
// single-threaded interaction model.
type Controller struct {
	expanded   Set
	expandable Set
	listeners  []func(id string, expanded bool)
}

// NewController creates a controller over the given expandable-id
// universe. The expandable set should come from tree.ExpandableIDs so
// that collapsed-but-expandable nodes stay togglable.
func NewController(expandable Set) *Controller {
	if expandable == nil {
		expandable = NewSet()
	}
	return &Controller{
		expanded:   NewSet(),
		expandable: expandable,
	}
}

// OnChange registers a listener invoked after every effective toggle
// with the node id and its new expanded state.
func (c *Controller) OnChange(fn func(id string, expanded bool)) {
	if fn != nil {
		c.listeners = append(c.listeners, fn)
	}
}

// Toggle flips the expanded state of id.
// It returns the new state and whether the toggle had any effect.
// Ids outside the expandable universe are ignored.
func (c *Controller) Toggle(id string) (expanded, ok bool) {
	if !c.expandable.Has(id) {
		return false, false
	}
	if c.expanded.Has(id) {
		c.expanded.Remove(id)
	} else {
		c.expanded.Add(id)
	}
	now := c.expanded.Has(id)
	for _, fn := range c.listeners {
		fn(id, now)
	}
	return now, true
}

// Expanded returns a snapshot of the current expanded set.
func (c *Controller) Expanded() Set { return c.expanded.Snapshot() }

// Expandable reports whether id can be toggled.
func (c *Controller) Expandable(id string) bool { return c.expandable.Has(id) }

// SetExpandable replaces the expandable universe, e.g. after the host
// swapped in a new input tree. Expanded ids that are no longer
// expandable are pruned so the set never references leaves.
func (c *Controller) SetExpandable(expandable Set) {
	if expandable == nil {
		expandable = NewSet()
	}
	c.expandable = expandable
	c.expanded.Prune(expandable)
}

// Restore replaces the expanded set, pruning ids outside the expandable
// universe. Used when loading a persisted view state.
func (c *Controller) Restore(s Set) {
	if s == nil {
		s = NewSet()
	}
	restored := s.Snapshot()
	restored.Prune(c.expandable)
	c.expanded = restored
}

// ExpandAll marks every expandable id as expanded.
func (c *Controller) ExpandAll() {
	c.expanded = c.expandable.Snapshot()
}

// CollapseAll empties the expanded set.
func (c *Controller) CollapseAll() {
	c.expanded = NewSet()
}
