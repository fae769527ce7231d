// Package menu builds the console navigation tree from the static route
// configuration, optionally filtered by a permission predicate.
package menu

import "github.com/jrsteele09/go-asset-console/permission"

// Item is one entry of the route configuration.
type Item struct {
	Path             string `json:"path"`
	Label            string `json:"label"`
	Icon             string `json:"icon,omitempty"`
	RequiredResource string `json:"requiredResource,omitempty"` // permission resource key, empty for open routes
	ShowInMenu       bool   `json:"showInMenu"`
	Children         []Item `json:"children,omitempty"`
}

// Predicate decides whether a leaf item is shown.
type Predicate func(Item) bool

// Filter returns the displayable items that pass pred. A nil pred passes
// everything. Items with children are not checked against pred themselves:
// their children are filtered first and the item is dropped when none remain.
func Filter(items []Item, pred Predicate) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if !it.ShowInMenu {
			continue
		}
		if len(it.Children) > 0 {
			children := Filter(it.Children, pred)
			if len(children) == 0 {
				continue
			}
			it.Children = children
			out = append(out, it)
			continue
		}
		if pred != nil && !pred(it) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// ReadablePredicate passes items the evaluator allows reading. Items with no
// required resource always pass.
func ReadablePredicate(ev *permission.Evaluator) Predicate {
	return func(it Item) bool {
		if it.RequiredResource == "" {
			return true
		}
		return ev.CanRead(it.RequiredResource)
	}
}

// Build filters the console routes for the evaluator's actor.
func Build(ev *permission.Evaluator) []Item {
	return Filter(ConsoleRoutes(), ReadablePredicate(ev))
}

// RequiredResource finds the resource key guarding path in items, searching
// one level of children. The second result is false when path is unknown.
func RequiredResource(items []Item, path string) (string, bool) {
	for _, it := range items {
		if it.Path == path && len(it.Children) == 0 {
			return it.RequiredResource, true
		}
		for _, child := range it.Children {
			if child.Path == path {
				return child.RequiredResource, true
			}
		}
	}
	return "", false
}
