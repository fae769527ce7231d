package permission

import (
	"slices"
	"sync"
)

// EmptyTreePolicy decides what an empty or not yet loaded tree answers.
type EmptyTreePolicy int

const (
	// FailOpen allows everything until a non-empty tree is loaded.
	FailOpen EmptyTreePolicy = iota
	// FailClosed denies everything until a non-empty tree is loaded.
	FailClosed
)

func (p EmptyTreePolicy) String() string {
	if p == FailClosed {
		return "fail-closed"
	}
	return "fail-open"
}

// Decision is the outcome of a route guard check.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionDeny
	// DecisionLoading means no tree has been loaded yet under FailClosed.
	DecisionLoading
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionDeny:
		return "deny"
	case DecisionLoading:
		return "loading"
	}
	return "unknown"
}

// Evaluator answers "may the current actor perform action on resource".
// It is safe for concurrent use.
type Evaluator struct {
	mu     sync.RWMutex
	policy EmptyTreePolicy
	roles  []string
	tree   *Tree
	loaded bool
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithEmptyTreePolicy overrides the default FailOpen policy.
func WithEmptyTreePolicy(p EmptyTreePolicy) EvaluatorOption {
	return func(e *Evaluator) {
		e.policy = p
	}
}

func NewEvaluator(opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{policy: FailOpen}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the configured empty tree policy.
func (e *Evaluator) Policy() EmptyTreePolicy {
	return e.policy
}

// SetRoles replaces the actor's role list.
func (e *Evaluator) SetRoles(roles []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.roles = slices.Clone(roles)
}

// Load replaces the tree wholesale.
func (e *Evaluator) Load(tree *Tree) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tree = tree
	e.loaded = true
}

// LoadNodes validates nodes and loads them as the new tree. On error the
// previous tree is kept.
func (e *Evaluator) LoadNodes(nodes []*Node) error {
	tree, err := NewTree(nodes)
	if err != nil {
		return err
	}
	e.Load(tree)
	return nil
}

// Reset forgets roles and tree, as on logout.
func (e *Evaluator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.roles = nil
	e.tree = nil
	e.loaded = false
}

// Loaded reports whether a tree has been loaded since the last reset.
func (e *Evaluator) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// Tree returns the current tree, which may be nil.
func (e *Evaluator) Tree() *Tree {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tree
}

// IsAdmin reports whether the actor holds AdminRole.
func (e *Evaluator) IsAdmin() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Contains(e.roles, AdminRole)
}

// HasPermission checks action on resourceKey. Administrators always pass;
// an empty tree answers by policy; a missing key or a node without grants
// answers false.
func (e *Evaluator) HasPermission(resourceKey string, action Action) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if slices.Contains(e.roles, AdminRole) {
		return true
	}
	if e.tree.Empty() {
		return e.policy == FailOpen
	}
	node, ok := e.tree.Find(resourceKey)
	if !ok {
		return false
	}
	return node.Grants.Allows(action)
}

// CanRead is HasPermission with ActionRead.
func (e *Evaluator) CanRead(resourceKey string) bool {
	return e.HasPermission(resourceKey, ActionRead)
}

// Guard is the route guard check for viewing resourceKey. Routes without a
// resource key only need an authenticated actor and always pass.
func (e *Evaluator) Guard(resourceKey string) Decision {
	if resourceKey == "" || e.IsAdmin() {
		return DecisionAllow
	}
	e.mu.RLock()
	pending := !e.loaded && e.tree.Empty()
	e.mu.RUnlock()
	if pending && e.policy == FailClosed {
		return DecisionLoading
	}
	if e.CanRead(resourceKey) {
		return DecisionAllow
	}
	return DecisionDeny
}
