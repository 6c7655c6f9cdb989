package access

import (
	"fmt"
	"sync/atomic"
)

// Snapshot bundles a fully built identity store, group registry, and rule
// set with a resolver over them. A snapshot is immutable: once constructed
// it is safe to share across arbitrarily many concurrent serving tasks
// without locking, because no field is mutated post-load.
type Snapshot struct {
	users    *IdentityStore
	groups   *GroupRegistry
	rules    *RuleSet
	resolver *Resolver
}

// NewSnapshot bundles the given components into a snapshot.
func NewSnapshot(users *IdentityStore, groups *GroupRegistry, rules *RuleSet) *Snapshot {
	return &Snapshot{
		users:    users,
		groups:   groups,
		rules:    rules,
		resolver: NewResolver(rules, groups),
	}
}

// Users returns the snapshot's identity store.
func (s *Snapshot) Users() *IdentityStore {
	return s.users
}

// Groups returns the snapshot's group registry.
func (s *Snapshot) Groups() *GroupRegistry {
	return s.groups
}

// Rules returns the snapshot's rule set.
func (s *Snapshot) Rules() *RuleSet {
	return s.rules
}

// Check evaluates an access decision against this snapshot.
func (s *Snapshot) Check(id *Identity, path string, op Operation) Decision {
	return s.resolver.Check(id, path, op)
}

// Validate performs the fail-fast cross checks that cannot be done while
// the components are still being filled: every group a rule references
// must be defined, and every user a rule names must be registered.
//
// Returns ErrUnknownGroup or ErrUnknownUser for the first dangling
// reference.
func (s *Snapshot) Validate() error {
	if err := s.groups.Validate(s.rules.ReferencedGroups()); err != nil {
		return err
	}
	for _, name := range s.rules.ReferencedUsers() {
		if !s.users.Known(name) {
			return fmt.Errorf("rule references user %q: %w", name, ErrUnknownUser)
		}
	}
	return nil
}

// Engine is the long-lived access-control entry point handed to protocol
// front ends. It holds the current snapshot behind an atomic pointer:
// a configuration reload builds a complete new snapshot and swaps it in
// one step, so in-flight requests observe either the old or the new rule
// set in full, never a partial mix.
type Engine struct {
	current atomic.Pointer[Snapshot]
}

// NewEngine creates an engine serving the given snapshot.
func NewEngine(snapshot *Snapshot) *Engine {
	e := &Engine{}
	e.current.Store(snapshot)
	return e
}

// Snapshot returns the currently served snapshot.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// Swap atomically replaces the served snapshot and returns the previous
// one.
func (e *Engine) Swap(snapshot *Snapshot) *Snapshot {
	return e.current.Swap(snapshot)
}

// Authorize is the single operation exposed to transport callers: it
// authenticates the presented credential and checks the requested
// operation in one step against one consistent snapshot.
//
// An empty name is treated as anonymous. Authentication failure yields a
// deny with ReasonAuthenticationFailed rather than an error or a silent
// fallback to anonymous; callers that want anonymous semantics pass the
// anonymous name explicitly.
func (e *Engine) Authorize(name string, secret []byte, path string, op Operation) Decision {
	snapshot := e.current.Load()

	if name == "" {
		name = AnonymousName
	}
	id, err := snapshot.users.Authenticate(name, secret)
	if err != nil {
		return deny(ReasonAuthenticationFailed, "", op)
	}

	return snapshot.Check(id, path, op)
}
