package access

import (
	"fmt"
	"sort"
)

// GroupRegistry holds named groups and answers membership queries.
//
// Groups are flat sets of user names: a group cannot contain another group,
// which rules out membership cycles entirely. Members are resolved eagerly
// against the IdentityStore when a group is defined; membership does not
// change without a full configuration reload.
//
// Like the IdentityStore, the registry is read-only after load and safe for
// concurrent use without locking.
type GroupRegistry struct {
	users  *IdentityStore
	groups map[string]map[string]struct{}
}

// NewGroupRegistry creates an empty registry whose member names resolve
// against the given identity store.
func NewGroupRegistry(users *IdentityStore) *GroupRegistry {
	return &GroupRegistry{
		users:  users,
		groups: make(map[string]map[string]struct{}),
	}
}

// Define registers a group with the given members.
//
// Every member must be a registered user; "anonymous" is always valid.
// A group name appearing in the member list is not expanded: unless a user
// of that name also exists, it fails with ErrUnknownUser (groups do not
// nest). Redefining a group fails with ErrDuplicateGroup.
func (g *GroupRegistry) Define(name string, members []string) error {
	if name == "" {
		return fmt.Errorf("cannot define group with empty name")
	}
	if _, exists := g.groups[name]; exists {
		return fmt.Errorf("group %q: %w", name, ErrDuplicateGroup)
	}

	set := make(map[string]struct{}, len(members))
	for _, member := range members {
		if !g.users.Known(member) {
			return fmt.Errorf("group %q: member %q: %w", name, member, ErrUnknownUser)
		}
		set[member] = struct{}{}
	}

	g.groups[name] = set
	return nil
}

// IsMember reports whether the identity belongs to the named group.
//
// Unknown groups yield false, never an error: an unknown group must not
// grant access silently, and Validate catches unknown-group references at
// load time. A nil identity is never a member of anything.
func (g *GroupRegistry) IsMember(id *Identity, group string) bool {
	if id == nil {
		return false
	}
	members, exists := g.groups[group]
	if !exists {
		return false
	}
	_, ok := members[id.Name]
	return ok
}

// Has reports whether a group with the given name is defined.
func (g *GroupRegistry) Has(name string) bool {
	_, exists := g.groups[name]
	return exists
}

// Validate checks that every referenced group name is defined.
// Returns ErrUnknownGroup for the first undefined reference.
func (g *GroupRegistry) Validate(referenced []string) error {
	for _, name := range referenced {
		if _, exists := g.groups[name]; !exists {
			return fmt.Errorf("group %q: %w", name, ErrUnknownGroup)
		}
	}
	return nil
}

// Members returns the member names of a group in sorted order.
// Returns nil for unknown groups. The returned slice is a copy.
func (g *GroupRegistry) Members(name string) []string {
	set, exists := g.groups[name]
	if !exists {
		return nil
	}
	members := make([]string, 0, len(set))
	for member := range set {
		members = append(members, member)
	}
	sort.Strings(members)
	return members
}

// Names returns all defined group names in sorted order.
// The returned slice is a copy and safe to modify.
func (g *GroupRegistry) Names() []string {
	names := make([]string, 0, len(g.groups))
	for name := range g.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
