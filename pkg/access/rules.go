package access

import (
	"fmt"
	"sort"
	"strings"
)

// grant is the set of principals allowed to perform one operation at one
// directory. A grant with empty sets means "explicitly nobody", which is
// distinct from the operation being undefined at that directory.
type grant struct {
	groups map[string]struct{}
	users  map[string]struct{}
}

// DirectoryRule holds the per-operation grants configured for a single
// directory. Operations without a grant are undefined at this level and
// defer to the nearest ancestor that defines them.
type DirectoryRule struct {
	path   string
	grants map[Operation]*grant
}

// Path returns the normalized directory path ("" is the storage root).
func (r *DirectoryRule) Path() string {
	return r.path
}

// Defines reports whether this directory defines the operation explicitly,
// including the "explicitly nobody" case.
func (r *DirectoryRule) Defines(op Operation) bool {
	_, ok := r.grants[op]
	return ok
}

// RuleSet is the directory rule table: an arena of immutable rule records
// indexed by normalized path, with longest-prefix resolution. The root rule
// ("") always exists and serves as the ultimate fallback.
//
// The set is populated at configuration load and read-only afterwards.
type RuleSet struct {
	rules map[string]*DirectoryRule
}

// NewRuleSet creates a rule set containing only an empty root rule.
func NewRuleSet() *RuleSet {
	return &RuleSet{
		rules: map[string]*DirectoryRule{
			"": {path: "", grants: make(map[Operation]*grant)},
		},
	}
}

// AddRule inserts or merges a rule fragment for one operation at one path.
//
// Passing empty group and user lists still marks the operation as defined
// at this directory, meaning "explicitly nobody". Repeated fragments for
// the same (path, operation) merge their principal sets.
//
// The path must be relative to the storage root and free of ".." segments;
// anything else fails with ErrInvalidPath.
func (t *RuleSet) AddRule(path string, op Operation, groups, users []string) error {
	if !op.Valid() {
		return fmt.Errorf("unknown operation %q", op)
	}
	if strings.HasPrefix(path, "/") {
		return fmt.Errorf("path %q is not relative: %w", path, ErrInvalidPath)
	}
	normalized, err := normalizePath(path)
	if err != nil {
		return err
	}

	rule, exists := t.rules[normalized]
	if !exists {
		rule = &DirectoryRule{path: normalized, grants: make(map[Operation]*grant)}
		t.rules[normalized] = rule
	}

	g, exists := rule.grants[op]
	if !exists {
		g = &grant{
			groups: make(map[string]struct{}),
			users:  make(map[string]struct{}),
		}
		rule.grants[op] = g
	}
	for _, name := range groups {
		g.groups[name] = struct{}{}
	}
	for _, name := range users {
		g.users[name] = struct{}{}
	}
	return nil
}

// ResolvePath returns the chain of configured ancestor rules for a path,
// ordered root first, ending at the deepest configured ancestor-or-exact
// match. Unconfigured intermediate directories simply do not appear; they
// inherit from the nearest configured ancestor.
//
// Request paths may carry a leading slash (FTP clients send absolute
// paths); it is stripped before matching. Paths with ".." segments fail
// with ErrInvalidPath.
func (t *RuleSet) ResolvePath(path string) ([]*DirectoryRule, error) {
	normalized, err := normalizePath(strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, err
	}

	chain := []*DirectoryRule{t.rules[""]}
	if normalized == "" {
		return chain, nil
	}

	segments := strings.Split(normalized, "/")
	prefix := ""
	for _, segment := range segments {
		if prefix == "" {
			prefix = segment
		} else {
			prefix = prefix + "/" + segment
		}
		if rule, exists := t.rules[prefix]; exists {
			chain = append(chain, rule)
		}
	}
	return chain, nil
}

// Paths returns all configured directory paths in sorted order, root ("")
// first. The returned slice is a copy and safe to modify.
func (t *RuleSet) Paths() []string {
	paths := make([]string, 0, len(t.rules))
	for path := range t.rules {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// ReferencedGroups returns the sorted set of group names referenced by any
// grant. Used for fail-fast validation against the GroupRegistry.
func (t *RuleSet) ReferencedGroups() []string {
	return t.referenced(func(g *grant) map[string]struct{} { return g.groups })
}

// ReferencedUsers returns the sorted set of user names referenced by any
// grant. Used for fail-fast validation against the IdentityStore.
func (t *RuleSet) ReferencedUsers() []string {
	return t.referenced(func(g *grant) map[string]struct{} { return g.users })
}

func (t *RuleSet) referenced(pick func(*grant) map[string]struct{}) []string {
	set := make(map[string]struct{})
	for _, rule := range t.rules {
		for _, g := range rule.grants {
			for name := range pick(g) {
				set[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// normalizePath collapses a slash-delimited path to its canonical form:
// redundant slashes and "." segments are dropped, "" denotes the root.
// ".." segments fail with ErrInvalidPath since they could escape the
// storage root.
func normalizePath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	var segments []string
	for _, segment := range strings.Split(path, "/") {
		switch segment {
		case "", ".":
			continue
		case "..":
			return "", fmt.Errorf("path %q contains a parent segment: %w", path, ErrInvalidPath)
		default:
			segments = append(segments, segment)
		}
	}
	return strings.Join(segments, "/"), nil
}
