package config

import (
	"fmt"
	"sort"

	"github.com/fus-server/fus/pkg/access"
)

// BuildSnapshot assembles the immutable access-control snapshot from a
// loaded configuration: users into the identity store, groups into the
// registry, directory sections into the rule set, followed by the
// fail-fast cross validation.
//
// All errors carry the access error taxonomy (ErrDuplicateUser,
// ErrUnknownUser, ErrDuplicateGroup, ErrUnknownGroup, ErrInvalidPath) and
// are fatal: a misconfigured ACL aborts startup instead of serving with
// wrong permissions.
func BuildSnapshot(cfg *Config) (*access.Snapshot, error) {
	users := access.NewIdentityStore()
	for _, name := range sortedKeys(cfg.Users) {
		credential, err := cfg.Users[name].credential()
		if err != nil {
			return nil, fmt.Errorf("user:%s: %w", name, err)
		}
		if err := users.Register(name, credential); err != nil {
			return nil, err
		}
	}

	groups := access.NewGroupRegistry(users)
	for _, name := range sortedKeys(cfg.Groups) {
		var members []string
		if cfg.Groups[name].User != nil {
			members = splitList(*cfg.Groups[name].User)
		}
		if err := groups.Define(name, members); err != nil {
			return nil, err
		}
	}

	rules := access.NewRuleSet()
	for _, path := range sortedKeys(cfg.Dirs) {
		section := cfg.Dirs[path]
		for _, op := range access.Operations() {
			groupList, userList := section.fields(op)
			if groupList == nil && userList == nil {
				// Operation undefined at this directory: inherit.
				continue
			}
			var grantGroups, grantUsers []string
			if groupList != nil {
				grantGroups = splitList(*groupList)
			}
			if userList != nil {
				grantUsers = splitList(*userList)
			}
			if err := rules.AddRule(path, op, grantGroups, grantUsers); err != nil {
				return nil, fmt.Errorf("dir:%s: %w", path, err)
			}
		}
	}

	snapshot := access.NewSnapshot(users, groups, rules)
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// LoadSnapshot is the one-call startup path: Load followed by
// BuildSnapshot.
func LoadSnapshot(configPath string) (*Config, *access.Snapshot, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	snapshot, err := BuildSnapshot(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build access snapshot: %w", err)
	}
	return cfg, snapshot, nil
}

// sortedKeys returns the map keys in sorted order so that configuration
// errors are reported deterministically.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
