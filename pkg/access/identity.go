package access

import (
	"crypto/subtle"
	"fmt"
	"sort"
)

// AnonymousName is the reserved user name for unauthenticated clients.
// It always exists, carries no credential, and may only be granted access
// by directory rules that name it explicitly.
const AnonymousName = "anonymous"

// Identity is a resolved user principal: either a named user or the
// anonymous principal. Identities are handed out by the IdentityStore and
// passed to the Resolver for permission checks.
type Identity struct {
	// Name is the canonical user name.
	Name string

	// Anonymous indicates this is the unauthenticated principal.
	Anonymous bool
}

// Anonymous returns the distinguished anonymous identity.
func Anonymous() *Identity {
	return &Identity{Name: AnonymousName, Anonymous: true}
}

type user struct {
	name       string
	credential []byte
	anonymous  bool
}

// IdentityStore holds all registered users and resolves presented
// credentials to canonical identities.
//
// The store is populated at configuration load and is read-only afterwards,
// so it is safe for concurrent use without locking. The anonymous user is
// pre-registered and cannot be registered again with a credential.
type IdentityStore struct {
	users map[string]*user
}

// NewIdentityStore creates a store containing only the anonymous user.
func NewIdentityStore() *IdentityStore {
	return &IdentityStore{
		users: map[string]*user{
			AnonymousName: {name: AnonymousName, anonymous: true},
		},
	}
}

// Register adds a user with the given credential bytes.
//
// The credential is treated as opaque secret material; the store does not
// impose a hashing scheme. Registering an already known name (including
// "anonymous") fails with ErrDuplicateUser.
func (s *IdentityStore) Register(name string, credential []byte) error {
	if name == "" {
		return fmt.Errorf("cannot register user with empty name")
	}
	if _, exists := s.users[name]; exists {
		return fmt.Errorf("user %q: %w", name, ErrDuplicateUser)
	}

	cred := make([]byte, len(credential))
	copy(cred, credential)
	s.users[name] = &user{name: name, credential: cred}
	return nil
}

// Authenticate resolves a presented name and secret to an Identity.
//
// The anonymous name always succeeds without any secret check. For all
// other names the presented secret must match the registered credential;
// comparison is constant-time. Authentication is stateless per call.
//
// Returns:
//   - *Identity: The resolved identity
//   - error: ErrUnknownUser if the name is not registered,
//     ErrBadCredential on secret mismatch
func (s *IdentityStore) Authenticate(name string, secret []byte) (*Identity, error) {
	u, exists := s.users[name]
	if !exists {
		return nil, fmt.Errorf("user %q: %w", name, ErrUnknownUser)
	}

	if u.anonymous {
		return Anonymous(), nil
	}

	if subtle.ConstantTimeCompare(u.credential, secret) != 1 {
		return nil, fmt.Errorf("user %q: %w", name, ErrBadCredential)
	}

	return &Identity{Name: u.name}, nil
}

// Known reports whether a user with the given name is registered.
// The anonymous user is always known.
func (s *IdentityStore) Known(name string) bool {
	_, exists := s.users[name]
	return exists
}

// Names returns all registered user names in sorted order, including
// "anonymous". The returned slice is a copy and safe to modify.
func (s *IdentityStore) Names() []string {
	names := make([]string, 0, len(s.users))
	for name := range s.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
