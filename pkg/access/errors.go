package access

import "errors"

// ============================================================================
// Standard Access Control Errors
// ============================================================================

// These errors are raised exclusively while the access-control snapshot is
// built from configuration. A misconfigured ACL must abort startup rather
// than silently serve with wrong permissions, so none of these errors are
// retried and none can occur at request time: once a Snapshot exists, the
// only request-time outcome is a Decision value.
//
// Error Wrapping:
// Loaders wrap these errors with the offending configuration element:
//
//	if _, ok := s.users[name]; ok {
//	    return fmt.Errorf("user %q: %w", name, access.ErrDuplicateUser)
//	}

var (
	// ErrUnknownUser indicates a reference to a user that was never
	// registered.
	//
	// This error is returned when:
	//   - Authenticate() is called with an unregistered name
	//   - A group definition lists an unregistered member
	//   - A directory rule grants an operation to an unregistered user
	//
	// Protocol Mapping:
	//   - HTTP: 401 Unauthorized (authentication) / startup failure (load)
	//   - FTP: 530 Not logged in (authentication) / startup failure (load)
	ErrUnknownUser = errors.New("unknown user")

	// ErrBadCredential indicates the presented secret does not match the
	// registered credential.
	//
	// Protocol Mapping:
	//   - HTTP: 401 Unauthorized
	//   - FTP: 530 Not logged in
	ErrBadCredential = errors.New("bad credential")

	// ErrDuplicateUser indicates a user name was registered twice.
	// Only possible at configuration load; fatal.
	ErrDuplicateUser = errors.New("duplicate user")

	// ErrDuplicateGroup indicates a group name was defined twice.
	// Only possible at configuration load; fatal.
	ErrDuplicateGroup = errors.New("duplicate group")

	// ErrUnknownGroup indicates a directory rule references a group that
	// was never defined.
	//
	// Membership queries against unknown groups deliberately return false
	// instead of this error (unknown groups never grant access silently);
	// the error exists so that Validate() can fail fast at load time.
	ErrUnknownGroup = errors.New("unknown group")

	// ErrInvalidPath indicates a malformed directory path.
	//
	// This error is returned when:
	//   - A path contains a ".." segment
	//   - A path is absolute (must be relative to the storage root)
	//
	// At request time a malformed path never surfaces as an error; the
	// Resolver degrades it to a DENY decision with ReasonInvalidPath.
	ErrInvalidPath = errors.New("invalid path")
)
