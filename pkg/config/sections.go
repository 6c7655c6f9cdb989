package config

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/fus-server/fus/pkg/access"
)

// UserSection is the body of a [user:<name>] section.
//
// Exactly one credential field must be set. B64Password is the common form
// (base64-wrapped secret so that the INI file survives odd characters);
// Password is the plaintext convenience form.
type UserSection struct {
	// B64Password is the base64-encoded secret material.
	B64Password *string `mapstructure:"b64_password"`

	// Password is the plaintext secret.
	Password *string `mapstructure:"password"`
}

// credential returns the decoded secret bytes for the user.
func (u UserSection) credential() ([]byte, error) {
	switch {
	case u.B64Password != nil && u.Password != nil:
		return nil, fmt.Errorf("both b64_password and password are set")
	case u.B64Password != nil:
		decoded, err := base64.StdEncoding.DecodeString(*u.B64Password)
		if err != nil {
			return nil, fmt.Errorf("b64_password is not valid base64: %w", err)
		}
		return decoded, nil
	case u.Password != nil:
		return []byte(*u.Password), nil
	default:
		return nil, fmt.Errorf("neither b64_password nor password is set")
	}
}

// GroupSection is the body of a [group:<name>] section.
type GroupSection struct {
	// User is the comma-separated member list. "anonymous" is a reserved
	// always-valid member name.
	User *string `mapstructure:"user"`
}

// DirSection is the body of a [dir:<path>] section: per-operation grants
// as comma-separated group and user name lists.
//
// A nil field means the operation is undefined at this directory and
// inherits from the nearest ancestor that defines it; a present-but-empty
// field means "explicitly nobody".
type DirSection struct {
	ListGroups   *string `mapstructure:"list_groups"`
	ReadGroups   *string `mapstructure:"read_groups"`
	WriteGroups  *string `mapstructure:"write_groups"`
	DeleteGroups *string `mapstructure:"delete_groups"`
	MkdirGroups  *string `mapstructure:"mkdir_groups"`

	ListUser   *string `mapstructure:"list_user"`
	ReadUser   *string `mapstructure:"read_user"`
	WriteUser  *string `mapstructure:"write_user"`
	DeleteUser *string `mapstructure:"delete_user"`
	MkdirUser  *string `mapstructure:"mkdir_user"`
}

// fields returns the group and user list fields for one operation.
func (d DirSection) fields(op access.Operation) (groups, users *string) {
	switch op {
	case access.OpList:
		return d.ListGroups, d.ListUser
	case access.OpRead:
		return d.ReadGroups, d.ReadUser
	case access.OpWrite:
		return d.WriteGroups, d.WriteUser
	case access.OpDelete:
		return d.DeleteGroups, d.DeleteUser
	case access.OpMkdir:
		return d.MkdirGroups, d.MkdirUser
	default:
		return nil, nil
	}
}

// splitList splits a comma-separated configuration value into trimmed,
// non-empty entries. An empty value yields no entries.
func splitList(value string) []string {
	var entries []string
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}
