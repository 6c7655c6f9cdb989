package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSnapshot builds the canonical test fixture:
//
//	users:  eier, admin (+ anonymous)
//	groups: all = {anonymous, eier}
//	dirs:
//	  public       read: group all;  write: user eier
//	  upload       list: user eier
//	  anon_upload  write: user anonymous; list/read: user admin
func newTestSnapshot(t *testing.T) *Snapshot {
	t.Helper()

	users := newTestUsers(t, "eier", "admin")
	groups := NewGroupRegistry(users)
	require.NoError(t, groups.Define("all", []string{AnonymousName, "eier"}))

	rules := NewRuleSet()
	require.NoError(t, rules.AddRule("public", OpRead, []string{"all"}, nil))
	require.NoError(t, rules.AddRule("public", OpWrite, nil, []string{"eier"}))
	require.NoError(t, rules.AddRule("upload", OpList, nil, []string{"eier"}))
	require.NoError(t, rules.AddRule("anon_upload", OpWrite, nil, []string{AnonymousName}))
	require.NoError(t, rules.AddRule("anon_upload", OpList, nil, []string{"admin"}))
	require.NoError(t, rules.AddRule("anon_upload", OpRead, nil, []string{"admin"}))

	snapshot := NewSnapshot(users, groups, rules)
	require.NoError(t, snapshot.Validate())
	return snapshot
}

func TestResolver_Scenarios(t *testing.T) {
	snapshot := newTestSnapshot(t)

	t.Run("AnonymousReadsPublicViaGroup", func(t *testing.T) {
		d := snapshot.Check(Anonymous(), "public/file", OpRead)
		assert.True(t, d.Allowed)
		assert.Equal(t, ReasonGroupGrant, d.Reason)
		assert.Equal(t, "public", d.Path)
	})

	t.Run("AnonymousCannotWritePublic", func(t *testing.T) {
		d := snapshot.Check(Anonymous(), "public/file", OpWrite)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNotAuthorized, d.Reason)
	})

	t.Run("AnonymousCannotListUpload", func(t *testing.T) {
		// The operation IS defined at upload, it just does not include
		// anonymous: not_authorized, not no_rule_defined.
		d := snapshot.Check(Anonymous(), "upload", OpList)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNotAuthorized, d.Reason)
	})

	t.Run("AnonymousDropbox", func(t *testing.T) {
		d := snapshot.Check(Anonymous(), "anon_upload", OpWrite)
		assert.True(t, d.Allowed)
		assert.Equal(t, ReasonUserGrant, d.Reason)

		d = snapshot.Check(Anonymous(), "anon_upload", OpRead)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNotAuthorized, d.Reason)
	})

	t.Run("UserGrantOnOwnName", func(t *testing.T) {
		d := snapshot.Check(&Identity{Name: "eier"}, "public/file", OpWrite)
		assert.True(t, d.Allowed)
		assert.Equal(t, ReasonUserGrant, d.Reason)
	})
}

func TestResolver_Defaults(t *testing.T) {
	snapshot := newTestSnapshot(t)

	t.Run("UndefinedOperationDeniesWithNoRuleDefined", func(t *testing.T) {
		d := snapshot.Check(&Identity{Name: "admin"}, "public/file", OpDelete)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNoRuleDefined, d.Reason)
	})

	t.Run("UnconfiguredPathInheritsNothingFromEmptyRoot", func(t *testing.T) {
		d := snapshot.Check(&Identity{Name: "eier"}, "elsewhere/file", OpRead)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNoRuleDefined, d.Reason)
	})

	t.Run("MkdirResolvesIndependently", func(t *testing.T) {
		// write on public grants nothing for mkdir.
		d := snapshot.Check(&Identity{Name: "eier"}, "public", OpMkdir)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNoRuleDefined, d.Reason)
	})

	t.Run("ListDoesNotFallBackToRead", func(t *testing.T) {
		// anonymous may read public via the all group, but list is not
		// defined anywhere on the chain.
		d := snapshot.Check(Anonymous(), "public", OpList)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNoRuleDefined, d.Reason)
	})
}

func TestResolver_Specificity(t *testing.T) {
	users := newTestUsers(t, "eier")
	groups := NewGroupRegistry(users)
	require.NoError(t, groups.Define("all", []string{AnonymousName, "eier"}))

	rules := NewRuleSet()
	require.NoError(t, rules.AddRule("public", OpWrite, []string{"all"}, nil))
	// Explicitly nobody at the deeper level.
	require.NoError(t, rules.AddRule("public/sub", OpWrite, nil, nil))

	snapshot := NewSnapshot(users, groups, rules)
	require.NoError(t, snapshot.Validate())

	t.Run("DeeperRuleOverridesEvenWhenItDeniesEveryone", func(t *testing.T) {
		d := snapshot.Check(&Identity{Name: "eier"}, "public/sub/file", OpWrite)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNotAuthorized, d.Reason)
		assert.Equal(t, "public/sub", d.Path)
	})

	t.Run("ShallowerLevelStillAllows", func(t *testing.T) {
		d := snapshot.Check(&Identity{Name: "eier"}, "public/file", OpWrite)
		assert.True(t, d.Allowed)
		assert.Equal(t, "public", d.Path)
	})

	t.Run("UnsetOperationAtDeepLevelDefersUpward", func(t *testing.T) {
		// read is undefined at public/sub and at public; root defines
		// nothing either.
		d := snapshot.Check(&Identity{Name: "eier"}, "public/sub/file", OpRead)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNoRuleDefined, d.Reason)
	})
}

func TestResolver_RootRuleInheritance(t *testing.T) {
	users := newTestUsers(t, "admin")
	groups := NewGroupRegistry(users)

	rules := NewRuleSet()
	require.NoError(t, rules.AddRule("", OpList, nil, []string{"admin"}))

	snapshot := NewSnapshot(users, groups, rules)
	require.NoError(t, snapshot.Validate())

	t.Run("RootGrantAppliesToAllPaths", func(t *testing.T) {
		d := snapshot.Check(&Identity{Name: "admin"}, "some/deep/dir", OpList)
		assert.True(t, d.Allowed)
		assert.Equal(t, "", d.Path)
	})

	t.Run("RootGrantDoesNotApplyToOthers", func(t *testing.T) {
		d := snapshot.Check(Anonymous(), "some/deep/dir", OpList)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonNotAuthorized, d.Reason)
	})
}

func TestResolver_FailClosed(t *testing.T) {
	snapshot := newTestSnapshot(t)

	t.Run("InvalidPathDenies", func(t *testing.T) {
		d := snapshot.Check(&Identity{Name: "eier"}, "public/../upload", OpRead)
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonInvalidPath, d.Reason)
	})

	t.Run("UnknownOperationDenies", func(t *testing.T) {
		d := snapshot.Check(&Identity{Name: "eier"}, "public", Operation("chmod"))
		assert.False(t, d.Allowed)
		assert.Equal(t, ReasonUnknownOperation, d.Reason)
	})

	t.Run("NilIdentityIsAnonymous", func(t *testing.T) {
		d := snapshot.Check(nil, "public/file", OpRead)
		assert.True(t, d.Allowed)
		assert.Equal(t, ReasonGroupGrant, d.Reason)
	})

	t.Run("AnonymousNeverMatchesNamedUserRule", func(t *testing.T) {
		d := snapshot.Check(Anonymous(), "upload", OpList)
		assert.False(t, d.Allowed)
	})
}

func TestResolver_Idempotence(t *testing.T) {
	snapshot := newTestSnapshot(t)

	first := snapshot.Check(Anonymous(), "public/file", OpRead)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, snapshot.Check(Anonymous(), "public/file", OpRead))
	}
}
