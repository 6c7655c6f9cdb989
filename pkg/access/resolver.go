package access

// Reason explains a Decision. Reasons are stable strings so that protocol
// front ends and audit logs can match on them.
type Reason string

const (
	// ReasonUserGrant indicates the identity was named directly by the
	// deciding rule.
	ReasonUserGrant Reason = "user_grant"

	// ReasonGroupGrant indicates the identity belongs to a group named by
	// the deciding rule.
	ReasonGroupGrant Reason = "group_grant"

	// ReasonNotAuthorized indicates a rule defines the operation but does
	// not include the identity.
	ReasonNotAuthorized Reason = "not_authorized"

	// ReasonNoRuleDefined indicates no ancestor directory (including the
	// root) defines the operation.
	ReasonNoRuleDefined Reason = "no_rule_defined"

	// ReasonInvalidPath indicates the request path is malformed (e.g.
	// contains ".." segments).
	ReasonInvalidPath Reason = "invalid_path"

	// ReasonUnknownOperation indicates the requested operation is not one
	// of list/read/write/delete/mkdir.
	ReasonUnknownOperation Reason = "unknown_operation"

	// ReasonAuthenticationFailed indicates the presented credential could
	// not be resolved to an identity.
	ReasonAuthenticationFailed Reason = "authentication_failed"
)

// Decision is the outcome of an access check. It is a plain value: the
// Resolver never returns an error at request time, every unresolvable case
// degrades to a deny.
type Decision struct {
	// Allowed reports whether the operation is permitted.
	Allowed bool

	// Reason explains the outcome.
	Reason Reason

	// Path is the directory path of the rule that decided, "" when the
	// decision did not reach a rule (invalid path, no rule defined).
	Path string

	// Operation is the operation that was checked.
	Operation Operation
}

func allow(reason Reason, path string, op Operation) Decision {
	return Decision{Allowed: true, Reason: reason, Path: path, Operation: op}
}

func deny(reason Reason, path string, op Operation) Decision {
	return Decision{Allowed: false, Reason: reason, Path: path, Operation: op}
}

// Resolver evaluates access checks against a rule set and group registry.
//
// The resolver is pure: identical inputs always yield identical decisions
// for the same loaded rule set, and no call mutates any state.
type Resolver struct {
	rules  *RuleSet
	groups *GroupRegistry
}

// NewResolver creates a resolver over the given rule set and registry.
func NewResolver(rules *RuleSet, groups *GroupRegistry) *Resolver {
	return &Resolver{rules: rules, groups: groups}
}

// Check decides whether the identity may perform the operation on the path.
//
// The ancestor chain for the path is walked from the most specific end
// toward the root. The first directory that defines the operation decides:
// the identity is granted if it is named directly or belongs to an allowed
// group. The walk stops at that level regardless of outcome, so a specific
// rule fully overrides shallower ones (no additive union across levels).
// If no ancestor defines the operation the result is a deny with
// ReasonNoRuleDefined.
//
// A nil identity is treated as anonymous.
func (r *Resolver) Check(id *Identity, path string, op Operation) Decision {
	if id == nil {
		id = Anonymous()
	}
	if !op.Valid() {
		return deny(ReasonUnknownOperation, "", op)
	}

	chain, err := r.rules.ResolvePath(path)
	if err != nil {
		return deny(ReasonInvalidPath, "", op)
	}

	for i := len(chain) - 1; i >= 0; i-- {
		rule := chain[i]
		g, defined := rule.grants[op]
		if !defined {
			continue
		}

		if _, ok := g.users[id.Name]; ok {
			return allow(ReasonUserGrant, rule.path, op)
		}
		for group := range g.groups {
			if r.groups.IsMember(id, group) {
				return allow(ReasonGroupGrant, rule.path, op)
			}
		}

		// Specificity wins: the defining level decides, shallower
		// definitions are never re-checked.
		return deny(ReasonNotAuthorized, rule.path, op)
	}

	return deny(ReasonNoRuleDefined, "", op)
}
