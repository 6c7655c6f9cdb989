// Package access implements the directory access-control resolution engine
// shared by all protocol front ends (HTTP, HTTPS, FTP) of the fus daemon.
//
// The engine is built once from configuration and is read-only afterwards:
// an IdentityStore resolves presented credentials to a canonical identity,
// a GroupRegistry answers membership queries, a RuleSet maps directory
// paths to per-operation grants with inheritance along the path hierarchy,
// and a Resolver turns an (identity, path, operation) tuple into an
// allow/deny Decision. The Engine bundles everything into an immutable
// Snapshot behind an atomic pointer so that a configuration reload swaps
// the complete rule set in one step.
//
// The engine fails closed: any case it cannot resolve conclusively is a
// DENY decision, never an error. All configuration errors surface at load
// time and abort startup.
package access
