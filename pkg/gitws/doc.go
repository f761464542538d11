// Package gitws manages the Git workspaces backing each environment.
//
// A workspace owns one local working directory. It is initialized by
// cloning (or opening) the configured repository and kept fresh by a
// periodic fetch + hard reset driven by the manager's scheduler. All
// read operations are performed against a pinned commit hash so a
// request observes one consistent snapshot even if a refresh lands
// mid-request: Git objects are immutable, so reads by hash need no lock.
// Only ref-name resolution takes the workspace read lock, to avoid
// observing a partially applied reset.
package gitws
