// Package auth implements the authorization gate guarding every
// non-health endpoint. Two independent mechanisms combine with fixed
// precedence: HTTP Basic Auth credentials taken from the process
// environment, and a header-based client ACL with per-client
// environment and scope grants.
package auth
