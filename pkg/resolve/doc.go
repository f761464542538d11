// Package resolve implements the configuration resolution pipeline: for
// an (environment, application, profile, label) tuple it enumerates
// candidate YAML files in priority order, reads each from a single
// pinned Git commit, templates and flattens it, and assembles a Spring
// Cloud Config compatible response.
package resolve
