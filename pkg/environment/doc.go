// Package environment ties together the per-environment state assembled
// at startup: the Git workspace and the effective environment map used
// for templating.
package environment
