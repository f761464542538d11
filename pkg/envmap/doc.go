// Package envmap builds the effective environment map for each
// configured environment. The map is assembled once at startup from up
// to three layered sources (process environment, global env file,
// per-environment env file) and is read-only afterwards.
package envmap
