// Package assets serves raw files from an environment's Git snapshot:
// recursive file listings under the configured subpath, and per-file
// fetches with label resolution, binary detection, and templating of
// text content.
package assets
