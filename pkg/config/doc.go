// Package config defines the configuration schema for the Ganymede
// configuration server and provides loading, defaulting, and validation
// of config.yaml files.
package config
