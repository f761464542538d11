// Package flatten parses YAML documents and flattens them into ordered
// maps of dotted property keys to scalar JSON values, preserving the
// key order of the source document.
package flatten
