// Package template provides the placeholder substitution applied to text
// files served from Git, and the binary detection that decides whether a
// file is eligible for substitution at all.
package template
