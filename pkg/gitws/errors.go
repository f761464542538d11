package gitws

import "errors"

var (
	// ErrLabelNotFound indicates a client-supplied label that is not in
	// the branch whitelist or does not resolve to a commit.
	ErrLabelNotFound = errors.New("label not found")

	// ErrRefMissing indicates the environment's default branch does not
	// resolve to a commit.
	ErrRefMissing = errors.New("default ref missing")

	// ErrBlobNotFound indicates the requested path does not exist at
	// the pinned commit.
	ErrBlobNotFound = errors.New("blob not found")

	// ErrTimeout indicates a Git operation exceeded its time bound.
	ErrTimeout = errors.New("git operation timed out")
)
