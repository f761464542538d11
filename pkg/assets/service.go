package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mercator-hq/ganymede/pkg/environment"
	"mercator-hq/ganymede/pkg/template"
)

// ErrBadRequest indicates a malformed asset path: an absolute path or
// one containing a ".." segment.
var ErrBadRequest = errors.New("bad request")

// File is the result of an asset fetch.
type File struct {
	// Data is the file content, templated when the file is text.
	Data []byte

	// ContentType is the MIME type to serve the content with.
	ContentType string

	// Binary reports whether the content bypassed templating.
	Binary bool
}

// Service serves file listings and individual files from environment
// snapshots.
type Service struct {
	registry *environment.Registry
}

// NewService creates an asset service over the given registry.
func NewService(registry *environment.Registry) *Service {
	return &Service{registry: registry}
}

// List returns every blob path under the environment's subpath at the
// default branch, relative to the subpath.
func (s *Service) List(ctx context.Context, envName string) ([]string, error) {
	env, err := s.registry.Lookup(envName)
	if err != nil {
		return nil, err
	}
	commit, err := env.Workspace.Resolve("")
	if err != nil {
		return nil, err
	}
	return env.Workspace.ListTree(commit)
}

// Get fetches one file at the given label (empty for the default
// branch). Binary content is returned raw; text content is templated
// with the environment's effective env map. The label is resolved to a
// commit once and the blob is read at that commit.
func (s *Service) Get(ctx context.Context, envName, label, path string) (*File, error) {
	if err := ValidatePath(path); err != nil {
		return nil, err
	}

	env, err := s.registry.Lookup(envName)
	if err != nil {
		return nil, err
	}
	commit, err := env.Workspace.Resolve(label)
	if err != nil {
		return nil, err
	}
	data, err := env.Workspace.ReadBlob(commit, path)
	if err != nil {
		return nil, err
	}

	if template.IsBinary(data) {
		return &File{
			Data:        data,
			ContentType: binaryContentType(path),
			Binary:      true,
		}, nil
	}

	templated := template.Apply(string(data), env.EnvMap)
	return &File{
		Data:        []byte(templated),
		ContentType: textContentType(path),
	}, nil
}

// ValidatePath rejects absolute paths and paths containing a ".."
// segment. "." segments are harmless and allowed.
func ValidatePath(path string) error {
	if strings.HasPrefix(path, "/") {
		return fmt.Errorf("absolute paths are not allowed: %w", ErrBadRequest)
	}
	for _, segment := range strings.Split(path, "/") {
		if segment == ".." {
			return fmt.Errorf("parent '..' segments are not allowed: %w", ErrBadRequest)
		}
	}
	return nil
}
