package resolve

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"mercator-hq/ganymede/pkg/environment"
	"mercator-hq/ganymede/pkg/flatten"
	"mercator-hq/ganymede/pkg/gitws"
	"mercator-hq/ganymede/pkg/template"
)

// Engine resolves configuration requests against the environment
// registry.
type Engine struct {
	registry *environment.Registry
	logger   *slog.Logger
}

// NewEngine creates a resolution engine over the given registry.
func NewEngine(registry *environment.Registry) *Engine {
	return &Engine{
		registry: registry,
		logger:   slog.Default().With("component", "resolve"),
	}
}

// Resolve serves one (env, application, profile, label) request. label
// is empty when the route carried none. Ref resolution happens exactly
// once; every blob read uses the resulting commit hash so the response
// is internally consistent across concurrent refreshes.
//
// Ref-resolution failure is soft: the response carries no property
// sources and an empty version. A Git failure after the commit is
// pinned is propagated, as is an unknown environment.
func (e *Engine) Resolve(ctx context.Context, envName, app, profile, label string) (*Response, error) {
	env, err := e.registry.Lookup(envName)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Name:            app,
		Profiles:        []string{profile},
		State:           "",
		PropertySources: []PropertySource{},
	}
	if label != "" {
		resp.Label = &label
	}

	commit, err := env.Workspace.Resolve(label)
	if err != nil {
		if errors.Is(err, gitws.ErrLabelNotFound) || errors.Is(err, gitws.ErrRefMissing) {
			e.logger.Warn("ref resolution failed, serving empty response",
				"env", envName, "label", label, "error", err)
			return resp, nil
		}
		return nil, err
	}
	resp.Version = commit

	for _, candidate := range Candidates(app, profile) {
		data, err := env.Workspace.ReadBlob(commit, candidate)
		if err != nil {
			if errors.Is(err, gitws.ErrBlobNotFound) {
				continue
			}
			return nil, err
		}
		if template.IsBinary(data) {
			e.logger.Warn("skipping binary candidate", "env", envName, "file", candidate)
			continue
		}

		templated := template.Apply(string(data), env.EnvMap)
		source, err := flatten.Flatten([]byte(templated))
		if err != nil {
			e.logger.Warn("skipping unparsable candidate",
				"env", envName, "file", candidate, "error", err)
			continue
		}

		resp.PropertySources = append(resp.PropertySources, PropertySource{
			Name:   sourceName(env.Workspace.Config().RepoURL, env.Workspace.Config().Subpath, candidate),
			Source: source,
		})
	}

	return resp, nil
}

// Candidates returns the candidate filenames for an application and
// profile, highest priority first. Profile-specific entries are omitted
// when the profile is empty or "default" (the Spring convention for "no
// profile"), the application-wide entries are omitted when the
// application itself is named "application", and duplicates collapse to
// their first occurrence.
func Candidates(app, profile string) []string {
	withProfile := profile != "" && profile != "default"

	var names []string
	if withProfile {
		names = append(names, app+"-"+profile+".yml", app+"-"+profile+".yaml")
	}
	names = append(names, app+".yml", app+".yaml")
	if app != "application" {
		if withProfile {
			names = append(names, "application-"+profile+".yml", "application-"+profile+".yaml")
		}
		names = append(names, "application.yml", "application.yaml")
	}

	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// sourceName builds the property source name
// "<repo_url>/<subpath>/<candidate>" with single-slash joins, omitting
// the subpath segment when empty.
func sourceName(repoURL, subpath, candidate string) string {
	name := strings.TrimSuffix(repoURL, "/")
	if subpath != "" {
		name += "/" + strings.Trim(subpath, "/")
	}
	return name + "/" + candidate
}
