package resolve

import "mercator-hq/ganymede/pkg/flatten"

// PropertySource is one YAML file's contribution to a Spring response:
// a named, ordered map of dotted keys to scalar JSON values.
type PropertySource struct {
	Name   string       `json:"name"`
	Source *flatten.Map `json:"source"`
}

// Response is the Spring Cloud Config environment response shape.
// PropertySources is ordered highest-priority first and may be empty;
// an empty result is still served with HTTP 200.
type Response struct {
	Name            string           `json:"name"`
	Profiles        []string         `json:"profiles"`
	Label           *string          `json:"label"`
	Version         string           `json:"version"`
	State           string           `json:"state"`
	PropertySources []PropertySource `json:"propertySources"`
}
