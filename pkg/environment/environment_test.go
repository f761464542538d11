package environment

import (
	"errors"
	"reflect"
	"testing"
)

func TestRegistryLookup(t *testing.T) {
	registry := NewRegistry()
	registry.Add(&Environment{Name: "dev"})
	registry.Add(&Environment{Name: "prod"})

	env, err := registry.Lookup("dev")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if env.Name != "dev" {
		t.Errorf("name = %q", env.Name)
	}

	if _, err := registry.Lookup("staging"); !errors.Is(err, ErrUnknownEnv) {
		t.Errorf("error = %v, want ErrUnknownEnv", err)
	}

	if got := registry.Names(); !reflect.DeepEqual(got, []string{"dev", "prod"}) {
		t.Errorf("names = %v, want sorted [dev prod]", got)
	}
}
