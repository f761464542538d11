package flatten

import (
	"reflect"
	"testing"
)

func TestFlattenNestedMappings(t *testing.T) {
	yaml := `
server:
  host: localhost
  port: 8080
demo:
  number: 42
`
	m, err := Flatten([]byte(yaml))
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	wantKeys := []string{"server.host", "server.port", "demo.number"}
	if !reflect.DeepEqual(m.Keys(), wantKeys) {
		t.Errorf("keys = %v, want %v", m.Keys(), wantKeys)
	}

	if v, _ := m.Get("server.host"); v != "localhost" {
		t.Errorf("server.host = %v, want localhost", v)
	}
	if v, _ := m.Get("demo.number"); v != int64(42) {
		t.Errorf("demo.number = %v (%T), want int64 42", v, v)
	}
}

func TestFlattenSequences(t *testing.T) {
	yaml := `
servers:
  - alpha
  - beta
matrix:
  - [1, 2]
`
	m, err := Flatten([]byte(yaml))
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	wantKeys := []string{"servers[0]", "servers[1]", "matrix[0][0]", "matrix[0][1]"}
	if !reflect.DeepEqual(m.Keys(), wantKeys) {
		t.Errorf("keys = %v, want %v", m.Keys(), wantKeys)
	}
	if v, _ := m.Get("matrix[0][1]"); v != int64(2) {
		t.Errorf("matrix[0][1] = %v, want 2", v)
	}
}

func TestFlattenScalarTyping(t *testing.T) {
	yaml := `
int: 7
float: 3.5
bool: true
null_value: null
string: hello
quoted_number: "17"
`
	m, err := Flatten([]byte(yaml))
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	tests := []struct {
		key  string
		want any
	}{
		{"int", int64(7)},
		{"float", 3.5},
		{"bool", true},
		{"null_value", nil},
		{"string", "hello"},
		{"quoted_number", "17"},
	}
	for _, tt := range tests {
		got, ok := m.Get(tt.key)
		if !ok {
			t.Errorf("key %q missing", tt.key)
			continue
		}
		if got != tt.want {
			t.Errorf("%s = %v (%T), want %v (%T)", tt.key, got, got, tt.want, tt.want)
		}
	}
}

// Numeric scalars must survive as JSON numbers, not strings.
func TestFlattenMarshalJSONPreservesNumbers(t *testing.T) {
	m, err := Flatten([]byte("demo:\n  number: 42\n  ratio: 0.5\n  on: true\n"))
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	want := `{"demo.number":42,"demo.ratio":0.5,"demo.on":true}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestFlattenEmptyContainers(t *testing.T) {
	m, err := Flatten([]byte("empty_map: {}\nempty_list: []\n"))
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("entries = %v, want none", m.Keys())
	}
}

func TestFlattenEmptyDocument(t *testing.T) {
	m, err := Flatten(nil)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("entries = %v, want none", m.Keys())
	}
}

func TestFlattenInvalidYAML(t *testing.T) {
	if _, err := Flatten([]byte("a: [unclosed\nb:")); err == nil {
		t.Fatal("expected parse error")
	}
}

// Flattening the same document twice yields identical ordered maps.
func TestFlattenDeterministic(t *testing.T) {
	yaml := []byte("z: 1\na:\n  c: 2\n  b: 3\nlist:\n  - x\n")
	first, err := Flatten(yaml)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	second, err := Flatten(yaml)
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	firstJSON, _ := first.MarshalJSON()
	secondJSON, _ := second.MarshalJSON()
	if string(firstJSON) != string(secondJSON) {
		t.Errorf("flatten not deterministic: %s vs %s", firstJSON, secondJSON)
	}
}

func TestMapSetOverwriteKeepsPosition(t *testing.T) {
	m := NewMap()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 3)

	if !reflect.DeepEqual(m.Keys(), []string{"a", "b"}) {
		t.Errorf("keys = %v, want [a b]", m.Keys())
	}
	if v, _ := m.Get("a"); v != 3 {
		t.Errorf("a = %v, want 3", v)
	}
}
