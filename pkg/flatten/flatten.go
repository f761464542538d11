package flatten

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Flatten parses a YAML document and flattens it into an ordered map of
// dotted keys. Nested mappings contribute "<parent>.<child>" keys,
// sequences contribute "<parent>[<index>]" keys, and scalars become
// leaves. Key order follows the document order of the YAML source,
// depth-first. Only the first document of a multi-document stream is
// considered.
func Flatten(data []byte) (*Map, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	out := NewMap()
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		flattenNode(doc.Content[0], "", out)
	}
	return out, nil
}

// flattenNode walks a YAML node depth-first, composing dotted keys into
// out. A root-level scalar has no key to attach to and is dropped.
func flattenNode(node *yaml.Node, prefix string, out *Map) {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			child := key
			if prefix != "" {
				child = prefix + "." + key
			}
			flattenNode(node.Content[i+1], child, out)
		}
	case yaml.SequenceNode:
		for i, elem := range node.Content {
			flattenNode(elem, prefix+"["+strconv.Itoa(i)+"]", out)
		}
	case yaml.ScalarNode:
		if prefix == "" {
			return
		}
		out.Set(prefix, scalarValue(node))
	case yaml.AliasNode:
		if node.Alias != nil {
			flattenNode(node.Alias, prefix, out)
		}
	}
}

// scalarValue converts a YAML scalar node to its JSON value. Integers
// and floats stay numbers, booleans stay booleans, null becomes nil, and
// everything else is a string. Parse failures fall back to the string
// form rather than erroring, matching the permissive handling of
// untagged scalars.
func scalarValue(node *yaml.Node) any {
	switch node.ShortTag() {
	case "!!null":
		return nil
	case "!!bool":
		if b, err := strconv.ParseBool(strings.ToLower(node.Value)); err == nil {
			return b
		}
		return node.Value
	case "!!int":
		if i, err := strconv.ParseInt(node.Value, 0, 64); err == nil {
			return i
		}
		return node.Value
	case "!!float":
		if f, err := strconv.ParseFloat(node.Value, 64); err == nil {
			return f
		}
		return node.Value
	default:
		return node.Value
	}
}
