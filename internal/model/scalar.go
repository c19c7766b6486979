package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	yamlv3 "gopkg.in/yaml.v3"
)

// Scalar is a registry value kept as it was decoded: workflow_id: 42 stays
// the number 42 and "42" stays a string. The zero Scalar is null.
type Scalar struct {
	value any
}

func ScalarOf(v any) Scalar {
	return Scalar{value: v}
}

// Text returns s as a Scalar, or null when s is empty.
func Text(s string) Scalar {
	if s == "" {
		return Scalar{}
	}
	return Scalar{value: s}
}

func (s Scalar) Value() any {
	return s.value
}

func (s Scalar) IsNull() bool {
	return s.value == nil
}

// String renders the value as text; null is "".
func (s Scalar) String() string {
	if s.value == nil {
		return ""
	}
	return fmt.Sprint(s.value)
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.value)
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch v.(type) {
	case map[string]any, []any:
		return fmt.Errorf("expected scalar, got %s", data)
	}
	*s = Scalar{value: v}
	return nil
}

func (s Scalar) MarshalYAML() (any, error) {
	if n, ok := s.value.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		return n.Float64()
	}
	return s.value, nil
}

func (s *Scalar) UnmarshalYAML(node *yamlv3.Node) error {
	if node.Kind == yamlv3.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind != yamlv3.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", node.Line)
	}
	switch node.ShortTag() {
	case "!!null":
		*s = Scalar{}
		return nil
	case "!!timestamp":
		*s = Scalar{value: node.Value}
		return nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	*s = Scalar{value: v}
	return nil
}
