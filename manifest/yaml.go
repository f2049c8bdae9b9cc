package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// parseYAML converts a YAML document into a value tree.
func parseYAML(data []byte) (*value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}
	c := yamlConverter{lines: bytes.Split(data, []byte("\n"))}
	return c.convert(doc.Content[0])
}

type yamlConverter struct {
	lines [][]byte
}

func (c yamlConverter) convert(n *yaml.Node) (*value, error) {
	v := &value{pos: Position{Line: n.Line, Column: n.Column}, shift: -1}
	switch n.Kind {
	case yaml.AliasNode:
		return c.convert(n.Alias)

	case yaml.SequenceNode:
		v.kind = kindList
		for _, item := range n.Content {
			iv, err := c.convert(item)
			if err != nil {
				return nil, err
			}
			v.list = append(v.list, iv)
		}

	case yaml.MappingNode:
		v.kind = kindMap
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, val := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			kv, err := c.convert(k)
			if err != nil {
				return nil, err
			}
			vv, err := c.convert(val)
			if err != nil {
				return nil, err
			}
			v.keys = append(v.keys, kv)
			v.vals = append(v.vals, vv)
		}

	case yaml.ScalarNode:
		if err := c.scalar(n, v); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("line %d: unexpected YAML node", n.Line)
	}
	return v, nil
}

func (c yamlConverter) scalar(n *yaml.Node, v *value) error {
	switch n.ShortTag() {
	case "!!null":
		v.kind = kindNull
	case "!!bool":
		v.kind = kindBool
		if err := n.Decode(&v.b); err != nil {
			return err
		}
	case "!!int":
		v.kind = kindInt
		if err := n.Decode(&v.n); err != nil {
			return err
		}
	default:
		// Floats, timestamps and the like are kept as their text so a
		// pattern such as 1.5 is not rejected for its type.
		v.kind = kindString
		v.str = n.Value
		v.shift = c.shift(n)
	}
	return nil
}

// shift finds how far the first character of a scalar's value sits from
// the scalar's column. It only succeeds when the value appears verbatim
// on the scalar's line.
func (c yamlConverter) shift(n *yaml.Node) int {
	var s int
	switch n.Style {
	case 0:
		s = 0
	case yaml.SingleQuotedStyle, yaml.DoubleQuotedStyle:
		s = 1
	default:
		return -1
	}
	if n.Line < 1 || n.Line > len(c.lines) || strings.Contains(n.Value, "\n") {
		return -1
	}
	line := []rune(string(c.lines[n.Line-1]))
	start := n.Column - 1 + s
	val := []rune(n.Value)
	if start < 0 || start+len(val) > len(line) || string(line[start:start+len(val)]) != n.Value {
		return -1
	}
	return s
}
