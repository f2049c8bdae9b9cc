package manifest

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/tailscale/hujson"
)

// parseHuJSON converts a HuJSON document into a value tree.
func parseHuJSON(data []byte) (*value, error) {
	root, err := hujson.Parse(data)
	if err != nil {
		return nil, err
	}
	return convertHuJSON(data, &root)
}

func convertHuJSON(data []byte, hv *hujson.Value) (*value, error) {
	v := &value{pos: offsetPosition(data, hv.StartOffset), shift: -1}
	switch t := hv.Value.(type) {
	case *hujson.Object:
		v.kind = kindMap
		for i := range t.Members {
			m := &t.Members[i]
			k, err := convertHuJSON(data, &m.Name)
			if err != nil {
				return nil, err
			}
			val, err := convertHuJSON(data, &m.Value)
			if err != nil {
				return nil, err
			}
			v.keys = append(v.keys, k)
			v.vals = append(v.vals, val)
		}

	case *hujson.Array:
		v.kind = kindList
		for i := range t.Elements {
			e, err := convertHuJSON(data, &t.Elements[i])
			if err != nil {
				return nil, err
			}
			v.list = append(v.list, e)
		}

	case hujson.Literal:
		switch t.Kind() {
		case 'n':
			v.kind = kindNull
		case 't', 'f':
			v.kind = kindBool
			v.b = t.Bool()
		case '0':
			n, err := strconv.Atoi(string(t))
			if err != nil {
				return nil, fmt.Errorf("line %d, column %d: %s is not an integer", v.pos.Line, v.pos.Column, t)
			}
			v.kind = kindInt
			v.n = n
		case '"':
			v.kind = kindString
			v.str = t.String()
			// Offsets map one to one only when the literal has no escapes.
			if raw := t[1 : len(t)-1]; bytes.Equal(raw, []byte(v.str)) {
				v.shift = 1
			}
		default:
			return nil, fmt.Errorf("line %d, column %d: invalid literal %s", v.pos.Line, v.pos.Column, t)
		}

	default:
		return nil, fmt.Errorf("line %d, column %d: unexpected value", v.pos.Line, v.pos.Column)
	}
	return v, nil
}

// offsetPosition converts a byte offset to a line and a column counted in
// characters.
func offsetPosition(data []byte, off int) Position {
	line := 1 + bytes.Count(data[:off], []byte("\n"))
	start := bytes.LastIndexByte(data[:off], '\n') + 1
	return Position{Line: line, Column: 1 + utf8.RuneCount(data[start:off])}
}
