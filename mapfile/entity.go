// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"sort"
	"strings"
)

// Entity is a set of key/value properties and the brushes owned by it.
type Entity struct {
	properties map[string]string
	brushes    []*Brush
}

func NewEntity(properties map[string]string, brushes ...*Brush) *Entity {
	e := &Entity{properties: make(map[string]string, len(properties)), brushes: brushes}
	for k, v := range properties {
		e.properties[k] = v
	}
	return e
}

func (e *Entity) Property(name string) (string, bool) {
	v, ok := e.properties[name]
	return v, ok
}

func (e *Entity) ClassName() (string, bool) {
	v, ok := e.properties["classname"]
	return v, ok
}

// PropertyNames returns the property keys in sorted order.
func (e *Entity) PropertyNames() []string {
	n := make([]string, 0, len(e.properties))
	for k := range e.properties {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

// Properties returns a copy of the property map.
func (e *Entity) Properties() map[string]string {
	p := make(map[string]string, len(e.properties))
	for k, v := range e.properties {
		p[k] = v
	}
	return p
}

func (e *Entity) Brushes() []*Brush {
	return e.brushes
}

func readEntity(r *lineReader, size TextureSizeFunc) (*Entity, error) {
	e := &Entity{properties: make(map[string]string)}
	for {
		l, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, formatError("entity", r.line, "unexpected end of file")
		}
		switch l[0] {
		case '{':
			b, err := readBrush(r, size)
			if err != nil {
				return nil, err
			}
			e.brushes = append(e.brushes, b)
		case '"':
			k, v, ok := parseProperty(l)
			if !ok {
				return nil, formatError("entity", r.line, "invalid property")
			}
			e.properties[k] = v
		case '}':
			return e, nil
		case '/':
			continue
		default:
			return nil, formatError("entity", r.line, "unexpected character "+string(l[0]))
		}
	}
}

func escapedAt(s string, i int) bool {
	return i > 0 && s[i-1] == '\\'
}

// parseProperty matches a line of the form
//
//	"key" "value"
//
// where \" inside key or value does not end the field.
func parseProperty(l string) (string, string, bool) {
	last := len(l) - 1
	if len(l) < 5 || l[0] != '"' || l[last] != '"' || escapedAt(l, last) {
		return "", "", false
	}
	body := l[1:last]
	for i := 0; i+3 <= len(body); i++ {
		if body[i:i+3] != `" "` || escapedAt(body, i) {
			continue
		}
		return unescape(body[:i]), unescape(body[i+3:]), true
	}
	return "", "", false
}

func unescape(s string) string {
	return strings.ReplaceAll(s, `\"`, `"`)
}
