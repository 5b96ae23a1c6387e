// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

// Brush is a convex solid, the intersection of the half-spaces of its planes.
type Brush struct {
	planes []*Plane
}

func NewBrush(planes ...*Plane) *Brush {
	return &Brush{planes: planes}
}

// Planes returns the planes in file order. The slice must not be modified.
func (b *Brush) Planes() []*Plane {
	return b.planes
}

// readBrush reads plane records up to the closing brace. The opening brace
// has already been consumed.
func readBrush(r *lineReader, size TextureSizeFunc) (*Brush, error) {
	b := &Brush{}
	for {
		l, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, formatError("brush", r.line, "unexpected end of file")
		}
		switch l[0] {
		case '(':
			p, err := ParsePlane(l, size)
			if err != nil {
				return nil, atLine(err, r.line)
			}
			b.planes = append(b.planes, p)
		case '}':
			return b, nil
		case '/':
			continue
		default:
			return nil, formatError("brush", r.line, "unexpected character "+string(l[0]))
		}
	}
}
