package scene

import (
	"math"

	"github.com/ayusman/cmykstudio/internal/parts"
)

// Lateral offsets used when the first layer of a mirrored role sits on the
// center line and there is nothing to mirror.
const (
	EyesOffset    = 120
	EarsOffset    = 140
	EarsExtraPush = 80
)

// place applies the placement policy for a new layer. It returns the role
// and asset the layer ends up with and its starting transform. Y and
// rotation always come from def. Callers hold s.mu.
func (s *Scene) place(role parts.Role, channel parts.Channel, asset string, def parts.Transform) (parts.Role, string, parts.Transform) {
	t := def

	switch role {
	case parts.RoleArmLeft, parts.RoleArmRight:
		opposite := role.Opposite()
		if s.hasRole(role) && !s.hasRole(opposite) {
			role = opposite
			if d, ok := s.catalog.Lookup(opposite); ok {
				t.X = d.Default.X
				if a, ok := d.Asset(channel); ok {
					asset = a
				}
			}
		}

	case parts.RoleEyes, parts.RoleEars:
		ref, ok := s.firstOfRole(role)
		if !ok {
			break
		}
		if ref.Transform.X == 0 {
			t.X = centerOffset(role)
		} else {
			t.X = -ref.Transform.X
		}

	case parts.RoleLips, parts.RoleNose:
	}

	return role, asset, t
}

// centerOffset is the X given to a second eyes/ears layer when the first one
// is centered.
func centerOffset(role parts.Role) float64 {
	if role == parts.RoleEyes {
		return EyesOffset
	}
	x := float64(EarsOffset)
	return x + math.Copysign(EarsExtraPush, x)
}

func (s *Scene) hasRole(r parts.Role) bool {
	_, ok := s.firstOfRole(r)
	return ok
}

// firstOfRole returns the first layer of role r in sequence order.
func (s *Scene) firstOfRole(r parts.Role) (Layer, bool) {
	for _, l := range s.layers {
		if l.Role == r {
			return l, true
		}
	}
	return Layer{}, false
}
