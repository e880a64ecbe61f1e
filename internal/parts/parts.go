// Package parts defines the body-part roles, print channels and the static
// part catalog that placed layers are created from.
package parts

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned when a role key does not name a known part.
var ErrUnknownRole = errors.New("unknown role")

// ErrUnknownChannel is returned when a channel key does not name a print channel.
var ErrUnknownChannel = errors.New("unknown channel")

// Role is the semantic body-part category of a layer.
type Role uint8

const (
	RoleEyes Role = iota + 1
	RoleEars
	RoleLips
	RoleNose
	RoleArmLeft
	RoleArmRight
)

// Roles lists every role in catalog order.
var Roles = []Role{RoleEyes, RoleEars, RoleLips, RoleNose, RoleArmLeft, RoleArmRight}

var roleKeys = map[Role]string{
	RoleEyes:     "eyes",
	RoleEars:     "ears",
	RoleLips:     "lips",
	RoleNose:     "nose",
	RoleArmLeft:  "arm_left",
	RoleArmRight: "arm_right",
}

// String returns the snake_case key of the role.
func (r Role) String() string {
	if k, ok := roleKeys[r]; ok {
		return k
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, ok := roleKeys[r]
	return ok
}

// Opposite returns the other arm for arm roles and the role itself otherwise.
func (r Role) Opposite() Role {
	switch r {
	case RoleArmLeft:
		return RoleArmRight
	case RoleArmRight:
		return RoleArmLeft
	default:
		return r
	}
}

// ParseRole parses a role key such as "eyes" or "arm_left".
func ParseRole(s string) (Role, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for r, k := range roleKeys {
		if k == key {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, uint8(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Channel is one of the four print-separation colors.
type Channel uint8

const (
	Cyan Channel = iota + 1
	Magenta
	Yellow
	Black
)

// Channels lists the channels in stacking order.
var Channels = []Channel{Cyan, Magenta, Yellow, Black}

// Key returns the single-letter key used in asset maps and drop payloads.
func (c Channel) Key() string {
	switch c {
	case Cyan:
		return "c"
	case Magenta:
		return "m"
	case Yellow:
		return "y"
	case Black:
		return "k"
	}
	return ""
}

func (c Channel) String() string {
	switch c {
	case Cyan:
		return "cyan"
	case Magenta:
		return "magenta"
	case Yellow:
		return "yellow"
	case Black:
		return "black"
	}
	return fmt.Sprintf("channel(%d)", uint8(c))
}

// Valid reports whether c is one of the four channels.
func (c Channel) Valid() bool {
	return c >= Cyan && c <= Black
}

// ParseChannel accepts both the short key ("c") and the long name ("cyan").
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "cyan":
		return Cyan, nil
	case "m", "magenta":
		return Magenta, nil
	case "y", "yellow":
		return Yellow, nil
	case "k", "black":
		return Black, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Channel) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChannel, uint8(c))
	}
	return []byte(c.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Channel) UnmarshalText(b []byte) error {
	v, err := ParseChannel(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Transform positions a layer relative to the canvas center.
// Rotation is in degrees.
type Transform struct {
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Rotation float64 `json:"rot" yaml:"rot"`
}
