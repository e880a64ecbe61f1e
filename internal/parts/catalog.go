package parts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Definition is the static configuration of one part: its per-channel
// assets and the transform a freshly dropped layer starts from.
type Definition struct {
	Role    Role
	Title   string
	Assets  map[Channel]string
	Default Transform
}

// Asset returns the asset reference for a channel, if the part has one.
func (d Definition) Asset(c Channel) (string, bool) {
	a, ok := d.Assets[c]
	return a, ok && a != ""
}

// Catalog is a read-only, ordered set of part definitions.
type Catalog struct {
	defs  []Definition
	index map[Role]int
}

// NewCatalog builds a catalog. Later definitions for the same role replace
// earlier ones.
func NewCatalog(defs ...Definition) *Catalog {
	c := &Catalog{index: make(map[Role]int, len(defs))}
	for _, d := range defs {
		if i, ok := c.index[d.Role]; ok {
			c.defs[i] = d
			continue
		}
		c.index[d.Role] = len(c.defs)
		c.defs = append(c.defs, d)
	}
	return c
}

// Lookup returns the definition for a role.
func (c *Catalog) Lookup(r Role) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	i, ok := c.index[r]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// All returns the definitions in catalog order.
func (c *Catalog) All() []Definition {
	if c == nil {
		return nil
	}
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

// Default returns the built-in portrait catalog.
func Default() *Catalog {
	def := func(r Role, title string, x, y float64) Definition {
		assets := make(map[Channel]string, len(Channels))
		for _, ch := range Channels {
			assets[ch] = fmt.Sprintf("/parts/%s_%s.png", r, ch.Key())
		}
		return Definition{Role: r, Title: title, Assets: assets, Default: Transform{X: x, Y: y}}
	}
	return NewCatalog(
		def(RoleEyes, "Eyes", 0, -60),
		def(RoleEars, "Ears", 0, -40),
		def(RoleLips, "Lips", 0, 90),
		def(RoleNose, "Nose", 0, 20),
		def(RoleArmLeft, "Left arm", -180, 160),
		def(RoleArmRight, "Right arm", 180, 160),
	)
}

type fileCatalog struct {
	Parts []filePart `yaml:"parts"`
}

type filePart struct {
	Role    string            `yaml:"role"`
	Title   string            `yaml:"title"`
	Assets  map[string]string `yaml:"assets"`
	Default Transform         `yaml:"default"`
}

// LoadFile reads a YAML part catalog.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a YAML part catalog.
func Parse(data []byte) (*Catalog, error) {
	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse parts: %w", err)
	}

	defs := make([]Definition, 0, len(fc.Parts))
	for i, p := range fc.Parts {
		role, err := ParseRole(p.Role)
		if err != nil {
			return nil, fmt.Errorf("part %d: %w", i, err)
		}
		d := Definition{
			Role:    role,
			Title:   p.Title,
			Assets:  make(map[Channel]string, len(p.Assets)),
			Default: p.Default,
		}
		if d.Title == "" {
			d.Title = role.String()
		}
		for key, asset := range p.Assets {
			ch, err := ParseChannel(key)
			if err != nil {
				return nil, fmt.Errorf("part %s: %w", role, err)
			}
			d.Assets[ch] = asset
		}
		defs = append(defs, d)
	}
	return NewCatalog(defs...), nil
}
