// Package catalog loads the palette of tools and social integrations from
// TOML. The built-in palette is embedded; deployments may point at their own
// file instead.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/meikuraledutech/canvas"
)

//go:embed default.toml
var defaultTOML []byte

// Default returns the built-in catalog.
func Default() canvas.Catalog {
	c, err := Parse(defaultTOML)
	if err != nil {
		panic("catalog: embedded default is invalid: " + err.Error())
	}
	return c
}

// Load reads a catalog file. An empty path returns the built-in catalog.
func Load(path string) (canvas.Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return canvas.Catalog{}, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a TOML catalog.
func Parse(data []byte) (canvas.Catalog, error) {
	var c canvas.Catalog
	if err := toml.Unmarshal(data, &c); err != nil {
		return canvas.Catalog{}, fmt.Errorf("catalog: decode: %w", err)
	}
	if err := Validate(c); err != nil {
		return canvas.Catalog{}, err
	}
	return c, nil
}

// Validate rejects empty or repeated ids, and integrations that would not be
// resolvable because they lack the social prefix (or tools that carry it).
func Validate(c canvas.Catalog) error {
	seen := make(map[string]struct{}, len(c.Tools)+len(c.SocialIntegrations))
	check := func(t canvas.Tool, social bool) error {
		if t.ID == "" {
			return fmt.Errorf("catalog: entry %q has no id", t.Name)
		}
		if _, ok := seen[t.ID]; ok {
			return fmt.Errorf("catalog: duplicate id %q", t.ID)
		}
		seen[t.ID] = struct{}{}
		if strings.HasPrefix(t.ID, canvas.SocialPrefix) != social {
			return fmt.Errorf("catalog: id %q is in the wrong list", t.ID)
		}
		return nil
	}
	for _, t := range c.Tools {
		if err := check(t, false); err != nil {
			return err
		}
	}
	for _, t := range c.SocialIntegrations {
		if err := check(t, true); err != nil {
			return err
		}
	}
	return nil
}
