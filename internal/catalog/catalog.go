// Package catalog manages the container spec catalog: the set of container
// types a plan may choose from, loaded from YAML or falling back to a
// built-in table of common deep-sea container specs.
package catalog

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/kyo563/container-loading-planner/internal/model"
)

// yamlCatalog is the on-disk representation. Numeric fields are kept as
// strings so the exact decimal values survive the round trip.
type yamlCatalog struct {
	Containers []yamlContainer `yaml:"containers"`
}

type yamlContainer struct {
	Type        string  `yaml:"type"`
	Category    string  `yaml:"category"`
	InnerLength *string `yaml:"inner_L_cm,omitempty"`
	InnerWidth  *string `yaml:"inner_W_cm,omitempty"`
	InnerHeight *string `yaml:"inner_H_cm,omitempty"`
	DeckLength  *string `yaml:"deck_L_cm,omitempty"`
	DeckWidth   *string `yaml:"deck_W_cm,omitempty"`
	MaxPayload  *string `yaml:"max_payload_kg,omitempty"`
	Cost        *string `yaml:"cost,omitempty"`
}

// Default returns the built-in catalog: the common dry-van specs plus the
// special types used for out-of-gauge advisories. Values follow published
// carrier specifications.
func Default() []model.ContainerSpec {
	return []model.ContainerSpec{
		{Type: "20GP", Category: model.CategoryStandard, InnerLength: dec("589"), InnerWidth: dec("235"), InnerHeight: dec("239"), MaxPayload: dec("28200"), Cost: dec("1.0")},
		{Type: "40GP", Category: model.CategoryStandard, InnerLength: dec("1203"), InnerWidth: dec("235"), InnerHeight: dec("239"), MaxPayload: dec("26700"), Cost: dec("1.7")},
		{Type: "40HC", Category: model.CategoryStandard, InnerLength: dec("1203"), InnerWidth: dec("235"), InnerHeight: dec("269"), MaxPayload: dec("26600"), Cost: dec("1.9")},
		{Type: "OT", Category: model.CategorySpecial, DeckLength: dec("1200"), DeckWidth: dec("235"), MaxPayload: dec("28000")},
		{Type: "FR", Category: model.CategorySpecial, DeckLength: dec("1160"), DeckWidth: dec("240"), MaxPayload: dec("34000")},
		{Type: "RF", Category: model.CategorySpecial, InnerLength: dec("1150"), InnerWidth: dec("228"), InnerHeight: dec("220"), MaxPayload: dec("27500")},
	}
}

// Load reads a catalog file. A missing file is not an error: the built-in
// defaults are returned instead.
func Load(path string) ([]model.ContainerSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) ([]model.ContainerSpec, error) {
	var file yamlCatalog
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	if len(file.Containers) == 0 {
		return nil, fmt.Errorf("catalog has no containers")
	}

	specs := make([]model.ContainerSpec, 0, len(file.Containers))
	for i, c := range file.Containers {
		if c.Type == "" {
			return nil, fmt.Errorf("catalog entry %d: missing type", i+1)
		}
		category := model.Category(c.Category)
		if category != model.CategoryStandard && category != model.CategorySpecial {
			return nil, fmt.Errorf("catalog entry %q: unknown category %q", c.Type, c.Category)
		}
		spec := model.ContainerSpec{Type: c.Type, Category: category}
		fields := []struct {
			raw  *string
			dst  **decimal.Decimal
			name string
		}{
			{c.InnerLength, &spec.InnerLength, "inner_L_cm"},
			{c.InnerWidth, &spec.InnerWidth, "inner_W_cm"},
			{c.InnerHeight, &spec.InnerHeight, "inner_H_cm"},
			{c.DeckLength, &spec.DeckLength, "deck_L_cm"},
			{c.DeckWidth, &spec.DeckWidth, "deck_W_cm"},
			{c.MaxPayload, &spec.MaxPayload, "max_payload_kg"},
			{c.Cost, &spec.Cost, "cost"},
		}
		for _, f := range fields {
			if f.raw == nil || *f.raw == "" {
				continue
			}
			value, err := decimal.NewFromString(*f.raw)
			if err != nil {
				return nil, fmt.Errorf("catalog entry %q: invalid %s %q", c.Type, f.name, *f.raw)
			}
			v := value
			*f.dst = &v
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Save writes the catalog back to disk as YAML.
func Save(path string, specs []model.ContainerSpec) error {
	file := yamlCatalog{Containers: make([]yamlContainer, 0, len(specs))}
	for _, spec := range specs {
		file.Containers = append(file.Containers, yamlContainer{
			Type:        spec.Type,
			Category:    string(spec.Category),
			InnerLength: str(spec.InnerLength),
			InnerWidth:  str(spec.InnerWidth),
			InnerHeight: str(spec.InnerHeight),
			DeckLength:  str(spec.DeckLength),
			DeckWidth:   str(spec.DeckWidth),
			MaxPayload:  str(spec.MaxPayload),
			Cost:        str(spec.Cost),
		})
	}
	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Standards filters the catalog down to packable STANDARD specs.
func Standards(specs []model.ContainerSpec) []model.ContainerSpec {
	var out []model.ContainerSpec
	for _, spec := range specs {
		if spec.Packable() {
			out = append(out, spec)
		}
	}
	return out
}

// ByType looks up a spec by its type code.
func ByType(specs []model.ContainerSpec, typeCode string) (model.ContainerSpec, bool) {
	for _, spec := range specs {
		if spec.Type == typeCode {
			return spec, true
		}
	}
	return model.ContainerSpec{}, false
}

// OrderMap derives the display ordering from catalog position: reports list
// containers in the order the catalog declares their types.
func OrderMap(specs []model.ContainerSpec) map[string]int {
	order := make(map[string]int, len(specs))
	for i, spec := range specs {
		if _, seen := order[spec.Type]; !seen {
			order[spec.Type] = i
		}
	}
	return order
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func str(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
