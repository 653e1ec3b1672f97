package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyo563/container-loading-planner/internal/model"
)

func TestDefault_ContainsCommonTypes(t *testing.T) {
	specs := Default()
	require.Len(t, specs, 6)

	gp20, ok := ByType(specs, "20GP")
	require.True(t, ok)
	assert.Equal(t, model.CategoryStandard, gp20.Category)
	assert.True(t, gp20.InnerLength.Equal(decimal.NewFromInt(589)))
	assert.True(t, gp20.MaxPayload.Equal(decimal.NewFromInt(28200)))

	fr, ok := ByType(specs, "FR")
	require.True(t, ok)
	assert.Equal(t, model.CategorySpecial, fr.Category)
	assert.Nil(t, fr.InnerLength)
	assert.NotNil(t, fr.DeckLength)
}

func TestStandards_FiltersToPackable(t *testing.T) {
	standards := Standards(Default())
	require.Len(t, standards, 3)
	for _, spec := range standards {
		assert.True(t, spec.Packable())
	}
}

func TestByType_NotFound(t *testing.T) {
	_, ok := ByType(Default(), "53HC")
	assert.False(t, ok)
}

func TestOrderMap_FollowsCatalogPosition(t *testing.T) {
	order := OrderMap(Default())
	assert.Equal(t, 0, order["20GP"])
	assert.Equal(t, 1, order["40GP"])
	assert.Equal(t, 2, order["40HC"])
	_, present := order["53HC"]
	assert.False(t, present)
}

func TestParse_ValidYAML(t *testing.T) {
	data := []byte(`containers:
  - type: 20GP
    category: STANDARD
    inner_L_cm: "589"
    inner_W_cm: "235"
    inner_H_cm: "239"
    max_payload_kg: "28200"
    cost: "1.0"
  - type: FR
    category: SPECIAL
    deck_L_cm: "1160"
    deck_W_cm: "240"
`)
	specs, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.True(t, specs[0].Cost.Equal(decimal.RequireFromString("1.0")))
	assert.Nil(t, specs[1].InnerLength)
	assert.True(t, specs[1].DeckWidth.Equal(decimal.NewFromInt(240)))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no containers", "containers: []"},
		{"missing type", "containers:\n  - category: STANDARD"},
		{"bad category", "containers:\n  - type: 20GP\n    category: HUGE"},
		{"bad decimal", "containers:\n  - type: 20GP\n    category: STANDARD\n    inner_L_cm: \"tall\""},
		{"not yaml", "{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")

	original := Default()
	require.NoError(t, Save(path, original))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Len(t, loaded, len(original))

	for i, spec := range loaded {
		assert.Equal(t, original[i].Type, spec.Type)
		assert.Equal(t, original[i].Category, spec.Category)
		if original[i].InnerLength != nil {
			require.NotNil(t, spec.InnerLength)
			assert.True(t, spec.InnerLength.Equal(*original[i].InnerLength),
				"%s inner length drifted: %s", spec.Type, spec.InnerLength)
		}
		if original[i].Cost != nil {
			require.NotNil(t, spec.Cost)
			assert.True(t, spec.Cost.Equal(*original[i].Cost))
		}
	}
}

func TestLoad_MissingFileFallsBackToDefault(t *testing.T) {
	specs, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Len(t, specs, len(Default()))
}

func TestLoad_UnreadableFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.yaml"), []byte("containers: []"), 0644))
	_, err := Load(filepath.Join(dir, "catalog.yaml"))
	assert.Error(t, err, "an existing but invalid catalog must not silently fall back")
}
