package naccs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"wooden case", "WOODEN CASE"},
		{"  Carton  ", "CARTON"},
		{"WOODEN　CASE", "WOODEN CASE"}, // full-width space
		{"STEEL   DRUM", "STEEL DRUM"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestLoadMaster(t *testing.T) {
	data := []byte(`alias,code
WOODEN CASE,CS
carton,CT
,XX
STEEL DRUM,DR
`)
	mapping, err := LoadMaster(data)
	require.NoError(t, err)

	assert.Len(t, mapping, 3, "header and empty-alias rows are skipped")
	assert.Equal(t, "CS", mapping["WOODEN CASE"])
	assert.Equal(t, "CT", mapping["CARTON"], "aliases are stored normalized")
}

func TestLoadMaster_NoHeader(t *testing.T) {
	mapping, err := LoadMaster([]byte("PALLET,PL\n"))
	require.NoError(t, err)
	assert.Equal(t, "PL", mapping["PALLET"])
}

func TestMap(t *testing.T) {
	mapping := map[string]string{"WOODEN CASE": "CS"}

	assert.Equal(t, Result{Status: StatusEmpty}, Map("", mapping))
	assert.Equal(t, Result{Code: "CS", Status: StatusMapped}, Map("wooden  case", mapping))
	assert.Equal(t, Result{Status: StatusUnmapped}, Map("MYSTERY BOX", mapping))
}
