package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyo563/container-loading-planner/internal/model"
	"github.com/kyo563/container-loading-planner/internal/naccs"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func placement(pieceID, containerType string, index int, x, y, z string) model.Placement {
	return model.Placement{
		Piece:          model.Piece{ID: pieceID},
		ContainerType:  containerType,
		ContainerIndex: index,
		X:              d(x),
		Y:              d(y),
		Z:              d(z),
	}
}

func TestLabelContainer(t *testing.T) {
	assert.Equal(t, "40GP ①", LabelContainer("40GP", 1))
	assert.Equal(t, "20GP ②", LabelContainer("20GP", 2))
	assert.Equal(t, "40HC ⑳", LabelContainer("40HC", 20))
	assert.Equal(t, "40HC 21", LabelContainer("40HC", 21), "past twenty falls back to numerals")
	assert.Equal(t, "40HC 0", LabelContainer("40HC", 0))
}

func TestBuildRows_SortsByRankInstanceAndPosition(t *testing.T) {
	placements := []model.Placement{
		placement("B#1", "40GP", 1, "0", "0", "0"),
		placement("C#1", "20GP", 2, "0", "0", "0"),
		placement("A#2", "20GP", 1, "50", "0", "0"),
		placement("A#1", "20GP", 1, "0", "0", "0"),
		placement("D#1", "20GP", 1, "0", "0", "50"),
	}
	orderMap := map[string]int{"20GP": 0, "40GP": 1}

	rows := BuildRows(placements, nil, nil, orderMap, nil)
	require.Len(t, rows, 5)

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.PieceID
	}
	assert.Equal(t, []string{"A#1", "A#2", "D#1", "C#1", "B#1"}, ids)
	assert.Equal(t, "20GP ①", rows[0].ContainerLabel)
	assert.Equal(t, "40GP ①", rows[4].ContainerLabel)
}

func TestBuildRows_UnrankedTypesSortLast(t *testing.T) {
	placements := []model.Placement{
		placement("X#1", "53HC", 1, "0", "0", "0"),
		placement("A#1", "20GP", 1, "0", "0", "0"),
	}
	rows := BuildRows(placements, nil, nil, map[string]int{"20GP": 0}, nil)
	require.Len(t, rows, 2)
	assert.Equal(t, "A#1", rows[0].PieceID)
	assert.Equal(t, "X#1", rows[1].PieceID)
}

func TestBuildRows_JoinsLookups(t *testing.T) {
	placements := []model.Placement{placement("A#1", "20GP", 1, "0", "0", "0")}

	oog := map[string]model.OogResult{
		"A#1": {Flag: true, Suggestion: "FR", OverWidth: d("10")},
	}
	bias := map[model.ContainerRef]model.BiasMetrics{
		{Type: "20GP", Index: 1}: {Warn: true, Reasons: []model.BiasReason{model.BiasComXOffset}},
	}
	packages := map[string]naccs.Result{
		"A#1": {Code: "CS", Status: naccs.StatusMapped},
	}

	rows := BuildRows(placements, oog, bias, map[string]int{"20GP": 0}, packages)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.True(t, row.Oog.Flag)
	assert.Equal(t, "FR", row.Oog.Suggestion)
	assert.True(t, row.Bias.Warn)
	assert.Equal(t, "COM_X_OFFSET", row.Bias.ReasonString())
	assert.Equal(t, "CS", row.PackageCode)
	assert.Equal(t, naccs.StatusMapped, row.PackageCodeStatus)
}

func TestBuildRows_MissingLookupsLeaveZeroValues(t *testing.T) {
	rows := BuildRows([]model.Placement{placement("A#1", "20GP", 1, "0", "0", "0")}, nil, nil, nil, nil)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Oog.Flag)
	assert.False(t, rows[0].Bias.Warn)
	assert.Equal(t, "", rows[0].PackageCode)
}

func TestOogByPiece(t *testing.T) {
	lookup := OogByPiece([]model.PieceOog{
		{Piece: model.Piece{ID: "A#1"}, Result: model.OogResult{Flag: true}},
		{Piece: model.Piece{ID: "B#1"}, Result: model.OogResult{Flag: false}},
	})
	require.Len(t, lookup, 2)
	assert.True(t, lookup["A#1"].Flag)
	assert.False(t, lookup["B#1"].Flag)
}
