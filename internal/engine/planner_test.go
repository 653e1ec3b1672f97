package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyo563/container-loading-planner/internal/model"
)

func defaultCandidates() []model.ContainerSpec {
	gp20 := standardSpec("20GP", "589", "235", "239")
	gp20.Cost = decPtr("1.0")
	gp40 := standardSpec("40GP", "1203", "235", "239")
	gp40.Cost = decPtr("1.7")
	hc40 := standardSpec("40HC", "1203", "235", "269")
	hc40.Cost = decPtr("1.9")
	return []model.ContainerSpec{gp20, gp40, hc40}
}

func TestSortPieces_DescendingBySizeThenWeight(t *testing.T) {
	x := cargoPiece("X", "200", "10", "10", "10", true, true)
	y := cargoPiece("Y", "150", "100", "10", "10", true, true)
	z := cargoPiece("Z", "150", "50", "10", "10", true, true)
	w := cargoPiece("W", "150", "50", "10", "20", true, true)

	input := []model.Piece{z, y, w, x}
	sorted := SortPieces(input)

	ids := make([]string, len(sorted))
	for i, p := range sorted {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"X", "Y", "W", "Z"}, ids)
	assert.Equal(t, "Z", input[0].ID, "input order must not change")
}

func TestEstimate_EqualScoresPreferEarliestCandidate(t *testing.T) {
	planner := NewPlanner(nil)
	pieces := []model.Piece{
		cargoPiece("P1", "100", "100", "100", "100", true, true),
		cargoPiece("P2", "100", "100", "100", "100", true, true),
	}

	result, err := planner.Estimate(EstimateRequest{
		Pieces:         pieces,
		CandidateSpecs: defaultCandidates(),
		ReferenceSpec:  defaultCandidates()[2],
		Objective:      ObjectiveMinContainers,
		Strategy:       StrategySingleType,
	})
	require.NoError(t, err)

	// Every candidate needs exactly one container; the tie resolves to the
	// first candidate in catalog order.
	assert.Equal(t, map[string]int{"20GP": 1}, result.SummaryByType)
	assert.Len(t, result.Placements, 2)
	assert.Empty(t, result.Unplaced)
	assert.NotEmpty(t, result.PlanID)

	_, hasBias := result.BiasByContainer[model.ContainerRef{Type: "20GP", Index: 1}]
	assert.True(t, hasBias, "every packed STANDARD instance gets bias metrics")
}

func TestEstimate_CostObjectiveOverridesCandidateOrder(t *testing.T) {
	planner := NewPlanner(nil)
	pieces := []model.Piece{cargoPiece("P1", "100", "100", "100", "100", true, true)}

	candidates := defaultCandidates()
	reversed := []model.ContainerSpec{candidates[2], candidates[1], candidates[0]}

	result, err := planner.Estimate(EstimateRequest{
		Pieces:         pieces,
		CandidateSpecs: reversed,
		ReferenceSpec:  candidates[2],
		Objective:      ObjectiveMinContainers,
		Strategy:       StrategySingleType,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"40HC": 1}, result.SummaryByType, "count tie falls to the first candidate")

	result, err = planner.Estimate(EstimateRequest{
		Pieces:         pieces,
		CandidateSpecs: reversed,
		ReferenceSpec:  candidates[2],
		Objective:      ObjectiveMinCost,
		Strategy:       StrategySingleType,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"20GP": 1}, result.SummaryByType, "cost objective picks the cheapest type")
}

func TestEstimate_OogPiecesAreTriagedNotPacked(t *testing.T) {
	planner := NewPlanner(nil)
	oversize := cargoPiece("BIG", "600", "235", "200", "500", false, true)
	regular := cargoPiece("REG", "100", "100", "100", "100", true, true)

	ref := standardSpec("20GP", "589", "235", "239")
	result, err := planner.Estimate(EstimateRequest{
		Pieces:         []model.Piece{oversize, regular},
		CandidateSpecs: []model.ContainerSpec{ref},
		ReferenceSpec:  ref,
		Objective:      ObjectiveMinContainers,
		Strategy:       StrategySingleType,
	})
	require.NoError(t, err)

	require.Len(t, result.OogResults, 1, "only flagged pieces appear in OOG results")
	assert.Equal(t, "BIG", result.OogResults[0].Piece.ID)
	assert.True(t, result.OogResults[0].Result.Flag)

	require.Len(t, result.Placements, 1)
	assert.Equal(t, "REG", result.Placements[0].Piece.ID)

	require.Len(t, result.Unplaced, 1)
	assert.Equal(t, "BIG", result.Unplaced[0].ID, "out-of-gauge cargo joins the unplaced list")
}

func TestEstimate_RejectsUnpackableCandidate(t *testing.T) {
	planner := NewPlanner(nil)
	flatRack := model.ContainerSpec{Type: "FR", Category: model.CategorySpecial}

	_, err := planner.Estimate(EstimateRequest{
		Pieces:         []model.Piece{cargoPiece("P1", "10", "10", "10", "1", true, true)},
		CandidateSpecs: []model.ContainerSpec{flatRack},
		ReferenceSpec:  standardSpec("20GP", "589", "235", "239"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInnerDimsRequired)
}

func TestEstimate_MultiTypePicksMostEfficientInstance(t *testing.T) {
	planner := NewPlanner(nil)
	small := standardSpec("SMALL", "100", "100", "100")
	small.Cost = decPtr("1.0")
	large := standardSpec("LARGE", "200", "100", "100")
	large.Cost = decPtr("1.5")

	pieces := []model.Piece{
		cargoPiece("P1", "100", "100", "100", "10", false, true),
		cargoPiece("P2", "100", "100", "100", "10", false, true),
		cargoPiece("P3", "100", "100", "100", "10", false, true),
	}

	result, err := planner.Estimate(EstimateRequest{
		Pieces:         pieces,
		CandidateSpecs: []model.ContainerSpec{small, large},
		ReferenceSpec:  standardSpec("REF", "1000", "1000", "1000"),
		Objective:      ObjectiveMinContainers,
		Strategy:       StrategyMultiType,
	})
	require.NoError(t, err)

	// Round one: LARGE seats two pieces per instance and wins on efficiency.
	// Round two: one piece left, both seat one, the earlier candidate wins.
	assert.Equal(t, map[string]int{"LARGE": 1, "SMALL": 1}, result.SummaryByType)
	assert.Len(t, result.Placements, 3)
	assert.Empty(t, result.Unplaced)

	_, hasLarge := result.BiasByContainer[model.ContainerRef{Type: "LARGE", Index: 1}]
	_, hasSmall := result.BiasByContainer[model.ContainerRef{Type: "SMALL", Index: 1}]
	assert.True(t, hasLarge)
	assert.True(t, hasSmall, "instance indices count up per type")
}

func TestValidate_CountMustBePositive(t *testing.T) {
	planner := NewPlanner(nil)
	_, err := planner.Validate(ValidateRequest{
		Pieces: []model.Piece{cargoPiece("P1", "10", "10", "10", "1", true, true)},
		Spec:   standardSpec("BOX", "100", "100", "100"),
		Count:  0,
	})
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestValidate_PacksOutOfGaugeCargo(t *testing.T) {
	planner := NewPlanner(nil)
	piece := cargoPiece("P1", "100", "100", "100", "50", false, true)

	result, err := planner.Validate(ValidateRequest{
		Pieces:        []model.Piece{piece},
		Spec:          standardSpec("BOX", "100", "100", "100"),
		Count:         1,
		ReferenceSpec: standardSpec("REF", "50", "50", "50"),
	})
	require.NoError(t, err)

	require.Len(t, result.Placements, 1, "validation packs OOG cargo like any other piece")
	assert.Empty(t, result.Unplaced)
	require.Len(t, result.OogResults, 1, "validation reports OOG status for every piece")
	assert.True(t, result.OogResults[0].Result.Flag)
}

func TestValidate_FixedFleetOverflow(t *testing.T) {
	planner := NewPlanner(nil)
	pieces := []model.Piece{
		cargoPiece("P1", "100", "100", "100", "10", false, true),
		cargoPiece("P2", "100", "100", "100", "10", false, true),
		cargoPiece("P3", "100", "100", "100", "10", false, true),
	}

	result, err := planner.Validate(ValidateRequest{
		Pieces:        pieces,
		Spec:          standardSpec("BOX", "100", "100", "100"),
		Count:         2,
		ReferenceSpec: standardSpec("REF", "1000", "1000", "1000"),
	})
	require.NoError(t, err)
	assert.Len(t, result.Placements, 2)
	assert.Len(t, result.Unplaced, 1)
}
