package engine

import (
	"github.com/shopspring/decimal"

	"github.com/kyo563/container-loading-planner/internal/model"
)

// axisPermutation maps the piece's source axes (0=L, 1=W, 2=H) onto the
// container's length/width/height axes. The table order is fixed so that
// orientation enumeration, and every tie-break that depends on it, stays
// deterministic.
type axisPermutation struct {
	l, w, h int
	key     string
}

var axisPermutations = [6]axisPermutation{
	{0, 1, 2, "LWH"},
	{0, 2, 1, "LHW"},
	{1, 0, 2, "WLH"},
	{1, 2, 0, "WHL"},
	{2, 0, 1, "HLW"},
	{2, 1, 0, "HWL"},
}

// Orientations returns the candidate orientations of a piece. A piece that
// may not be rotated yields exactly its original orientation; otherwise all
// six permutations are generated and numerically identical triples are
// collapsed (a cube has one orientation, a square cross-section three).
func Orientations(piece model.Piece) []model.Orientation {
	if !piece.RotateAllowed {
		return []model.Orientation{{
			Length:      piece.Length,
			Width:       piece.Width,
			Height:      piece.Height,
			RotationKey: "LWH",
		}}
	}

	dims := [3]decimal.Decimal{piece.Length, piece.Width, piece.Height}
	seen := make(map[string]struct{}, len(axisPermutations))
	result := make([]model.Orientation, 0, len(axisPermutations))
	for _, perm := range axisPermutations {
		l, w, h := dims[perm.l], dims[perm.w], dims[perm.h]
		fingerprint := l.String() + "x" + w.String() + "x" + h.String()
		if _, dup := seen[fingerprint]; dup {
			continue
		}
		seen[fingerprint] = struct{}{}
		result = append(result, model.Orientation{
			Length:      l,
			Width:       w,
			Height:      h,
			RotationKey: perm.key,
		})
	}
	return result
}
