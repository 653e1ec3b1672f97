package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kyo563/container-loading-planner/internal/model"
)

// Suggested special-container types for out-of-gauge cargo.
const (
	SuggestionFlatRack = "FR" // excess width or length
	SuggestionOpenTop  = "OT" // excess height only
)

// EvaluateOOG compares a piece against a reference container's inner envelope
// across all orientations and keeps the orientation with the smallest total
// overflow (first-seen wins on ties). Overflow amounts are ceiling-rounded;
// the piece is out of gauge when any rounded overflow is positive.
func EvaluateOOG(piece model.Piece, ref model.ContainerSpec) (model.OogResult, error) {
	if ref.InnerLength == nil || ref.InnerWidth == nil || ref.InnerHeight == nil {
		return model.OogResult{}, fmt.Errorf("evaluate OOG against %q: %w", ref.Type, ErrInnerDimsRequired)
	}

	var (
		best      model.Orientation
		bestScore decimal.Decimal
		overL     decimal.Decimal
		overW     decimal.Decimal
		overH     decimal.Decimal
		found     bool
	)
	for _, orient := range Orientations(piece) {
		oL := decimal.Max(decimal.Zero, orient.Length.Sub(*ref.InnerLength))
		oW := decimal.Max(decimal.Zero, orient.Width.Sub(*ref.InnerWidth))
		oH := decimal.Max(decimal.Zero, orient.Height.Sub(*ref.InnerHeight))
		score := oL.Add(oW).Add(oH)
		if !found || score.LessThan(bestScore) {
			found = true
			bestScore = score
			best = orient
			overL, overW, overH = oL, oW, oH
		}
	}

	overL = model.Ceil3(overL)
	overW = model.Ceil3(overW)
	overH = model.Ceil3(overH)

	flag := overL.IsPositive() || overW.IsPositive() || overH.IsPositive()

	suggestion := ""
	switch {
	case overW.IsPositive() || overL.IsPositive():
		suggestion = SuggestionFlatRack
	case overH.IsPositive():
		suggestion = SuggestionOpenTop
	}

	return model.OogResult{
		Flag:             flag,
		RefType:          ref.Type,
		OverLength:       overL,
		OverWidth:        overW,
		OverHeight:       overH,
		Suggestion:       suggestion,
		ProtrudeLengthM3: model.VolumeM3(overL, best.Width, best.Height),
		ProtrudeWidthM3:  model.VolumeM3(best.Length, overW, best.Height),
		ProtrudeHeightM3: model.VolumeM3(best.Length, best.Width, overH),
		Orientation:      best,
	}, nil
}
