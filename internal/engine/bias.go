package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kyo563/container-loading-planner/internal/model"
)

var hundred = decimal.NewFromInt(100)

// AnalyzeBias computes the load-balance metrics of one container instance. A
// metric exceeding thresholdPct attaches its reason code and raises the warn
// flag; an empty (zero weight) load is neutral.
func AnalyzeBias(load model.ContainerLoad, thresholdPct decimal.Decimal) (model.BiasMetrics, error) {
	if load.Spec.InnerLength == nil || load.Spec.InnerWidth == nil {
		return model.BiasMetrics{}, fmt.Errorf("analyze bias of %q: %w", load.Spec.Type, ErrInnerDimsRequired)
	}

	halfL := load.Spec.InnerLength.Div(two)
	halfW := load.Spec.InnerWidth.Div(two)

	total := decimal.Zero
	weightedX := decimal.Zero
	weightedY := decimal.Zero
	front := decimal.Zero
	rear := decimal.Zero
	left := decimal.Zero
	right := decimal.Zero
	for _, pl := range load.Placements {
		w := pl.Piece.WeightKg
		cx := pl.X.Add(pl.OrientLength.Div(two))
		cy := pl.Y.Add(pl.OrientWidth.Div(two))
		total = total.Add(w)
		weightedX = weightedX.Add(w.Mul(cx))
		weightedY = weightedY.Add(w.Mul(cy))
		if cx.LessThanOrEqual(halfL) {
			front = front.Add(w)
		} else {
			rear = rear.Add(w)
		}
		if cy.LessThanOrEqual(halfW) {
			left = left.Add(w)
		} else {
			right = right.Add(w)
		}
	}

	if total.IsZero() {
		return model.BiasMetrics{
			OffsetXPct:       decimal.Zero,
			OffsetYPct:       decimal.Zero,
			FrontRearDiffPct: decimal.Zero,
			LeftRightDiffPct: decimal.Zero,
		}, nil
	}

	halfTotal := total.Div(two)
	offsetX := model.Ceil3(weightedX.Div(total).Sub(halfL).Abs().Div(halfL).Mul(hundred))
	offsetY := model.Ceil3(weightedY.Div(total).Sub(halfW).Abs().Div(halfW).Mul(hundred))
	frontRear := model.Ceil3(front.Sub(rear).Abs().Div(halfTotal).Mul(hundred))
	leftRight := model.Ceil3(left.Sub(right).Abs().Div(halfTotal).Mul(hundred))

	var reasons []model.BiasReason
	if offsetX.GreaterThan(thresholdPct) {
		reasons = append(reasons, model.BiasComXOffset)
	}
	if offsetY.GreaterThan(thresholdPct) {
		reasons = append(reasons, model.BiasComYOffset)
	}
	if frontRear.GreaterThan(thresholdPct) {
		reasons = append(reasons, model.BiasFrontRearImbalance)
	}
	if leftRight.GreaterThan(thresholdPct) {
		reasons = append(reasons, model.BiasLeftRightImbalance)
	}

	return model.BiasMetrics{
		Warn:             len(reasons) > 0,
		Reasons:          reasons,
		OffsetXPct:       offsetX,
		OffsetYPct:       offsetY,
		FrontRearDiffPct: frontRear,
		LeftRightDiffPct: leftRight,
	}, nil
}
