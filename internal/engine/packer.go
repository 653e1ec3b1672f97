package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kyo563/container-loading-planner/internal/model"
)

// maxRepositionAttempts bounds the cursor escalation per piece: new row, then
// new layer, then a fresh container. A piece still unseated after that is
// reported unplaced.
const maxRepositionAttempts = 3

var two = decimal.NewFromInt(2)

// ShelfPacker places pieces into container instances of a single spec using
// a shelf heuristic: left to right along the length, row by row across the
// width, layer by layer up the height. All state is owned by one packing
// invocation; instances are opened lazily as space runs out.
type ShelfPacker struct {
	spec        model.ContainerSpec
	constraints model.PackingConstraints

	loads       []model.ContainerLoad
	curX        decimal.Decimal
	curY        decimal.Decimal
	curZ        decimal.Decimal
	rowDepth    decimal.Decimal
	layerHeight decimal.Decimal
}

// NewShelfPacker creates a packer for one STANDARD container spec.
func NewShelfPacker(spec model.ContainerSpec, constraints model.PackingConstraints) (*ShelfPacker, error) {
	if !spec.Packable() {
		return nil, fmt.Errorf("pack into %q: %w", spec.Type, ErrInnerDimsRequired)
	}
	p := &ShelfPacker{spec: spec, constraints: constraints}
	p.newContainer()
	return p, nil
}

// Pack runs the shelf heuristic over the given piece sequence. maxContainers
// of zero means unlimited; a positive value truncates the result to that many
// instances, and every placement in a truncated instance is converted back
// into its piece on the unplaced list.
func Pack(spec model.ContainerSpec, pieces []model.Piece, maxContainers int, constraints model.PackingConstraints) (model.PackResult, error) {
	packer, err := NewShelfPacker(spec, constraints)
	if err != nil {
		return model.PackResult{}, err
	}

	var unplaced []model.Piece
	for _, piece := range pieces {
		if !packer.PlacePiece(piece) {
			unplaced = append(unplaced, piece)
		}
	}

	loads := packer.loads
	if maxContainers > 0 && len(loads) > maxContainers {
		for _, load := range loads[maxContainers:] {
			for _, pl := range load.Placements {
				unplaced = append(unplaced, pl.Piece)
			}
		}
		loads = loads[:maxContainers]
	}

	return model.PackResult{Loads: loads, Unplaced: unplaced}, nil
}

// PlacePiece attempts to seat one piece, escalating the cursor up to three
// times (next row, next layer, next container). It reports whether the piece
// was placed.
func (p *ShelfPacker) PlacePiece(piece model.Piece) bool {
	for attempt := 0; attempt < maxRepositionAttempts; attempt++ {
		if orient, ok := p.bestOrientation(piece); ok {
			p.commit(piece, orient)
			return true
		}
		switch {
		case p.curY.Add(p.rowDepth).LessThan(*p.spec.InnerWidth):
			p.newRow()
		case p.curZ.Add(p.layerHeight).LessThan(*p.spec.InnerHeight):
			p.newLayer()
		default:
			p.newContainer()
		}
	}
	return false
}

// bestOrientation returns the feasible orientation with the tightest fit at
// the current cursor: the one minimizing the summed slack remaining on the
// three axes.
func (p *ShelfPacker) bestOrientation(piece model.Piece) (model.Orientation, bool) {
	var (
		best      model.Orientation
		bestSlack decimal.Decimal
		found     bool
	)
	for _, orient := range Orientations(piece) {
		if !p.fits(orient) {
			continue
		}
		if !p.feasible(piece, orient) {
			continue
		}
		slack := p.spec.InnerLength.Sub(p.curX.Add(orient.Length)).
			Add(p.spec.InnerWidth.Sub(p.curY.Add(orient.Width))).
			Add(p.spec.InnerHeight.Sub(p.curZ.Add(orient.Height)))
		if !found || slack.LessThan(bestSlack) {
			found = true
			bestSlack = slack
			best = orient
		}
	}
	return best, found
}

func (p *ShelfPacker) fits(orient model.Orientation) bool {
	return p.curX.Add(orient.Length).LessThanOrEqual(*p.spec.InnerLength) &&
		p.curY.Add(orient.Width).LessThanOrEqual(*p.spec.InnerWidth) &&
		p.curZ.Add(orient.Height).LessThanOrEqual(*p.spec.InnerHeight)
}

// feasible runs the constraint checks in order; the first failure rejects
// the orientation.
func (p *ShelfPacker) feasible(piece model.Piece, orient model.Orientation) bool {
	if p.incompatible(piece) {
		return false
	}
	if p.spec.MaxPayload != nil &&
		p.currentLoad().TotalWeight().Add(piece.WeightKg).GreaterThan(*p.spec.MaxPayload) {
		return false
	}
	if !p.withinCGLimit(piece, orient) {
		return false
	}
	return p.supported(piece, orient)
}

// incompatible checks the candidate's declared incompatible ids against the
// original ids already in the current instance. With the symmetric policy it
// also honours declarations made by the placed pieces themselves.
func (p *ShelfPacker) incompatible(piece model.Piece) bool {
	placements := p.currentLoad().Placements
	if len(piece.IncompatibleWith) > 0 {
		placed := make(map[string]struct{}, len(placements))
		for _, pl := range placements {
			placed[pl.Piece.OrigID] = struct{}{}
		}
		for _, id := range piece.IncompatibleWith {
			if _, hit := placed[id]; hit {
				return true
			}
		}
	}
	if p.constraints.SymmetricIncompatibility {
		for _, pl := range placements {
			for _, id := range pl.Piece.IncompatibleWith {
				if id == piece.OrigID {
					return true
				}
			}
		}
	}
	return false
}

// withinCGLimit simulates adding the piece at the cursor and checks the
// resulting horizontal center-of-gravity offsets against the configured caps.
func (p *ShelfPacker) withinCGLimit(piece model.Piece, orient model.Orientation) bool {
	capX := p.constraints.MaxCGOffsetXPct
	capY := p.constraints.MaxCGOffsetYPct
	if capX == nil && capY == nil {
		return true
	}

	load := p.currentLoad()
	total := load.TotalWeight().Add(piece.WeightKg)
	if !total.IsPositive() {
		return true
	}

	weightedX := decimal.Zero
	weightedY := decimal.Zero
	for _, pl := range load.Placements {
		weightedX = weightedX.Add(pl.Piece.WeightKg.Mul(pl.X.Add(pl.OrientLength.Div(two))))
		weightedY = weightedY.Add(pl.Piece.WeightKg.Mul(pl.Y.Add(pl.OrientWidth.Div(two))))
	}
	weightedX = weightedX.Add(piece.WeightKg.Mul(p.curX.Add(orient.Length.Div(two))))
	weightedY = weightedY.Add(piece.WeightKg.Mul(p.curY.Add(orient.Width.Div(two))))

	halfL := p.spec.InnerLength.Div(two)
	halfW := p.spec.InnerWidth.Div(two)
	offsetX := weightedX.Div(total).Sub(halfL).Abs().Div(halfL).Mul(hundred)
	offsetY := weightedY.Div(total).Sub(halfW).Abs().Div(halfW).Mul(hundred)

	if capX != nil && offsetX.GreaterThan(*capX) {
		return false
	}
	if capY != nil && offsetY.GreaterThan(*capY) {
		return false
	}
	return true
}

// supported verifies the stacking rule. Floor placements are always
// supported. Above the floor the candidate footprint must overlap at least
// one placed piece whose top face sits exactly at the candidate z, and every
// such bottom piece must be stackable and tolerate the candidate's weight.
func (p *ShelfPacker) supported(piece model.Piece, orient model.Orientation) bool {
	if p.curZ.IsZero() {
		return true
	}

	x2 := p.curX.Add(orient.Length)
	y2 := p.curY.Add(orient.Width)
	supportedOnce := false
	for _, pl := range p.currentLoad().Placements {
		if !pl.TopZ().Equal(p.curZ) {
			continue
		}
		if !overlaps2D(pl, p.curX, p.curY, x2, y2) {
			continue
		}
		if !pl.Piece.Stackable {
			return false
		}
		if pl.Piece.MaxStackLoadKg != nil && piece.WeightKg.GreaterThan(*pl.Piece.MaxStackLoadKg) {
			return false
		}
		supportedOnce = true
	}
	return supportedOnce
}

// overlaps2D reports axis-aligned footprint intersection between a placement
// and the rectangle (x1,y1)-(x2,y2).
func overlaps2D(pl model.Placement, x1, y1, x2, y2 decimal.Decimal) bool {
	plX2 := pl.X.Add(pl.OrientLength)
	plY2 := pl.Y.Add(pl.OrientWidth)
	return pl.X.LessThan(x2) && plX2.GreaterThan(x1) &&
		pl.Y.LessThan(y2) && plY2.GreaterThan(y1)
}

// commit seats the piece at the cursor and advances the shelf state. A
// non-stackable piece closes the layer so nothing is ever placed on top of it.
func (p *ShelfPacker) commit(piece model.Piece, orient model.Orientation) {
	load := &p.loads[len(p.loads)-1]
	load.Placements = append(load.Placements, model.Placement{
		Piece:             piece,
		ContainerType:     p.spec.Type,
		ContainerCategory: p.spec.Category,
		ContainerIndex:    load.Index,
		X:                 p.curX,
		Y:                 p.curY,
		Z:                 p.curZ,
		OrientLength:      orient.Length,
		OrientWidth:       orient.Width,
		OrientHeight:      orient.Height,
		RotationKey:       orient.RotationKey,
	})

	p.curX = p.curX.Add(orient.Length)
	p.rowDepth = decimal.Max(p.rowDepth, orient.Width)
	p.layerHeight = decimal.Max(p.layerHeight, orient.Height)
	if !piece.Stackable {
		p.newLayer()
	}
}

func (p *ShelfPacker) currentLoad() *model.ContainerLoad {
	return &p.loads[len(p.loads)-1]
}

func (p *ShelfPacker) newRow() {
	p.curX = decimal.Zero
	p.curY = p.curY.Add(p.rowDepth)
	p.rowDepth = decimal.Zero
}

func (p *ShelfPacker) newLayer() {
	p.curX = decimal.Zero
	p.curY = decimal.Zero
	p.curZ = p.curZ.Add(p.layerHeight)
	p.layerHeight = decimal.Zero
	p.rowDepth = decimal.Zero
}

func (p *ShelfPacker) newContainer() {
	p.loads = append(p.loads, model.ContainerLoad{Spec: p.spec, Index: len(p.loads) + 1})
	p.curX = decimal.Zero
	p.curY = decimal.Zero
	p.curZ = decimal.Zero
	p.rowDepth = decimal.Zero
	p.layerHeight = decimal.Zero
}
