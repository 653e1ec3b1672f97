package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Category classifies a container spec. Only STANDARD containers have a full
// inner envelope and can be packed; SPECIAL containers (flat-rack, open-top,
// reefer) are advisory targets for out-of-gauge cargo.
type Category string

const (
	CategoryStandard Category = "STANDARD"
	CategorySpecial  Category = "SPECIAL"
)

// CargoRow is one validated input line of a cargo manifest. Dimensions are in
// cm, weight in kg. Qty expands into that many identical pieces.
type CargoRow struct {
	ID               string           `json:"id"`
	Desc             string           `json:"desc"`
	Qty              int              `json:"qty"`
	Length           decimal.Decimal  `json:"length_cm"`
	Width            decimal.Decimal  `json:"width_cm"`
	Height           decimal.Decimal  `json:"height_cm"`
	WeightKg         decimal.Decimal  `json:"weight_kg"`
	PackageText      string           `json:"package_text"`
	RotateAllowed    bool             `json:"rotate_allowed"`
	Stackable        bool             `json:"stackable"`
	MaxStackLoadKg   *decimal.Decimal `json:"max_stack_load_kg,omitempty"`
	IncompatibleWith []string         `json:"incompatible_with,omitempty"`
}

// Piece is one physical unit expanded from a CargoRow. It carries its own
// copy of the row's dimensions and flags so placements stay self-contained.
type Piece struct {
	ID               string           `json:"id"` // "{origID}#{n}"
	OrigID           string           `json:"orig_id"`
	PieceNo          int              `json:"piece_no"`
	Desc             string           `json:"desc"`
	Length           decimal.Decimal  `json:"length_cm"`
	Width            decimal.Decimal  `json:"width_cm"`
	Height           decimal.Decimal  `json:"height_cm"`
	WeightKg         decimal.Decimal  `json:"weight_kg"`
	VolumeM3         decimal.Decimal  `json:"m3"`
	PackageText      string           `json:"package_text"`
	RotateAllowed    bool             `json:"rotate_allowed"`
	Stackable        bool             `json:"stackable"`
	MaxStackLoadKg   *decimal.Decimal `json:"max_stack_load_kg,omitempty"`
	IncompatibleWith []string         `json:"incompatible_with,omitempty"`
}

// MaxDim returns the largest of the three dimensions.
func (p Piece) MaxDim() decimal.Decimal {
	m := p.Length
	if p.Width.GreaterThan(m) {
		m = p.Width
	}
	if p.Height.GreaterThan(m) {
		m = p.Height
	}
	return m
}

// Footprint returns the L x W area of the piece in its original orientation.
func (p Piece) Footprint() decimal.Decimal {
	return p.Length.Mul(p.Width)
}

// ExpandPieces turns cargo rows into pieces, one per unit of quantity, with
// piece ids of the form "{origID}#{n}" and a ceiling-rounded volume in m3.
func ExpandPieces(rows []CargoRow) []Piece {
	var pieces []Piece
	for _, row := range rows {
		volume := VolumeM3(row.Length, row.Width, row.Height)
		for i := 1; i <= row.Qty; i++ {
			pieces = append(pieces, Piece{
				ID:               fmt.Sprintf("%s#%d", row.ID, i),
				OrigID:           row.ID,
				PieceNo:          i,
				Desc:             row.Desc,
				Length:           row.Length,
				Width:            row.Width,
				Height:           row.Height,
				WeightKg:         row.WeightKg,
				VolumeM3:         volume,
				PackageText:      row.PackageText,
				RotateAllowed:    row.RotateAllowed,
				Stackable:        row.Stackable,
				MaxStackLoadKg:   row.MaxStackLoadKg,
				IncompatibleWith: row.IncompatibleWith,
			})
		}
	}
	return pieces
}

// ContainerSpec describes one container type. STANDARD specs carry an inner
// envelope; SPECIAL specs are described by deck dimensions only.
type ContainerSpec struct {
	Type        string           `json:"type"`
	Category    Category         `json:"category"`
	InnerLength *decimal.Decimal `json:"inner_L_cm,omitempty"`
	InnerWidth  *decimal.Decimal `json:"inner_W_cm,omitempty"`
	InnerHeight *decimal.Decimal `json:"inner_H_cm,omitempty"`
	DeckLength  *decimal.Decimal `json:"deck_L_cm,omitempty"`
	DeckWidth   *decimal.Decimal `json:"deck_W_cm,omitempty"`
	MaxPayload  *decimal.Decimal `json:"max_payload_kg,omitempty"`
	Cost        *decimal.Decimal `json:"cost,omitempty"`
}

// Packable reports whether the spec can be fed to the shelf packer: it must
// be STANDARD with all three inner dimensions present.
func (s ContainerSpec) Packable() bool {
	return s.Category == CategoryStandard &&
		s.InnerLength != nil && s.InnerWidth != nil && s.InnerHeight != nil
}

// CostOrZero returns the relative cost unit, defaulting to zero when unset.
func (s ContainerSpec) CostOrZero() decimal.Decimal {
	if s.Cost == nil {
		return decimal.Zero
	}
	return *s.Cost
}

// Orientation is one axis-aligned permutation of a piece's dimensions.
// RotationKey records which source axis feeds each placement axis, e.g. "WHL"
// means the piece's width lies along the container length.
type Orientation struct {
	Length      decimal.Decimal `json:"L_cm"`
	Width       decimal.Decimal `json:"W_cm"`
	Height      decimal.Decimal `json:"H_cm"`
	RotationKey string          `json:"rotation_key"`
}

// Placement records one piece seated in one container instance. X runs along
// the container length, Y along the width, Z up from the floor; the position
// is the piece's lower corner.
type Placement struct {
	Piece             Piece           `json:"piece"`
	ContainerType     string          `json:"container_type"`
	ContainerCategory Category        `json:"container_category"`
	ContainerIndex    int             `json:"container_index"` // 1-based
	X                 decimal.Decimal `json:"x_cm"`
	Y                 decimal.Decimal `json:"y_cm"`
	Z                 decimal.Decimal `json:"z_cm"`
	OrientLength      decimal.Decimal `json:"orient_L_cm"`
	OrientWidth       decimal.Decimal `json:"orient_W_cm"`
	OrientHeight      decimal.Decimal `json:"orient_H_cm"`
	RotationKey       string          `json:"rotation_key"`
}

// TopZ returns the height of the piece's top face above the container floor.
func (p Placement) TopZ() decimal.Decimal {
	return p.Z.Add(p.OrientHeight)
}

// ContainerLoad is one container instance and its placements, in placement
// order.
type ContainerLoad struct {
	Spec       ContainerSpec `json:"spec"`
	Index      int           `json:"index"` // 1-based
	Placements []Placement   `json:"placements"`
}

// TotalWeight returns the summed weight of all placed pieces.
func (l ContainerLoad) TotalWeight() decimal.Decimal {
	total := decimal.Zero
	for _, pl := range l.Placements {
		total = total.Add(pl.Piece.WeightKg)
	}
	return total
}

// PackResult is the outcome of one packing run over a single spec.
type PackResult struct {
	Loads    []ContainerLoad `json:"loads"`
	Unplaced []Piece         `json:"unplaced"`
}

// OogResult is the out-of-gauge evaluation of one piece against a reference
// STANDARD container. Overflows are per axis, already ceiling-rounded.
// The three protrusion volumes are independent per-axis estimates and must
// not be summed.
type OogResult struct {
	Flag             bool            `json:"oog_flag"`
	RefType          string          `json:"oog_ref_type"`
	OverLength       decimal.Decimal `json:"over_L_cm"`
	OverWidth        decimal.Decimal `json:"over_W_cm"`
	OverHeight       decimal.Decimal `json:"over_H_cm"`
	Suggestion       string          `json:"suggestion"` // "FR", "OT" or ""
	ProtrudeLengthM3 decimal.Decimal `json:"protrude_L_m3"`
	ProtrudeWidthM3  decimal.Decimal `json:"protrude_W_m3"`
	ProtrudeHeightM3 decimal.Decimal `json:"protrude_H_m3"`
	Orientation      Orientation     `json:"chosen_orientation"`
}

// PieceOog pairs a piece with its OOG evaluation.
type PieceOog struct {
	Piece  Piece     `json:"piece"`
	Result OogResult `json:"result"`
}

// BiasReason identifies which load-balance metric exceeded the threshold.
type BiasReason string

const (
	BiasComXOffset         BiasReason = "COM_X_OFFSET"
	BiasComYOffset         BiasReason = "COM_Y_OFFSET"
	BiasFrontRearImbalance BiasReason = "FRONT_REAR_IMBALANCE"
	BiasLeftRightImbalance BiasReason = "LEFT_RIGHT_IMBALANCE"
)

// BiasMetrics holds the load-balance analysis of one container instance.
// Offsets are center-of-gravity deviations relative to the half-dimension;
// the diff percentages compare front/rear and left/right weight halves
// against half the total load weight. All values are ceiling-rounded.
type BiasMetrics struct {
	Warn             bool            `json:"bias_warn"`
	Reasons          []BiasReason    `json:"bias_reasons,omitempty"`
	OffsetXPct       decimal.Decimal `json:"offset_x_pct"`
	OffsetYPct       decimal.Decimal `json:"offset_y_pct"`
	FrontRearDiffPct decimal.Decimal `json:"front_rear_diff_pct"`
	LeftRightDiffPct decimal.Decimal `json:"left_right_diff_pct"`
}

// ReasonString joins the reason codes for display, e.g.
// "COM_X_OFFSET;FRONT_REAR_IMBALANCE".
func (m BiasMetrics) ReasonString() string {
	parts := make([]string, 0, len(m.Reasons))
	for _, r := range m.Reasons {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ";")
}

// PackingConstraints carries optional placement policies. Nil caps mean
// unconstrained. SymmetricIncompatibility extends the incompatibility check
// to placed pieces' own declarations; the default matches the historical
// one-directional behaviour where only the candidate's list is consulted.
type PackingConstraints struct {
	MaxCGOffsetXPct          *decimal.Decimal `json:"max_cg_offset_x_pct,omitempty"`
	MaxCGOffsetYPct          *decimal.Decimal `json:"max_cg_offset_y_pct,omitempty"`
	SymmetricIncompatibility bool             `json:"symmetric_incompatibility"`
}

// ContainerRef identifies one container instance within a plan.
type ContainerRef struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// EstimateResult answers "how many containers of which type".
type EstimateResult struct {
	PlanID          string                       `json:"plan_id"`
	Placements      []Placement                  `json:"placements"`
	Unplaced        []Piece                      `json:"unplaced"`
	OogResults      []PieceOog                   `json:"oog_results"`
	SummaryByType   map[string]int               `json:"summary_by_type"`
	BiasByContainer map[ContainerRef]BiasMetrics `json:"bias_by_container"`
}

// ValidateResult answers "does this fixed fleet hold the cargo".
type ValidateResult struct {
	PlanID          string                       `json:"plan_id"`
	Placements      []Placement                  `json:"placements"`
	Unplaced        []Piece                      `json:"unplaced"`
	OogResults      []PieceOog                   `json:"oog_results"`
	BiasByContainer map[ContainerRef]BiasMetrics `json:"bias_by_container"`
}
