// Package report assembles the per-placement loading report: one row per
// placed piece, joined with OOG, bias and package code data, in a
// deterministic display order.
package report

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kyo563/container-loading-planner/internal/model"
	"github.com/kyo563/container-loading-planner/internal/naccs"
)

// circled holds the traditional circled-number container labels used on
// Japanese loading plans; indices past 20 fall back to plain numerals.
var circled = [...]string{
	"①", "②", "③", "④", "⑤", "⑥", "⑦", "⑧", "⑨", "⑩",
	"⑪", "⑫", "⑬", "⑭", "⑮", "⑯", "⑰", "⑱", "⑲", "⑳",
}

// LabelContainer renders a display label such as "40GP ②".
func LabelContainer(containerType string, index int) string {
	if index >= 1 && index <= len(circled) {
		return fmt.Sprintf("%s %s", containerType, circled[index-1])
	}
	return fmt.Sprintf("%s %d", containerType, index)
}

// Row is one line of the loading report.
type Row struct {
	ContainerLabel    string
	ContainerType     string
	ContainerCategory model.Category
	ContainerIndex    int
	PieceID           string
	OrigID            string
	PieceNo           int
	Desc              string
	PackageText       string
	PackageCode       string
	PackageCodeStatus string
	Length            decimal.Decimal
	Width             decimal.Decimal
	Height            decimal.Decimal
	WeightKg          decimal.Decimal
	VolumeM3          decimal.Decimal
	RotateAllowed     bool
	Stackable         bool
	X                 decimal.Decimal
	Y                 decimal.Decimal
	Z                 decimal.Decimal
	OrientLength      decimal.Decimal
	OrientWidth       decimal.Decimal
	OrientHeight      decimal.Decimal
	RotationKey       string
	Oog               model.OogResult
	Bias              model.BiasMetrics
}

// unrankedOrder sorts container types absent from the order map after every
// ranked type.
const unrankedOrder = 999

// BuildRows joins placements with their lookups and sorts them for display:
// by container display rank, then instance, then position (z, y, x), then
// piece id. Missing lookups leave zero values in the row.
func BuildRows(
	placements []model.Placement,
	oogByPiece map[string]model.OogResult,
	biasByContainer map[model.ContainerRef]model.BiasMetrics,
	orderMap map[string]int,
	packageByPiece map[string]naccs.Result,
) []Row {
	rows := make([]Row, 0, len(placements))
	for _, pl := range placements {
		piece := pl.Piece
		row := Row{
			ContainerLabel:    LabelContainer(pl.ContainerType, pl.ContainerIndex),
			ContainerType:     pl.ContainerType,
			ContainerCategory: pl.ContainerCategory,
			ContainerIndex:    pl.ContainerIndex,
			PieceID:           piece.ID,
			OrigID:            piece.OrigID,
			PieceNo:           piece.PieceNo,
			Desc:              piece.Desc,
			PackageText:       piece.PackageText,
			Length:            piece.Length,
			Width:             piece.Width,
			Height:            piece.Height,
			WeightKg:          piece.WeightKg,
			VolumeM3:          piece.VolumeM3,
			RotateAllowed:     piece.RotateAllowed,
			Stackable:         piece.Stackable,
			X:                 pl.X,
			Y:                 pl.Y,
			Z:                 pl.Z,
			OrientLength:      pl.OrientLength,
			OrientWidth:       pl.OrientWidth,
			OrientHeight:      pl.OrientHeight,
			RotationKey:       pl.RotationKey,
		}
		if oog, ok := oogByPiece[piece.ID]; ok {
			row.Oog = oog
		}
		if bias, ok := biasByContainer[model.ContainerRef{Type: pl.ContainerType, Index: pl.ContainerIndex}]; ok {
			row.Bias = bias
		}
		if pkg, ok := packageByPiece[piece.ID]; ok {
			row.PackageCode = pkg.Code
			row.PackageCodeStatus = pkg.Status
		}
		rows = append(rows, row)
	}

	rank := func(containerType string) int {
		if r, ok := orderMap[containerType]; ok {
			return r
		}
		return unrankedOrder
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if ra, rb := rank(a.ContainerType), rank(b.ContainerType); ra != rb {
			return ra < rb
		}
		if a.ContainerIndex != b.ContainerIndex {
			return a.ContainerIndex < b.ContainerIndex
		}
		if c := a.Z.Cmp(b.Z); c != 0 {
			return c < 0
		}
		if c := a.Y.Cmp(b.Y); c != 0 {
			return c < 0
		}
		if c := a.X.Cmp(b.X); c != 0 {
			return c < 0
		}
		return a.PieceID < b.PieceID
	})
	return rows
}

// OogByPiece indexes OOG results by piece id for joining.
func OogByPiece(oogResults []model.PieceOog) map[string]model.OogResult {
	lookup := make(map[string]model.OogResult, len(oogResults))
	for _, po := range oogResults {
		lookup[po.Piece.ID] = po.Result
	}
	return lookup
}
