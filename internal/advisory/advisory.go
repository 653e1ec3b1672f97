// Package advisory turns out-of-gauge evaluations into operational guidance:
// which special container to book, what the gross weights will be once tare
// is added, and what trucking arrangements the cargo calls for.
package advisory

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kyo563/container-loading-planner/internal/model"
)

// TareWeightKg holds nominal tare weights per container type, used for gross
// weight estimation. Unknown types count as zero tare.
var TareWeightKg = map[string]decimal.Decimal{
	"20GP": decimal.NewFromInt(2300),
	"40GP": decimal.NewFromInt(3800),
	"40HC": decimal.NewFromInt(3900),
	"OT":   decimal.NewFromInt(4200),
	"FR":   decimal.NewFromInt(5500),
	"RF":   decimal.NewFromInt(4800),
}

// reeferKeywords trigger a reefer recommendation when found in the cargo
// description or package text.
var reeferKeywords = []string{"reefer", "refrigerated", "frozen", "cold", "冷凍", "冷蔵", "rf"}

var maxGeneralGrossKg = decimal.NewFromInt(30000)

// RecommendSpecialContainer picks the special container type for one
// out-of-gauge piece. Reefer keywords win over geometry; otherwise excess
// width or length calls for a flat rack and excess height for an open top.
func RecommendSpecialContainer(piece model.Piece, oog model.OogResult) string {
	text := strings.ToLower(piece.Desc + " " + piece.PackageText)
	for _, keyword := range reeferKeywords {
		if strings.Contains(text, keyword) {
			return "RF"
		}
	}
	if oog.OverWidth.IsPositive() || oog.OverLength.IsPositive() {
		return "FR"
	}
	if oog.OverHeight.IsPositive() {
		return "OT"
	}
	return "20GP"
}

// SummarizeSpecialNeeds tallies recommended special container types over all
// flagged OOG results.
func SummarizeSpecialNeeds(oogResults []model.PieceOog) map[string]int {
	counts := make(map[string]int)
	for _, po := range oogResults {
		if !po.Result.Flag {
			continue
		}
		counts[RecommendSpecialContainer(po.Piece, po.Result)]++
	}
	return counts
}

// EstimateGrossWeight estimates gross weight per container instance: cargo
// weight plus nominal tare. Packed instances are keyed "TYPE-N"; recommended
// special containers get synthetic "TYPE-SN" entries, each assigned one
// flagged piece in encounter order (surplus instances carry tare only).
func EstimateGrossWeight(placements []model.Placement, specialCounts map[string]int, oogResults []model.PieceOog) map[string]decimal.Decimal {
	result := make(map[string]decimal.Decimal)

	cargoByContainer := make(map[string]decimal.Decimal)
	for _, pl := range placements {
		key := fmt.Sprintf("%s-%d", pl.ContainerType, pl.ContainerIndex)
		cargoByContainer[key] = cargoByContainer[key].Add(pl.Piece.WeightKg)
	}
	for key, cargo := range cargoByContainer {
		ctype := key[:strings.IndexByte(key, '-')]
		result[key] = cargo.Add(TareWeightKg[ctype])
	}

	specialCargo := make(map[string][]decimal.Decimal)
	for _, po := range oogResults {
		if !po.Result.Flag {
			continue
		}
		ctype := RecommendSpecialContainer(po.Piece, po.Result)
		specialCargo[ctype] = append(specialCargo[ctype], po.Piece.WeightKg)
	}
	for ctype, count := range specialCounts {
		tare := TareWeightKg[ctype]
		weights := specialCargo[ctype]
		for i := 1; i <= count; i++ {
			cargo := decimal.Zero
			if i <= len(weights) {
				cargo = weights[i-1]
			}
			result[fmt.Sprintf("%s-S%d", ctype, i)] = tare.Add(cargo)
		}
	}
	return result
}

// SuggestTruckRequirement composes transport notes from the worst overflow
// amounts and the heaviest gross weight of the plan.
func SuggestTruckRequirement(grossKg, maxOverWidthCm, maxOverHeightCm decimal.Decimal) string {
	var notes []string
	if maxOverHeightCm.IsPositive() {
		notes = append(notes, "height overflow: low-bed chassis recommended")
	}
	if maxOverWidthCm.IsPositive() {
		notes = append(notes, "width overflow: confirm oversize transport permit in advance")
	}
	if grossKg.GreaterThan(maxGeneralGrossKg) {
		notes = append(notes, "heavy gross weight: trailer with 3 or more axles recommended")
	}
	if len(notes) == 0 {
		return "transportable on a general marine container chassis"
	}
	return strings.Join(notes, " / ")
}
