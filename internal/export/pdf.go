// Package export renders loading plans to shareable files: a summary PDF of
// the plan and QR-coded piece labels for the loading crew.
package export

import (
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"

	"github.com/kyo563/container-loading-planner/internal/model"
	"github.com/kyo563/container-loading-planner/internal/report"
)

// Page layout constants (A4 portrait in mm).
const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 10.0
	lineHeight   = 5.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// WritePlanPDF renders the loading plan: one page per container instance
// with its placement table and bias line, followed by a summary page listing
// totals, unplaced pieces and out-of-gauge cargo.
func WritePlanPDF(path, title string, rows []report.Row, unplaced []model.Piece, oogResults []model.PieceOog) error {
	if len(rows) == 0 && len(unplaced) == 0 {
		return fmt.Errorf("no placements to export")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, marginBottom)

	// Group rows per container instance, preserving report order.
	type containerKey struct {
		label string
	}
	var order []containerKey
	grouped := make(map[containerKey][]report.Row)
	for _, row := range rows {
		key := containerKey{label: row.ContainerLabel}
		if _, seen := grouped[key]; !seen {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], row)
	}

	for _, key := range order {
		renderContainerPage(pdf, key.label, grouped[key])
	}
	renderSummaryPage(pdf, title, rows, unplaced, oogResults)

	return pdf.OutputFileAndClose(path)
}

// renderContainerPage draws one container instance's placements.
func renderContainerPage(pdf *fpdf.Fpdf, label string, rows []report.Row) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(contentWidth, headerHeight, fmt.Sprintf("Container %s", label), "", 1, "L", false, 0, "")

	weight := decimal.Zero
	for _, row := range rows {
		weight = weight.Add(row.WeightKg)
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(marginLeft)
	pdf.CellFormat(contentWidth, lineHeight,
		fmt.Sprintf("Pieces: %d | Cargo weight: %s kg", len(rows), weight.String()),
		"", 1, "L", false, 0, "")
	bias := rows[0].Bias
	biasLine := fmt.Sprintf("Bias: offset X %s%% / Y %s%%, front-rear %s%%, left-right %s%%",
		bias.OffsetXPct.String(), bias.OffsetYPct.String(),
		bias.FrontRearDiffPct.String(), bias.LeftRightDiffPct.String())
	if bias.Warn {
		biasLine += " [WARN " + bias.ReasonString() + "]"
	}
	pdf.SetX(marginLeft)
	pdf.CellFormat(contentWidth, lineHeight, biasLine, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// Table header
	colWidths := []float64{32, 48, 34, 34, 20, 12}
	headers := []string{"Piece", "Description", "Position (x,y,z)", "Oriented LxWxH", "Weight", "Rot"}
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetX(marginLeft)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], lineHeight, h, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, row := range rows {
		pdf.SetX(marginLeft)
		cells := []string{
			row.PieceID,
			row.Desc,
			fmt.Sprintf("%s, %s, %s", row.X.String(), row.Y.String(), row.Z.String()),
			fmt.Sprintf("%s x %s x %s", row.OrientLength.String(), row.OrientWidth.String(), row.OrientHeight.String()),
			row.WeightKg.String(),
			row.RotationKey,
		}
		for i, cell := range cells {
			pdf.CellFormat(colWidths[i], lineHeight, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// renderSummaryPage draws plan totals, unplaced pieces and OOG advisories.
func renderSummaryPage(pdf *fpdf.Fpdf, title string, rows []report.Row, unplaced []model.Piece, oogResults []model.PieceOog) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(contentWidth, headerHeight, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetX(marginLeft)
	pdf.CellFormat(contentWidth, lineHeight,
		fmt.Sprintf("Placed pieces: %d | Unplaced pieces: %d", len(rows), len(unplaced)),
		"", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(unplaced) > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetX(marginLeft)
		pdf.CellFormat(contentWidth, lineHeight, "Unplaced", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, piece := range unplaced {
			pdf.SetX(marginLeft)
			pdf.CellFormat(contentWidth, lineHeight,
				fmt.Sprintf("%s  %s  (%s x %s x %s cm, %s kg)",
					piece.ID, piece.Desc,
					piece.Length.String(), piece.Width.String(), piece.Height.String(),
					piece.WeightKg.String()),
				"", 1, "L", false, 0, "")
		}
		pdf.Ln(2)
	}

	flagged := 0
	for _, po := range oogResults {
		if po.Result.Flag {
			flagged++
		}
	}
	if flagged > 0 {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetX(marginLeft)
		pdf.CellFormat(contentWidth, lineHeight, "Out-of-gauge cargo", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, po := range oogResults {
			if !po.Result.Flag {
				continue
			}
			pdf.SetX(marginLeft)
			pdf.CellFormat(contentWidth, lineHeight,
				fmt.Sprintf("%s  over L/W/H: %s / %s / %s cm  suggestion: %s",
					po.Piece.ID,
					po.Result.OverLength.String(), po.Result.OverWidth.String(), po.Result.OverHeight.String(),
					po.Result.Suggestion),
				"", 1, "L", false, 0, "")
		}
	}
}
