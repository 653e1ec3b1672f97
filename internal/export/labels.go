package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/kyo563/container-loading-planner/internal/model"
)

// LabelInfo holds the data encoded into each piece label's QR code.
type LabelInfo struct {
	PieceID        string `json:"piece_id"`
	Desc           string `json:"desc"`
	ContainerType  string `json:"container_type"`
	ContainerIndex int    `json:"container_index"`
	X              string `json:"x_cm"`
	Y              string `json:"y_cm"`
	Z              string `json:"z_cm"`
	RotationKey    string `json:"rotation_key"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows
// per page). Each label cell is approximately 66.7mm x 25.4mm on US Letter.
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// WritePieceLabels generates a PDF of QR-coded labels, one per placement.
// Each label carries the piece id, its destination container and position,
// with the same data encoded as JSON in the QR code.
func WritePieceLabels(path string, placements []model.Placement) error {
	if len(placements) == 0 {
		return fmt.Errorf("no placements to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, pl := range placements {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		info := LabelInfo{
			PieceID:        pl.Piece.ID,
			Desc:           pl.Piece.Desc,
			ContainerType:  pl.ContainerType,
			ContainerIndex: pl.ContainerIndex,
			X:              pl.X.String(),
			Y:              pl.Y.String(),
			Z:              pl.Z.String(),
			RotationKey:    pl.RotationKey,
		}
		if err := renderLabel(pdf, x, y, info); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", info.PieceID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Light border as a cutting guide.
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s_%s_%d", info.PieceID, info.ContainerType, info.ContainerIndex)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4, info.PieceID, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, info.Desc, "", 0, "L", false, 0, "")
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%s #%d", info.ContainerType, info.ContainerIndex), "", 0, "L", false, 0, "")
	pdf.SetXY(textX, y+labelPadding+13)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("pos %s / %s / %s", info.X, info.Y, info.Z), "", 0, "L", false, 0, "")

	return nil
}
