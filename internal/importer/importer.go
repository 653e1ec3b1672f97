// Package importer ingests cargo manifests from CSV and Excel files. It
// supports automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition; invalid rows are collected as errors
// without aborting the import.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/kyo563/container-loading-planner/internal/model"
)

// Input bounds. Rows beyond these limits are rejected with a row error.
var (
	MaxDimCm    = decimal.NewFromInt(20000)
	MaxWeightKg = decimal.NewFromInt(100000)
)

// MaxQty caps the quantity expansion of a single row.
const MaxQty = 10000

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Rows     []model.CargoRow
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	ID           int
	Desc         int
	Qty          int
	Length       int
	Width        int
	Height       int
	Weight       int
	PackageText  int
	Rotate       int
	Stackable    int
	MaxStackLoad int
	Incompatible int
}

// headerAliases maps canonical column roles to their accepted aliases (all
// lowercase).
var headerAliases = map[string][]string{
	"id":           {"id", "cargo id", "cargo_id", "item", "item id", "no"},
	"desc":         {"desc", "description", "name", "cargo", "goods"},
	"qty":          {"qty", "quantity", "count", "pcs", "pieces"},
	"length":       {"l_cm", "length", "length_cm", "l", "len"},
	"width":        {"w_cm", "width", "width_cm", "w"},
	"height":       {"h_cm", "height", "height_cm", "h"},
	"weight":       {"weight_kg", "weight", "kg", "unit weight"},
	"package":      {"package_text", "package", "package style", "packing", "pkg"},
	"rotate":       {"rotate_allowed", "rotate", "rotatable", "can rotate"},
	"stackable":    {"stackable", "stack", "can stack"},
	"maxstack":     {"max_stack_load_kg", "max stack load", "max top load", "top load kg"},
	"incompatible": {"incompatible_with_ids", "incompatible", "incompatible with", "segregate from"},
}

// DetectCSVDelimiter reads the file content and determines the most likely
// CSV delimiter. It tries comma, semicolon, tab, and pipe; the delimiter that
// produces the most consistent multi-column row shape wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping. Matching
// is case-insensitive against the known aliases for each role. When no header
// is recognized it falls back to the canonical positional layout
// (id, desc, qty, L, W, H, weight, ...) and reports false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		ID: -1, Desc: -1, Qty: -1, Length: -1, Width: -1, Height: -1,
		Weight: -1, PackageText: -1, Rotate: -1, Stackable: -1,
		MaxStackLoad: -1, Incompatible: -1,
	}

	assign := func(role string, i int) {
		switch role {
		case "id":
			if mapping.ID == -1 {
				mapping.ID = i
			}
		case "desc":
			if mapping.Desc == -1 {
				mapping.Desc = i
			}
		case "qty":
			if mapping.Qty == -1 {
				mapping.Qty = i
			}
		case "length":
			if mapping.Length == -1 {
				mapping.Length = i
			}
		case "width":
			if mapping.Width == -1 {
				mapping.Width = i
			}
		case "height":
			if mapping.Height == -1 {
				mapping.Height = i
			}
		case "weight":
			if mapping.Weight == -1 {
				mapping.Weight = i
			}
		case "package":
			if mapping.PackageText == -1 {
				mapping.PackageText = i
			}
		case "rotate":
			if mapping.Rotate == -1 {
				mapping.Rotate = i
			}
		case "stackable":
			if mapping.Stackable == -1 {
				mapping.Stackable = i
			}
		case "maxstack":
			if mapping.MaxStackLoad == -1 {
				mapping.MaxStackLoad = i
			}
		case "incompatible":
			if mapping.Incompatible == -1 {
				mapping.Incompatible = i
			}
		}
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					assign(role, i)
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{
			ID: 0, Desc: 1, Qty: 2, Length: 3, Width: 4, Height: 5,
			Weight: 6, PackageText: 7, Rotate: 8, Stackable: 9,
			MaxStackLoad: 10, Incompatible: 11,
		}, false
	}

	return mapping, true
}

// getCell safely retrieves a trimmed cell value by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseBool recognizes common truthy/falsy spellings and falls back to the
// given default for anything else.
func parseBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	default:
		return def
	}
}

// parseRow extracts a CargoRow from one data row. It returns the row, an
// error message, and a warning message; an empty error means the row is
// valid.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.CargoRow, string, string) {
	id := getCell(row, mapping.ID)
	if id == "" {
		return model.CargoRow{}, fmt.Sprintf("%s: missing cargo id", rowLabel), ""
	}

	qtyStr := getCell(row, mapping.Qty)
	qty, err := strconv.Atoi(qtyStr)
	if err != nil {
		return model.CargoRow{}, fmt.Sprintf("%s: invalid quantity %q", rowLabel, qtyStr), ""
	}
	if qty <= 0 {
		return model.CargoRow{}, fmt.Sprintf("%s: quantity must be positive", rowLabel), ""
	}
	if qty > MaxQty {
		return model.CargoRow{}, fmt.Sprintf("%s: quantity exceeds limit of %d", rowLabel, MaxQty), ""
	}

	dims := make(map[string]decimal.Decimal, 3)
	for _, col := range []struct {
		name string
		idx  int
	}{
		{"length", mapping.Length},
		{"width", mapping.Width},
		{"height", mapping.Height},
	} {
		raw := getCell(row, col.idx)
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return model.CargoRow{}, fmt.Sprintf("%s: invalid %s %q", rowLabel, col.name, raw), ""
		}
		value = model.Ceil3(value)
		if !value.IsPositive() {
			return model.CargoRow{}, fmt.Sprintf("%s: %s must be positive", rowLabel, col.name), ""
		}
		if value.GreaterThan(MaxDimCm) {
			return model.CargoRow{}, fmt.Sprintf("%s: %s exceeds limit of %s cm", rowLabel, col.name, MaxDimCm), ""
		}
		dims[col.name] = value
	}

	weightStr := getCell(row, mapping.Weight)
	weight, err := decimal.NewFromString(weightStr)
	if err != nil {
		return model.CargoRow{}, fmt.Sprintf("%s: invalid weight %q", rowLabel, weightStr), ""
	}
	if !weight.IsPositive() {
		return model.CargoRow{}, fmt.Sprintf("%s: weight must be positive", rowLabel), ""
	}
	if weight.GreaterThan(MaxWeightKg) {
		return model.CargoRow{}, fmt.Sprintf("%s: weight exceeds limit of %s kg", rowLabel, MaxWeightKg), ""
	}

	var warning string
	var maxStackLoad *decimal.Decimal
	if raw := getCell(row, mapping.MaxStackLoad); raw != "" {
		value, err := decimal.NewFromString(raw)
		if err != nil || value.IsNegative() {
			warning = fmt.Sprintf("%s: ignoring invalid max stack load %q", rowLabel, raw)
		} else {
			maxStackLoad = &value
		}
	}

	var incompatible []string
	for _, part := range strings.Split(getCell(row, mapping.Incompatible), ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			incompatible = append(incompatible, trimmed)
		}
	}

	cargo := model.CargoRow{
		ID:               id,
		Desc:             getCell(row, mapping.Desc),
		Qty:              qty,
		Length:           dims["length"],
		Width:            dims["width"],
		Height:           dims["height"],
		WeightKg:         weight,
		PackageText:      getCell(row, mapping.PackageText),
		RotateAllowed:    parseBool(getCell(row, mapping.Rotate), true),
		Stackable:        parseBool(getCell(row, mapping.Stackable), true),
		MaxStackLoadKg:   maxStackLoad,
		IncompatibleWith: incompatible,
	}
	return cargo, "", warning
}

// isEmptyRow reports whether the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// importFromRows parses tabular data that may or may not start with a header
// row.
func importFromRows(records [][]string, rowLabel string, warnings []string) ImportResult {
	result := ImportResult{Warnings: warnings}

	mapping, hasHeader := DetectColumns(records[0])
	start := 0
	if hasHeader {
		start = 1
	} else {
		result.Warnings = append(result.Warnings, "No header row detected, assuming positional columns")
	}

	for i := start; i < len(records); i++ {
		row := records[i]
		if isEmptyRow(row) {
			continue
		}
		label := fmt.Sprintf("%s %d", rowLabel, i+1)
		cargo, errMsg, warning := parseRow(row, mapping, label)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Rows = append(result.Rows, cargo)
	}

	return result
}

// ImportCSV imports cargo rows from a CSV file, auto-detecting the delimiter.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open file: %v", err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "file is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("detected %s delimiter", delimName))
	}

	return importCSVData(bytes.NewReader(data), delimiter, result.Warnings)
}

// ImportCSVFromReader imports cargo rows from a CSV reader with a known
// delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	return importCSVData(reader, delimiter, nil)
}

func importCSVData(reader io.Reader, delimiter rune, warnings []string) ImportResult {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return ImportResult{Warnings: warnings, Errors: []string{fmt.Sprintf("cannot read CSV: %v", err)}}
	}
	if len(records) == 0 {
		return ImportResult{Warnings: warnings, Errors: []string{"file is empty"}}
	}

	return importFromRows(records, "line", warnings)
}

// ImportExcel imports cargo rows from the first sheet of an .xlsx workbook.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("cannot read Excel data: %v", err))
		return result
	}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Excel sheet is empty")
		return result
	}

	return importFromRows(rows, "row", nil)
}

// ImportFile dispatches on the file extension: .xlsx goes through excelize,
// everything else is treated as delimited text.
func ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	default:
		return ImportCSV(path)
	}
}
