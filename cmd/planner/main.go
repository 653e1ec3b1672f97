// Command planner computes container loading plans from a cargo manifest:
// estimate answers how many containers of which type the cargo needs,
// validate checks whether a fixed set of containers can hold it.
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kingpin/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kyo563/container-loading-planner/internal/advisory"
	"github.com/kyo563/container-loading-planner/internal/catalog"
	"github.com/kyo563/container-loading-planner/internal/engine"
	"github.com/kyo563/container-loading-planner/internal/export"
	"github.com/kyo563/container-loading-planner/internal/importer"
	"github.com/kyo563/container-loading-planner/internal/logging"
	"github.com/kyo563/container-loading-planner/internal/model"
	"github.com/kyo563/container-loading-planner/internal/naccs"
	"github.com/kyo563/container-loading-planner/internal/report"
)

func main() {
	app := kingpin.New("planner", "Container loading planner - estimates container needs and validates loading plans")

	catalogFile := app.Flag("catalog", "Path to YAML container catalog (built-in defaults when omitted)").String()
	packageMaster := app.Flag("package-master", "Path to package code master CSV (alias,code)").String()
	referenceType := app.Flag("reference", "Reference container type for out-of-gauge checks").Default("40HC").String()
	biasThreshold := app.Flag("bias-threshold", "Bias warning threshold in percent").Default("60").String()
	maxCGX := app.Flag("max-cg-x", "Cap on center-of-gravity offset along the length, percent").String()
	maxCGY := app.Flag("max-cg-y", "Cap on center-of-gravity offset across the width, percent").String()
	symmetric := app.Flag("symmetric-incompatibility", "Treat cargo incompatibility as a symmetric relation").Bool()
	outFile := app.Flag("out", "Write the placement report CSV to this path").String()
	pdfFile := app.Flag("pdf", "Write a plan summary PDF to this path").String()
	labelsFile := app.Flag("labels", "Write QR piece labels PDF to this path").String()
	verbose := app.Flag("verbose", "Enable debug logging").Short('v').Bool()

	estimateCmd := app.Command("estimate", "Choose container types and counts for the cargo")
	estimateCargo := estimateCmd.Arg("cargo", "Cargo manifest (CSV or XLSX)").Required().String()
	objective := estimateCmd.Flag("objective", "Optimization objective: MIN_CONTAINERS or MIN_COST").Default("MIN_CONTAINERS").String()
	strategy := estimateCmd.Flag("strategy", "Packing strategy: SINGLE_TYPE or MULTI_TYPE").Default("SINGLE_TYPE").String()

	validateCmd := app.Command("validate", "Check whether a fixed fleet holds the cargo")
	validateCargo := validateCmd.Arg("cargo", "Cargo manifest (CSV or XLSX)").Required().String()
	containerType := validateCmd.Flag("type", "Container type to validate against").Required().String()
	containerCount := validateCmd.Flag("count", "Number of container instances").Required().Int()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	logger, err := logging.New(*verbose)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	specs, err := loadCatalog(*catalogFile)
	if err != nil {
		logger.Fatal("failed to load container catalog", zap.Error(err))
	}

	threshold, err := decimal.NewFromString(*biasThreshold)
	if err != nil {
		logger.Fatal("invalid bias threshold", zap.String("value", *biasThreshold))
	}

	constraints := model.PackingConstraints{SymmetricIncompatibility: *symmetric}
	if constraints.MaxCGOffsetXPct, err = optionalDecimal(*maxCGX); err != nil {
		logger.Fatal("invalid --max-cg-x", zap.String("value", *maxCGX))
	}
	if constraints.MaxCGOffsetYPct, err = optionalDecimal(*maxCGY); err != nil {
		logger.Fatal("invalid --max-cg-y", zap.String("value", *maxCGY))
	}

	reference, ok := catalog.ByType(specs, *referenceType)
	if !ok {
		logger.Fatal("reference type not in catalog", zap.String("type", *referenceType))
	}

	planner := engine.NewPlanner(logger)

	switch command {
	case estimateCmd.FullCommand():
		pieces := loadPieces(*estimateCargo, logger)
		result, err := planner.Estimate(engine.EstimateRequest{
			Pieces:           pieces,
			CandidateSpecs:   catalog.Standards(specs),
			ReferenceSpec:    reference,
			BiasThresholdPct: threshold,
			Objective:        engine.Objective(*objective),
			Strategy:         engine.Strategy(*strategy),
			Constraints:      constraints,
		})
		if err != nil {
			logger.Fatal("estimate failed", zap.Error(err))
		}
		logger.Info("estimate complete",
			zap.String("plan_id", result.PlanID),
			zap.Any("summary_by_type", result.SummaryByType),
			zap.Int("placed", len(result.Placements)),
			zap.Int("unplaced", len(result.Unplaced)))
		logAdvisories(logger, result.Placements, result.OogResults)
		emit(logger, specs, *packageMaster, *outFile, *pdfFile, *labelsFile,
			"Loading plan (estimate)", result.Placements, result.Unplaced, result.OogResults, result.BiasByContainer)

	case validateCmd.FullCommand():
		spec, ok := catalog.ByType(specs, *containerType)
		if !ok {
			logger.Fatal("container type not in catalog", zap.String("type", *containerType))
		}
		pieces := loadPieces(*validateCargo, logger)
		result, err := planner.Validate(engine.ValidateRequest{
			Pieces:           pieces,
			Spec:             spec,
			Count:            *containerCount,
			BiasThresholdPct: threshold,
			ReferenceSpec:    reference,
			Constraints:      constraints,
		})
		if err != nil {
			logger.Fatal("validate failed", zap.Error(err))
		}
		fits := len(result.Unplaced) == 0
		logger.Info("validate complete",
			zap.String("plan_id", result.PlanID),
			zap.Bool("fits", fits),
			zap.Int("placed", len(result.Placements)),
			zap.Int("unplaced", len(result.Unplaced)))
		logAdvisories(logger, result.Placements, result.OogResults)
		emit(logger, specs, *packageMaster, *outFile, *pdfFile, *labelsFile,
			fmt.Sprintf("Loading plan (validate %dx %s)", *containerCount, *containerType),
			result.Placements, result.Unplaced, result.OogResults, result.BiasByContainer)
		if !fits {
			os.Exit(1)
		}
	}
}

// loadCatalog loads the container catalog file or the built-in defaults.
func loadCatalog(path string) ([]model.ContainerSpec, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

// loadPieces imports a cargo manifest and expands it into pieces. Row errors
// are fatal: a plan over a partial manifest would be silently wrong.
func loadPieces(path string, logger *zap.Logger) []model.Piece {
	imported := importer.ImportFile(path)
	for _, warning := range imported.Warnings {
		logger.Warn("import warning", zap.String("detail", warning))
	}
	if len(imported.Errors) > 0 {
		for _, errMsg := range imported.Errors {
			logger.Error("import error", zap.String("detail", errMsg))
		}
		logger.Fatal("cargo manifest rejected", zap.Int("errors", len(imported.Errors)))
	}
	pieces := model.ExpandPieces(imported.Rows)
	logger.Info("cargo loaded",
		zap.String("file", path),
		zap.Int("rows", len(imported.Rows)),
		zap.Int("pieces", len(pieces)))
	return pieces
}

// logAdvisories reports special-container needs and trucking guidance for
// the out-of-gauge portion of the plan.
func logAdvisories(logger *zap.Logger, placements []model.Placement, oogResults []model.PieceOog) {
	specialNeeds := advisory.SummarizeSpecialNeeds(oogResults)
	if len(specialNeeds) == 0 {
		return
	}
	gross := advisory.EstimateGrossWeight(placements, specialNeeds, oogResults)
	maxGross := decimal.Zero
	for _, g := range gross {
		maxGross = decimal.Max(maxGross, g)
	}
	maxOverW := decimal.Zero
	maxOverH := decimal.Zero
	for _, po := range oogResults {
		maxOverW = decimal.Max(maxOverW, po.Result.OverWidth)
		maxOverH = decimal.Max(maxOverH, po.Result.OverHeight)
	}
	logger.Info("special container advisory",
		zap.Any("needs", specialNeeds),
		zap.String("max_gross_kg", maxGross.String()),
		zap.String("trucking", advisory.SuggestTruckRequirement(maxGross, maxOverW, maxOverH)))
}

// emit writes the requested report artifacts.
func emit(logger *zap.Logger, specs []model.ContainerSpec, packageMasterPath, outFile, pdfFile, labelsFile, title string,
	placements []model.Placement, unplaced []model.Piece, oogResults []model.PieceOog,
	bias map[model.ContainerRef]model.BiasMetrics) {

	packageLookup := map[string]naccs.Result{}
	if packageMasterPath != "" {
		data, err := os.ReadFile(packageMasterPath)
		if err != nil {
			logger.Fatal("failed to read package master", zap.Error(err))
		}
		mapping, err := naccs.LoadMaster(data)
		if err != nil {
			logger.Fatal("failed to parse package master", zap.Error(err))
		}
		for _, pl := range placements {
			packageLookup[pl.Piece.ID] = naccs.Map(pl.Piece.PackageText, mapping)
		}
	}

	rows := report.BuildRows(placements, report.OogByPiece(oogResults), bias, catalog.OrderMap(specs), packageLookup)

	if outFile != "" {
		if err := writeReportCSV(outFile, rows); err != nil {
			logger.Fatal("failed to write report CSV", zap.Error(err))
		}
		logger.Info("report written", zap.String("file", outFile))
	}
	if pdfFile != "" {
		if err := export.WritePlanPDF(pdfFile, title, rows, unplaced, oogResults); err != nil {
			logger.Fatal("failed to write plan PDF", zap.Error(err))
		}
		logger.Info("plan PDF written", zap.String("file", pdfFile))
	}
	if labelsFile != "" {
		if err := export.WritePieceLabels(labelsFile, placements); err != nil {
			logger.Fatal("failed to write labels PDF", zap.Error(err))
		}
		logger.Info("labels PDF written", zap.String("file", labelsFile))
	}
}

// writeReportCSV writes one row per placement in display order.
func writeReportCSV(path string, rows []report.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"container_label", "container_type", "container_index", "piece_id", "desc",
		"package_text", "package_code", "package_code_status",
		"L_cm", "W_cm", "H_cm", "weight_kg", "m3",
		"x_cm", "y_cm", "z_cm", "orient_L_cm", "orient_W_cm", "orient_H_cm", "rotation_key",
		"oog_flag", "oog_suggestion", "bias_warn", "bias_reason",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.ContainerLabel, row.ContainerType, strconv.Itoa(row.ContainerIndex), row.PieceID, row.Desc,
			row.PackageText, row.PackageCode, row.PackageCodeStatus,
			row.Length.String(), row.Width.String(), row.Height.String(), row.WeightKg.String(), row.VolumeM3.String(),
			row.X.String(), row.Y.String(), row.Z.String(),
			row.OrientLength.String(), row.OrientWidth.String(), row.OrientHeight.String(), row.RotationKey,
			strconv.FormatBool(row.Oog.Flag), row.Oog.Suggestion,
			strconv.FormatBool(row.Bias.Warn), row.Bias.ReasonString(),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// optionalDecimal parses a flag value that may be empty.
func optionalDecimal(raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
