package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kyo563/container-loading-planner/internal/model"
)

// Objective selects what an estimate minimizes. Any value other than
// MIN_CONTAINERS is scored by cost, with unset costs counting as zero.
type Objective string

const (
	ObjectiveMinContainers Objective = "MIN_CONTAINERS"
	ObjectiveMinCost       Objective = "MIN_COST"
)

// Strategy selects how candidate specs are combined. Any value other than
// MULTI_TYPE runs the single-type selection.
type Strategy string

const (
	StrategySingleType Strategy = "SINGLE_TYPE"
	StrategyMultiType  Strategy = "MULTI_TYPE"
)

// Planner orchestrates OOG triage, piece ordering and packing runs across
// candidate container specs.
type Planner struct {
	logger *zap.Logger
}

// NewPlanner creates a planner. A nil logger disables progress logging.
func NewPlanner(logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{logger: logger}
}

// EstimateRequest asks how many containers of which type the cargo needs.
type EstimateRequest struct {
	Pieces           []model.Piece
	CandidateSpecs   []model.ContainerSpec
	ReferenceSpec    model.ContainerSpec
	BiasThresholdPct decimal.Decimal
	Objective        Objective
	Strategy         Strategy
	Constraints      model.PackingConstraints
}

// ValidateRequest asks whether a fixed fleet of count instances of one spec
// holds the cargo.
type ValidateRequest struct {
	Pieces           []model.Piece
	Spec             model.ContainerSpec
	Count            int
	BiasThresholdPct decimal.Decimal
	ReferenceSpec    model.ContainerSpec
	Constraints      model.PackingConstraints
}

// SortPieces orders pieces descending by (max dimension, footprint area,
// weight) so the greedy packer sees hard-to-fit pieces first. The input is
// not modified.
func SortPieces(pieces []model.Piece) []model.Piece {
	sorted := make([]model.Piece, len(pieces))
	copy(sorted, pieces)
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].MaxDim().Cmp(sorted[j].MaxDim()); c != 0 {
			return c > 0
		}
		if c := sorted[i].Footprint().Cmp(sorted[j].Footprint()); c != 0 {
			return c > 0
		}
		return sorted[i].WeightKg.Cmp(sorted[j].WeightKg) > 0
	})
	return sorted
}

// Estimate triages out-of-gauge pieces against the reference spec, packs the
// in-gauge remainder under the requested strategy and objective, and scores
// the outcome per container instance.
func (p *Planner) Estimate(req EstimateRequest) (model.EstimateResult, error) {
	for _, spec := range req.CandidateSpecs {
		if !spec.Packable() {
			return model.EstimateResult{}, packabilityError(spec)
		}
	}

	var (
		oogResults []model.PieceOog
		oogPieces  []model.Piece
		inGauge    []model.Piece
	)
	for _, piece := range req.Pieces {
		oog, err := EvaluateOOG(piece, req.ReferenceSpec)
		if err != nil {
			return model.EstimateResult{}, err
		}
		if oog.Flag {
			oogResults = append(oogResults, model.PieceOog{Piece: piece, Result: oog})
			oogPieces = append(oogPieces, piece)
		} else {
			inGauge = append(inGauge, piece)
		}
	}
	sorted := SortPieces(inGauge)

	var (
		loads    []model.ContainerLoad
		leftover []model.Piece
		err      error
	)
	if req.Strategy == StrategyMultiType {
		loads, leftover, err = p.packMultiType(req.CandidateSpecs, sorted, req.Objective, req.Constraints)
	} else {
		loads, leftover, err = p.packSingleType(req.CandidateSpecs, sorted, req.Objective, req.Constraints)
	}
	if err != nil {
		return model.EstimateResult{}, err
	}

	bias, err := biasByContainer(loads, req.BiasThresholdPct)
	if err != nil {
		return model.EstimateResult{}, err
	}

	summary := make(map[string]int)
	var placements []model.Placement
	for _, load := range loads {
		summary[load.Spec.Type]++
		placements = append(placements, load.Placements...)
	}

	unplaced := make([]model.Piece, 0, len(oogPieces)+len(leftover))
	unplaced = append(unplaced, oogPieces...)
	unplaced = append(unplaced, leftover...)

	return model.EstimateResult{
		PlanID:          uuid.NewString(),
		Placements:      placements,
		Unplaced:        unplaced,
		OogResults:      oogResults,
		SummaryByType:   summary,
		BiasByContainer: bias,
	}, nil
}

// Validate packs every piece, out-of-gauge or not, into at most count
// instances of one spec. OOG status is evaluated for all pieces but used for
// reporting only.
func (p *Planner) Validate(req ValidateRequest) (model.ValidateResult, error) {
	if req.Count < 1 {
		return model.ValidateResult{}, ErrInvalidCount
	}

	sorted := SortPieces(req.Pieces)
	result, err := Pack(req.Spec, sorted, req.Count, req.Constraints)
	if err != nil {
		return model.ValidateResult{}, err
	}

	bias, err := biasByContainer(result.Loads, req.BiasThresholdPct)
	if err != nil {
		return model.ValidateResult{}, err
	}

	oogResults := make([]model.PieceOog, 0, len(req.Pieces))
	for _, piece := range req.Pieces {
		oog, err := EvaluateOOG(piece, req.ReferenceSpec)
		if err != nil {
			return model.ValidateResult{}, err
		}
		oogResults = append(oogResults, model.PieceOog{Piece: piece, Result: oog})
	}

	var placements []model.Placement
	for _, load := range result.Loads {
		placements = append(placements, load.Placements...)
	}

	return model.ValidateResult{
		PlanID:          uuid.NewString(),
		Placements:      placements,
		Unplaced:        result.Unplaced,
		OogResults:      oogResults,
		BiasByContainer: bias,
	}, nil
}

// candidateOutcome is one candidate spec's full packing run.
type candidateOutcome struct {
	loads    []model.ContainerLoad
	unplaced []model.Piece
	err      error
}

// packSingleType packs the whole piece list once per candidate spec and keeps
// the candidate with the strictly lowest score. Candidate runs are
// independent and fan out concurrently; the merge walks candidates in their
// supplied order so equal scores resolve to the earliest candidate, exactly
// as a sequential loop would.
func (p *Planner) packSingleType(specs []model.ContainerSpec, pieces []model.Piece, objective Objective, constraints model.PackingConstraints) ([]model.ContainerLoad, []model.Piece, error) {
	outcomes := make([]candidateOutcome, len(specs))
	var wg sync.WaitGroup
	for i, spec := range specs {
		wg.Add(1)
		go func(i int, spec model.ContainerSpec) {
			defer wg.Done()
			result, err := Pack(spec, pieces, 0, constraints)
			outcomes[i] = candidateOutcome{loads: result.Loads, unplaced: result.Unplaced, err: err}
		}(i, spec)
	}
	wg.Wait()

	var (
		best      candidateOutcome
		bestScore decimal.Decimal
		found     bool
	)
	for i, outcome := range outcomes {
		if outcome.err != nil {
			return nil, nil, outcome.err
		}
		count := decimal.NewFromInt(int64(len(outcome.loads)))
		score := count
		if objective != ObjectiveMinContainers {
			score = specs[i].CostOrZero().Mul(count)
		}
		p.logger.Debug("candidate packed",
			zap.String("container_type", specs[i].Type),
			zap.Int("containers", len(outcome.loads)),
			zap.Int("unplaced", len(outcome.unplaced)),
			zap.String("score", score.String()))
		if !found || score.LessThan(bestScore) {
			found = true
			bestScore = score
			best = outcome
		}
	}
	if !found {
		return nil, pieces, nil
	}
	return best.loads, best.unplaced, nil
}

// packMultiType greedily commits one container instance at a time: each round
// packs the remaining pieces into exactly one instance of every candidate,
// and the instance with the best score-per-piece efficiency wins. The loop
// ends when no candidate places anything.
func (p *Planner) packMultiType(specs []model.ContainerSpec, pieces []model.Piece, objective Objective, constraints model.PackingConstraints) ([]model.ContainerLoad, []model.Piece, error) {
	remaining := pieces
	var loads []model.ContainerLoad
	indexByType := make(map[string]int)

	for len(remaining) > 0 {
		var (
			bestLoad       model.ContainerLoad
			bestEfficiency decimal.Decimal
			found          bool
		)
		for _, spec := range specs {
			result, err := Pack(spec, remaining, 1, constraints)
			if err != nil {
				return nil, nil, err
			}
			placed := len(result.Loads[0].Placements)
			if placed == 0 {
				continue
			}
			score := decimal.NewFromInt(1)
			if objective != ObjectiveMinContainers {
				score = spec.CostOrZero()
			}
			efficiency := score.Div(decimal.NewFromInt(int64(placed)))
			if !found || efficiency.LessThan(bestEfficiency) {
				found = true
				bestEfficiency = efficiency
				bestLoad = result.Loads[0]
			}
		}
		if !found {
			break
		}

		// Renumber the committed instance so indices count up per type
		// across the whole plan.
		indexByType[bestLoad.Spec.Type]++
		bestLoad.Index = indexByType[bestLoad.Spec.Type]
		for i := range bestLoad.Placements {
			bestLoad.Placements[i].ContainerIndex = bestLoad.Index
		}
		loads = append(loads, bestLoad)
		p.logger.Debug("instance committed",
			zap.String("container_type", bestLoad.Spec.Type),
			zap.Int("index", bestLoad.Index),
			zap.Int("pieces", len(bestLoad.Placements)))

		placedIDs := make(map[string]struct{}, len(bestLoad.Placements))
		for _, pl := range bestLoad.Placements {
			placedIDs[pl.Piece.ID] = struct{}{}
		}
		next := remaining[:0:0]
		for _, piece := range remaining {
			if _, ok := placedIDs[piece.ID]; !ok {
				next = append(next, piece)
			}
		}
		remaining = next
	}

	return loads, remaining, nil
}

func biasByContainer(loads []model.ContainerLoad, thresholdPct decimal.Decimal) (map[model.ContainerRef]model.BiasMetrics, error) {
	bias := make(map[model.ContainerRef]model.BiasMetrics, len(loads))
	for _, load := range loads {
		if load.Spec.Category != model.CategoryStandard {
			continue
		}
		metrics, err := AnalyzeBias(load, thresholdPct)
		if err != nil {
			return nil, err
		}
		bias[model.ContainerRef{Type: load.Spec.Type, Index: load.Index}] = metrics
	}
	return bias, nil
}

func packabilityError(spec model.ContainerSpec) error {
	return fmt.Errorf("candidate spec %q: %w", spec.Type, ErrInnerDimsRequired)
}
