// Package solver turns a catalog snapshot into a solved weekly timetable. It
// builds a CP-SAT formulation, searches under a wall-clock budget, decodes
// the model into placement rows and hands them to the store in one atomic
// replace.
package solver

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/okulsoft/dersplan/internal/catalog"
	"github.com/okulsoft/dersplan/internal/models"
	"github.com/okulsoft/dersplan/pkg/cpsat"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
)

type catalogLoader interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

type placementReplacer interface {
	ReplaceAll(ctx context.Context, rows []models.Placement) error
}

// Progress is one update on the solve pipeline, published between phases.
// Percent is monotonically non-decreasing within one run.
type Progress struct {
	Percent int    `json:"percent"`
	Status  string `json:"status"`
}

// Flag is the cooperative cancellation switch shared with the caller. The
// worker reads it between phases, and during the search a watcher polls it
// and stops the backend early once it is set.
type Flag struct {
	set atomic.Bool
}

// Set requests cancellation.
func (f *Flag) Set() { f.set.Store(true) }

// IsSet reports whether cancellation was requested.
func (f *Flag) IsSet() bool { return f.set.Load() }

// Options tune one solve run.
type Options struct {
	// BudgetOverride replaces the time_budget_seconds setting when positive.
	BudgetOverride time.Duration
	// Cancel is checked between phases and polled during the search; nil means
	// not cancellable.
	Cancel *Flag
	// Progress receives phase updates when non-nil. Sends never block; a slow
	// consumer just misses intermediate states.
	Progress chan<- Progress
}

// Stats describe the finished run.
type Stats struct {
	Variables    int           `json:"variables"`
	Constraints  int           `json:"constraints"`
	Cost         int           `json:"cost"`
	Placements   int           `json:"placements"`
	Duration     time.Duration `json:"duration"`
	Status       string        `json:"status"`
	BlockRelaxed bool          `json:"block_relaxed"`
	Warnings     []string      `json:"warnings,omitempty"`
}

// Result is the outcome of a successful solve.
type Result struct {
	Placements []models.Placement
	Stats      Stats
}

// Solver runs the load → build → solve → decode → save pipeline.
type Solver struct {
	loader     catalogLoader
	placements placementReplacer
	logger     *zap.Logger
}

// New wires a solver.
func New(loader catalogLoader, placements placementReplacer, logger *zap.Logger) *Solver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Solver{loader: loader, placements: placements, logger: logger}
}

func publish(ch chan<- Progress, percent int, status string) {
	if ch == nil {
		return
	}
	select {
	case ch <- Progress{Percent: percent, Status: status}:
	default:
	}
}

func cancelled(opts Options) bool {
	return opts.Cancel != nil && opts.Cancel.IsSet()
}

// Run executes one complete solve. On success the store holds the new
// schedule; on any error the placement table is untouched.
func (s *Solver) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	publish(opts.Progress, 10, "loading data")
	if cancelled(opts) {
		return nil, appErrors.Clone(appErrors.ErrInterrupted, "cancelled before load")
	}
	cat, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	publish(opts.Progress, 20, "data validated")
	if cancelled(opts) {
		return nil, appErrors.Clone(appErrors.ErrInterrupted, "cancelled before model build")
	}

	budget := time.Duration(cat.Settings.TimeBudgetSeconds) * time.Second
	if opts.BudgetOverride > 0 {
		budget = opts.BudgetOverride
	}

	m := buildModel(cat, buildOptions{blockAdjacency: cat.Settings.PreferBlocks}, s.logger)
	publish(opts.Progress, 30, "model built")
	if cancelled(opts) {
		return nil, appErrors.Clone(appErrors.ErrInterrupted, "cancelled before solve")
	}

	sol, relaxed, err := s.search(cat, m, budget, opts)
	if err != nil {
		return nil, err
	}
	publish(opts.Progress, 80, "solution found")
	if cancelled(opts) {
		return nil, appErrors.Clone(appErrors.ErrInterrupted, "cancelled before decode")
	}

	rows := m.decode(sol)
	if err := selfCheck(rows); err != nil {
		s.logger.Error("solution failed self-check", zap.Error(err))
		return nil, err
	}
	if expected := requiredHours(cat); len(rows) != expected {
		err := defect("decoded %d placements, expected %d", len(rows), expected)
		s.logger.Error("solution failed self-check", zap.Error(err))
		return nil, err
	}
	publish(opts.Progress, 90, "solution decoded")
	if cancelled(opts) {
		return nil, appErrors.Clone(appErrors.ErrInterrupted, "cancelled before save")
	}

	if err := s.placements.ReplaceAll(ctx, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule")
	}
	publish(opts.Progress, 100, "schedule saved")

	result := &Result{
		Placements: rows,
		Stats: Stats{
			Variables:    m.sat.NumVars(),
			Constraints:  m.sat.NumConstraints(),
			Cost:         sol.Cost,
			Placements:   len(rows),
			Duration:     time.Since(start),
			Status:       sol.Status.String(),
			BlockRelaxed: relaxed,
			Warnings:     cat.Warnings,
		},
	}
	s.logger.Info("solve finished",
		zap.String("status", result.Stats.Status),
		zap.Int("placements", result.Stats.Placements),
		zap.Int("cost", result.Stats.Cost),
		zap.Duration("duration", result.Stats.Duration),
		zap.Bool("block_relaxed", relaxed),
	)
	return result, nil
}

// search runs the CP backend. When the model is infeasible with block
// adjacency on, it rebuilds the model without block adjacency and solves again.
func (s *Solver) search(cat *catalog.Catalog, m *model, budget time.Duration, opts Options) (cpsat.Solution, bool, error) {
	stop := make(chan struct{})
	var once sync.Once
	closeStop := func() { once.Do(func() { close(stop) }) }
	defer closeStop()
	if opts.Cancel != nil {
		go watchCancel(opts.Cancel, stop, closeStop)
	}

	deadline := time.Now().Add(budget)
	sol := m.sat.Solve(cpsat.Options{Budget: budget, Stop: stop})

	if sol.Status == cpsat.StatusInfeasible && cat.Settings.PreferBlocks {
		s.logger.Warn("model infeasible with block adjacency; re-solving without it")
		remaining := time.Until(deadline)
		if remaining < time.Second {
			remaining = time.Second
		}
		relaxedModel := buildModel(cat, buildOptions{blockAdjacency: false}, s.logger)
		relaxedSol := relaxedModel.sat.Solve(cpsat.Options{Budget: remaining, Stop: stop})
		if err := statusErr(relaxedSol, opts); err != nil {
			return relaxedSol, true, err
		}
		*m = *relaxedModel
		return relaxedSol, true, nil
	}

	if err := statusErr(sol, opts); err != nil {
		return sol, false, err
	}
	return sol, false, nil
}

func watchCancel(flag *Flag, stop <-chan struct{}, closeStop func()) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if flag.IsSet() {
				closeStop()
				return
			}
		}
	}
}

func statusErr(sol cpsat.Solution, opts Options) error {
	switch sol.Status {
	case cpsat.StatusOptimal, cpsat.StatusFeasible:
		return nil
	case cpsat.StatusInfeasible:
		return appErrors.Clone(appErrors.ErrInfeasible, "constraints admit no schedule")
	default:
		if cancelled(opts) {
			return appErrors.Clone(appErrors.ErrInterrupted, "cancelled during search")
		}
		return appErrors.Clone(appErrors.ErrInfeasible, "time budget exhausted before a solution was found")
	}
}

func requiredHours(cat *catalog.Catalog) int {
	total := 0
	for _, a := range cat.Assignments {
		total += a.WeeklyHours
	}
	return total
}
