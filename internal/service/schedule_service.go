package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/okulsoft/dersplan/internal/dto"
	"github.com/okulsoft/dersplan/internal/models"
	"github.com/okulsoft/dersplan/internal/solver"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
	"github.com/okulsoft/dersplan/pkg/jobs"
)

type schedulePlacementReader interface {
	ListDetailed(ctx context.Context) ([]models.PlacementDetail, error)
	ListByClass(ctx context.Context, classID int64) ([]models.PlacementDetail, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.PlacementDetail, error)
	ListByRoom(ctx context.Context, roomID int64) ([]models.PlacementDetail, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}

type solveRunner interface {
	Run(ctx context.Context, opts solver.Options) (*solver.Result, error)
}

type solveObserver interface {
	ObserveSolve(status string, duration time.Duration, stats solver.Stats)
}

const scheduleCacheKey = "dersplan:schedule:all"

// ScheduleService owns the solve lifecycle and schedule reads. Solves run on
// the background job runner; the HTTP layer polls Status. Placements are
// written by the solve worker or by editor calls, never both at once: the
// runner refuses overlapping jobs, and the editor move/delete and clear
// endpoints refuse while a solve is in flight. Entity CRUD endpoints are not
// blocked during a solve.
type ScheduleService struct {
	solver     solveRunner
	placements schedulePlacementReader
	runner     *jobs.Runner
	cache      *redis.Client
	cacheTTL   time.Duration
	metrics    solveObserver
	logger     *zap.Logger

	mu     sync.Mutex
	status dto.SolveStatus
	cancel *solver.Flag
}

// NewScheduleService wires the schedule service.
func NewScheduleService(
	solveRunner solveRunner,
	placements schedulePlacementReader,
	runner *jobs.Runner,
	cache *redis.Client,
	cacheTTL time.Duration,
	metrics solveObserver,
	logger *zap.Logger,
) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		solver:     solveRunner,
		placements: placements,
		runner:     runner,
		cache:      cache,
		cacheTTL:   cacheTTL,
		metrics:    metrics,
		logger:     logger,
		status:     dto.SolveStatus{State: dto.SolveStateIdle},
	}
}

// StartSolve launches a background solve. Only one may run at a time.
func (s *ScheduleService) StartSolve(req dto.SolveRequest) (string, error) {
	s.mu.Lock()
	if s.status.State == dto.SolveStateRunning {
		s.mu.Unlock()
		return "", appErrors.Clone(appErrors.ErrConflict, "a solve is already running")
	}
	jobID := uuid.NewString()
	cancel := &solver.Flag{}
	s.cancel = cancel
	s.status = dto.SolveStatus{JobID: jobID, State: dto.SolveStateRunning, Percent: 0, Message: "starting"}
	s.mu.Unlock()

	progress := make(chan solver.Progress, 16)
	go s.consumeProgress(jobID, progress)

	opts := solver.Options{
		Cancel:   cancel,
		Progress: progress,
	}
	if req.TimeBudgetSeconds > 0 {
		opts.BudgetOverride = time.Duration(req.TimeBudgetSeconds) * time.Second
	}

	err := s.runner.Submit(jobs.Job{
		ID:   jobID,
		Type: "solve",
		Run: func(ctx context.Context) {
			defer close(progress)
			s.executeSolve(ctx, jobID, opts, cancel)
		},
	})
	if err != nil {
		close(progress)
		s.mu.Lock()
		s.status = dto.SolveStatus{State: dto.SolveStateFailed, ErrorMsg: err.Error()}
		s.mu.Unlock()
		return "", appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "solver is busy")
	}
	return jobID, nil
}

func (s *ScheduleService) consumeProgress(jobID string, progress <-chan solver.Progress) {
	for update := range progress {
		s.mu.Lock()
		if s.status.JobID == jobID && s.status.State == dto.SolveStateRunning && update.Percent >= s.status.Percent {
			s.status.Percent = update.Percent
			s.status.Message = update.Status
		}
		s.mu.Unlock()
	}
}

func (s *ScheduleService) executeSolve(ctx context.Context, jobID string, opts solver.Options, cancel *solver.Flag) {
	start := time.Now()
	result, err := s.solver.Run(ctx, opts)
	duration := time.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.JobID != jobID {
		return
	}
	if err != nil {
		state := dto.SolveStateFailed
		if appErrors.HasCode(err, appErrors.ErrInterrupted) || cancel.IsSet() {
			state = dto.SolveStateCancelled
		}
		s.status = dto.SolveStatus{JobID: jobID, State: state, Percent: s.status.Percent, ErrorMsg: appErrors.FromError(err).Message}
		if s.metrics != nil {
			s.metrics.ObserveSolve(appErrors.FromError(err).Code, duration, solver.Stats{})
		}
		s.logger.Warn("solve job finished with error", zap.String("job_id", jobID), zap.Error(err))
		return
	}

	s.status = dto.SolveStatus{
		JobID:   jobID,
		State:   dto.SolveStateSucceeded,
		Percent: 100,
		Message: "schedule saved",
		Stats:   &result.Stats,
	}
	if s.metrics != nil {
		s.metrics.ObserveSolve(result.Stats.Status, duration, result.Stats)
	}
	s.InvalidateCache(context.Background())
}

// Status returns the current solve snapshot.
func (s *ScheduleService) Status() dto.SolveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CancelSolve requests cooperative cancellation of the running solve.
func (s *ScheduleService) CancelSolve() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.State != dto.SolveStateRunning || s.cancel == nil {
		return appErrors.Clone(appErrors.ErrValidation, "no solve is running")
	}
	s.cancel.Set()
	s.status.Message = "cancelling"
	return nil
}

// SolveSync runs a solve on the calling goroutine. Used by the CLI.
func (s *ScheduleService) SolveSync(ctx context.Context, budget time.Duration) (*solver.Result, error) {
	opts := solver.Options{BudgetOverride: budget}
	result, err := s.solver.Run(ctx, opts)
	if err == nil {
		s.InvalidateCache(ctx)
	}
	return result, err
}

// Busy reports whether a solve is in flight; editor writes are refused then.
func (s *ScheduleService) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.State == dto.SolveStateRunning
}

// List returns all placements with display names, served from the optional
// read cache when warm.
func (s *ScheduleService) List(ctx context.Context) ([]models.PlacementDetail, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, scheduleCacheKey).Bytes(); err == nil {
			var cached []models.PlacementDetail
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	details, err := s.placements.ListDetailed(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule")
	}

	if s.cache != nil {
		if raw, err := json.Marshal(details); err == nil {
			s.cache.Set(ctx, scheduleCacheKey, raw, s.cacheTTL)
		}
	}
	return details, nil
}

// ListByClass returns one class's placements.
func (s *ScheduleService) ListByClass(ctx context.Context, classID int64) ([]models.PlacementDetail, error) {
	details, err := s.placements.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class schedule")
	}
	return details, nil
}

// ListByTeacher returns one teacher's placements.
func (s *ScheduleService) ListByTeacher(ctx context.Context, teacherID int64) ([]models.PlacementDetail, error) {
	details, err := s.placements.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher schedule")
	}
	return details, nil
}

// ListByRoom returns one room's placements.
func (s *ScheduleService) ListByRoom(ctx context.Context, roomID int64) ([]models.PlacementDetail, error) {
	details, err := s.placements.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list room schedule")
	}
	return details, nil
}

// Clear wipes the schedule.
func (s *ScheduleService) Clear(ctx context.Context) error {
	if s.Busy() {
		return appErrors.Clone(appErrors.ErrConflict, "a solve is running")
	}
	if err := s.placements.Clear(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear schedule")
	}
	s.InvalidateCache(ctx)
	s.logger.Info("schedule cleared")
	return nil
}

// InvalidateCache drops the schedule read cache. Solves and editor writes call
// it; placement deletes cascading from entity CRUD do not.
func (s *ScheduleService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, scheduleCacheKey).Err(); err != nil {
		s.logger.Warn("schedule cache invalidation failed", zap.Error(err))
	}
}
