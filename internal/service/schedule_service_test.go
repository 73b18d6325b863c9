package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okulsoft/dersplan/internal/dto"
	"github.com/okulsoft/dersplan/internal/models"
	"github.com/okulsoft/dersplan/internal/solver"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
	"github.com/okulsoft/dersplan/pkg/jobs"
)

type fakeSolveRunner struct {
	result *solver.Result
	err    error
	block  chan struct{}
}

func (f *fakeSolveRunner) Run(_ context.Context, opts solver.Options) (*solver.Result, error) {
	if f.block != nil {
		<-f.block
	}
	if opts.Progress != nil {
		select {
		case opts.Progress <- solver.Progress{Percent: 100, Status: "schedule saved"}:
		default:
		}
	}
	return f.result, f.err
}

type fakeScheduleReader struct {
	details []models.PlacementDetail
	cleared bool
}

func (f *fakeScheduleReader) ListDetailed(context.Context) ([]models.PlacementDetail, error) {
	return f.details, nil
}
func (f *fakeScheduleReader) ListByClass(context.Context, int64) ([]models.PlacementDetail, error) {
	return f.details, nil
}
func (f *fakeScheduleReader) ListByTeacher(context.Context, int64) ([]models.PlacementDetail, error) {
	return f.details, nil
}
func (f *fakeScheduleReader) ListByRoom(context.Context, int64) ([]models.PlacementDetail, error) {
	return f.details, nil
}
func (f *fakeScheduleReader) Count(context.Context) (int, error) { return len(f.details), nil }
func (f *fakeScheduleReader) Clear(context.Context) error {
	f.cleared = true
	return nil
}

func newScheduleFixture(t *testing.T, runnerResult *solver.Result, runnerErr error, block chan struct{}) (*ScheduleService, *fakeScheduleReader) {
	t.Helper()
	runner := jobs.NewRunner(zap.NewNop())
	runner.Start(context.Background())
	t.Cleanup(runner.Stop)

	reader := &fakeScheduleReader{}
	svc := NewScheduleService(
		&fakeSolveRunner{result: runnerResult, err: runnerErr, block: block},
		reader, runner, nil, time.Minute, nil, zap.NewNop(),
	)
	return svc, reader
}

func waitForState(t *testing.T, svc *ScheduleService, want dto.SolveState) dto.SolveStatus {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		status := svc.Status()
		if status.State == want {
			return status
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("solve never reached state %s (last: %+v)", want, svc.Status())
	return dto.SolveStatus{}
}

func TestScheduleServiceSolveLifecycle(t *testing.T) {
	result := &solver.Result{Stats: solver.Stats{Status: "optimal", Placements: 2}}
	svc, _ := newScheduleFixture(t, result, nil, nil)

	jobID, err := svc.StartSolve(dto.SolveRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)

	status := waitForState(t, svc, dto.SolveStateSucceeded)
	assert.Equal(t, 100, status.Percent)
	require.NotNil(t, status.Stats)
	assert.Equal(t, "optimal", status.Stats.Status)
}

func TestScheduleServiceRefusesConcurrentSolves(t *testing.T) {
	block := make(chan struct{})
	svc, _ := newScheduleFixture(t, &solver.Result{}, nil, block)

	_, err := svc.StartSolve(dto.SolveRequest{})
	require.NoError(t, err)

	_, err = svc.StartSolve(dto.SolveRequest{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))

	close(block)
	waitForState(t, svc, dto.SolveStateSucceeded)
}

func TestScheduleServiceSolveFailureSurfaces(t *testing.T) {
	svc, _ := newScheduleFixture(t, nil, appErrors.Clone(appErrors.ErrInfeasible, "no schedule"), nil)

	_, err := svc.StartSolve(dto.SolveRequest{})
	require.NoError(t, err)

	status := waitForState(t, svc, dto.SolveStateFailed)
	assert.Equal(t, "no schedule", status.ErrorMsg)
}

func TestScheduleServiceCancelRequiresRunningSolve(t *testing.T) {
	svc, _ := newScheduleFixture(t, &solver.Result{}, nil, nil)
	err := svc.CancelSolve()
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestScheduleServiceCancelMarksCancelled(t *testing.T) {
	block := make(chan struct{})
	svc, _ := newScheduleFixture(t, nil, appErrors.Clone(appErrors.ErrInterrupted, "cancelled"), block)

	_, err := svc.StartSolve(dto.SolveRequest{})
	require.NoError(t, err)
	require.NoError(t, svc.CancelSolve())
	close(block)

	waitForState(t, svc, dto.SolveStateCancelled)
}

func TestScheduleServiceClearRefusedWhileSolving(t *testing.T) {
	block := make(chan struct{})
	svc, reader := newScheduleFixture(t, &solver.Result{}, nil, block)

	_, err := svc.StartSolve(dto.SolveRequest{})
	require.NoError(t, err)

	err = svc.Clear(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
	assert.False(t, reader.cleared)

	close(block)
	waitForState(t, svc, dto.SolveStateSucceeded)

	require.NoError(t, svc.Clear(context.Background()))
	assert.True(t, reader.cleared)
}
