package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/okulsoft/dersplan/internal/dto"
	"github.com/okulsoft/dersplan/internal/models"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
)

type memPlacements struct {
	rows   map[int64]*models.Placement
	nextID int64
}

func newMemPlacements(rows ...models.Placement) *memPlacements {
	m := &memPlacements{rows: map[int64]*models.Placement{}, nextID: 1}
	for i := range rows {
		row := rows[i]
		row.ID = m.nextID
		m.nextID++
		m.rows[row.ID] = &row
	}
	return m
}

func (m *memPlacements) FindByID(_ context.Context, id int64) (*models.Placement, error) {
	row, ok := m.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *row
	return &copied, nil
}

func (m *memPlacements) FindAtSlot(_ context.Context, day, period int, roomID int64) (*models.PlacementDetail, error) {
	for _, row := range m.rows {
		if row.Day == day && row.Period == period && row.RoomID != nil && *row.RoomID == roomID {
			return &models.PlacementDetail{Placement: *row, CourseName: "Math", TeacherName: "T1"}, nil
		}
	}
	return nil, nil
}

func (m *memPlacements) ListAtTime(_ context.Context, day, period int) ([]models.Placement, error) {
	var out []models.Placement
	for _, row := range m.rows {
		if row.Day == day && row.Period == period {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *memPlacements) UpdateSlot(_ context.Context, id int64, day, period int, roomID *int64) error {
	row, ok := m.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	row.Day = day
	row.Period = period
	row.RoomID = roomID
	return nil
}

func (m *memPlacements) Delete(_ context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

func (m *memPlacements) Clear(context.Context) error {
	m.rows = map[int64]*models.Placement{}
	return nil
}

type memRooms struct{}

func (memRooms) List(context.Context) ([]models.Room, error) { return nil, nil }
func (memRooms) FindByID(_ context.Context, id int64) (*models.Room, error) {
	if id == 1 {
		return &models.Room{ID: 1, Name: "R1", Kind: models.RoomKindNormal}, nil
	}
	return nil, sql.ErrNoRows
}
func (memRooms) Create(context.Context, *models.Room) error { return nil }
func (memRooms) Update(context.Context, *models.Room) error { return nil }
func (memRooms) Delete(context.Context, int64) error        { return nil }

type fixedSettings struct{}

func (fixedSettings) SolveSettings(context.Context) (models.SolveSettings, error) {
	return models.DefaultSolveSettings(), nil
}

func placementAt(day, period int, roomID int64) models.Placement {
	return models.Placement{ClassID: 1, TeacherID: 1, CourseID: 1, RoomID: &roomID, Day: day, Period: period}
}

func newEditorFixture(rows ...models.Placement) (*EditorService, *memPlacements) {
	placements := newMemPlacements(rows...)
	editor := NewEditorService(placements, memRooms{}, fixedSettings{}, nil, zap.NewNop())
	return editor, placements
}

func TestEditorMoveIntoFreeSlot(t *testing.T) {
	editor, placements := newEditorFixture(placementAt(0, 0, 1))

	result, err := editor.Move(context.Background(), 1, dto.MoveRequest{Day: 2, Period: 4, RoomID: 1}, AbortOnConflict{})
	require.NoError(t, err)
	assert.False(t, result.Flags.Any())
	assert.Nil(t, result.ReplacedID)

	moved, err := placements.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Day)
	assert.Equal(t, 4, moved.Period)
}

func TestEditorMoveAbortsOnOccupiedSlot(t *testing.T) {
	editor, placements := newEditorFixture(placementAt(0, 0, 1), placementAt(1, 1, 1))

	_, err := editor.Move(context.Background(), 1, dto.MoveRequest{Day: 1, Period: 1, RoomID: 1}, AbortOnConflict{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))

	// Nothing moved, nothing deleted.
	assert.Len(t, placements.rows, 2)
	original, err := placements.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, original.Day)
}

func TestEditorMoveReplacesIncumbent(t *testing.T) {
	editor, placements := newEditorFixture(placementAt(0, 0, 1), placementAt(1, 1, 1))

	result, err := editor.Move(context.Background(), 1, dto.MoveRequest{Day: 1, Period: 1, RoomID: 1}, ReplaceOnConflict{})
	require.NoError(t, err)
	require.NotNil(t, result.ReplacedID)
	assert.Equal(t, int64(2), *result.ReplacedID)
	assert.Len(t, placements.rows, 1)
}

func TestEditorMoveFlagsSharedTeacherAndClass(t *testing.T) {
	roomID2 := int64(2)
	second := models.Placement{ClassID: 1, TeacherID: 1, CourseID: 1, RoomID: &roomID2, Day: 0, Period: 1}
	editor, _ := newEditorFixture(placementAt(0, 0, 1), second)

	// Target slot (0,1,room1) is free; placement 2 sits at (0,1,room2).
	result, err := editor.Move(context.Background(), 1, dto.MoveRequest{Day: 0, Period: 1, RoomID: 1}, AbortOnConflict{})
	require.NoError(t, err)
	assert.True(t, result.Flags.TeacherConflict)
	assert.True(t, result.Flags.ClassConflict)
	assert.False(t, result.Flags.RoomConflict)
}

func TestEditorMoveValidatesBounds(t *testing.T) {
	editor, _ := newEditorFixture(placementAt(0, 0, 1))

	_, err := editor.Move(context.Background(), 1, dto.MoveRequest{Day: 9, Period: 0, RoomID: 1}, AbortOnConflict{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	_, err = editor.Move(context.Background(), 1, dto.MoveRequest{Day: 0, Period: 99, RoomID: 1}, AbortOnConflict{})
	require.Error(t, err)
}

func TestEditorDeleteAndClear(t *testing.T) {
	editor, placements := newEditorFixture(placementAt(0, 0, 1), placementAt(1, 1, 1))

	require.NoError(t, editor.Delete(context.Background(), 1))
	assert.Len(t, placements.rows, 1)

	err := editor.Delete(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

	require.NoError(t, editor.Clear(context.Background()))
	assert.Empty(t, placements.rows)
}
