package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/okulsoft/dersplan/internal/models"
)

// PlacementRepository provides persistence for the solved schedule. Rows are
// bulk-replaced by the solver and individually touched by the editor; the
// CRUD surface never inserts them one by one.
type PlacementRepository struct {
	db *sqlx.DB
}

// NewPlacementRepository creates a new placement repository.
func NewPlacementRepository(db *sqlx.DB) *PlacementRepository {
	return &PlacementRepository{db: db}
}

// ReplaceAll atomically wipes the schedule and inserts the given rows. Either
// the whole new schedule lands or the previous one is kept.
func (r *PlacementRepository) ReplaceAll(ctx context.Context, rows []models.Placement) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace placements: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM placements`); err != nil {
		return fmt.Errorf("wipe placements: %w", err)
	}

	insert := r.db.Rebind(`INSERT INTO placements (class_id, teacher_id, course_id, room_id, day, period) VALUES (?, ?, ?, ?, ?, ?)`)
	for i := range rows {
		row := rows[i]
		if _, err = tx.ExecContext(ctx, insert,
			row.ClassID, row.TeacherID, row.CourseID, row.RoomID, row.Day, row.Period); err != nil {
			return fmt.Errorf("insert placement: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace placements: %w", err)
	}
	return nil
}

// Clear deletes all placements.
func (r *PlacementRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM placements`); err != nil {
		return fmt.Errorf("clear placements: %w", err)
	}
	return nil
}

// Count returns the number of placements.
func (r *PlacementRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM placements`); err != nil {
		return 0, fmt.Errorf("count placements: %w", err)
	}
	return count, nil
}

// List returns all placements ordered by (day, period, class).
func (r *PlacementRepository) List(ctx context.Context) ([]models.Placement, error) {
	const query = `SELECT id, class_id, teacher_id, course_id, room_id, day, period FROM placements ORDER BY day ASC, period ASC, class_id ASC`
	var placements []models.Placement
	if err := r.db.SelectContext(ctx, &placements, query); err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	return placements, nil
}

const placementDetailSelect = `SELECT p.id, p.class_id, p.teacher_id, p.course_id, p.room_id, p.day, p.period,
	cl.name AS class_name, cl.section AS class_section,
	t.full_name AS teacher_name, co.name AS course_name, ro.name AS room_name
	FROM placements p
	JOIN classes cl ON cl.id = p.class_id
	JOIN teachers t ON t.id = p.teacher_id
	JOIN courses co ON co.id = p.course_id
	LEFT JOIN rooms ro ON ro.id = p.room_id`

// ListDetailed returns all placements with display names.
func (r *PlacementRepository) ListDetailed(ctx context.Context) ([]models.PlacementDetail, error) {
	query := placementDetailSelect + ` ORDER BY p.day ASC, p.period ASC, cl.name ASC, cl.section ASC`
	var details []models.PlacementDetail
	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list placements detailed: %w", err)
	}
	return details, nil
}

// ListByClass returns one class's placements with display names.
func (r *PlacementRepository) ListByClass(ctx context.Context, classID int64) ([]models.PlacementDetail, error) {
	query := r.db.Rebind(placementDetailSelect + ` WHERE p.class_id = ? ORDER BY p.day ASC, p.period ASC`)
	var details []models.PlacementDetail
	if err := r.db.SelectContext(ctx, &details, query, classID); err != nil {
		return nil, fmt.Errorf("list placements by class: %w", err)
	}
	return details, nil
}

// ListByTeacher returns one teacher's placements with display names.
func (r *PlacementRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.PlacementDetail, error) {
	query := r.db.Rebind(placementDetailSelect + ` WHERE p.teacher_id = ? ORDER BY p.day ASC, p.period ASC`)
	var details []models.PlacementDetail
	if err := r.db.SelectContext(ctx, &details, query, teacherID); err != nil {
		return nil, fmt.Errorf("list placements by teacher: %w", err)
	}
	return details, nil
}

// ListByRoom returns one room's placements with display names.
func (r *PlacementRepository) ListByRoom(ctx context.Context, roomID int64) ([]models.PlacementDetail, error) {
	query := r.db.Rebind(placementDetailSelect + ` WHERE p.room_id = ? ORDER BY p.day ASC, p.period ASC`)
	var details []models.PlacementDetail
	if err := r.db.SelectContext(ctx, &details, query, roomID); err != nil {
		return nil, fmt.Errorf("list placements by room: %w", err)
	}
	return details, nil
}

// FindByID loads a placement by id.
func (r *PlacementRepository) FindByID(ctx context.Context, id int64) (*models.Placement, error) {
	query := r.db.Rebind(`SELECT id, class_id, teacher_id, course_id, room_id, day, period FROM placements WHERE id = ?`)
	var placement models.Placement
	if err := r.db.GetContext(ctx, &placement, query, id); err != nil {
		return nil, err
	}
	return &placement, nil
}

// FindAtSlot returns the placement occupying an exact (day, period, room)
// slot, or nil.
func (r *PlacementRepository) FindAtSlot(ctx context.Context, day, period int, roomID int64) (*models.PlacementDetail, error) {
	query := r.db.Rebind(placementDetailSelect + ` WHERE p.day = ? AND p.period = ? AND p.room_id = ?`)
	var details []models.PlacementDetail
	if err := r.db.SelectContext(ctx, &details, query, day, period, roomID); err != nil {
		return nil, fmt.Errorf("find placement at slot: %w", err)
	}
	if len(details) == 0 {
		return nil, nil
	}
	return &details[0], nil
}

// ListAtTime returns every placement at (day, period) regardless of room.
func (r *PlacementRepository) ListAtTime(ctx context.Context, day, period int) ([]models.Placement, error) {
	query := r.db.Rebind(`SELECT id, class_id, teacher_id, course_id, room_id, day, period FROM placements WHERE day = ? AND period = ?`)
	var placements []models.Placement
	if err := r.db.SelectContext(ctx, &placements, query, day, period); err != nil {
		return nil, fmt.Errorf("list placements at time: %w", err)
	}
	return placements, nil
}

// UpdateSlot moves a placement to a new (day, period, room).
func (r *PlacementRepository) UpdateSlot(ctx context.Context, id int64, day, period int, roomID *int64) error {
	query := r.db.Rebind(`UPDATE placements SET day = ?, period = ?, room_id = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, day, period, roomID, id); err != nil {
		return fmt.Errorf("move placement: %w", err)
	}
	return nil
}

// Delete removes one placement.
func (r *PlacementRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM placements WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete placement: %w", err)
	}
	return nil
}
