package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/okulsoft/dersplan/internal/models"
)

// UnavailabilityRepository provides persistence for teacher unavailability
// windows.
type UnavailabilityRepository struct {
	db *sqlx.DB
}

// NewUnavailabilityRepository creates a new unavailability repository.
func NewUnavailabilityRepository(db *sqlx.DB) *UnavailabilityRepository {
	return &UnavailabilityRepository{db: db}
}

const unavailabilityDetailSelect = `SELECT u.id, u.teacher_id, u.day, u.start_period, u.end_period,
	t.full_name AS teacher_name
	FROM unavailabilities u
	JOIN teachers t ON t.id = u.teacher_id`

// ListAll returns every unavailability window with the teacher name.
func (r *UnavailabilityRepository) ListAll(ctx context.Context) ([]models.UnavailabilityDetail, error) {
	query := unavailabilityDetailSelect + ` ORDER BY u.teacher_id ASC, u.day ASC, u.start_period ASC`
	var windows []models.UnavailabilityDetail
	if err := r.db.SelectContext(ctx, &windows, query); err != nil {
		return nil, fmt.Errorf("list unavailabilities: %w", err)
	}
	return windows, nil
}

// ListByTeacher returns one teacher's unavailability windows.
func (r *UnavailabilityRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.UnavailabilityDetail, error) {
	query := r.db.Rebind(unavailabilityDetailSelect + ` WHERE u.teacher_id = ? ORDER BY u.day ASC, u.start_period ASC`)
	var windows []models.UnavailabilityDetail
	if err := r.db.SelectContext(ctx, &windows, query, teacherID); err != nil {
		return nil, fmt.Errorf("list unavailabilities by teacher: %w", err)
	}
	return windows, nil
}

// FindByID loads an unavailability window by id.
func (r *UnavailabilityRepository) FindByID(ctx context.Context, id int64) (*models.Unavailability, error) {
	query := r.db.Rebind(`SELECT id, teacher_id, day, start_period, end_period FROM unavailabilities WHERE id = ?`)
	var window models.Unavailability
	if err := r.db.GetContext(ctx, &window, query, id); err != nil {
		return nil, err
	}
	return &window, nil
}

// Create stores a new unavailability window.
func (r *UnavailabilityRepository) Create(ctx context.Context, window *models.Unavailability) error {
	id, err := insertID(ctx, r.db,
		`INSERT INTO unavailabilities (teacher_id, day, start_period, end_period) VALUES (?, ?, ?, ?)`,
		window.TeacherID, window.Day, window.StartPeriod, window.EndPeriod)
	if err != nil {
		return fmt.Errorf("create unavailability: %w", err)
	}
	window.ID = id
	return nil
}

// Update modifies an unavailability window.
func (r *UnavailabilityRepository) Update(ctx context.Context, window *models.Unavailability) error {
	query := r.db.Rebind(`UPDATE unavailabilities SET teacher_id = ?, day = ?, start_period = ?, end_period = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query,
		window.TeacherID, window.Day, window.StartPeriod, window.EndPeriod, window.ID); err != nil {
		return fmt.Errorf("update unavailability: %w", err)
	}
	return nil
}

// Delete removes an unavailability window.
func (r *UnavailabilityRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM unavailabilities WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete unavailability: %w", err)
	}
	return nil
}
