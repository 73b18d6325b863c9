package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/okulsoft/dersplan/internal/models"
)

// TeacherRepository provides persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new teacher repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns all teachers ordered by name.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT id, full_name, subject, weekly_hours FROM teachers ORDER BY full_name ASC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// FindByID loads a teacher by id.
func (r *TeacherRepository) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	query := r.db.Rebind(`SELECT id, full_name, subject, weekly_hours FROM teachers WHERE id = ?`)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Create stores a new teacher. Duplicate full names surface as a Conflict.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	id, err := insertID(ctx, r.db,
		`INSERT INTO teachers (full_name, subject, weekly_hours) VALUES (?, ?, ?)`,
		teacher.FullName, teacher.Subject, teacher.WeeklyHours)
	if err != nil {
		return conflictOn(err, fmt.Sprintf("teacher %s", teacher.FullName))
	}
	teacher.ID = id
	return nil
}

// Update modifies a teacher record.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	query := r.db.Rebind(`UPDATE teachers SET full_name = ?, subject = ?, weekly_hours = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, teacher.FullName, teacher.Subject, teacher.WeeklyHours, teacher.ID); err != nil {
		return conflictOn(err, fmt.Sprintf("teacher %s", teacher.FullName))
	}
	return nil
}

// Delete removes a teacher; assignments, unavailabilities and placements
// cascade.
func (r *TeacherRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM teachers WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return nil
}
