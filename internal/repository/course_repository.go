package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/okulsoft/dersplan/internal/models"
)

// CourseRepository provides persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns all courses ordered by name.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, name, weekly_hours, requires_special_room FROM courses ORDER BY name ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID loads a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	query := r.db.Rebind(`SELECT id, name, weekly_hours, requires_special_room FROM courses WHERE id = ?`)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create stores a new course. Duplicate names surface as a Conflict.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	id, err := insertID(ctx, r.db,
		`INSERT INTO courses (name, weekly_hours, requires_special_room) VALUES (?, ?, ?)`,
		course.Name, course.WeeklyHours, course.RequiresSpecialRoom)
	if err != nil {
		return conflictOn(err, fmt.Sprintf("course %s", course.Name))
	}
	course.ID = id
	return nil
}

// Update modifies a course record.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	query := r.db.Rebind(`UPDATE courses SET name = ?, weekly_hours = ?, requires_special_room = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, course.Name, course.WeeklyHours, course.RequiresSpecialRoom, course.ID); err != nil {
		return conflictOn(err, fmt.Sprintf("course %s", course.Name))
	}
	return nil
}

// Delete removes a course; assignments and placements cascade.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM courses WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}
