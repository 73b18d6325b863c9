package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/okulsoft/dersplan/internal/models"
)

// AssignmentRepository provides persistence for course/class/teacher
// assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns all assignments ordered by id. The stable ordering feeds the
// deterministic variable layout of the solver.
func (r *AssignmentRepository) List(ctx context.Context) ([]models.Assignment, error) {
	const query = `SELECT id, course_id, class_id, teacher_id, weekly_hours FROM assignments ORDER BY id ASC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}

const assignmentDetailSelect = `SELECT a.id, a.course_id, a.class_id, a.teacher_id, a.weekly_hours,
	co.name AS course_name, cl.name AS class_name, cl.section AS class_section, t.full_name AS teacher_name
	FROM assignments a
	JOIN courses co ON co.id = a.course_id
	JOIN classes cl ON cl.id = a.class_id
	JOIN teachers t ON t.id = a.teacher_id`

// ListEnriched returns assignments joined with course, class and teacher
// names for list views.
func (r *AssignmentRepository) ListEnriched(ctx context.Context) ([]models.AssignmentDetail, error) {
	query := assignmentDetailSelect + ` ORDER BY a.id ASC`
	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list assignments enriched: %w", err)
	}
	return details, nil
}

// ListByClass returns a class's assignments with display names.
func (r *AssignmentRepository) ListByClass(ctx context.Context, classID int64) ([]models.AssignmentDetail, error) {
	query := r.db.Rebind(assignmentDetailSelect + ` WHERE a.class_id = ? ORDER BY a.id ASC`)
	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, classID); err != nil {
		return nil, fmt.Errorf("list assignments by class: %w", err)
	}
	return details, nil
}

// ListByTeacher returns a teacher's assignments with display names.
func (r *AssignmentRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.AssignmentDetail, error) {
	query := r.db.Rebind(assignmentDetailSelect + ` WHERE a.teacher_id = ? ORDER BY a.id ASC`)
	var details []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, teacherID); err != nil {
		return nil, fmt.Errorf("list assignments by teacher: %w", err)
	}
	return details, nil
}

// FindByID loads an assignment by id.
func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	query := r.db.Rebind(`SELECT id, course_id, class_id, teacher_id, weekly_hours FROM assignments WHERE id = ?`)
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Create stores a new assignment. A duplicate (course, class, teacher) triple
// surfaces as a Conflict.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	id, err := insertID(ctx, r.db,
		`INSERT INTO assignments (course_id, class_id, teacher_id, weekly_hours) VALUES (?, ?, ?, ?)`,
		assignment.CourseID, assignment.ClassID, assignment.TeacherID, assignment.WeeklyHours)
	if err != nil {
		return conflictOn(err, fmt.Sprintf("assignment (course %d, class %d, teacher %d)",
			assignment.CourseID, assignment.ClassID, assignment.TeacherID))
	}
	assignment.ID = id
	return nil
}

// Update modifies an assignment record.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	query := r.db.Rebind(`UPDATE assignments SET course_id = ?, class_id = ?, teacher_id = ?, weekly_hours = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query,
		assignment.CourseID, assignment.ClassID, assignment.TeacherID, assignment.WeeklyHours, assignment.ID); err != nil {
		return conflictOn(err, fmt.Sprintf("assignment (course %d, class %d, teacher %d)",
			assignment.CourseID, assignment.ClassID, assignment.TeacherID))
	}
	return nil
}

// Delete removes an assignment together with the placements of its
// (class, teacher, course) triple. Placements carry no assignment foreign
// key, so the cascade is enforced here rather than in the schema.
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	assignment, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM placements WHERE class_id = ? AND teacher_id = ? AND course_id = ?`),
		assignment.ClassID, assignment.TeacherID, assignment.CourseID); err != nil {
		return fmt.Errorf("delete assignment placements: %w", err)
	}
	if _, err = tx.ExecContext(ctx, r.db.Rebind(`DELETE FROM assignments WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete assignment: %w", err)
	}
	return nil
}
