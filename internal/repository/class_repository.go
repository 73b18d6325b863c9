package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/okulsoft/dersplan/internal/models"
)

// ClassRepository provides persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns all classes ordered by name and section.
func (r *ClassRepository) List(ctx context.Context) ([]models.Class, error) {
	const query = `SELECT id, name, section, weekly_total_hours FROM classes ORDER BY name ASC, section ASC`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID loads a class by id.
func (r *ClassRepository) FindByID(ctx context.Context, id int64) (*models.Class, error) {
	query := r.db.Rebind(`SELECT id, name, section, weekly_total_hours FROM classes WHERE id = ?`)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// Create stores a new class. Duplicate (name, section) pairs surface as a
// Conflict carrying the natural key.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	id, err := insertID(ctx, r.db,
		`INSERT INTO classes (name, section, weekly_total_hours) VALUES (?, ?, ?)`,
		class.Name, class.Section, class.WeeklyTotalHours)
	if err != nil {
		return conflictOn(err, fmt.Sprintf("class %s/%s", class.Name, class.Section))
	}
	class.ID = id
	return nil
}

// Update modifies a class record.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	query := r.db.Rebind(`UPDATE classes SET name = ?, section = ?, weekly_total_hours = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, class.Name, class.Section, class.WeeklyTotalHours, class.ID); err != nil {
		return conflictOn(err, fmt.Sprintf("class %s/%s", class.Name, class.Section))
	}
	return nil
}

// Delete removes a class. Dependent assignments and placements cascade at the
// schema level.
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM classes WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}
