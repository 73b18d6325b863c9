package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/okulsoft/dersplan/internal/models"
)

// RoomRepository provides persistence for rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns all rooms ordered by name.
func (r *RoomRepository) List(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, kind FROM rooms ORDER BY name ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// FindByID loads a room by id.
func (r *RoomRepository) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	query := r.db.Rebind(`SELECT id, name, kind FROM rooms WHERE id = ?`)
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// Create stores a new room. Duplicate names surface as a Conflict.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	id, err := insertID(ctx, r.db,
		`INSERT INTO rooms (name, kind) VALUES (?, ?)`,
		room.Name, string(room.Kind))
	if err != nil {
		return conflictOn(err, fmt.Sprintf("room %s", room.Name))
	}
	room.ID = id
	return nil
}

// Update modifies a room record.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	query := r.db.Rebind(`UPDATE rooms SET name = ?, kind = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, room.Name, string(room.Kind), room.ID); err != nil {
		return conflictOn(err, fmt.Sprintf("room %s", room.Name))
	}
	return nil
}

// Delete removes a room. Placements referencing it keep their row with a null
// room; nothing reports such placements afterwards.
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	query := r.db.Rebind(`DELETE FROM rooms WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}
