package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/okulsoft/dersplan/internal/dto"
	"github.com/okulsoft/dersplan/internal/models"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
)

type editorPlacementRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Placement, error)
	FindAtSlot(ctx context.Context, day, period int, roomID int64) (*models.PlacementDetail, error)
	ListAtTime(ctx context.Context, day, period int) ([]models.Placement, error)
	UpdateSlot(ctx context.Context, id int64, day, period int, roomID *int64) error
	Delete(ctx context.Context, id int64) error
	Clear(ctx context.Context) error
}

// ConflictResolver decides what happens when a move targets an occupied
// (day, period, room) slot.
type ConflictResolver interface {
	// Replace reports whether the incumbent placement should be deleted so
	// the move can proceed.
	Replace(incumbent models.PlacementDetail) bool
}

// AbortOnConflict refuses moves into occupied slots.
type AbortOnConflict struct{}

// Replace always declines.
func (AbortOnConflict) Replace(models.PlacementDetail) bool { return false }

// ReplaceOnConflict evicts the incumbent and proceeds.
type ReplaceOnConflict struct{}

// Replace always accepts.
func (ReplaceOnConflict) Replace(models.PlacementDetail) bool { return true }

// ResolverFor maps the wire value of on_conflict to a resolver, defaulting
// to abort.
func ResolverFor(policy string) ConflictResolver {
	if policy == "replace" {
		return ReplaceOnConflict{}
	}
	return AbortOnConflict{}
}

// EditorService applies manual post-solve adjustments. Moves are never rolled
// back: induced conflicts are reported to the operator, who keeps authority.
// Feasibility guarantees hold only for solver-produced schedules.
type EditorService struct {
	placements editorPlacementRepository
	rooms      roomRepository
	settings   solveSettingsReader
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewEditorService constructs an editor service.
func NewEditorService(
	placements editorPlacementRepository,
	rooms roomRepository,
	settings solveSettingsReader,
	validate *validator.Validate,
	logger *zap.Logger,
) *EditorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditorService{placements: placements, rooms: rooms, settings: settings, validator: validate, logger: logger}
}

// Move relocates a placement to (day, period, room). When the exact slot is
// occupied the resolver is consulted; on replace the incumbent is deleted
// first. The returned flags mark any teacher/class/room sharing at the new
// time; the move stands regardless.
func (s *EditorService) Move(ctx context.Context, placementID int64, req dto.MoveRequest, resolver ConflictResolver) (*dto.MoveResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid move payload")
	}
	if resolver == nil {
		resolver = AbortOnConflict{}
	}

	settings, err := s.settings.SolveSettings(ctx)
	if err != nil {
		return nil, err
	}
	if req.Day < 0 || req.Day >= settings.Days {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day must be in [0, %d)", settings.Days))
	}
	if req.Period < 0 || req.Period >= settings.Periods {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("period must be in [0, %d)", settings.Periods))
	}
	if _, err := s.rooms.FindByID(ctx, req.RoomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "room does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	placement, err := s.placements.FindByID(ctx, placementID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "placement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load placement")
	}

	result := &dto.MoveResult{}

	incumbent, err := s.placements.FindAtSlot(ctx, req.Day, req.Period, req.RoomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect target slot")
	}
	if incumbent != nil && incumbent.ID != placement.ID {
		if !resolver.Replace(*incumbent) {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf(
				"slot day %d period %d room %d is taken by %s (%s)",
				req.Day, req.Period, req.RoomID, incumbent.CourseName, incumbent.TeacherName))
		}
		if err := s.placements.Delete(ctx, incumbent.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to evict incumbent placement")
		}
		evicted := incumbent.ID
		result.ReplacedID = &evicted
		s.logger.Sugar().Infow("incumbent placement replaced", "placement_id", evicted)
	}

	roomID := req.RoomID
	if err := s.placements.UpdateSlot(ctx, placement.ID, req.Day, req.Period, &roomID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move placement")
	}
	placement.Day = req.Day
	placement.Period = req.Period
	placement.RoomID = &roomID

	flags, err := s.conflictFlags(ctx, *placement)
	if err != nil {
		return nil, err
	}
	result.Placement = *placement
	result.Flags = flags

	s.logger.Sugar().Infow("placement moved",
		"placement_id", placement.ID, "day", req.Day, "period", req.Period, "room_id", req.RoomID,
		"teacher_conflict", flags.TeacherConflict, "class_conflict", flags.ClassConflict, "room_conflict", flags.RoomConflict)
	return result, nil
}

// conflictFlags inspects every other placement at the new time for shared
// teacher, class or room.
func (s *EditorService) conflictFlags(ctx context.Context, moved models.Placement) (models.ConflictFlags, error) {
	var flags models.ConflictFlags
	others, err := s.placements.ListAtTime(ctx, moved.Day, moved.Period)
	if err != nil {
		return flags, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect conflicts")
	}
	for _, other := range others {
		if other.ID == moved.ID {
			continue
		}
		if other.TeacherID == moved.TeacherID {
			flags.TeacherConflict = true
		}
		if other.ClassID == moved.ClassID {
			flags.ClassConflict = true
		}
		if other.RoomID != nil && moved.RoomID != nil && *other.RoomID == *moved.RoomID {
			flags.RoomConflict = true
		}
	}
	return flags, nil
}

// Delete removes one placement.
func (s *EditorService) Delete(ctx context.Context, placementID int64) error {
	if _, err := s.placements.FindByID(ctx, placementID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "placement not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load placement")
	}
	if err := s.placements.Delete(ctx, placementID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete placement")
	}
	return nil
}

// Clear wipes the whole schedule.
func (s *EditorService) Clear(ctx context.Context) error {
	if err := s.placements.Clear(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear schedule")
	}
	s.logger.Info("schedule cleared")
	return nil
}
