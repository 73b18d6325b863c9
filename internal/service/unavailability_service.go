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

type unavailabilityRepository interface {
	ListAll(ctx context.Context) ([]models.UnavailabilityDetail, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.UnavailabilityDetail, error)
	FindByID(ctx context.Context, id int64) (*models.Unavailability, error)
	Create(ctx context.Context, window *models.Unavailability) error
	Update(ctx context.Context, window *models.Unavailability) error
	Delete(ctx context.Context, id int64) error
}

type solveSettingsReader interface {
	SolveSettings(ctx context.Context) (models.SolveSettings, error)
}

// UnavailabilityService manages teacher unavailability windows.
type UnavailabilityService struct {
	repo      unavailabilityRepository
	refs      assignmentRefs
	settings  solveSettingsReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUnavailabilityService constructs an unavailability service.
func NewUnavailabilityService(
	repo unavailabilityRepository,
	refs assignmentRefs,
	settings solveSettingsReader,
	validate *validator.Validate,
	logger *zap.Logger,
) *UnavailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnavailabilityService{repo: repo, refs: refs, settings: settings, validator: validate, logger: logger}
}

// ListAll returns every unavailability window.
func (s *UnavailabilityService) ListAll(ctx context.Context) ([]models.UnavailabilityDetail, error) {
	windows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unavailabilities")
	}
	return windows, nil
}

// ListByTeacher returns one teacher's windows.
func (s *UnavailabilityService) ListByTeacher(ctx context.Context, teacherID int64) ([]models.UnavailabilityDetail, error) {
	windows, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher unavailabilities")
	}
	return windows, nil
}

func (s *UnavailabilityService) checkRange(ctx context.Context, req dto.UnavailabilityRequest) error {
	settings, err := s.settings.SolveSettings(ctx)
	if err != nil {
		return err
	}
	if req.Day < 0 || req.Day >= settings.Days {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day must be in [0, %d)", settings.Days))
	}
	if req.StartPeriod >= req.EndPeriod {
		return appErrors.Clone(appErrors.ErrValidation, "start_period must be before end_period")
	}
	if req.StartPeriod < 0 || req.EndPeriod > settings.Periods {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("periods must be in [0, %d)", settings.Periods))
	}
	return nil
}

// Create validates and stores a new window.
func (s *UnavailabilityService) Create(ctx context.Context, req dto.UnavailabilityRequest) (*models.Unavailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unavailability payload")
	}
	if err := s.refs.Teacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}
	if err := s.checkRange(ctx, req); err != nil {
		return nil, err
	}
	window := &models.Unavailability{
		TeacherID:   req.TeacherID,
		Day:         req.Day,
		StartPeriod: req.StartPeriod,
		EndPeriod:   req.EndPeriod,
	}
	if err := s.repo.Create(ctx, window); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create unavailability")
	}
	return window, nil
}

// Update validates and modifies an existing window.
func (s *UnavailabilityService) Update(ctx context.Context, id int64, req dto.UnavailabilityRequest) (*models.Unavailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid unavailability payload")
	}
	if err := s.refs.Teacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}
	if err := s.checkRange(ctx, req); err != nil {
		return nil, err
	}
	window, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unavailability not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unavailability")
	}
	window.TeacherID = req.TeacherID
	window.Day = req.Day
	window.StartPeriod = req.StartPeriod
	window.EndPeriod = req.EndPeriod
	if err := s.repo.Update(ctx, window); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update unavailability")
	}
	return window, nil
}

// Delete removes one window.
func (s *UnavailabilityService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "unavailability not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load unavailability")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete unavailability")
	}
	return nil
}
