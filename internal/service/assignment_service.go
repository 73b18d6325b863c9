package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/okulsoft/dersplan/internal/dto"
	"github.com/okulsoft/dersplan/internal/models"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context) ([]models.Assignment, error)
	ListEnriched(ctx context.Context) ([]models.AssignmentDetail, error)
	ListByClass(ctx context.Context, classID int64) ([]models.AssignmentDetail, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.AssignmentDetail, error)
	FindByID(ctx context.Context, id int64) (*models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id int64) error
}

type assignmentRefs interface {
	Class(ctx context.Context, id int64) error
	Teacher(ctx context.Context, id int64) error
	Course(ctx context.Context, id int64) error
}

// RefChecker verifies referenced entities exist before an assignment write.
type RefChecker struct {
	Classes  classRepository
	Teachers teacherRepository
	Courses  courseRepository
}

// Class returns a validation error unless the class exists.
func (r RefChecker) Class(ctx context.Context, id int64) error {
	if _, err := r.Classes.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "class does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return nil
}

// Teacher returns a validation error unless the teacher exists.
func (r RefChecker) Teacher(ctx context.Context, id int64) error {
	if _, err := r.Teachers.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "teacher does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return nil
}

// Course returns a validation error unless the course exists.
func (r RefChecker) Course(ctx context.Context, id int64) error {
	if _, err := r.Courses.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "course does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return nil
}

// AssignmentService provides assignment CRUD and joined projections.
type AssignmentService struct {
	repo      assignmentRepository
	refs      assignmentRefs
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an assignment service.
func NewAssignmentService(repo assignmentRepository, refs assignmentRefs, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, refs: refs, validator: validate, logger: logger}
}

// ListEnriched returns assignments joined with display names.
func (s *AssignmentService) ListEnriched(ctx context.Context) ([]models.AssignmentDetail, error) {
	details, err := s.repo.ListEnriched(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return details, nil
}

// ListByClass returns one class's course roster.
func (s *AssignmentService) ListByClass(ctx context.Context, classID int64) ([]models.AssignmentDetail, error) {
	details, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list class courses")
	}
	return details, nil
}

// ListByTeacher returns one teacher's course roster.
func (s *AssignmentService) ListByTeacher(ctx context.Context, teacherID int64) ([]models.AssignmentDetail, error) {
	details, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher courses")
	}
	return details, nil
}

// Get returns one assignment.
func (s *AssignmentService) Get(ctx context.Context, id int64) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

func (s *AssignmentService) checkRefs(ctx context.Context, req dto.AssignmentRequest) error {
	if err := s.refs.Course(ctx, req.CourseID); err != nil {
		return err
	}
	if err := s.refs.Class(ctx, req.ClassID); err != nil {
		return err
	}
	return s.refs.Teacher(ctx, req.TeacherID)
}

// Create validates references and stores a new assignment.
func (s *AssignmentService) Create(ctx context.Context, req dto.AssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if err := s.checkRefs(ctx, req); err != nil {
		return nil, err
	}
	assignment := &models.Assignment{
		CourseID:    req.CourseID,
		ClassID:     req.ClassID,
		TeacherID:   req.TeacherID,
		WeeklyHours: req.WeeklyHours,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, err
	}
	s.logger.Sugar().Infow("assignment created",
		"course_id", assignment.CourseID, "class_id", assignment.ClassID,
		"teacher_id", assignment.TeacherID, "weekly_hours", assignment.WeeklyHours)
	return assignment, nil
}

// Update validates references and modifies an existing assignment.
func (s *AssignmentService) Update(ctx context.Context, id int64, req dto.AssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if err := s.checkRefs(ctx, req); err != nil {
		return nil, err
	}
	assignment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	assignment.CourseID = req.CourseID
	assignment.ClassID = req.ClassID
	assignment.TeacherID = req.TeacherID
	assignment.WeeklyHours = req.WeeklyHours
	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// Delete removes an assignment together with its placements.
func (s *AssignmentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}
