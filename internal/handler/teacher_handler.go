package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okulsoft/dersplan/internal/dto"
	"github.com/okulsoft/dersplan/internal/service"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
	"github.com/okulsoft/dersplan/pkg/response"
)

// TeacherHandler exposes teacher CRUD endpoints plus the teacher's course
// roster and unavailability windows.
type TeacherHandler struct {
	teachers         *service.TeacherService
	assignments      *service.AssignmentService
	unavailabilities *service.UnavailabilityService
}

// NewTeacherHandler constructs a teacher handler.
func NewTeacherHandler(
	teachers *service.TeacherService,
	assignments *service.AssignmentService,
	unavailabilities *service.UnavailabilityService,
) *TeacherHandler {
	return &TeacherHandler{teachers: teachers, assignments: assignments, unavailabilities: unavailabilities}
}

// List returns all teachers.
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, err := h.teachers.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// Get returns one teacher.
func (h *TeacherHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	teacher, err := h.teachers.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Create stores a new teacher.
func (h *TeacherHandler) Create(c *gin.Context) {
	var req dto.TeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	teacher, err := h.teachers.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, teacher)
}

// Update modifies a teacher.
func (h *TeacherHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.TeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	teacher, err := h.teachers.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teacher, nil)
}

// Delete removes a teacher.
func (h *TeacherHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.teachers.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Courses returns the teacher's assignment roster with display names.
func (h *TeacherHandler) Courses(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.teachers.Get(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	roster, err := h.assignments.ListByTeacher(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Unavailabilities returns the teacher's blocked windows.
func (h *TeacherHandler) Unavailabilities(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.teachers.Get(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	windows, err := h.unavailabilities.ListByTeacher(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, windows, nil)
}
