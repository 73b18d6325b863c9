package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okulsoft/dersplan/internal/dto"
	"github.com/okulsoft/dersplan/internal/service"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
	"github.com/okulsoft/dersplan/pkg/response"
)

// ScheduleHandler exposes the solve lifecycle, schedule reads and the manual
// editor operations.
type ScheduleHandler struct {
	schedule *service.ScheduleService
	editor   *service.EditorService
	exports  *service.ExportService
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(schedule *service.ScheduleService, editor *service.EditorService, exports *service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule, editor: editor, exports: exports}
}

// List returns every placement with display names.
func (h *ScheduleHandler) List(c *gin.Context) {
	details, err := h.schedule.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// ClassGrid returns one class's weekly grid.
func (h *ScheduleHandler) ClassGrid(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	grid, err := h.exports.ClassGrid(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// TeacherGrid returns one teacher's weekly grid.
func (h *ScheduleHandler) TeacherGrid(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	grid, err := h.exports.TeacherGrid(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// RoomGrid returns one room's weekly grid.
func (h *ScheduleHandler) RoomGrid(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	grid, err := h.exports.RoomGrid(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// Solve starts a background schedule generation run.
func (h *ScheduleHandler) Solve(c *gin.Context) {
	var req dto.SolveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
			return
		}
	}
	jobID, err := h.schedule.StartSolve(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"job_id": jobID}, nil)
}

// SolveStatus returns the polled snapshot of the running or last solve.
func (h *ScheduleHandler) SolveStatus(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.schedule.Status(), nil)
}

// SolveCancel requests cooperative cancellation.
func (h *ScheduleHandler) SolveCancel(c *gin.Context) {
	if err := h.schedule.CancelSolve(); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.schedule.Status(), nil)
}

// Move relocates a placement; conflicts are reported, not rolled back.
func (h *ScheduleHandler) Move(c *gin.Context) {
	if h.schedule.Busy() {
		response.Error(c, appErrors.Clone(appErrors.ErrConflict, "a solve is running"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	result, err := h.editor.Move(c.Request.Context(), id, req, service.ResolverFor(req.OnConflict))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.schedule.InvalidateCache(c.Request.Context())
	response.JSON(c, http.StatusOK, result, nil)
}

// DeletePlacement removes one placement.
func (h *ScheduleHandler) DeletePlacement(c *gin.Context) {
	if h.schedule.Busy() {
		response.Error(c, appErrors.Clone(appErrors.ErrConflict, "a solve is running"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.editor.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	h.schedule.InvalidateCache(c.Request.Context())
	response.NoContent(c)
}

// Clear wipes the schedule.
func (h *ScheduleHandler) Clear(c *gin.Context) {
	if err := h.schedule.Clear(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
