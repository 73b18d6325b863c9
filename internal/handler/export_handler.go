package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okulsoft/dersplan/internal/service"
	"github.com/okulsoft/dersplan/pkg/response"
)

// ExportHandler serves rendered timetable files.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

func serveFile(c *gin.Context, data []byte, name, contentType string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, contentType, data)
}

// SchoolPDF renders all class timetables into one PDF.
func (h *ExportHandler) SchoolPDF(c *gin.Context) {
	data, name, err := h.exports.SchoolPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, data, name, "application/pdf")
}

// ClassCSV renders one class timetable to CSV.
func (h *ExportHandler) ClassCSV(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	data, name, err := h.exports.ClassCSV(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, data, name, "text/csv")
}

// TeacherCSV renders one teacher timetable to CSV.
func (h *ExportHandler) TeacherCSV(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	data, name, err := h.exports.TeacherCSV(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, data, name, "text/csv")
}
