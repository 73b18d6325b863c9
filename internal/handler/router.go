package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers bundles every mounted handler for route registration.
type Handlers struct {
	Auth             *AuthHandler
	Classes          *ClassHandler
	Teachers         *TeacherHandler
	Courses          *CourseHandler
	Rooms            *RoomHandler
	Assignments      *AssignmentHandler
	Unavailabilities *UnavailabilityHandler
	Settings         *SettingHandler
	Schedule         *ScheduleHandler
	Exports          *ExportHandler
}

// Register mounts the API surface. The protect middleware guards every
// mutating route; read routes stay open so the companion UI can render
// without a token.
func (h Handlers) Register(api *gin.RouterGroup, protect gin.HandlerFunc) {
	api.POST("/auth/login", h.Auth.Login)

	api.GET("/classes", h.Classes.List)
	api.GET("/classes/:id", h.Classes.Get)
	api.GET("/classes/:id/courses", h.Classes.Courses)
	api.POST("/classes", protect, h.Classes.Create)
	api.PUT("/classes/:id", protect, h.Classes.Update)
	api.DELETE("/classes/:id", protect, h.Classes.Delete)

	api.GET("/teachers", h.Teachers.List)
	api.GET("/teachers/:id", h.Teachers.Get)
	api.GET("/teachers/:id/courses", h.Teachers.Courses)
	api.GET("/teachers/:id/unavailabilities", h.Teachers.Unavailabilities)
	api.POST("/teachers", protect, h.Teachers.Create)
	api.PUT("/teachers/:id", protect, h.Teachers.Update)
	api.DELETE("/teachers/:id", protect, h.Teachers.Delete)

	api.GET("/courses", h.Courses.List)
	api.GET("/courses/:id", h.Courses.Get)
	api.POST("/courses", protect, h.Courses.Create)
	api.PUT("/courses/:id", protect, h.Courses.Update)
	api.DELETE("/courses/:id", protect, h.Courses.Delete)

	api.GET("/rooms", h.Rooms.List)
	api.GET("/rooms/:id", h.Rooms.Get)
	api.POST("/rooms", protect, h.Rooms.Create)
	api.PUT("/rooms/:id", protect, h.Rooms.Update)
	api.DELETE("/rooms/:id", protect, h.Rooms.Delete)

	api.GET("/assignments", h.Assignments.List)
	api.GET("/assignments/:id", h.Assignments.Get)
	api.POST("/assignments", protect, h.Assignments.Create)
	api.PUT("/assignments/:id", protect, h.Assignments.Update)
	api.DELETE("/assignments/:id", protect, h.Assignments.Delete)

	api.GET("/unavailabilities", h.Unavailabilities.List)
	api.POST("/unavailabilities", protect, h.Unavailabilities.Create)
	api.PUT("/unavailabilities/:id", protect, h.Unavailabilities.Update)
	api.DELETE("/unavailabilities/:id", protect, h.Unavailabilities.Delete)

	api.GET("/settings", h.Settings.List)
	api.GET("/settings/:key", h.Settings.Get)
	api.PUT("/settings/:key", protect, h.Settings.Put)

	api.GET("/schedule", h.Schedule.List)
	api.GET("/schedule/classes/:id", h.Schedule.ClassGrid)
	api.GET("/schedule/teachers/:id", h.Schedule.TeacherGrid)
	api.GET("/schedule/rooms/:id", h.Schedule.RoomGrid)
	api.POST("/schedule/solve", protect, h.Schedule.Solve)
	api.GET("/schedule/solve/status", h.Schedule.SolveStatus)
	api.POST("/schedule/solve/cancel", protect, h.Schedule.SolveCancel)
	api.POST("/schedule/placements/:id/move", protect, h.Schedule.Move)
	api.DELETE("/schedule/placements/:id", protect, h.Schedule.DeletePlacement)
	api.DELETE("/schedule", protect, h.Schedule.Clear)

	api.GET("/export/schedule/pdf", h.Exports.SchoolPDF)
	api.GET("/export/classes/:id/csv", h.Exports.ClassCSV)
	api.GET("/export/teachers/:id/csv", h.Exports.TeacherCSV)
}
