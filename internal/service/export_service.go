package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/okulsoft/dersplan/internal/dto"
	"github.com/okulsoft/dersplan/internal/models"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
	"github.com/okulsoft/dersplan/pkg/export"
)

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type csvRenderer interface {
	Render(grid export.Grid) ([]byte, error)
}

type pdfRenderer interface {
	Render(grids []export.Grid) ([]byte, error)
}

// ExportService assembles timetable grids and renders them to CSV and PDF.
type ExportService struct {
	schedule *ScheduleService
	classes  classRepository
	teachers teacherRepository
	rooms    roomRepository
	settings *SettingService
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService wires the export service.
func NewExportService(
	schedule *ScheduleService,
	classes classRepository,
	teachers teacherRepository,
	rooms roomRepository,
	settings *SettingService,
	csv csvRenderer,
	pdf pdfRenderer,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		schedule: schedule,
		classes:  classes,
		teachers: teachers,
		rooms:    rooms,
		settings: settings,
		csv:      csv,
		pdf:      pdf,
		logger:   logger,
	}
}

// timeLabels renders the period column from the presentation settings.
// Periods starting at or after lunch are shifted past the lunch window, as
// the timetable views present them.
func timeLabels(p models.PresentationSettings, periods int) []string {
	start := parseClock(p.DayStart)
	lunchStart := parseClock(p.LunchStart)
	lunchEnd := parseClock(p.LunchEnd)
	lunch := lunchEnd - lunchStart
	if lunch < 0 {
		lunch = 0
	}

	labels := make([]string, periods)
	for i := 0; i < periods; i++ {
		begin := start + i*(p.LessonMinutes+p.BreakMinutes)
		if lunch > 0 && begin >= lunchStart {
			begin += lunch
		}
		labels[i] = fmt.Sprintf("%s-%s", formatClock(begin), formatClock(begin+p.LessonMinutes))
	}
	return labels
}

func parseClock(value string) int {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0
	}
	var h, m int
	fmt.Sscanf(parts[0], "%d", &h)
	fmt.Sscanf(parts[1], "%d", &m)
	return h*60 + m
}

func formatClock(minutes int) string {
	minutes %= 24 * 60
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func dayHeader(days int) []string {
	headers := make([]string, days)
	for d := 0; d < days; d++ {
		headers[d] = dayNames[d%len(dayNames)]
	}
	return headers
}

// buildGrid lays placements into a periods × days matrix.
func (s *ExportService) buildGrid(ctx context.Context, title string, rows []models.PlacementDetail, fill func(models.PlacementDetail) dto.GridCell) (*dto.ScheduleGrid, error) {
	solve, err := s.settings.SolveSettings(ctx)
	if err != nil {
		return nil, err
	}
	pres, err := s.settings.PresentationSettings(ctx)
	if err != nil {
		return nil, err
	}

	grid := &dto.ScheduleGrid{
		Title:      title,
		Days:       solve.Days,
		Periods:    solve.Periods,
		TimeLabels: timeLabels(pres, solve.Periods),
		Cells:      make([][]dto.GridCell, solve.Periods),
	}
	for p := range grid.Cells {
		grid.Cells[p] = make([]dto.GridCell, solve.Days)
	}
	for _, row := range rows {
		if row.Day < 0 || row.Day >= solve.Days || row.Period < 0 || row.Period >= solve.Periods {
			continue
		}
		grid.Cells[row.Period][row.Day] = fill(row)
	}
	return grid, nil
}

func classCell(row models.PlacementDetail) dto.GridCell {
	cell := dto.GridCell{
		PlacementID: row.ID,
		CourseName:  row.CourseName,
		TeacherName: row.TeacherName,
	}
	if row.RoomName != nil {
		cell.RoomName = *row.RoomName
	}
	return cell
}

func teacherCell(row models.PlacementDetail) dto.GridCell {
	cell := dto.GridCell{
		PlacementID: row.ID,
		CourseName:  row.CourseName,
		ClassLabel:  fmt.Sprintf("%s/%s", row.ClassName, row.ClassSection),
	}
	if row.RoomName != nil {
		cell.RoomName = *row.RoomName
	}
	return cell
}

func roomCell(row models.PlacementDetail) dto.GridCell {
	return dto.GridCell{
		PlacementID: row.ID,
		CourseName:  row.CourseName,
		TeacherName: row.TeacherName,
		ClassLabel:  fmt.Sprintf("%s/%s", row.ClassName, row.ClassSection),
	}
}

// ClassGrid returns one class's weekly grid.
func (s *ExportService) ClassGrid(ctx context.Context, classID int64) (*dto.ScheduleGrid, error) {
	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	rows, err := s.schedule.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	return s.buildGrid(ctx, fmt.Sprintf("Class %s", class.Label()), rows, classCell)
}

// TeacherGrid returns one teacher's weekly grid.
func (s *ExportService) TeacherGrid(ctx context.Context, teacherID int64) (*dto.ScheduleGrid, error) {
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	rows, err := s.schedule.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	return s.buildGrid(ctx, teacher.FullName, rows, teacherCell)
}

// RoomGrid returns one room's weekly grid.
func (s *ExportService) RoomGrid(ctx context.Context, roomID int64) (*dto.ScheduleGrid, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
	}
	rows, err := s.schedule.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return s.buildGrid(ctx, fmt.Sprintf("Room %s", room.Name), rows, roomCell)
}

func toExportGrid(grid *dto.ScheduleGrid) export.Grid {
	out := export.Grid{
		Title:      grid.Title,
		TimeLabels: grid.TimeLabels,
		Days:       dayHeader(grid.Days),
		Cells:      make([][]string, len(grid.Cells)),
	}
	for p, row := range grid.Cells {
		out.Cells[p] = make([]string, len(row))
		for d, cell := range row {
			if cell.PlacementID == 0 && cell.CourseName == "" {
				continue
			}
			lines := []string{cell.CourseName}
			if cell.TeacherName != "" {
				lines = append(lines, cell.TeacherName)
			}
			if cell.ClassLabel != "" {
				lines = append(lines, cell.ClassLabel)
			}
			if cell.RoomName != "" {
				lines = append(lines, cell.RoomName)
			}
			out.Cells[p][d] = strings.Join(lines, "\n")
		}
	}
	return out
}

// ClassCSV renders one class's timetable to CSV.
func (s *ExportService) ClassCSV(ctx context.Context, classID int64) ([]byte, string, error) {
	grid, err := s.ClassGrid(ctx, classID)
	if err != nil {
		return nil, "", err
	}
	data, err := s.csv.Render(toExportGrid(grid))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, fileName(grid.Title, "csv"), nil
}

// TeacherCSV renders one teacher's timetable to CSV.
func (s *ExportService) TeacherCSV(ctx context.Context, teacherID int64) ([]byte, string, error) {
	grid, err := s.TeacherGrid(ctx, teacherID)
	if err != nil {
		return nil, "", err
	}
	data, err := s.csv.Render(toExportGrid(grid))
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, fileName(grid.Title, "csv"), nil
}

// SchoolPDF renders every class's timetable into one PDF, a page per class.
func (s *ExportService) SchoolPDF(ctx context.Context) ([]byte, string, error) {
	classes, err := s.classes.List(ctx)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	if len(classes) == 0 {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "no classes to export")
	}

	grids := make([]export.Grid, 0, len(classes))
	for _, class := range classes {
		grid, err := s.ClassGrid(ctx, class.ID)
		if err != nil {
			return nil, "", err
		}
		grids = append(grids, toExportGrid(grid))
	}
	data, err := s.pdf.Render(grids)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	s.logger.Sugar().Infow("school timetable exported", "classes", len(grids))
	return data, "timetable.pdf", nil
}

func fileName(title, ext string) string {
	slug := strings.ToLower(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, title))
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "schedule"
	}
	return fmt.Sprintf("%s.%s", slug, ext)
}
