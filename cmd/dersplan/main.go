package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/okulsoft/dersplan/internal/catalog"
	"github.com/okulsoft/dersplan/internal/handler"
	appmiddleware "github.com/okulsoft/dersplan/internal/middleware"
	"github.com/okulsoft/dersplan/internal/repository"
	"github.com/okulsoft/dersplan/internal/service"
	"github.com/okulsoft/dersplan/internal/solver"
	"github.com/okulsoft/dersplan/pkg/cache"
	"github.com/okulsoft/dersplan/pkg/config"
	"github.com/okulsoft/dersplan/pkg/database"
	appErrors "github.com/okulsoft/dersplan/pkg/errors"
	"github.com/okulsoft/dersplan/pkg/export"
	"github.com/okulsoft/dersplan/pkg/jobs"
	"github.com/okulsoft/dersplan/pkg/logger"
	corsmiddleware "github.com/okulsoft/dersplan/pkg/middleware/cors"
	reqidmiddleware "github.com/okulsoft/dersplan/pkg/middleware/requestid"
)

const (
	exitOK        = 0
	exitDataError = 1
	exitInfeasib  = 2
	exitUsage     = 64
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: dersplan <command> [flags]

commands:
  serve           run the HTTP API
  solve           generate a schedule over the current store state
                  [--time-budget N] solver wall clock in seconds
  clear-schedule  wipe all placements`)
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return exitDataError
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Printf("failed to init logger: %v", err)
		return exitDataError
	}
	defer logr.Sync() //nolint:errcheck

	switch args[0] {
	case "serve":
		return runServe(cfg, logr)
	case "solve":
		fs := flag.NewFlagSet("solve", flag.ContinueOnError)
		budget := fs.Int("time-budget", 0, "solver wall clock in seconds (0 = use stored setting)")
		if err := fs.Parse(args[1:]); err != nil {
			return exitUsage
		}
		return runSolve(cfg, logr, *budget)
	case "clear-schedule":
		return runClear(cfg, logr)
	default:
		usage()
		return exitUsage
	}
}

// app bundles the wired object graph shared by every command.
type app struct {
	db       *sqlx.DB
	redis    *redis.Client
	runner   *jobs.Runner
	schedule *service.ScheduleService
	editor   *service.EditorService
	handlers handler.Handlers
	auth     *service.AuthService
	metrics  *service.MetricsService
}

func buildApp(cfg *config.Config, logr *zap.Logger) (*app, error) {
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Bootstrap(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, schedule cache disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()

	classRepo := repository.NewClassRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	unavailabilityRepo := repository.NewUnavailabilityRepository(db)
	placementRepo := repository.NewPlacementRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	settingSvc := service.NewSettingService(settingRepo, validate, logr)
	refs := service.RefChecker{Classes: classRepo, Teachers: teacherRepo, Courses: courseRepo}

	classSvc := service.NewClassService(classRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, refs, validate, logr)
	unavailabilitySvc := service.NewUnavailabilityService(unavailabilityRepo, refs, settingSvc, validate, logr)

	loader := catalog.NewLoader(classRepo, teacherRepo, courseRepo, roomRepo, assignmentRepo, unavailabilityRepo, settingRepo, logr)
	solveEngine := solver.New(loader, placementRepo, logr)

	metricsSvc := service.NewMetricsService()
	runner := jobs.NewRunner(logr)
	scheduleSvc := service.NewScheduleService(solveEngine, placementRepo, runner, redisClient, cfg.Solve.CacheTTL, metricsSvc, logr)
	editorSvc := service.NewEditorService(placementRepo, roomRepo, settingSvc, validate, logr)
	exportSvc := service.NewExportService(scheduleSvc, classRepo, teacherRepo, roomRepo, settingSvc,
		export.NewCSVExporter(), export.NewPDFExporter(), logr)
	authSvc := service.NewAuthService(cfg.Auth, validate, logr)

	handlers := handler.Handlers{
		Auth:             handler.NewAuthHandler(authSvc),
		Classes:          handler.NewClassHandler(classSvc, assignmentSvc),
		Teachers:         handler.NewTeacherHandler(teacherSvc, assignmentSvc, unavailabilitySvc),
		Courses:          handler.NewCourseHandler(courseSvc),
		Rooms:            handler.NewRoomHandler(roomSvc),
		Assignments:      handler.NewAssignmentHandler(assignmentSvc),
		Unavailabilities: handler.NewUnavailabilityHandler(unavailabilitySvc),
		Settings:         handler.NewSettingHandler(settingSvc),
		Schedule:         handler.NewScheduleHandler(scheduleSvc, editorSvc, exportSvc),
		Exports:          handler.NewExportHandler(exportSvc),
	}

	return &app{
		db:       db,
		redis:    redisClient,
		runner:   runner,
		schedule: scheduleSvc,
		editor:   editorSvc,
		handlers: handlers,
		auth:     authSvc,
		metrics:  metricsSvc,
	}, nil
}

func (a *app) close() {
	a.runner.Stop()
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = a.db.Close()
}

func runServe(cfg *config.Config, logr *zap.Logger) int {
	a, err := buildApp(cfg, logr)
	if err != nil {
		logr.Sugar().Errorw("startup failed", "error", err)
		return exitDataError
	}
	defer a.close()

	a.runner.Start(context.Background())

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(appmiddleware.Metrics(a.metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(a.metrics.Handler()))

	api := r.Group(cfg.APIPrefix)
	a.handlers.Register(api, appmiddleware.JWT(a.auth))

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "db_driver", cfg.Database.Driver)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Errorw("server failed", "error", err)
		return exitDataError
	}
	return exitOK
}

func runSolve(cfg *config.Config, logr *zap.Logger, budgetSeconds int) int {
	a, err := buildApp(cfg, logr)
	if err != nil {
		logr.Sugar().Errorw("startup failed", "error", err)
		return exitDataError
	}
	defer a.close()

	var budget time.Duration
	if budgetSeconds > 0 {
		budget = time.Duration(budgetSeconds) * time.Second
	}

	result, err := a.schedule.SolveSync(context.Background(), budget)
	if err != nil {
		appErr := appErrors.FromError(err)
		logr.Sugar().Errorw("solve failed", "code", appErr.Code, "error", appErr.Message)
		if appErrors.HasCode(err, appErrors.ErrInfeasible) {
			return exitInfeasib
		}
		return exitDataError
	}

	logr.Sugar().Infow("solve succeeded",
		"status", result.Stats.Status,
		"placements", result.Stats.Placements,
		"cost", result.Stats.Cost,
		"duration", result.Stats.Duration.String(),
	)
	return exitOK
}

func runClear(cfg *config.Config, logr *zap.Logger) int {
	a, err := buildApp(cfg, logr)
	if err != nil {
		logr.Sugar().Errorw("startup failed", "error", err)
		return exitDataError
	}
	defer a.close()

	if err := a.schedule.Clear(context.Background()); err != nil {
		logr.Sugar().Errorw("clear failed", "error", err)
		return exitDataError
	}
	logr.Info("placements cleared")
	return exitOK
}
