package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/config"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	appHTTP "github.com/cmlabs-hris/hris-attendance/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance/internal/repository/memory"
	"github.com/cmlabs-hris/hris-attendance/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance/internal/service/attendance"
	reportService "github.com/cmlabs-hris/hris-attendance/internal/service/report"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).With(
		slog.String("app", "hris-attendance"),
		slog.String("env", cfg.App.Env),
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		attendanceRepo attendance.AttendanceRepository
		employeeRepo   employee.EmployeeRepository
	)
	switch cfg.Database.Driver {
	case config.StoreDriverMemory:
		attendanceRepo = memory.NewAttendanceRepository()
		if cfg.Database.SeedFile != "" {
			employeeRepo, err = memory.LoadEmployees(cfg.Database.SeedFile)
			if err != nil {
				return err
			}
		} else {
			employeeRepo = memory.NewEmployeeRepository()
		}
		slog.Warn("Using in-memory store, attendance is lost on restart")
	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.DefaultPoolOptions)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		if err := postgresql.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		attendanceRepo = postgresql.NewAttendanceRepository(db)
		employeeRepo = postgresql.NewEmployeeRepository(db)
	}

	holidays, err := calendar.Load(cfg.Attendance.HolidaysFile)
	if err != nil {
		return fmt.Errorf("load holiday calendar: %w", err)
	}
	loc := cfg.Attendance.Location
	if year := time.Now().In(loc).Year(); len(holidays.Holidays(year)) == 0 {
		slog.Warn("No holidays configured for the current year", "year", year, "file", cfg.Attendance.HolidaysFile)
	}
	policy := attendance.DefaultShiftPolicy

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, policy, holidays, loc)
	reconciliationSvc := attendanceService.NewReconciliationService(attendanceRepo, loc)
	reportSvc := reportService.NewReportService(attendanceRepo, employeeRepo, policy, holidays, loc)

	scheduler := cron.NewScheduler(loc)
	if err := cron.NewAttendanceJobs(reconciliationSvc).RegisterJobs(scheduler, cfg.Attendance.ReconcileSchedule); err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, reconciliationSvc, reportSvc, loc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	router := appHTTP.NewRouter(JWTService, attendanceHandler, reportHandler, appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.FrontendURL,
		Env:            cfg.App.Env,
		LogLevel:       cfg.SlogLevel(),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "timezone", loc.String(), "store", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
