package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mie-portal/portal-api/internal/models"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
	"github.com/mie-portal/portal-api/pkg/timeslot"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type scheduleStudentLookup interface {
	FindByStudentNumber(ctx context.Context, studentNumber string) (*models.Student, error)
}

// ScheduleEntryRequest is one class entry in a schedule payload.
type ScheduleEntryRequest struct {
	TeacherID string `json:"teacher_id"`
	SubjectID string `json:"subject_id" validate:"required"`
	Room      string `json:"room"`
	Day       string `json:"day" validate:"required"`
	Time      string `json:"time" validate:"required"`
}

// ScheduleRequest creates or replaces a student's term schedule.
type ScheduleRequest struct {
	StudentNumber string                 `json:"student_number" validate:"required"`
	Semester      string                 `json:"semester" validate:"required"`
	AcadYear      string                 `json:"acad_year" validate:"required"`
	Entries       []ScheduleEntryRequest `json:"schedules" validate:"required,dive"`
}

// ScheduleService maintains student term schedules. Entries are kept
// independent of teacher subject assignments; only the day and time
// grammar of each entry is enforced here.
type ScheduleService struct {
	repo      scheduleRepository
	students  scheduleStudentLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(repo scheduleRepository, students scheduleStudentLookup, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns schedules plus pagination data.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error) {
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return schedules, pagination, nil
}

// Get returns a schedule by id.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return schedule, nil
}

// Create records a new term schedule for a student.
func (s *ScheduleService) Create(ctx context.Context, req ScheduleRequest) (*models.Schedule, error) {
	entries, err := s.buildEntries(ctx, req)
	if err != nil {
		return nil, err
	}

	schedule := &models.Schedule{
		StudentNumber: strings.TrimSpace(req.StudentNumber),
		Semester:      strings.TrimSpace(req.Semester),
		AcadYear:      strings.TrimSpace(req.AcadYear),
		Entries:       entries,
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	return schedule, nil
}

// Update replaces an existing term schedule.
func (s *ScheduleService) Update(ctx context.Context, id string, req ScheduleRequest) (*models.Schedule, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.buildEntries(ctx, req)
	if err != nil {
		return nil, err
	}

	schedule.StudentNumber = strings.TrimSpace(req.StudentNumber)
	schedule.Semester = strings.TrimSpace(req.Semester)
	schedule.AcadYear = strings.TrimSpace(req.AcadYear)
	schedule.Entries = entries

	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}
	return schedule, nil
}

// Delete removes a schedule.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	return nil
}

func (s *ScheduleService) buildEntries(ctx context.Context, req ScheduleRequest) (models.ScheduleEntries, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	if _, err := s.students.FindByStudentNumber(ctx, req.StudentNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown student number")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	entries := make(models.ScheduleEntries, len(req.Entries))
	for i, entry := range req.Entries {
		day := strings.TrimSpace(entry.Day)
		if !timeslot.ValidDay(day) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("entry %d: unknown day %q", i, day))
		}
		timeRange := strings.TrimSpace(entry.Time)
		if _, err := timeslot.Expand(timeRange); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("entry %d: %v", i, err))
		}
		entries[i] = models.ScheduleEntry{
			TeacherID: strings.TrimSpace(entry.TeacherID),
			SubjectID: strings.TrimSpace(entry.SubjectID),
			Room:      strings.TrimSpace(entry.Room),
			Day:       day,
			Time:      timeRange,
		}
	}
	return entries, nil
}
