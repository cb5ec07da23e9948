package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mie-portal/portal-api/internal/models"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
	"github.com/mie-portal/portal-api/pkg/timeslot"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindByAccountID(ctx context.Context, accountID string) (*models.Teacher, error)
	UpdateSubjects(ctx context.Context, id string, subjects models.SubjectAssignments) error
}

type subjectFinder interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type teacherResolver interface {
	ResolveTeacher(ctx context.Context, ref string) (*models.Teacher, error)
}

// SubjectAssignmentRequest is one incoming subject assignment.
type SubjectAssignmentRequest struct {
	SubjectID   string `json:"subject_id" validate:"required"`
	Day         string `json:"day" validate:"required"`
	Time        string `json:"time" validate:"required"`
	Room        string `json:"room"`
	NumStudents int    `json:"num_students" validate:"omitempty,min=0"`
}

// UpdateSubjectsRequest replaces a teacher's full assignment list.
type UpdateSubjectsRequest struct {
	Subjects []SubjectAssignmentRequest `json:"subjects" validate:"dive"`
}

// TeacherService orchestrates teacher listing and subject assignment.
type TeacherService struct {
	repo      teacherRepository
	subjects  subjectFinder
	identity  teacherResolver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, subjects subjectFinder, identity teacherResolver, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, subjects: subjects, identity: identity, cache: cache, validator: validate, logger: logger}
}

type cachedTeacherList struct {
	Teachers []models.Teacher `json:"teachers"`
	Total    int              `json:"total"`
}

// List returns teachers plus pagination data. Listings are served from the
// read cache when present; assignment updates invalidate the namespace.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	cacheKey := makeCacheKey("teachers", filter.Department, filter.Search, filter.SortBy, filter.SortOrder,
		strconv.Itoa(filter.Page), strconv.Itoa(filter.PageSize))

	var cached cachedTeacherList
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached.Teachers, listPagination(filter.Page, filter.PageSize, cached.Total), nil
	}

	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}

	if err := s.cache.Set(ctx, cacheKey, cachedTeacherList{Teachers: teachers, Total: total}, 0); err != nil {
		s.logger.Warn("failed to cache teacher list", zap.Error(err))
	}
	return teachers, listPagination(filter.Page, filter.PageSize, total), nil
}

func listPagination(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

// Get returns a teacher by either of its identifiers.
func (s *TeacherService) Get(ctx context.Context, ref string) (*models.Teacher, error) {
	return s.identity.ResolveTeacher(ctx, ref)
}

// UpdateSubjects replaces the teacher's subject assignment list after
// validating every entry and detecting weekly time slot collisions. The
// incoming list is authoritative; nothing is merged with the stored one.
func (s *TeacherService) UpdateSubjects(ctx context.Context, ref string, req UpdateSubjectsRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subjects payload")
	}

	teacher, err := s.identity.ResolveTeacher(ctx, ref)
	if err != nil {
		return nil, err
	}

	assignments := make([]timeslot.Assignment, len(req.Subjects))
	for i, sub := range req.Subjects {
		assignments[i] = timeslot.Assignment{
			SubjectID: strings.TrimSpace(sub.SubjectID),
			Day:       strings.TrimSpace(sub.Day),
			Time:      strings.TrimSpace(sub.Time),
		}
	}

	if err := timeslot.CheckAssignments(assignments); err != nil {
		if timeslot.IsConflict(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status, err.Error())
		}
		var assignErr *timeslot.AssignmentError
		if errors.As(err, &assignErr) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate subjects")
	}

	subjects := make(models.SubjectAssignments, len(req.Subjects))
	for i, sub := range req.Subjects {
		if _, err := s.subjects.FindByID(ctx, assignments[i].SubjectID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown subject "+assignments[i].SubjectID)
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
		}

		slots, err := timeslot.Expand(assignments[i].Time)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		subjects[i] = models.SubjectAssignment{
			SubjectID:   assignments[i].SubjectID,
			Day:         assignments[i].Day,
			Time:        assignments[i].Time,
			Room:        strings.TrimSpace(sub.Room),
			Slots:       len(slots),
			NumStudents: sub.NumStudents,
		}
	}

	if err := s.repo.UpdateSubjects(ctx, teacher.ID, subjects); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subjects")
	}
	if err := s.cache.Invalidate(ctx, "teachers:*"); err != nil {
		s.logger.Warn("failed to invalidate teacher cache", zap.Error(err))
	}
	teacher.Subjects = subjects
	return teacher, nil
}
