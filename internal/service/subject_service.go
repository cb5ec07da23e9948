package service

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mie-portal/portal-api/internal/models"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

// SubjectRequest is the payload for creating or updating a subject.
type SubjectRequest struct {
	Code       string `json:"code" validate:"required"`
	Name       string `json:"subject_name" validate:"required"`
	Units      int    `json:"units" validate:"required,min=1"`
	Department string `json:"department" validate:"required"`
	YearLevel  int    `json:"year_level" validate:"required,min=1,max=12"`
	Semester   int    `json:"semester" validate:"required,min=1,max=4"`
}

// SubjectService orchestrates subject catalogue maintenance.
type SubjectService struct {
	repo      subjectRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs a SubjectService.
func NewSubjectService(repo subjectRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, cache: cache, validator: validate, logger: logger}
}

type cachedSubjectList struct {
	Subjects []models.Subject `json:"subjects"`
	Total    int              `json:"total"`
}

// List returns subjects plus pagination data. The catalogue changes rarely,
// so listings are served from the read cache; every write invalidates it.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	yearLevel, semester := "", ""
	if filter.YearLevel != nil {
		yearLevel = strconv.Itoa(*filter.YearLevel)
	}
	if filter.Semester != nil {
		semester = strconv.Itoa(*filter.Semester)
	}
	cacheKey := makeCacheKey("subjects", filter.Department, yearLevel, semester, filter.Search,
		filter.SortBy, filter.SortOrder, strconv.Itoa(filter.Page), strconv.Itoa(filter.PageSize))

	var cached cachedSubjectList
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached.Subjects, listPagination(filter.Page, filter.PageSize, cached.Total), nil
	}

	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	if err := s.cache.Set(ctx, cacheKey, cachedSubjectList{Subjects: subjects, Total: total}, 0); err != nil {
		s.logger.Warn("failed to cache subject list", zap.Error(err))
	}
	return subjects, listPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a subject by id.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	return subject, nil
}

// Create registers a new subject in the catalogue.
func (s *SubjectService) Create(ctx context.Context, req SubjectRequest) (*models.Subject, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByCode(ctx, req.Code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already used")
	}

	subject := &models.Subject{
		Code:       strings.TrimSpace(req.Code),
		Name:       strings.TrimSpace(req.Name),
		Units:      req.Units,
		Department: req.Department,
		YearLevel:  req.YearLevel,
		Semester:   req.Semester,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	s.invalidateListings(ctx)
	return subject, nil
}

// Update modifies an existing subject.
func (s *SubjectService) Update(ctx context.Context, id string, req SubjectRequest) (*models.Subject, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	exists, err := s.repo.ExistsByCode(ctx, req.Code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already used")
	}

	subject.Code = strings.TrimSpace(req.Code)
	subject.Name = strings.TrimSpace(req.Name)
	subject.Units = req.Units
	subject.Department = req.Department
	subject.YearLevel = req.YearLevel
	subject.Semester = req.Semester

	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	s.invalidateListings(ctx)
	return subject, nil
}

// DeleteMany removes subjects in bulk and reports how many were deleted.
func (s *SubjectService) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "no subject ids given")
	}
	deleted, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subjects")
	}
	s.invalidateListings(ctx)
	return deleted, nil
}

func (s *SubjectService) invalidateListings(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "subjects:*"); err != nil {
		s.logger.Warn("failed to invalidate subject cache", zap.Error(err))
	}
}

func (s *SubjectService) validateRequest(req SubjectRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	if !models.ValidDepartment(req.Department) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}
	return nil
}
