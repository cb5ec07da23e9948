package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mie-portal/portal-api/internal/models"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByAccountID(ctx context.Context, accountID string) (*models.Student, error)
	FindByStudentNumber(ctx context.Context, studentNumber string) (*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
}

type studentResolver interface {
	ResolveStudent(ctx context.Context, ref string) (*models.Student, error)
}

// UpdateStudentRequest carries the mutable fields of a student record.
type UpdateStudentRequest struct {
	YearLevel     int    `json:"year_level" validate:"required"`
	Department    string `json:"department" validate:"required"`
	Course        string `json:"course" validate:"required"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Mother        string `json:"mother"`
	Father        string `json:"father"`
	GuardianPhone string `json:"guardian_phone"`
}

// StudentService serves student listing and profile maintenance.
type StudentService struct {
	repo      studentRepository
	identity  studentResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, identity studentResolver, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, identity: identity, validator: validate, logger: logger}
}

// List returns students plus pagination data.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
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
	return students, pagination, nil
}

// Get returns a student by either of its identifiers.
func (s *StudentService) Get(ctx context.Context, ref string) (*models.Student, error) {
	return s.identity.ResolveStudent(ctx, ref)
}

// Update modifies a student's record.
func (s *StudentService) Update(ctx context.Context, ref string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if !models.ValidDepartment(req.Department) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}
	if err := validYearLevel(req.Department, req.YearLevel); err != nil {
		return nil, err
	}

	student, err := s.identity.ResolveStudent(ctx, ref)
	if err != nil {
		return nil, err
	}

	student.YearLevel = req.YearLevel
	student.Department = req.Department
	student.Course = strings.TrimSpace(req.Course)
	student.Address = strings.TrimSpace(req.Address)
	student.Phone = strings.TrimSpace(req.Phone)
	student.Mother = strings.TrimSpace(req.Mother)
	student.Father = strings.TrimSpace(req.Father)
	student.GuardianPhone = strings.TrimSpace(req.GuardianPhone)

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}
