package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mie-portal/portal-api/internal/models"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
)

type disciplinaryRepository interface {
	ListByStudentNumber(ctx context.Context, studentNumber string) ([]models.DisciplinaryRecordDetail, error)
	FindByID(ctx context.Context, id string) (*models.DisciplinaryRecord, error)
	Create(ctx context.Context, record *models.DisciplinaryRecord) error
	Update(ctx context.Context, record *models.DisciplinaryRecord) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

// DisciplinaryRequest files or amends a violation record.
type DisciplinaryRequest struct {
	TeacherRef    string     `json:"teachers_id" validate:"required"`
	StudentNumber string     `json:"student_number" validate:"required"`
	Violation     string     `json:"violation" validate:"required"`
	Sanction      string     `json:"sanction" validate:"required"`
	Severity      int        `json:"severity" validate:"required,min=1,max=5"`
	Remarks       string     `json:"remarks"`
	Date          *time.Time `json:"date"`
}

// DisciplinaryService maintains student violation records.
type DisciplinaryService struct {
	repo      disciplinaryRepository
	students  gradeStudentLookup
	identity  teacherResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDisciplinaryService constructs a DisciplinaryService.
func NewDisciplinaryService(repo disciplinaryRepository, students gradeStudentLookup, identity teacherResolver, validate *validator.Validate, logger *zap.Logger) *DisciplinaryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DisciplinaryService{repo: repo, students: students, identity: identity, validator: validate, logger: logger}
}

// ListByStudent returns a student's violation history with the filing
// teacher's identity attached.
func (s *DisciplinaryService) ListByStudent(ctx context.Context, studentNumber string) ([]models.DisciplinaryRecordDetail, error) {
	if strings.TrimSpace(studentNumber) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student number is required")
	}
	records, err := s.repo.ListByStudentNumber(ctx, studentNumber)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list disciplinary records")
	}
	return records, nil
}

// Create files a new violation. The teacher reference is resolved to the
// teacher record's own identity before persistence so stored records are
// uniform regardless of which identifier the caller held.
func (s *DisciplinaryService) Create(ctx context.Context, req DisciplinaryRequest) (*models.DisciplinaryRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid disciplinary payload")
	}

	teacher, err := s.identity.ResolveTeacher(ctx, req.TeacherRef)
	if err != nil {
		return nil, err
	}

	if _, err := s.students.FindByStudentNumber(ctx, req.StudentNumber); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	record := &models.DisciplinaryRecord{
		TeacherID:     teacher.ID,
		StudentNumber: strings.TrimSpace(req.StudentNumber),
		Violation:     strings.TrimSpace(req.Violation),
		Sanction:      strings.TrimSpace(req.Sanction),
		Severity:      req.Severity,
		Remarks:       strings.TrimSpace(req.Remarks),
	}
	if req.Date != nil {
		record.Date = req.Date.UTC()
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create disciplinary record")
	}
	return record, nil
}

// Update amends an existing violation record.
func (s *DisciplinaryService) Update(ctx context.Context, id string, req DisciplinaryRequest) (*models.DisciplinaryRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid disciplinary payload")
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "disciplinary record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load disciplinary record")
	}

	record.Violation = strings.TrimSpace(req.Violation)
	record.Sanction = strings.TrimSpace(req.Sanction)
	record.Severity = req.Severity
	record.Remarks = strings.TrimSpace(req.Remarks)
	if req.Date != nil {
		record.Date = req.Date.UTC()
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update disciplinary record")
	}
	return record, nil
}

// DeleteMany removes violation records in bulk.
func (s *DisciplinaryService) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "no record ids given")
	}
	deleted, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete disciplinary records")
	}
	return deleted, nil
}
