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

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error)
	FindByID(ctx context.Context, id string) (*models.GradeRecord, error)
	FindByStudentAndTerm(ctx context.Context, studentNumber string, semester int, acadYear string) (*models.GradeRecord, error)
	Create(ctx context.Context, record *models.GradeRecord) error
	Update(ctx context.Context, record *models.GradeRecord) error
	Delete(ctx context.Context, id string) error
}

type gradeScheduleLookup interface {
	ListByTeacherAndSubject(ctx context.Context, teacherID, subjectID string) ([]models.Schedule, error)
}

type gradeStudentLookup interface {
	FindByStudentNumber(ctx context.Context, studentNumber string) (*models.Student, error)
}

type gradeAccountLookup interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

// UpsertGradeRequest records one teacher's mark for a student in a term.
type UpsertGradeRequest struct {
	StudentNumber string  `json:"student_number" validate:"required"`
	TeacherRef    string  `json:"teacher_ref" validate:"required"`
	SubjectID     string  `json:"subject_ref" validate:"required"`
	Semester      int     `json:"semester" validate:"required,min=1,max=4"`
	AcadYear      string  `json:"acad_year" validate:"required"`
	Percent       float64 `json:"percent" validate:"min=0,max=100"`
}

// GradeService maintains grade records and builds subject rosters with
// grade overlays.
type GradeService struct {
	repo      gradeRepository
	schedules gradeScheduleLookup
	students  gradeStudentLookup
	accounts  gradeAccountLookup
	identity  teacherResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService.
func NewGradeService(
	repo gradeRepository,
	schedules gradeScheduleLookup,
	students gradeStudentLookup,
	accounts gradeAccountLookup,
	identity teacherResolver,
	validate *validator.Validate,
	logger *zap.Logger,
) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		repo:      repo,
		schedules: schedules,
		students:  students,
		accounts:  accounts,
		identity:  identity,
		validator: validate,
		logger:    logger,
	}
}

// GradeStatus derives the pass/fail label for a percentage mark.
func GradeStatus(percent float64) string {
	if percent >= models.PassingPercent {
		return "Passed"
	}
	return "Failed"
}

// ListByStudent returns all grade records for one student.
func (s *GradeService) ListByStudent(ctx context.Context, filter models.GradeFilter) ([]models.GradeRecord, error) {
	if filter.StudentID == "" && filter.StudentNumber == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a student reference is required")
	}
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return records, nil
}

// Upsert records a mark. When the student already has a record for the
// term, the entry for the same (teacher, subject) pair is replaced;
// otherwise a fresh term record is created.
func (s *GradeService) Upsert(ctx context.Context, req UpsertGradeRequest) (*models.GradeRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	teacher, err := s.identity.ResolveTeacher(ctx, req.TeacherRef)
	if err != nil {
		return nil, err
	}

	student, err := s.students.FindByStudentNumber(ctx, req.StudentNumber)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	entry := models.GradeEntry{
		TeacherID:  teacher.ID,
		SubjectID:  strings.TrimSpace(req.SubjectID),
		Percent:    req.Percent,
		GradedDate: time.Now().UTC(),
	}

	record, err := s.repo.FindByStudentAndTerm(ctx, student.StudentNumber, req.Semester, req.AcadYear)
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade record")
		}
		record = &models.GradeRecord{
			StudentID:     student.ID,
			StudentNumber: student.StudentNumber,
			Semester:      req.Semester,
			AcadYear:      strings.TrimSpace(req.AcadYear),
			Entries:       models.GradeEntries{entry},
		}
		if err := s.repo.Create(ctx, record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade record")
		}
		return record, nil
	}

	replaced := false
	for i, existing := range record.Entries {
		if existing.TeacherID == entry.TeacherID && existing.SubjectID == entry.SubjectID {
			record.Entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		record.Entries = append(record.Entries, entry)
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade record")
	}
	return record, nil
}

// Roster lists the students scheduled for a (teacher, subject) pair in a
// term, each overlaid with the mark the teacher has recorded, if any.
func (s *GradeService) Roster(ctx context.Context, teacherRef, subjectID string, semester int, acadYear string) ([]models.GradedStudent, error) {
	teacher, err := s.identity.ResolveTeacher(ctx, teacherRef)
	if err != nil {
		return nil, err
	}

	schedules, err := s.schedules.ListByTeacherAndSubject(ctx, teacher.ID, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules")
	}

	roster := make([]models.GradedStudent, 0, len(schedules))
	for _, schedule := range schedules {
		student, err := s.students.FindByStudentNumber(ctx, schedule.StudentNumber)
		if err != nil {
			if err == sql.ErrNoRows {
				s.logger.Warn("schedule references unknown student", zap.String("student_number", schedule.StudentNumber))
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}

		row := models.GradedStudent{
			StudentID:     student.ID,
			StudentNumber: student.StudentNumber,
			Course:        student.Course,
			Phone:         student.Phone,
		}
		if account, err := s.accounts.FindByID(ctx, student.AccountID); err == nil {
			row.FirstName = account.FirstName
			row.LastName = account.LastName
			row.Photo = account.Photo
		} else if err != sql.ErrNoRows {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
		}

		record, err := s.repo.FindByStudentAndTerm(ctx, student.StudentNumber, semester, acadYear)
		if err != nil && err != sql.ErrNoRows {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade record")
		}
		if record != nil {
			for _, entry := range record.Entries {
				if entry.TeacherID == teacher.ID && entry.SubjectID == subjectID {
					percent := entry.Percent
					gradedDate := entry.GradedDate
					row.Percent = &percent
					row.GradedDate = &gradedDate
					row.Status = GradeStatus(percent)
					break
				}
			}
		}
		roster = append(roster, row)
	}
	return roster, nil
}

// Delete removes a grade record.
func (s *GradeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "grade record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade record")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade record")
	}
	return nil
}
