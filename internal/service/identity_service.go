package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/mie-portal/portal-api/internal/models"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
)

type teacherFinder interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindByAccountID(ctx context.Context, accountID string) (*models.Teacher, error)
}

type studentFinder interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByAccountID(ctx context.Context, accountID string) (*models.Student, error)
}

type adminFinder interface {
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	FindByAccountID(ctx context.Context, accountID string) (*models.Admin, error)
}

// IdentityService resolves a role record from either of its two
// identifiers. Callers routinely hold the account's identity rather than
// the role record's own, so lookups try the account reference first and
// fall back to the record identity.
type IdentityService struct {
	teachers teacherFinder
	students studentFinder
	admins   adminFinder
	logger   *zap.Logger
}

// NewIdentityService constructs an IdentityService.
func NewIdentityService(teachers teacherFinder, students studentFinder, admins adminFinder, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{teachers: teachers, students: students, admins: admins, logger: logger}
}

// ResolveTeacher returns the teacher identified by ref, treating ref as
// an account identity first and a teacher identity second.
func (s *IdentityService) ResolveTeacher(ctx context.Context, ref string) (*models.Teacher, error) {
	teacher, err := s.teachers.FindByAccountID(ctx, ref)
	if err == nil {
		return teacher, nil
	}
	if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve teacher")
	}

	teacher, err = s.teachers.FindByID(ctx, ref)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve teacher")
	}
	return teacher, nil
}

// ResolveStudent returns the student identified by ref, treating ref as
// an account identity first and a student identity second.
func (s *IdentityService) ResolveStudent(ctx context.Context, ref string) (*models.Student, error) {
	student, err := s.students.FindByAccountID(ctx, ref)
	if err == nil {
		return student, nil
	}
	if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}

	student, err = s.students.FindByID(ctx, ref)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}
	return student, nil
}

// ResolveAdmin returns the admin identified by ref, treating ref as an
// account identity first and an admin identity second.
func (s *IdentityService) ResolveAdmin(ctx context.Context, ref string) (*models.Admin, error) {
	admin, err := s.admins.FindByAccountID(ctx, ref)
	if err == nil {
		return admin, nil
	}
	if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve admin")
	}

	admin, err = s.admins.FindByID(ctx, ref)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "admin not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve admin")
	}
	return admin, nil
}
