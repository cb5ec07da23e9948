package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mie-portal/portal-api/internal/models"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
)

type mockTeacherFinder struct {
	byAccount    map[string]*models.Teacher
	byID         map[string]*models.Teacher
	byAccountErr error
	accountCalls int
	idCalls      int
}

func (m *mockTeacherFinder) FindByAccountID(ctx context.Context, accountID string) (*models.Teacher, error) {
	m.accountCalls++
	if m.byAccountErr != nil {
		return nil, m.byAccountErr
	}
	if t, ok := m.byAccount[accountID]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherFinder) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	m.idCalls++
	if t, ok := m.byID[id]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

type mockStudentFinder struct {
	byAccount map[string]*models.Student
	byID      map[string]*models.Student
}

func (m *mockStudentFinder) FindByAccountID(ctx context.Context, accountID string) (*models.Student, error) {
	if s, ok := m.byAccount[accountID]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentFinder) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.byID[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockAdminFinder struct {
	byAccount map[string]*models.Admin
	byID      map[string]*models.Admin
}

func (m *mockAdminFinder) FindByAccountID(ctx context.Context, accountID string) (*models.Admin, error) {
	if a, ok := m.byAccount[accountID]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAdminFinder) FindByID(ctx context.Context, id string) (*models.Admin, error) {
	if a, ok := m.byID[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func TestResolveTeacherPrefersAccountReference(t *testing.T) {
	byAccount := &models.Teacher{ID: "t1", AccountID: "acc1"}
	finder := &mockTeacherFinder{
		byAccount: map[string]*models.Teacher{"acc1": byAccount},
		byID:      map[string]*models.Teacher{"acc1": {ID: "acc1"}},
	}
	svc := NewIdentityService(finder, &mockStudentFinder{}, &mockAdminFinder{}, nil)

	teacher, err := svc.ResolveTeacher(context.Background(), "acc1")
	require.NoError(t, err)
	assert.Equal(t, "t1", teacher.ID)
	assert.Equal(t, 1, finder.accountCalls)
	assert.Zero(t, finder.idCalls)
}

func TestResolveTeacherFallsBackToOwnID(t *testing.T) {
	finder := &mockTeacherFinder{
		byID: map[string]*models.Teacher{"t1": {ID: "t1", AccountID: "acc1"}},
	}
	svc := NewIdentityService(finder, &mockStudentFinder{}, &mockAdminFinder{}, nil)

	teacher, err := svc.ResolveTeacher(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "t1", teacher.ID)
	assert.Equal(t, 1, finder.accountCalls)
	assert.Equal(t, 1, finder.idCalls)
}

func TestResolveTeacherNotFound(t *testing.T) {
	svc := NewIdentityService(&mockTeacherFinder{}, &mockStudentFinder{}, &mockAdminFinder{}, nil)

	_, err := svc.ResolveTeacher(context.Background(), "missing")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestResolveTeacherSurfacesRepositoryFailure(t *testing.T) {
	finder := &mockTeacherFinder{byAccountErr: errors.New("connection reset")}
	svc := NewIdentityService(finder, &mockStudentFinder{}, &mockAdminFinder{}, nil)

	_, err := svc.ResolveTeacher(context.Background(), "acc1")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
	assert.Zero(t, finder.idCalls)
}

func TestResolveStudentFallsBackToOwnID(t *testing.T) {
	students := &mockStudentFinder{
		byID: map[string]*models.Student{"s1": {ID: "s1", StudentNumber: "2021-00001"}},
	}
	svc := NewIdentityService(&mockTeacherFinder{}, students, &mockAdminFinder{}, nil)

	student, err := svc.ResolveStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "2021-00001", student.StudentNumber)
}

func TestResolveAdminPrefersAccountReference(t *testing.T) {
	admins := &mockAdminFinder{
		byAccount: map[string]*models.Admin{"acc9": {ID: "ad1", AccountID: "acc9"}},
	}
	svc := NewIdentityService(&mockTeacherFinder{}, &mockStudentFinder{}, admins, nil)

	admin, err := svc.ResolveAdmin(context.Background(), "acc9")
	require.NoError(t, err)
	assert.Equal(t, "ad1", admin.ID)
}
