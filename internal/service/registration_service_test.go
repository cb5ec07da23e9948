package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mie-portal/portal-api/internal/models"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
)

type mockRegAccountRepo struct {
	existing   map[string]*models.Account
	exists     bool
	existsErr  error
	createErr  error
	created    []*models.Account
	deletedIDs []string
}

func (m *mockRegAccountRepo) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if a, ok := m.existing[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRegAccountRepo) ExistsByEmailOrAccountID(ctx context.Context, email, accountID string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockRegAccountRepo) Create(ctx context.Context, account *models.Account) error {
	if m.createErr != nil {
		return m.createErr
	}
	if account.ID == "" {
		account.ID = "acc-" + account.AccountID
	}
	m.created = append(m.created, account)
	return nil
}

func (m *mockRegAccountRepo) Delete(ctx context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

type mockRegStudentRepo struct {
	numberTaken bool
	createErr   error
	created     []*models.Student
	deletedFor  []string
	deleteErr   error
}

func (m *mockRegStudentRepo) ExistsByStudentNumber(ctx context.Context, studentNumber string) (bool, error) {
	return m.numberTaken, nil
}

func (m *mockRegStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, student)
	return nil
}

func (m *mockRegStudentRepo) DeleteByAccountID(ctx context.Context, accountID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedFor = append(m.deletedFor, accountID)
	return nil
}

type mockRegTeacherRepo struct {
	uidTaken   bool
	createErr  error
	created    []*models.Teacher
	deletedFor []string
}

func (m *mockRegTeacherRepo) ExistsByTeacherUID(ctx context.Context, teacherUID string) (bool, error) {
	return m.uidTaken, nil
}

func (m *mockRegTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, teacher)
	return nil
}

func (m *mockRegTeacherRepo) DeleteByAccountID(ctx context.Context, accountID string) error {
	m.deletedFor = append(m.deletedFor, accountID)
	return nil
}

type mockRegAdminRepo struct {
	idTaken    bool
	created    []*models.Admin
	deletedFor []string
}

func (m *mockRegAdminRepo) ExistsByAdminID(ctx context.Context, adminID string) (bool, error) {
	return m.idTaken, nil
}

func (m *mockRegAdminRepo) Create(ctx context.Context, admin *models.Admin) error {
	m.created = append(m.created, admin)
	return nil
}

func (m *mockRegAdminRepo) DeleteByAccountID(ctx context.Context, accountID string) error {
	m.deletedFor = append(m.deletedFor, accountID)
	return nil
}

func newRegistrationFixture() (*RegistrationService, *mockRegAccountRepo, *mockRegStudentRepo, *mockRegTeacherRepo, *mockRegAdminRepo) {
	accounts := &mockRegAccountRepo{existing: map[string]*models.Account{}}
	students := &mockRegStudentRepo{}
	teachers := &mockRegTeacherRepo{}
	admins := &mockRegAdminRepo{}
	cfg := RegistrationConfig{DefaultPhotoURL: "https://cdn.example.com/default.png", BcryptCost: bcrypt.MinCost}
	svc := NewRegistrationService(accounts, students, teachers, admins, cfg, nil, nil)
	return svc, accounts, students, teachers, admins
}

func studentRequest() RegisterAccountRequest {
	return RegisterAccountRequest{
		AccountID: "2021-00001",
		Email:     "jdc@example.com",
		Password:  "sup3rsecret",
		FirstName: "Juan",
		LastName:  "Dela Cruz",
		Role:      models.RoleStudent,
		Student: &StudentProfile{
			StudentNumber: "2021-00001",
			YearLevel:     2,
			Department:    "CCS",
			Course:        "BSCS",
		},
	}
}

func TestRegisterStudentCreatesBothRecords(t *testing.T) {
	svc, accounts, students, _, _ := newRegistrationFixture()

	account, err := svc.Register(context.Background(), studentRequest())
	require.NoError(t, err)
	require.Len(t, accounts.created, 1)
	require.Len(t, students.created, 1)
	assert.Equal(t, account.ID, students.created[0].AccountID)
	assert.Equal(t, models.StatusActive, account.Status)
	assert.Equal(t, "https://cdn.example.com/default.png", account.Photo)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("sup3rsecret")))
	assert.Empty(t, accounts.deletedIDs)
}

func TestRegisterRollsBackAccountOnRoleFailure(t *testing.T) {
	svc, accounts, students, _, _ := newRegistrationFixture()
	students.createErr = errors.New("insert failed")

	_, err := svc.Register(context.Background(), studentRequest())
	require.Error(t, err)
	require.Len(t, accounts.created, 1)
	require.Len(t, accounts.deletedIDs, 1)
	assert.Equal(t, accounts.created[0].ID, accounts.deletedIDs[0])
}

func TestRegisterRollsBackAccountOnDuplicateStudentNumber(t *testing.T) {
	svc, accounts, _, _, _ := newRegistrationFixture()
	svc.students.(*mockRegStudentRepo).numberTaken = true

	_, err := svc.Register(context.Background(), studentRequest())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	require.Len(t, accounts.deletedIDs, 1)
}

func TestRegisterRejectsDuplicateAccount(t *testing.T) {
	svc, accounts, _, _, _ := newRegistrationFixture()
	accounts.exists = true

	_, err := svc.Register(context.Background(), studentRequest())
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, accounts.created)
}

func TestRegisterTeacherKeepsFirstDepartmentOnly(t *testing.T) {
	svc, _, _, teachers, _ := newRegistrationFixture()

	req := RegisterAccountRequest{
		AccountID: "T-1001",
		Email:     "prof@example.com",
		Password:  "sup3rsecret",
		FirstName: "Maria",
		LastName:  "Santos",
		Role:      models.RoleTeacher,
		Teacher: &TeacherProfile{
			TeacherUID:  "T-1001",
			Departments: []string{"CCS", "COE"},
		},
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, teachers.created, 1)
	assert.Equal(t, []string{"CCS"}, []string(teachers.created[0].Departments))
	assert.NotNil(t, teachers.created[0].Subjects)
}

func TestRegisterAdminForcesDepartmentAdminLevel(t *testing.T) {
	svc, _, _, _, admins := newRegistrationFixture()

	req := RegisterAccountRequest{
		AccountID: "A-0001",
		Email:     "dean@example.com",
		Password:  "sup3rsecret",
		FirstName: "Ana",
		LastName:  "Reyes",
		Role:      models.RoleAdmin,
		Admin: &AdminProfile{
			AdminID:    "A-0001",
			Department: "COS",
		},
	}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, admins.created, 1)
	assert.Equal(t, models.AdminLevelDepartment, admins.created[0].AdminLevel)
}

func TestRegisterStudentYearLevelRanges(t *testing.T) {
	svc, _, _, _, _ := newRegistrationFixture()

	req := studentRequest()
	req.Student.Department = "CCS"
	req.Student.YearLevel = 5
	_, err := svc.Register(context.Background(), req)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	req = studentRequest()
	req.Student.Department = "IS"
	req.Student.YearLevel = 11
	_, err = svc.Register(context.Background(), req)
	assert.NoError(t, err)
}

func TestUnregisterRemovesRoleRecordThenAccount(t *testing.T) {
	svc, accounts, students, _, _ := newRegistrationFixture()
	accounts.existing["acc1"] = &models.Account{ID: "acc1", Role: models.RoleStudent}

	require.NoError(t, svc.Unregister(context.Background(), "acc1"))
	assert.Equal(t, []string{"acc1"}, students.deletedFor)
	assert.Equal(t, []string{"acc1"}, accounts.deletedIDs)
}

func TestUnregisterDeletesAccountEvenWhenRoleDeleteFails(t *testing.T) {
	svc, accounts, students, _, _ := newRegistrationFixture()
	accounts.existing["acc1"] = &models.Account{ID: "acc1", Role: models.RoleStudent}
	students.deleteErr = errors.New("delete failed")

	require.NoError(t, svc.Unregister(context.Background(), "acc1"))
	assert.Empty(t, students.deletedFor)
	assert.Equal(t, []string{"acc1"}, accounts.deletedIDs)
}

func TestUnregisterUnknownAccount(t *testing.T) {
	svc, _, _, _, _ := newRegistrationFixture()

	err := svc.Unregister(context.Background(), "missing")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
