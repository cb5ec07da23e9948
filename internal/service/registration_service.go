package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mie-portal/portal-api/internal/models"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
)

type registrationAccountRepository interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
	ExistsByEmailOrAccountID(ctx context.Context, email, accountID string) (bool, error)
	Create(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
}

type registrationStudentRepository interface {
	ExistsByStudentNumber(ctx context.Context, studentNumber string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	DeleteByAccountID(ctx context.Context, accountID string) error
}

type registrationTeacherRepository interface {
	ExistsByTeacherUID(ctx context.Context, teacherUID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	DeleteByAccountID(ctx context.Context, accountID string) error
}

type registrationAdminRepository interface {
	ExistsByAdminID(ctx context.Context, adminID string) (bool, error)
	Create(ctx context.Context, admin *models.Admin) error
	DeleteByAccountID(ctx context.Context, accountID string) error
}

// RegisterAccountRequest carries the shared account fields plus the role
// specific profile for one registration.
type RegisterAccountRequest struct {
	AccountID  string             `json:"account_id" validate:"required"`
	Email      string             `json:"email" validate:"required,email"`
	Password   string             `json:"password" validate:"required,min=8"`
	FirstName  string             `json:"firstname" validate:"required"`
	LastName   string             `json:"lastname" validate:"required"`
	Photo      string             `json:"photo"`
	Role       models.AccountRole `json:"user_type" validate:"required"`
	Department string             `json:"department"`

	Student *StudentProfile `json:"student,omitempty"`
	Teacher *TeacherProfile `json:"teacher,omitempty"`
	Admin   *AdminProfile   `json:"admin,omitempty"`
}

// StudentProfile is the role payload for student registrations.
type StudentProfile struct {
	StudentNumber string     `json:"student_number" validate:"required"`
	YearLevel     int        `json:"year_level" validate:"required"`
	Department    string     `json:"department" validate:"required"`
	Course        string     `json:"course" validate:"required"`
	Birthday      *time.Time `json:"birthday"`
	Address       string     `json:"address"`
	Phone         string     `json:"phone"`
	Mother        string     `json:"mother"`
	Father        string     `json:"father"`
	GuardianPhone string     `json:"guardian_phone"`
}

// TeacherProfile is the role payload for teacher registrations.
type TeacherProfile struct {
	TeacherUID  string   `json:"teacher_uid" validate:"required"`
	Departments []string `json:"departments" validate:"required,min=1"`
}

// AdminProfile is the role payload for admin registrations.
type AdminProfile struct {
	AdminID    string `json:"admin_id" validate:"required"`
	Department string `json:"department" validate:"required"`
}

// RegistrationConfig carries account-creation policy knobs.
type RegistrationConfig struct {
	DefaultPhotoURL string
	BcryptCost      int
}

// RegistrationService coordinates the two-record lifecycle of an account
// and its role record. Creation writes the account first and rolls it
// back when the role record cannot be created; deletion removes the role
// record best-effort and always removes the account.
type RegistrationService struct {
	accounts  registrationAccountRepository
	students  registrationStudentRepository
	teachers  registrationTeacherRepository
	admins    registrationAdminRepository
	cfg       RegistrationConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(
	accounts registrationAccountRepository,
	students registrationStudentRepository,
	teachers registrationTeacherRepository,
	admins registrationAdminRepository,
	cfg RegistrationConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &RegistrationService{
		accounts:  accounts,
		students:  students,
		teachers:  teachers,
		admins:    admins,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
	}
}

// Register creates an account together with its role record. The account
// row is written first so the role record can reference it; if the role
// record fails validation or persistence, the account is removed again so
// no orphaned account survives a partial registration.
func (s *RegistrationService) Register(ctx context.Context, req RegisterAccountRequest) (*models.Account, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown user type")
	}

	exists, err := s.accounts.ExistsByEmailOrAccountID(ctx, req.Email, req.AccountID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check account uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email or account id already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	photo := strings.TrimSpace(req.Photo)
	if photo == "" {
		photo = s.cfg.DefaultPhotoURL
	}

	account := &models.Account{
		AccountID:    strings.TrimSpace(req.AccountID),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Photo:        photo,
		Role:         req.Role,
		Department:   strings.TrimSpace(req.Department),
		Status:       models.StatusActive,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create account")
	}

	if err := s.createRoleRecord(ctx, account, req); err != nil {
		if delErr := s.accounts.Delete(ctx, account.ID); delErr != nil {
			s.logger.Error("failed to roll back account after role record failure",
				zap.String("account_id", account.ID),
				zap.Error(delErr))
		}
		return nil, err
	}

	return account, nil
}

func (s *RegistrationService) createRoleRecord(ctx context.Context, account *models.Account, req RegisterAccountRequest) error {
	switch account.Role {
	case models.RoleStudent:
		return s.createStudent(ctx, account, req.Student)
	case models.RoleTeacher:
		return s.createTeacher(ctx, account, req.Teacher)
	case models.RoleAdmin:
		return s.createAdmin(ctx, account, req.Admin)
	}
	return appErrors.Clone(appErrors.ErrValidation, "unknown user type")
}

func (s *RegistrationService) createStudent(ctx context.Context, account *models.Account, profile *StudentProfile) error {
	if profile == nil {
		return appErrors.Clone(appErrors.ErrValidation, "student profile is required")
	}
	if err := s.validator.Struct(profile); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student profile")
	}
	if !models.ValidDepartment(profile.Department) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}
	if err := validYearLevel(profile.Department, profile.YearLevel); err != nil {
		return err
	}

	taken, err := s.students.ExistsByStudentNumber(ctx, profile.StudentNumber)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student number")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrConflict, "student number already registered")
	}

	student := &models.Student{
		AccountID:     account.ID,
		StudentNumber: strings.TrimSpace(profile.StudentNumber),
		YearLevel:     profile.YearLevel,
		Department:    profile.Department,
		Course:        strings.TrimSpace(profile.Course),
		Birthday:      profile.Birthday,
		Address:       strings.TrimSpace(profile.Address),
		Phone:         strings.TrimSpace(profile.Phone),
		Mother:        strings.TrimSpace(profile.Mother),
		Father:        strings.TrimSpace(profile.Father),
		GuardianPhone: strings.TrimSpace(profile.GuardianPhone),
	}
	if err := s.students.Create(ctx, student); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student record")
	}
	return nil
}

func (s *RegistrationService) createTeacher(ctx context.Context, account *models.Account, profile *TeacherProfile) error {
	if profile == nil {
		return appErrors.Clone(appErrors.ErrValidation, "teacher profile is required")
	}
	if err := s.validator.Struct(profile); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher profile")
	}

	// The department list carries exactly one entry; extras are dropped.
	department := strings.TrimSpace(profile.Departments[0])
	if !models.ValidDepartment(department) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}

	taken, err := s.teachers.ExistsByTeacherUID(ctx, profile.TeacherUID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher uid")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrConflict, "teacher uid already registered")
	}

	teacher := &models.Teacher{
		AccountID:   account.ID,
		TeacherUID:  strings.TrimSpace(profile.TeacherUID),
		Departments: []string{department},
		Subjects:    models.SubjectAssignments{},
	}
	if err := s.teachers.Create(ctx, teacher); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher record")
	}
	return nil
}

func (s *RegistrationService) createAdmin(ctx context.Context, account *models.Account, profile *AdminProfile) error {
	if profile == nil {
		return appErrors.Clone(appErrors.ErrValidation, "admin profile is required")
	}
	if err := s.validator.Struct(profile); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid admin profile")
	}
	if !models.ValidDepartment(profile.Department) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown department")
	}

	taken, err := s.admins.ExistsByAdminID(ctx, profile.AdminID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check admin id")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrConflict, "admin id already registered")
	}

	admin := &models.Admin{
		AccountID:  account.ID,
		AdminID:    strings.TrimSpace(profile.AdminID),
		AdminLevel: models.AdminLevelDepartment,
		Department: profile.Department,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create admin record")
	}
	return nil
}

// Unregister removes an account and the role record backing it. The role
// record deletion is best effort: a failure there is logged and the
// account is removed regardless, so a stale role row never blocks
// account removal.
func (s *RegistrationService) Unregister(ctx context.Context, id string) error {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	var roleErr error
	switch account.Role {
	case models.RoleStudent:
		roleErr = s.students.DeleteByAccountID(ctx, account.ID)
	case models.RoleTeacher:
		roleErr = s.teachers.DeleteByAccountID(ctx, account.ID)
	case models.RoleAdmin:
		roleErr = s.admins.DeleteByAccountID(ctx, account.ID)
	}
	if roleErr != nil {
		s.logger.Error("failed to delete role record, removing account anyway",
			zap.String("account_id", account.ID),
			zap.String("user_type", string(account.Role)),
			zap.Error(roleErr))
	}

	if err := s.accounts.Delete(ctx, account.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete account")
	}
	return nil
}

// validYearLevel enforces the per-department year level range: IS runs a
// basic education ladder of 1-12 while the college departments run 1-4.
func validYearLevel(department string, yearLevel int) error {
	max := 4
	if department == "IS" {
		max = 12
	}
	if yearLevel < 1 || yearLevel > max {
		return appErrors.Clone(appErrors.ErrValidation, "year level out of range for department")
	}
	return nil
}
