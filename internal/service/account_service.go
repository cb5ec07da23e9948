package service

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mie-portal/portal-api/internal/models"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
)

type accountRepository interface {
	List(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByAccountID(ctx context.Context, accountID string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
}

type accountTeacherLookup interface {
	FindByAccountID(ctx context.Context, accountID string) (*models.Teacher, error)
}

// UpdateAccountRequest carries the mutable profile fields of an account.
// Password is optional; when supplied it replaces the stored credential.
type UpdateAccountRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"omitempty,min=8"`
	FirstName  string `json:"firstname" validate:"required"`
	LastName   string `json:"lastname" validate:"required"`
	Photo      string `json:"photo"`
	Department string `json:"department"`
	Status     string `json:"status" validate:"omitempty,oneof=Active Inactive Banned"`
}

// AccountService serves account listing and profile maintenance.
type AccountService struct {
	repo       accountRepository
	teachers   accountTeacherLookup
	cache      *CacheService
	bcryptCost int
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAccountService constructs an AccountService.
func NewAccountService(repo accountRepository, teachers accountTeacherLookup, cache *CacheService, bcryptCost int, validate *validator.Validate, logger *zap.Logger) *AccountService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{repo: repo, teachers: teachers, cache: cache, bcryptCost: bcryptCost, validator: validate, logger: logger}
}

type cachedAccountList struct {
	Summaries []models.AccountSummary `json:"summaries"`
	Total     int                     `json:"total"`
}

// List returns accounts enriched with teacher department lists where the
// account belongs to a teacher. Listings are served from the read cache;
// profile updates invalidate the namespace.
func (s *AccountService) List(ctx context.Context, filter models.AccountFilter) ([]models.AccountSummary, *models.Pagination, error) {
	role := ""
	if filter.Role != nil {
		role = string(*filter.Role)
	}
	cacheKey := makeCacheKey("accounts", role, filter.Status, filter.Search, filter.SortBy, filter.SortOrder,
		strconv.Itoa(filter.Page), strconv.Itoa(filter.PageSize))

	var cached cachedAccountList
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached.Summaries, listPagination(filter.Page, filter.PageSize, cached.Total), nil
	}

	accounts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list accounts")
	}

	summaries := make([]models.AccountSummary, len(accounts))
	for i, account := range accounts {
		summaries[i] = models.AccountSummary{Account: account}
		if account.Role != models.RoleTeacher || s.teachers == nil {
			continue
		}
		teacher, err := s.teachers.FindByAccountID(ctx, account.ID)
		if err != nil {
			if err != sql.ErrNoRows {
				s.logger.Warn("failed to load teacher departments", zap.String("account_id", account.ID), zap.Error(err))
			}
			continue
		}
		summaries[i].TeacherDepartments = teacher.Departments
	}

	if err := s.cache.Set(ctx, cacheKey, cachedAccountList{Summaries: summaries, Total: total}, 0); err != nil {
		s.logger.Warn("failed to cache account list", zap.Error(err))
	}
	return summaries, listPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns an account by storage identity, falling back to the
// human-issued account id.
func (s *AccountService) Get(ctx context.Context, ref string) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, ref)
	if err == nil {
		return account, nil
	}
	if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	account, err = s.repo.FindByAccountID(ctx, ref)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}
	return account, nil
}

// Update modifies the profile fields of an account.
func (s *AccountService) Update(ctx context.Context, id string, req UpdateAccountRequest) (*models.Account, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid account payload")
	}

	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		account.PasswordHash = string(hash)
	}

	account.Email = strings.TrimSpace(req.Email)
	account.FirstName = strings.TrimSpace(req.FirstName)
	account.LastName = strings.TrimSpace(req.LastName)
	if photo := strings.TrimSpace(req.Photo); photo != "" {
		account.Photo = photo
	}
	if dept := strings.TrimSpace(req.Department); dept != "" {
		account.Department = dept
	}
	if req.Status != "" {
		account.Status = req.Status
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update account")
	}

	if s.cache.Enabled() {
		if err := s.cache.Invalidate(ctx, "accounts:*"); err != nil {
			s.logger.Warn("failed to invalidate account cache", zap.Error(err))
		}
	}
	return account, nil
}
