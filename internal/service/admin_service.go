package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mie-portal/portal-api/internal/models"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
)

type adminRepository interface {
	List(ctx context.Context) ([]models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
	FindByAccountID(ctx context.Context, accountID string) (*models.Admin, error)
}

type adminResolver interface {
	ResolveAdmin(ctx context.Context, ref string) (*models.Admin, error)
}

// AdminService serves admin record lookups.
type AdminService struct {
	repo     adminRepository
	identity adminResolver
	logger   *zap.Logger
}

// NewAdminService constructs an AdminService.
func NewAdminService(repo adminRepository, identity adminResolver, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{repo: repo, identity: identity, logger: logger}
}

// List returns all admin records, newest first.
func (s *AdminService) List(ctx context.Context) ([]models.Admin, error) {
	admins, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list admins")
	}
	return admins, nil
}

// Get returns an admin by either of its identifiers.
func (s *AdminService) Get(ctx context.Context, ref string) (*models.Admin, error) {
	return s.identity.ResolveAdmin(ctx, ref)
}
