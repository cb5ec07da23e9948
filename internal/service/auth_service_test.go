package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mie-portal/portal-api/internal/models"
	appErrors "github.com/mie-portal/portal-api/pkg/errors"
)

type mockAuthRepo struct {
	account          *models.Account
	findByEmailErr   error
	lastLoginUpdated bool
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	if m.account == nil {
		return nil, sql.ErrNoRows
	}
	return m.account, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if m.account != nil && m.account.ID == id {
		return m.account, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

func activeAccount(t *testing.T) *models.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("sup3rsecret"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.Account{
		ID:           "acc1",
		AccountID:    "2021-00001",
		Email:        "jdc@example.com",
		PasswordHash: string(hash),
		FirstName:    "Juan",
		LastName:     "Dela Cruz",
		Role:         models.RoleStudent,
		Status:       models.StatusActive,
	}
}

func authConfig() AuthConfig {
	return AuthConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "portal-api"}
}

func TestLoginSuccessIssuesValidToken(t *testing.T) {
	repo := &mockAuthRepo{account: activeAccount(t)}
	svc := NewAuthService(repo, nil, nil, authConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "jdc@example.com", Password: "sup3rsecret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "acc1", resp.User.ID)
	assert.True(t, repo.lastLoginUpdated)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "acc1", claims.AccountID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{account: activeAccount(t)}, nil, nil, authConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "jdc@example.com", Password: "wrong"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, nil, authConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "sup3rsecret"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	account := activeAccount(t)
	account.Status = models.StatusInactive
	svc := NewAuthService(&mockAuthRepo{account: account}, nil, nil, authConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "jdc@example.com", Password: "sup3rsecret"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&mockAuthRepo{}, nil, nil, authConfig())

	_, err := svc.ValidateToken("not-a-token")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewAuthService(&mockAuthRepo{account: activeAccount(t)}, nil, nil, authConfig())
	resp, err := issuer.Login(context.Background(), models.LoginRequest{Email: "jdc@example.com", Password: "sup3rsecret"})
	require.NoError(t, err)

	other := NewAuthService(&mockAuthRepo{}, nil, nil, AuthConfig{Secret: "different", Expiration: time.Hour})
	_, err = other.ValidateToken(resp.AccessToken)
	assert.Error(t, err)
}
