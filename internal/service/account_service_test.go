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
)

type mockAccountProfileRepo struct {
	accounts  map[string]*models.Account
	updated   *models.Account
	listCalls int
}

func (m *mockAccountProfileRepo) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error) {
	m.listCalls++
	var out []models.Account
	for _, a := range m.accounts {
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *mockAccountProfileRepo) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if a, ok := m.accounts[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAccountProfileRepo) FindByAccountID(ctx context.Context, accountID string) (*models.Account, error) {
	for _, a := range m.accounts {
		if a.AccountID == accountID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAccountProfileRepo) Update(ctx context.Context, account *models.Account) error {
	m.updated = account
	m.accounts[account.ID] = account
	return nil
}

func newAccountServiceFixture(t *testing.T) (*AccountService, *mockAccountProfileRepo, *fakeCacheRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("or1ginalpass"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockAccountProfileRepo{accounts: map[string]*models.Account{
		"acc-1": {
			ID:           "acc-1",
			AccountID:    "2020-00001",
			Email:        "jori@school.test",
			PasswordHash: string(hash),
			FirstName:    "Jori",
			LastName:     "Santos",
			Role:         models.RoleStudent,
			Status:       models.StatusActive,
		},
	}}
	cacheRepo := newFakeCacheRepo()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewAccountService(repo, nil, cache, bcrypt.MinCost, nil, nil)
	return svc, repo, cacheRepo
}

func updateRequestFor(account *models.Account) UpdateAccountRequest {
	return UpdateAccountRequest{
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
	}
}

func TestUpdateAccountRehashesPassword(t *testing.T) {
	svc, repo, _ := newAccountServiceFixture(t)
	oldHash := repo.accounts["acc-1"].PasswordHash

	req := updateRequestFor(repo.accounts["acc-1"])
	req.Password = "fr3shsecret"

	updated, err := svc.Update(context.Background(), "acc-1", req)
	require.NoError(t, err)
	require.NotNil(t, repo.updated)
	assert.NotEqual(t, oldHash, updated.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("fr3shsecret")))
}

func TestUpdateAccountKeepsHashWhenPasswordOmitted(t *testing.T) {
	svc, repo, _ := newAccountServiceFixture(t)
	oldHash := repo.accounts["acc-1"].PasswordHash

	req := updateRequestFor(repo.accounts["acc-1"])
	req.FirstName = "Jorielle"

	updated, err := svc.Update(context.Background(), "acc-1", req)
	require.NoError(t, err)
	assert.Equal(t, oldHash, updated.PasswordHash)
	assert.Equal(t, "Jorielle", updated.FirstName)
}

func TestUpdateAccountRejectsShortPassword(t *testing.T) {
	svc, repo, _ := newAccountServiceFixture(t)

	req := updateRequestFor(repo.accounts["acc-1"])
	req.Password = "short"

	_, err := svc.Update(context.Background(), "acc-1", req)
	require.Error(t, err)
	assert.Nil(t, repo.updated)
}

func TestAccountListCachedAndInvalidatedByUpdate(t *testing.T) {
	svc, repo, cacheRepo := newAccountServiceFixture(t)
	ctx := context.Background()
	filter := models.AccountFilter{Page: 1, PageSize: 20}

	_, _, err := svc.List(ctx, filter)
	require.NoError(t, err)
	_, _, err = svc.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	req := updateRequestFor(repo.accounts["acc-1"])
	_, err = svc.Update(ctx, "acc-1", req)
	require.NoError(t, err)
	assert.Contains(t, cacheRepo.deletedPatterns, "accounts:*")

	_, _, err = svc.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}
