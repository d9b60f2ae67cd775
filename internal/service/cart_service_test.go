package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martialcamp/enrollment-api/internal/models"
	appErrors "github.com/martialcamp/enrollment-api/pkg/errors"
)

type mockCartRepo struct {
	items   map[string]*models.CartItem
	byEmail []models.CartItem
	deleted []string
}

func (m *mockCartRepo) Create(ctx context.Context, item *models.CartItem) error {
	if m.items == nil {
		m.items = make(map[string]*models.CartItem)
	}
	item.ID = "generated"
	copy := *item
	m.items[item.ID] = &copy
	return nil
}

func (m *mockCartRepo) ListByStudent(ctx context.Context, email string) ([]models.CartItem, error) {
	return m.byEmail, nil
}

func (m *mockCartRepo) FindByID(ctx context.Context, id string) (*models.CartItem, error) {
	if item, ok := m.items[id]; ok {
		copy := *item
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCartRepo) Delete(ctx context.Context, id string) (int64, error) {
	m.deleted = append(m.deleted, id)
	return 1, nil
}

func studentClaims() *models.TokenClaims {
	return &models.TokenClaims{Email: "student@example.com"}
}

func TestCartServiceAddStampsOwner(t *testing.T) {
	repo := &mockCartRepo{}
	svc := NewCartService(repo, nil, nil)

	item, err := svc.Add(context.Background(), studentClaims(), AddCartItemRequest{ClassID: "c1", ClassName: "Karate", Price: 100})
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", item.StudentEmail)
	assert.Equal(t, "c1", item.ClassID)
}

func TestCartServiceAddRequiresClassID(t *testing.T) {
	svc := NewCartService(&mockCartRepo{}, nil, nil)

	_, err := svc.Add(context.Background(), studentClaims(), AddCartItemRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCartServiceListForeignEmailForbidden(t *testing.T) {
	svc := NewCartService(&mockCartRepo{}, nil, nil)

	_, err := svc.List(context.Background(), studentClaims(), "other@example.com")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestCartServiceListOwnCart(t *testing.T) {
	repo := &mockCartRepo{byEmail: []models.CartItem{{ID: "s1", StudentEmail: "student@example.com"}}}
	svc := NewCartService(repo, nil, nil)

	items, err := svc.List(context.Background(), studentClaims(), "student@example.com")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCartServiceRemoveOwnItem(t *testing.T) {
	repo := &mockCartRepo{items: map[string]*models.CartItem{
		"s1": {ID: "s1", StudentEmail: "student@example.com"},
	}}
	svc := NewCartService(repo, nil, nil)

	require.NoError(t, svc.Remove(context.Background(), studentClaims(), "s1"))
	assert.Equal(t, []string{"s1"}, repo.deleted)
}

func TestCartServiceRemoveForeignItemForbidden(t *testing.T) {
	repo := &mockCartRepo{items: map[string]*models.CartItem{
		"s1": {ID: "s1", StudentEmail: "other@example.com"},
	}}
	svc := NewCartService(repo, nil, nil)

	err := svc.Remove(context.Background(), studentClaims(), "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestCartServiceRemoveMissingItem(t *testing.T) {
	svc := NewCartService(&mockCartRepo{}, nil, nil)

	err := svc.Remove(context.Background(), studentClaims(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
