package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martialcamp/enrollment-api/internal/middleware"
	"github.com/martialcamp/enrollment-api/internal/models"
	"github.com/martialcamp/enrollment-api/internal/service"
	appErrors "github.com/martialcamp/enrollment-api/pkg/errors"
)

type userServiceMock struct {
	registerUser    *models.User
	registerCreated bool
	listUsers       []models.User
	roleResult      *service.RoleResult
	setRoleUser     *models.User
	setRoleErr      error
	lastLimit       *int
}

func (m *userServiceMock) Register(ctx context.Context, req service.RegisterUserRequest) (*models.User, bool, error) {
	return m.registerUser, m.registerCreated, nil
}

func (m *userServiceMock) List(ctx context.Context) ([]models.User, error) {
	return m.listUsers, nil
}

func (m *userServiceMock) ListInstructors(ctx context.Context, limit *int) ([]models.User, error) {
	m.lastLimit = limit
	return m.listUsers, nil
}

func (m *userServiceMock) RoleFor(ctx context.Context, claims *models.TokenClaims, email string) (*service.RoleResult, error) {
	return m.roleResult, nil
}

func (m *userServiceMock) SetRole(ctx context.Context, id string, role models.UserRole) (*models.User, error) {
	if m.setRoleErr != nil {
		return nil, m.setRoleErr
	}
	return m.setRoleUser, nil
}

func TestUserHandlerRegisterCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewUserHandler(&userServiceMock{registerUser: &models.User{ID: "u1", Email: "a@example.com"}, registerCreated: true})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/users", bytes.NewReader([]byte(`{"email":"a@example.com","name":"A"}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Register(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "a@example.com")
}

func TestUserHandlerRegisterExisting(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewUserHandler(&userServiceMock{registerUser: &models.User{ID: "u1"}, registerCreated: false})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/users", bytes.NewReader([]byte(`{"email":"a@example.com"}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Register(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user already exists")
}

func TestUserHandlerRegisterInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewUserHandler(&userServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/users", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h.Register(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandlerRoleNullForForeignEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewUserHandler(&userServiceMock{roleResult: &service.RoleResult{}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/users/role/other@example.com", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "email", Value: "other@example.com"}}
	c.Set(middleware.ContextUserKey, &models.TokenClaims{Email: "a@example.com"})

	h.Role(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":null`)
}

func TestUserHandlerSetRoleFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	role := models.RoleInstructor
	h := NewUserHandler(&userServiceMock{setRoleUser: &models.User{ID: "u1", Role: role}})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPatch, "/users/u1?role=instructor", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "u1"}}

	h.SetRole(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "instructor")
}

func TestUserHandlerSetRoleNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewUserHandler(&userServiceMock{setRoleErr: appErrors.ErrNotFound})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPatch, "/users/missing?role=admin", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.SetRole(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUserHandlerInstructorsParsesLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &userServiceMock{listUsers: []models.User{{ID: "u1"}}}
	h := NewUserHandler(mock)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/instructors?limit=6", nil)
	c.Request = req

	h.Instructors(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, mock.lastLimit)
	assert.Equal(t, 6, *mock.lastLimit)
}
