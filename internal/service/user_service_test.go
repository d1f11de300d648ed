package service

import (
	"context"
	"testing"
	"time"

	"travelapproval/internal/apperror"
	"travelapproval/internal/model"
	"travelapproval/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func newUserFixture() (*memStore, UserService) {
	store := newMemStore()
	svc := NewUserService(&fakeUserRepo{store: store}, TokenConfig{Secret: testSecret, TTL: time.Hour}, validation.NewValidator())
	return store, svc
}

func TestUserService_CreateAndLogin(t *testing.T) {
	store, svc := newUserFixture()
	manager := store.addUser("Mette Manager", model.RoleManager, nil)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserRequest{
		Email:     "Erik@XYZ.dk",
		Password:  "secret123",
		FullName:  "Erik Employee",
		Role:      model.RoleEmployee,
		ManagerID: &manager.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "erik@xyz.dk", created.Email)
	require.NotNil(t, created.ManagerID)
	assert.Equal(t, manager.ID, *created.ManagerID)

	stored, err := (&fakeUserRepo{store: store}).GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)

	tokenRes, err := svc.Login(ctx, LoginUserRequest{Email: "erik@xyz.dk", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), tokenRes.ExpiresIn)
	assert.Equal(t, created.ID, tokenRes.User.ID)

	parsed, err := jwt.Parse(tokenRes.Token, func(token *jwt.Token) (interface{}, error) {
		return testSecret, nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, created.ID.String(), claims["sub"])
	assert.Equal(t, model.RoleEmployee, claims["role"])
}

func TestUserService_LoginFailures(t *testing.T) {
	store, svc := newUserFixture()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, CreateUserRequest{Email: "a@xyz.dk", Password: "secret123", FullName: "A", Role: model.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginUserRequest{Email: "a@xyz.dk", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Login(ctx, LoginUserRequest{Email: "nobody@xyz.dk", Password: "secret123"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	disabled := store.users[created.ID]
	disabled.IsActive = false
	store.users[created.ID] = disabled
	_, err = svc.Login(ctx, LoginUserRequest{Email: "a@xyz.dk", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, "account is disabled", err.Error())
}

func TestUserService_CreateValidation(t *testing.T) {
	store, svc := newUserFixture()
	ctx := context.Background()
	inactive := store.addUser("Old Manager", model.RoleManager, nil)
	gone := store.users[inactive.ID]
	gone.IsActive = false
	store.users[inactive.ID] = gone

	_, err := svc.CreateUser(ctx, CreateUserRequest{Email: "x@xyz.dk", Password: "secret123", FullName: "X", Role: "boss"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.CreateUser(ctx, CreateUserRequest{Email: "x@xyz.dk", Password: "123", FullName: "X", Role: model.RoleEmployee})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.CreateUser(ctx, CreateUserRequest{Email: "x@xyz.dk", Password: "secret123", FullName: "X", Role: model.RoleEmployee, ManagerID: &inactive.ID})
	require.Error(t, err)
	assert.Equal(t, "Manager must be an active user", err.Error())

	_, err = svc.CreateUser(ctx, CreateUserRequest{Email: "not-an-email", Password: "secret123", FullName: "Dup", Role: model.RoleEmployee})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.CreateUser(ctx, CreateUserRequest{Email: "x@xyz.dk", Password: "secret123", FullName: "X", Role: model.RoleEmployee})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, CreateUserRequest{Email: "x@xyz.dk", Password: "secret123", FullName: "X2", Role: model.RoleEmployee})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestUserService_UpdateAndList(t *testing.T) {
	store, svc := newUserFixture()
	ctx := context.Background()
	manager := store.addUser("Mette Manager", model.RoleManager, nil)
	employee := store.addUser("Erik Employee", model.RoleEmployee, nil)

	role := model.RoleTeamLead
	updated, err := svc.UpdateUser(ctx, employee.ID, UpdateUserRequest{Role: &role, ManagerID: &manager.ID})
	require.NoError(t, err)
	assert.Equal(t, model.RoleTeamLead, updated.Role)
	assert.Equal(t, manager.ID, *updated.ManagerID)

	_, err = svc.UpdateUser(ctx, employee.ID, UpdateUserRequest{ManagerID: &employee.ID})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	users, total, err := svc.ListUsers(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Erik Employee", users[0].FullName)
}
