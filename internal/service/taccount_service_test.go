package service

import (
	"context"
	"testing"

	"travelapproval/internal/apperror"
	"travelapproval/internal/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTAccountService(t *testing.T) {
	store := newMemStore()
	svc := NewTAccountService(&fakeTAccountRepo{store: store}, validation.NewValidator())
	ctx := context.Background()

	account, err := svc.CreateTAccount(ctx, CreateTAccountInput{AccountCode: "T-1001", AccountName: "Sales Travel"})
	require.NoError(t, err)
	assert.True(t, account.IsActive)

	_, err = svc.CreateTAccount(ctx, CreateTAccountInput{AccountCode: "T-1001", AccountName: "Dup"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = svc.CreateTAccount(ctx, CreateTAccountInput{AccountName: "No code"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.CreateTAccount(ctx, CreateTAccountInput{AccountCode: "T-1002", AccountName: "Engineering Travel"})
	require.NoError(t, err)

	name := "Sales & Marketing Travel"
	updated, err := svc.UpdateTAccount(ctx, account.ID, UpdateTAccountInput{AccountName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.AccountName)

	deactivated, err := svc.SetActive(ctx, account.ID, false)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	active, err := svc.ListTAccounts(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "T-1002", active[0].AccountCode)

	all, err := svc.ListTAccounts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.SetActive(ctx, uuid.New(), true)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
