package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"travelapproval/internal/apperror"
	"travelapproval/internal/model"
	"travelapproval/internal/repository"
	"travelapproval/internal/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateTAccountInput struct {
	AccountCode string `json:"account_code" binding:"required,max=50"`
	AccountName string `json:"account_name" binding:"required,max=255"`
	Description string `json:"description"`
}

type UpdateTAccountInput struct {
	AccountName *string `json:"account_name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
}

// TAccountService manages budget accounts.
type TAccountService interface {
	CreateTAccount(ctx context.Context, input CreateTAccountInput) (*model.TAccount, error)
	UpdateTAccount(ctx context.Context, id uuid.UUID, input UpdateTAccountInput) (*model.TAccount, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.TAccount, error)
	GetTAccount(ctx context.Context, id uuid.UUID) (*model.TAccount, error)
	ListTAccounts(ctx context.Context, activeOnly bool) ([]model.TAccount, error)
}

type taccountService struct {
	repo      repository.TAccountRepository
	validator *validation.Validator
}

func NewTAccountService(repo repository.TAccountRepository, validator *validation.Validator) TAccountService {
	return &taccountService{repo: repo, validator: validator}
}

func (s *taccountService) CreateTAccount(ctx context.Context, input CreateTAccountInput) (*model.TAccount, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(input.AccountCode)
	if _, err := s.repo.FindByCode(ctx, code); err == nil {
		return nil, apperror.NewConflictError("T-account with code '%s' already exists", code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check account code: %w", err)
	}

	account := &model.TAccount{
		AccountCode: code,
		AccountName: strings.TrimSpace(input.AccountName),
		Description: input.Description,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create T-account: %w", err)
	}
	return account, nil
}

func (s *taccountService) UpdateTAccount(ctx context.Context, id uuid.UUID, input UpdateTAccountInput) (*model.TAccount, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	account, err := s.GetTAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.AccountName != nil {
		name := strings.TrimSpace(*input.AccountName)
		if name == "" {
			return nil, apperror.NewValidationError("Account name cannot be empty")
		}
		account.AccountName = name
	}
	if input.Description != nil {
		account.Description = *input.Description
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update T-account: %w", err)
	}
	return account, nil
}

func (s *taccountService) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.TAccount, error) {
	account, err := s.GetTAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	account.IsActive = active
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to update T-account: %w", err)
	}
	return account, nil
}

func (s *taccountService) GetTAccount(ctx context.Context, id uuid.UUID) (*model.TAccount, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("T-account with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to load T-account: %w", err)
	}
	return account, nil
}

func (s *taccountService) ListTAccounts(ctx context.Context, activeOnly bool) ([]model.TAccount, error) {
	accounts, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch T-accounts: %w", err)
	}
	return accounts, nil
}
