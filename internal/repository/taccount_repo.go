package repository

import (
	"context"

	"travelapproval/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TAccountRepository interface {
	Create(ctx context.Context, account *model.TAccount) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TAccount, error)
	FindByCode(ctx context.Context, code string) (*model.TAccount, error)
	List(ctx context.Context, activeOnly bool) ([]model.TAccount, error)
	Update(ctx context.Context, account *model.TAccount) error
}

type taccountRepository struct {
	db *gorm.DB
}

func NewTAccountRepository(db *gorm.DB) TAccountRepository {
	return &taccountRepository{db: db}
}

func (r *taccountRepository) Create(ctx context.Context, account *model.TAccount) error {
	return GetDB(ctx, r.db).Create(account).Error
}

func (r *taccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TAccount, error) {
	var account model.TAccount
	if err := GetDB(ctx, r.db).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *taccountRepository) FindByCode(ctx context.Context, code string) (*model.TAccount, error) {
	var account model.TAccount
	if err := GetDB(ctx, r.db).First(&account, "account_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *taccountRepository) List(ctx context.Context, activeOnly bool) ([]model.TAccount, error) {
	var accounts []model.TAccount
	query := GetDB(ctx, r.db)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("account_code asc").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *taccountRepository) Update(ctx context.Context, account *model.TAccount) error {
	return GetDB(ctx, r.db).Save(account).Error
}
