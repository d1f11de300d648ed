package repository

import (
	"context"

	"travelapproval/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	FindByName(ctx context.Context, name string) (*model.Project, error)
	List(ctx context.Context, activeOnly bool) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Omit("TeamLead").Create(project).Error
}

func (r *projectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := GetDB(ctx, r.db).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) FindByName(ctx context.Context, name string) (*model.Project, error) {
	var project model.Project
	if err := GetDB(ctx, r.db).First(&project, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, activeOnly bool) ([]model.Project, error) {
	var projects []model.Project
	query := GetDB(ctx, r.db).Preload("TeamLead")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("name asc").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Omit("TeamLead").Save(project).Error
}
