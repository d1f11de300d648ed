package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"travelapproval/internal/apperror"
	"travelapproval/internal/model"
	"travelapproval/internal/repository"
	"travelapproval/internal/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateProjectInput struct {
	Name        string    `json:"name" binding:"required,max=255"`
	Description string    `json:"description"`
	TeamLeadID  uuid.UUID `json:"team_lead_id" binding:"required"`
}

type UpdateProjectInput struct {
	Name        *string    `json:"name" binding:"omitempty,max=255"`
	Description *string    `json:"description"`
	TeamLeadID  *uuid.UUID `json:"team_lead_id"`
}

type ProjectResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	TeamLeadID   *uuid.UUID `json:"team_lead_id"`
	TeamLeadName string     `json:"team_lead_name,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    string     `json:"created_at"`
}

// ProjectService administers projects. Every mutation is audited in the same
// transaction as the change.
type ProjectService interface {
	CreateProject(ctx context.Context, actorID uuid.UUID, input CreateProjectInput) (*ProjectResponse, error)
	UpdateProject(ctx context.Context, actorID, projectID uuid.UUID, input UpdateProjectInput) (*ProjectResponse, error)
	AssignTeamLead(ctx context.Context, actorID, projectID, userID uuid.UUID) (*ProjectResponse, error)
	DeactivateProject(ctx context.Context, actorID, projectID uuid.UUID) (*ProjectResponse, error)
	GetProject(ctx context.Context, projectID uuid.UUID) (*ProjectResponse, error)
	ListProjects(ctx context.Context, activeOnly bool) ([]ProjectResponse, error)
}

type projectService struct {
	txManager    repository.TransactionManager
	repo         repository.ProjectRepository
	userRepo     repository.UserRepository
	auditService AuditService
	validator    *validation.Validator
}

func NewProjectService(
	txManager repository.TransactionManager,
	repo repository.ProjectRepository,
	userRepo repository.UserRepository,
	auditService AuditService,
	validator *validation.Validator,
) ProjectService {
	return &projectService{
		txManager:    txManager,
		repo:         repo,
		userRepo:     userRepo,
		auditService: auditService,
		validator:    validator,
	}
}

func (s *projectService) CreateProject(ctx context.Context, actorID uuid.UUID, input CreateProjectInput) (*ProjectResponse, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidationError("Project name cannot be empty")
	}

	var project *model.Project
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureNameFree(txCtx, name, uuid.Nil); err != nil {
			return err
		}
		teamLead, err := s.loadTeamLead(txCtx, input.TeamLeadID)
		if err != nil {
			return err
		}

		project = &model.Project{
			Name:        name,
			Description: input.Description,
			TeamLeadID:  &teamLead.ID,
			IsActive:    true,
		}
		if err := s.repo.Create(txCtx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		project.TeamLead = teamLead

		_, err = s.auditService.LogAction(txCtx, actorID, model.ActionCreateProject, model.EntityProject, project.ID.String(), map[string]interface{}{
			"name":         project.Name,
			"team_lead_id": teamLead.ID.String(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return toProjectResponse(project), nil
}

func (s *projectService) UpdateProject(ctx context.Context, actorID, projectID uuid.UUID, input UpdateProjectInput) (*ProjectResponse, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	var project *model.Project
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		project, err = s.find(txCtx, projectID)
		if err != nil {
			return err
		}

		changes := map[string]interface{}{}
		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return apperror.NewValidationError("Project name cannot be empty")
			}
			if err := s.ensureNameFree(txCtx, name, project.ID); err != nil {
				return err
			}
			project.Name = name
			changes["name"] = name
		}
		if input.Description != nil {
			project.Description = *input.Description
			changes["description"] = *input.Description
		}
		if input.TeamLeadID != nil {
			teamLead, err := s.loadTeamLead(txCtx, *input.TeamLeadID)
			if err != nil {
				return err
			}
			project.TeamLeadID = &teamLead.ID
			project.TeamLead = teamLead
			changes["team_lead_id"] = teamLead.ID.String()
		}

		if err := s.repo.Update(txCtx, project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}

		_, err = s.auditService.LogAction(txCtx, actorID, model.ActionUpdateProject, model.EntityProject, project.ID.String(), changes)
		return err
	})
	if err != nil {
		return nil, err
	}

	return toProjectResponse(project), nil
}

func (s *projectService) AssignTeamLead(ctx context.Context, actorID, projectID, userID uuid.UUID) (*ProjectResponse, error) {
	var project *model.Project
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		project, err = s.find(txCtx, projectID)
		if err != nil {
			return err
		}
		teamLead, err := s.loadTeamLead(txCtx, userID)
		if err != nil {
			return err
		}

		var previous interface{}
		if project.TeamLeadID != nil {
			previous = project.TeamLeadID.String()
		}
		project.TeamLeadID = &teamLead.ID
		project.TeamLead = teamLead
		if err := s.repo.Update(txCtx, project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}

		_, err = s.auditService.LogAction(txCtx, actorID, model.ActionAssignTeamLead, model.EntityProject, project.ID.String(), map[string]interface{}{
			"previous_team_lead_id": previous,
			"team_lead_id":          teamLead.ID.String(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return toProjectResponse(project), nil
}

// DeactivateProject hides the project from new submissions. Existing requests keep it.
func (s *projectService) DeactivateProject(ctx context.Context, actorID, projectID uuid.UUID) (*ProjectResponse, error) {
	var project *model.Project
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		project, err = s.find(txCtx, projectID)
		if err != nil {
			return err
		}
		project.IsActive = false
		if err := s.repo.Update(txCtx, project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}

		_, err = s.auditService.LogAction(txCtx, actorID, model.ActionDeactivateProject, model.EntityProject, project.ID.String(), map[string]interface{}{
			"name": project.Name,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return toProjectResponse(project), nil
}

func (s *projectService) GetProject(ctx context.Context, projectID uuid.UUID) (*ProjectResponse, error) {
	project, err := s.find(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

func (s *projectService) ListProjects(ctx context.Context, activeOnly bool) ([]ProjectResponse, error) {
	projects, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	res := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		res = append(res, *toProjectResponse(&projects[i]))
	}
	return res, nil
}

func (s *projectService) find(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	project, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Project with id %s not found", projectID)
		}
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return project, nil
}

// ensureNameFree fails when another project (not self) already uses name.
func (s *projectService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check project name: %w", err)
	}
	if existing.ID != self {
		return apperror.NewConflictError("Project with name '%s' already exists", name)
	}
	return nil
}

func (s *projectService) loadTeamLead(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("User with id %s not found", userID)
		}
		return nil, fmt.Errorf("failed to load team lead: %w", err)
	}
	if !user.CanLeadProjects() {
		return nil, apperror.NewValidationError("User must have 'team_lead' or 'manager' role. Current role: '%s'", user.Role)
	}
	return user, nil
}

func toProjectResponse(p *model.Project) *ProjectResponse {
	res := &ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		TeamLeadID:  p.TeamLeadID,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if p.TeamLead != nil {
		res.TeamLeadName = p.TeamLead.FullName
	}
	return res
}
