package service

import (
	"context"
	"errors"
	"fmt"

	"travelapproval/internal/apperror"
	"travelapproval/internal/model"
	"travelapproval/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApproverResolver decides who must approve a travel request.
type ApproverResolver interface {
	ResolveApprover(ctx context.Context, req *model.TravelRequest) (*model.User, error)
}

type approverResolver struct {
	userRepo repository.UserRepository
}

func NewApproverResolver(userRepo repository.UserRepository) ApproverResolver {
	return &approverResolver{userRepo: userRepo}
}

// ResolveApprover routes operations requests to the requester's direct manager
// and project requests to the project's team lead. Only the direct manager is
// consulted; the manager's active flag is not checked.
func (r *approverResolver) ResolveApprover(ctx context.Context, req *model.TravelRequest) (*model.User, error) {
	switch req.RequestType {
	case model.RequestTypeOperations:
		requester, err := r.requester(ctx, req)
		if err != nil {
			return nil, err
		}
		if requester.ManagerID == nil {
			return nil, apperror.NewRoutingError("no manager assigned")
		}
		return r.lookup(ctx, *requester.ManagerID, "manager not found")

	case model.RequestTypeProject:
		if req.Project == nil {
			return nil, apperror.NewRoutingError("project not found")
		}
		if req.Project.TeamLeadID == nil {
			return nil, apperror.NewRoutingError("project has no team lead")
		}
		return r.lookup(ctx, *req.Project.TeamLeadID, "team lead not found")

	default:
		return nil, apperror.NewRoutingError("invalid request type")
	}
}

func (r *approverResolver) requester(ctx context.Context, req *model.TravelRequest) (*model.User, error) {
	if req.Requester != nil {
		return req.Requester, nil
	}
	user, err := r.userRepo.GetByID(ctx, req.RequesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Requester not found")
		}
		return nil, fmt.Errorf("failed to load requester: %w", err)
	}
	return user, nil
}

func (r *approverResolver) lookup(ctx context.Context, id uuid.UUID, missing string) (*model.User, error) {
	user, err := r.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewRoutingError(missing)
		}
		return nil, fmt.Errorf("failed to resolve approver: %w", err)
	}
	return user, nil
}
