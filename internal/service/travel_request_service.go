package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"travelapproval/internal/apperror"
	"travelapproval/internal/logger"
	"travelapproval/internal/metrics"
	"travelapproval/internal/model"
	"travelapproval/internal/repository"
	"travelapproval/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// --- DTOs ---

type SubmitTravelRequestInput struct {
	RequestType   string          `json:"request_type" binding:"required,oneof=operations project"`
	ProjectID     *uuid.UUID      `json:"project_id"`
	Destination   string          `json:"destination" binding:"required,max=255"`
	StartDate     string          `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate       string          `json:"end_date" binding:"required,datetime=2006-01-02"`
	Purpose       string          `json:"purpose" binding:"required"`
	EstimatedCost decimal.Decimal `json:"estimated_cost" binding:"money2"`
	TAccountID    uuid.UUID       `json:"taccount_id" binding:"required"`
}

type ApproveTravelRequestInput struct {
	Comments *string `json:"comments"`
}

type RejectTravelRequestInput struct {
	Reason string `json:"reason"`
}

type TravelRequestResponse struct {
	ID               uuid.UUID       `json:"id"`
	RequesterID      uuid.UUID       `json:"requester_id"`
	RequesterName    string          `json:"requester_name"`
	RequestType      string          `json:"request_type"`
	ProjectID        *uuid.UUID      `json:"project_id"`
	ProjectName      string          `json:"project_name,omitempty"`
	Destination      string          `json:"destination"`
	StartDate        string          `json:"start_date"`
	EndDate          string          `json:"end_date"`
	Purpose          string          `json:"purpose"`
	EstimatedCost    decimal.Decimal `json:"estimated_cost"`
	TAccountID       uuid.UUID       `json:"taccount_id"`
	TAccountCode     string          `json:"taccount_code,omitempty"`
	Status           string          `json:"status"`
	ApproverID       *uuid.UUID      `json:"approver_id"`
	ApproverName     string          `json:"approver_name,omitempty"`
	ApprovalDate     *string         `json:"approval_date"`
	ApprovalComments *string         `json:"approval_comments"`
	RejectionReason  *string         `json:"rejection_reason"`
	CreatedAt        string          `json:"created_at"`
}

// NotificationPusher delivers committed notifications to live clients.
// Delivery is best effort.
type NotificationPusher interface {
	Push(notifications []model.Notification)
}

// --- Interface ---

type TravelRequestService interface {
	Submit(ctx context.Context, requesterID uuid.UUID, input SubmitTravelRequestInput) (*TravelRequestResponse, error)
	Approve(ctx context.Context, requestID, approverID uuid.UUID, comments *string) (*TravelRequestResponse, error)
	Reject(ctx context.Context, requestID, approverID uuid.UUID, reason string) (*TravelRequestResponse, error)
	ListPendingForApprover(ctx context.Context, approverID uuid.UUID) ([]TravelRequestResponse, error)
	GetRequest(ctx context.Context, requestID, viewerID uuid.UUID, viewerRole string) (*TravelRequestResponse, error)
	ListForRequester(ctx context.Context, requesterID uuid.UUID, status string, page, limit int) ([]TravelRequestResponse, int64, error)
}

type travelRequestService struct {
	txManager     repository.TransactionManager
	requestRepo   repository.TravelRequestRepository
	userRepo      repository.UserRepository
	projectRepo   repository.ProjectRepository
	taccountRepo  repository.TAccountRepository
	resolver      ApproverResolver
	auditService  AuditService
	notifications NotificationService
	pusher        NotificationPusher
	validator     *validation.Validator
	log           *logrus.Logger
}

func NewTravelRequestService(
	txManager repository.TransactionManager,
	requestRepo repository.TravelRequestRepository,
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	taccountRepo repository.TAccountRepository,
	resolver ApproverResolver,
	auditService AuditService,
	notifications NotificationService,
	pusher NotificationPusher,
	validator *validation.Validator,
) TravelRequestService {
	return &travelRequestService{
		txManager:     txManager,
		requestRepo:   requestRepo,
		userRepo:      userRepo,
		projectRepo:   projectRepo,
		taccountRepo:  taccountRepo,
		resolver:      resolver,
		auditService:  auditService,
		notifications: notifications,
		pusher:        pusher,
		validator:     validator,
		log:           logger.Get(),
	}
}

// --- Implementation ---

// Submit validates the input, resolves the approver and stores the request
// together with the approver's notification. Nothing is written when no
// approver can be found.
func (s *travelRequestService) Submit(ctx context.Context, requesterID uuid.UUID, input SubmitTravelRequestInput) (*TravelRequestResponse, error) {
	req, err := s.buildRequest(ctx, requesterID, input)
	if err != nil {
		return nil, err
	}

	approver, err := s.resolver.ResolveApprover(ctx, req)
	if err != nil {
		if errors.Is(err, apperror.ErrRouting) {
			metrics.RecordRoutingFailure(req.RequestType)
		}
		return nil, err
	}
	req.ApproverID = &approver.ID
	req.Approver = approver

	var created []model.Notification
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.requestRepo.Create(txCtx, req); createErr != nil {
			return fmt.Errorf("failed to create travel request: %w", createErr)
		}

		var notifyErr error
		created, notifyErr = s.notifications.NotifySubmitted(txCtx, req)
		return notifyErr
	})
	if err != nil {
		return nil, err
	}

	s.push(created)
	metrics.RecordSubmission(req.RequestType)
	s.log.WithFields(logrus.Fields{
		"request_id":   req.ID,
		"requester_id": req.RequesterID,
		"approver_id":  approver.ID,
		"request_type": req.RequestType,
	}).Info("travel request submitted")

	return toTravelRequestResponse(req), nil
}

func (s *travelRequestService) buildRequest(ctx context.Context, requesterID uuid.UUID, input SubmitTravelRequestInput) (*model.TravelRequest, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	startDate, err := time.Parse(dateLayout, input.StartDate)
	if err != nil {
		return nil, apperror.NewValidationError("start_date must be a date in format %s", dateLayout)
	}
	endDate, err := time.Parse(dateLayout, input.EndDate)
	if err != nil {
		return nil, apperror.NewValidationError("end_date must be a date in format %s", dateLayout)
	}
	if endDate.Before(startDate) {
		return nil, apperror.NewValidationError("End date must be on or after start date")
	}

	if !input.EstimatedCost.IsPositive() {
		return nil, apperror.NewValidationError("Estimated cost must be greater than 0")
	}
	if !validation.HasAtMostTwoDecimals(input.EstimatedCost) {
		return nil, apperror.NewValidationError("Estimated cost must have at most 2 decimal places")
	}

	destination := strings.TrimSpace(input.Destination)
	if destination == "" {
		return nil, apperror.NewValidationError("Destination cannot be empty")
	}
	purpose := strings.TrimSpace(input.Purpose)
	if purpose == "" {
		return nil, apperror.NewValidationError("Purpose cannot be empty")
	}

	var project *model.Project
	switch input.RequestType {
	case model.RequestTypeProject:
		if input.ProjectID == nil {
			return nil, apperror.NewValidationError("Project ID is required for project-type requests")
		}
		project, err = s.projectRepo.FindByID(ctx, *input.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.NewValidationError("Invalid or inactive project")
			}
			return nil, fmt.Errorf("failed to load project: %w", err)
		}
		if !project.IsActive {
			return nil, apperror.NewValidationError("Invalid or inactive project")
		}
	case model.RequestTypeOperations:
		if input.ProjectID != nil {
			return nil, apperror.NewValidationError("Project ID must not be set for operations requests")
		}
	}

	taccount, err := s.taccountRepo.FindByID(ctx, input.TAccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewValidationError("Invalid or inactive T-account")
		}
		return nil, fmt.Errorf("failed to load T-account: %w", err)
	}
	if !taccount.IsActive {
		return nil, apperror.NewValidationError("Invalid or inactive T-account")
	}

	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Requester not found")
		}
		return nil, fmt.Errorf("failed to load requester: %w", err)
	}

	req := &model.TravelRequest{
		RequesterID:   requester.ID,
		Requester:     requester,
		RequestType:   input.RequestType,
		Destination:   destination,
		StartDate:     startDate,
		EndDate:       endDate,
		Purpose:       purpose,
		EstimatedCost: input.EstimatedCost,
		TAccountID:    taccount.ID,
		TAccount:      taccount,
		Status:        model.StatusPending,
	}
	if project != nil {
		req.ProjectID = &project.ID
		req.Project = project
	}
	return req, nil
}

func (s *travelRequestService) Approve(ctx context.Context, requestID, approverID uuid.UUID, comments *string) (*TravelRequestResponse, error) {
	var created []model.Notification
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.lockForDecision(txCtx, requestID, approverID, "approve")
		if err != nil {
			return err
		}

		now := time.Now()
		req.Status = model.StatusApproved
		req.ApprovalDate = &now
		req.ApprovalComments = normalizeOptional(comments)

		if err := s.writeDecision(txCtx, req, "approve"); err != nil {
			return err
		}

		details := decisionDetails(req)
		details["comments"] = derefOrNil(req.ApprovalComments)
		if _, err := s.auditService.LogAction(txCtx, approverID, model.ActionApprove, model.EntityTravelRequest, req.ID.String(), details); err != nil {
			return err
		}

		created, err = s.notifications.NotifyApproved(txCtx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.afterDecision(ctx, requestID, approverID, model.StatusApproved, created)
}

func (s *travelRequestService) Reject(ctx context.Context, requestID, approverID uuid.UUID, reason string) (*TravelRequestResponse, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperror.NewValidationError("Rejection reason is required")
	}

	var created []model.Notification
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.lockForDecision(txCtx, requestID, approverID, "reject")
		if err != nil {
			return err
		}

		now := time.Now()
		req.Status = model.StatusRejected
		req.ApprovalDate = &now
		req.RejectionReason = &reason

		if err := s.writeDecision(txCtx, req, "reject"); err != nil {
			return err
		}

		details := decisionDetails(req)
		details["rejection_reason"] = reason
		if _, err := s.auditService.LogAction(txCtx, approverID, model.ActionReject, model.EntityTravelRequest, req.ID.String(), details); err != nil {
			return err
		}

		created, err = s.notifications.NotifyRejected(txCtx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.afterDecision(ctx, requestID, approverID, model.StatusRejected, created)
}

// lockForDecision loads the request under a row lock and checks, in order,
// existence, the approver and the current state.
func (s *travelRequestService) lockForDecision(ctx context.Context, requestID, approverID uuid.UUID, action string) (*model.TravelRequest, error) {
	req, err := s.requestRepo.FindByIDForUpdate(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Travel request not found")
		}
		return nil, fmt.Errorf("failed to load travel request: %w", err)
	}

	if req.ApproverID == nil || *req.ApproverID != approverID {
		return nil, apperror.NewForbiddenError(fmt.Sprintf("You are not authorized to %s this request", action))
	}

	if !req.IsPending() {
		return nil, apperror.NewInvalidStateError(action, req.Status)
	}

	return req, nil
}

func (s *travelRequestService) writeDecision(ctx context.Context, req *model.TravelRequest, action string) error {
	rows, err := s.requestRepo.UpdateDecision(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to update travel request: %w", err)
	}
	if rows == 0 {
		current, findErr := s.requestRepo.FindByID(ctx, req.ID)
		if findErr != nil {
			return fmt.Errorf("failed to reload travel request: %w", findErr)
		}
		return apperror.NewInvalidStateError(action, current.Status)
	}
	return nil
}

func (s *travelRequestService) afterDecision(ctx context.Context, requestID, approverID uuid.UUID, status string, created []model.Notification) (*TravelRequestResponse, error) {
	s.push(created)
	metrics.RecordDecision(status)
	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"approver_id": approverID,
		"status":      status,
	}).Info("travel request decided")

	req, err := s.requestRepo.FindByIDWithRelations(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload travel request: %w", err)
	}
	return toTravelRequestResponse(req), nil
}

func (s *travelRequestService) push(notifications []model.Notification) {
	if s.pusher == nil || len(notifications) == 0 {
		return
	}
	s.pusher.Push(notifications)
}

func (s *travelRequestService) ListPendingForApprover(ctx context.Context, approverID uuid.UUID) ([]TravelRequestResponse, error) {
	requests, err := s.requestRepo.ListPendingForApprover(ctx, approverID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending requests: %w", err)
	}
	return toTravelRequestResponses(requests), nil
}

// GetRequest is visible to the requester, the approver, admins and accounting.
func (s *travelRequestService) GetRequest(ctx context.Context, requestID, viewerID uuid.UUID, viewerRole string) (*TravelRequestResponse, error) {
	req, err := s.requestRepo.FindByIDWithRelations(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFoundError("Travel request not found")
		}
		return nil, fmt.Errorf("failed to load travel request: %w", err)
	}

	isApprover := req.ApproverID != nil && *req.ApproverID == viewerID
	if req.RequesterID != viewerID && !isApprover &&
		viewerRole != model.RoleAdmin && viewerRole != model.RoleAccounting {
		return nil, apperror.NewForbiddenError("Not authorized to view this request")
	}

	return toTravelRequestResponse(req), nil
}

// ListForRequester lists the requester's own requests, optionally narrowed to
// one status so dashboards can show pending, approved and rejected separately.
func (s *travelRequestService) ListForRequester(ctx context.Context, requesterID uuid.UUID, status string, page, limit int) ([]TravelRequestResponse, int64, error) {
	if status != "" && !model.ValidStatus(status) {
		return nil, 0, errInvalidStatus
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	requests, total, err := s.requestRepo.ListByRequester(ctx, requesterID, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch travel requests: %w", err)
	}
	return toTravelRequestResponses(requests), total, nil
}

// --- Helpers ---

func decisionDetails(req *model.TravelRequest) map[string]interface{} {
	return map[string]interface{}{
		"request_id":     req.ID.String(),
		"requester_id":   req.RequesterID.String(),
		"destination":    req.Destination,
		"estimated_cost": req.EstimatedCost.StringFixed(2),
	}
}

func derefOrNil(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// normalizeOptional trims s and maps blank input to nil.
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toTravelRequestResponses(requests []model.TravelRequest) []TravelRequestResponse {
	res := make([]TravelRequestResponse, 0, len(requests))
	for i := range requests {
		res = append(res, *toTravelRequestResponse(&requests[i]))
	}
	return res
}

func toTravelRequestResponse(r *model.TravelRequest) *TravelRequestResponse {
	res := &TravelRequestResponse{
		ID:               r.ID,
		RequesterID:      r.RequesterID,
		RequestType:      r.RequestType,
		ProjectID:        r.ProjectID,
		Destination:      r.Destination,
		StartDate:        r.StartDate.Format(dateLayout),
		EndDate:          r.EndDate.Format(dateLayout),
		Purpose:          r.Purpose,
		EstimatedCost:    r.EstimatedCost,
		TAccountID:       r.TAccountID,
		Status:           r.Status,
		ApproverID:       r.ApproverID,
		ApprovalComments: r.ApprovalComments,
		RejectionReason:  r.RejectionReason,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
	}
	if r.Requester != nil {
		res.RequesterName = r.Requester.FullName
	}
	if r.Approver != nil {
		res.ApproverName = r.Approver.FullName
	}
	if r.Project != nil {
		res.ProjectName = r.Project.Name
	}
	if r.TAccount != nil {
		res.TAccountCode = r.TAccount.AccountCode
	}
	if r.ApprovalDate != nil {
		formatted := r.ApprovalDate.Format(time.RFC3339)
		res.ApprovalDate = &formatted
	}
	return res
}
