package repository

import (
	"context"
	"time"

	"travelapproval/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReportFilter narrows decided requests for reporting. Zero values mean "any".
type ReportFilter struct {
	Status     string
	DateFrom   *time.Time
	DateTo     *time.Time
	TAccountID *uuid.UUID
	ProjectID  *uuid.UUID
}

// TAccountSummary aggregates requests per budget account.
type TAccountSummary struct {
	TAccountID   uuid.UUID       `json:"taccount_id"`
	AccountCode  string          `json:"account_code"`
	AccountName  string          `json:"account_name"`
	RequestCount int64           `json:"request_count"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

type TravelRequestRepository interface {
	Create(ctx context.Context, req *model.TravelRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TravelRequest, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.TravelRequest, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.TravelRequest, error)
	ListPendingForApprover(ctx context.Context, approverID uuid.UUID) ([]model.TravelRequest, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID, status string, page, limit int) ([]model.TravelRequest, int64, error)
	// UpdateDecision writes the decision fields only while the row is still
	// pending and returns the number of rows changed (0 or 1).
	UpdateDecision(ctx context.Context, req *model.TravelRequest) (int64, error)
	ListForReport(ctx context.Context, filter ReportFilter) ([]model.TravelRequest, error)
	SummaryByTAccount(ctx context.Context, filter ReportFilter) ([]TAccountSummary, error)
}

type travelRequestRepository struct {
	db *gorm.DB
}

func NewTravelRequestRepository(db *gorm.DB) TravelRequestRepository {
	return &travelRequestRepository{db: db}
}

func (r *travelRequestRepository) Create(ctx context.Context, req *model.TravelRequest) error {
	return GetDB(ctx, r.db).Omit(clause.Associations).Create(req).Error
}

func (r *travelRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TravelRequest, error) {
	var req model.TravelRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// FindByIDForUpdate row-locks the request for the rest of the surrounding transaction.
func (r *travelRequestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.TravelRequest, error) {
	var req model.TravelRequest
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *travelRequestRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.TravelRequest, error) {
	var req model.TravelRequest
	if err := GetDB(ctx, r.db).
		Preload("Requester").
		Preload("Approver").
		Preload("Project").
		Preload("TAccount").
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *travelRequestRepository) ListPendingForApprover(ctx context.Context, approverID uuid.UUID) ([]model.TravelRequest, error) {
	var requests []model.TravelRequest
	if err := GetDB(ctx, r.db).
		Preload("Requester").
		Preload("Project").
		Preload("TAccount").
		Where("approver_id = ? AND status = ?", approverID, model.StatusPending).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// ListByRequester pages through a requester's requests. An empty status
// matches every state.
func (r *travelRequestRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID, status string, page, limit int) ([]model.TravelRequest, int64, error) {
	var requests []model.TravelRequest
	var total int64

	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("requester_id = ?", requesterID)
		if status != "" {
			db = db.Where("status = ?", status)
		}
		return db
	}

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.TravelRequest{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Approver").Preload("Project").Preload("TAccount").
		Scopes(scope).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *travelRequestRepository) UpdateDecision(ctx context.Context, req *model.TravelRequest) (int64, error) {
	result := GetDB(ctx, r.db).Model(&model.TravelRequest{}).
		Where("id = ? AND status = ?", req.ID, model.StatusPending).
		Updates(map[string]interface{}{
			"status":            req.Status,
			"approval_date":     req.ApprovalDate,
			"approval_comments": req.ApprovalComments,
			"rejection_reason":  req.RejectionReason,
			"updated_at":        time.Now(),
		})
	return result.RowsAffected, result.Error
}

func (r *travelRequestRepository) applyReportFilter(db *gorm.DB, filter ReportFilter) *gorm.DB {
	status := filter.Status
	if status == "" {
		status = model.StatusApproved
	}
	db = db.Where("travel_requests.status = ?", status)
	if filter.DateFrom != nil {
		db = db.Where("travel_requests.approval_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		db = db.Where("travel_requests.approval_date <= ?", *filter.DateTo)
	}
	if filter.TAccountID != nil {
		db = db.Where("travel_requests.taccount_id = ?", *filter.TAccountID)
	}
	if filter.ProjectID != nil {
		db = db.Where("travel_requests.project_id = ?", *filter.ProjectID)
	}
	return db
}

func (r *travelRequestRepository) ListForReport(ctx context.Context, filter ReportFilter) ([]model.TravelRequest, error) {
	var requests []model.TravelRequest
	query := GetDB(ctx, r.db).
		Preload("Requester").
		Preload("Approver").
		Preload("Project").
		Preload("TAccount")
	if err := r.applyReportFilter(query, filter).
		Order("travel_requests.approval_date DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *travelRequestRepository) SummaryByTAccount(ctx context.Context, filter ReportFilter) ([]TAccountSummary, error) {
	var rows []TAccountSummary
	query := GetDB(ctx, r.db).
		Table("travel_requests").
		Select(`t_accounts.id AS t_account_id,
			t_accounts.account_code AS account_code,
			t_accounts.account_name AS account_name,
			COUNT(travel_requests.id) AS request_count,
			COALESCE(SUM(travel_requests.estimated_cost), 0) AS total_cost`).
		Joins("JOIN t_accounts ON t_accounts.id = travel_requests.taccount_id")
	if err := r.applyReportFilter(query, filter).
		Group("t_accounts.id, t_accounts.account_code, t_accounts.account_name").
		Order("total_cost DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
