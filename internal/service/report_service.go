package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"travelapproval/internal/apperror"
	"travelapproval/internal/model"
	"travelapproval/internal/repository"

	"github.com/google/uuid"
)

var csvHeaders = []string{
	"Request ID",
	"Employee Name",
	"Department",
	"Request Type",
	"Project Name",
	"Destination",
	"Start Date",
	"End Date",
	"Purpose",
	"Estimated Cost",
	"T-Account",
	"Status",
	"Approved By",
	"Approval Date",
}

// ReportService serves accounting: decided requests, CSV export and
// per-account totals.
type ReportService interface {
	ListRequests(ctx context.Context, filter repository.ReportFilter) ([]TravelRequestResponse, error)
	ExportCSV(ctx context.Context, filter repository.ReportFilter, w io.Writer) error
	SummaryByTAccount(ctx context.Context, filter repository.ReportFilter) ([]repository.TAccountSummary, error)
}

type reportService struct {
	requestRepo repository.TravelRequestRepository
	userRepo    repository.UserRepository
}

func NewReportService(requestRepo repository.TravelRequestRepository, userRepo repository.UserRepository) ReportService {
	return &reportService{requestRepo: requestRepo, userRepo: userRepo}
}

var errInvalidStatus = apperror.NewValidationError("status must be one of [pending approved rejected]")

// ParseReportFilter builds a filter from raw query values. date_to is
// inclusive through the end of that day.
func ParseReportFilter(status, dateFrom, dateTo, taccountID, projectID string) (repository.ReportFilter, error) {
	var filter repository.ReportFilter

	if status != "" && !model.ValidStatus(status) {
		return filter, errInvalidStatus
	}
	filter.Status = status

	if dateFrom != "" {
		from, err := time.Parse(dateLayout, dateFrom)
		if err != nil {
			return filter, apperror.NewValidationError("date_from must be a date in format %s", dateLayout)
		}
		filter.DateFrom = &from
	}
	if dateTo != "" {
		to, err := time.Parse(dateLayout, dateTo)
		if err != nil {
			return filter, apperror.NewValidationError("date_to must be a date in format %s", dateLayout)
		}
		end := to.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &end
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return filter, apperror.NewValidationError("date_to must be on or after date_from")
	}

	if taccountID != "" {
		id, err := uuid.Parse(taccountID)
		if err != nil {
			return filter, apperror.NewValidationError("taccount_id must be a valid id")
		}
		filter.TAccountID = &id
	}
	if projectID != "" {
		id, err := uuid.Parse(projectID)
		if err != nil {
			return filter, apperror.NewValidationError("project_id must be a valid id")
		}
		filter.ProjectID = &id
	}

	return filter, nil
}

func (s *reportService) ListRequests(ctx context.Context, filter repository.ReportFilter) ([]TravelRequestResponse, error) {
	requests, err := s.requestRepo.ListForReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report: %w", err)
	}
	return toTravelRequestResponses(requests), nil
}

// ExportCSV writes one row per request. The department column is the
// requester's manager, or N/A.
func (s *reportService) ExportCSV(ctx context.Context, filter repository.ReportFilter, w io.Writer) error {
	requests, err := s.requestRepo.ListForReport(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to fetch report: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeaders); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	managers := map[uuid.UUID]string{}
	for _, r := range requests {
		if err := writer.Write(s.csvRow(ctx, r, managers)); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (s *reportService) csvRow(ctx context.Context, r model.TravelRequest, managers map[uuid.UUID]string) []string {
	employee := "N/A"
	department := "N/A"
	if r.Requester != nil {
		employee = r.Requester.FullName
		if r.Requester.ManagerID != nil {
			department = s.managerName(ctx, *r.Requester.ManagerID, managers)
		}
	}

	projectName := "N/A"
	if r.Project != nil {
		projectName = r.Project.Name
	}
	approverName := "N/A"
	if r.Approver != nil {
		approverName = r.Approver.FullName
	}
	approvalDate := "N/A"
	if r.ApprovalDate != nil {
		approvalDate = r.ApprovalDate.Format("2006-01-02 15:04:05")
	}
	taccount := "N/A"
	if r.TAccount != nil {
		taccount = fmt.Sprintf("%s - %s", r.TAccount.AccountCode, r.TAccount.AccountName)
	}

	return []string{
		r.ID.String(),
		employee,
		department,
		capitalize(r.RequestType),
		projectName,
		r.Destination,
		r.StartDate.Format(dateLayout),
		r.EndDate.Format(dateLayout),
		r.Purpose,
		r.EstimatedCost.StringFixed(2),
		taccount,
		capitalize(r.Status),
		approverName,
		approvalDate,
	}
}

func (s *reportService) managerName(ctx context.Context, id uuid.UUID, cache map[uuid.UUID]string) string {
	if name, ok := cache[id]; ok {
		return name
	}
	name := "N/A"
	if manager, err := s.userRepo.GetByID(ctx, id); err == nil {
		name = manager.FullName
	}
	cache[id] = name
	return name
}

func (s *reportService) SummaryByTAccount(ctx context.Context, filter repository.ReportFilter) ([]repository.TAccountSummary, error) {
	summary, err := s.requestRepo.SummaryByTAccount(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build summary: %w", err)
	}
	return summary, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
