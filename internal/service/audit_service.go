package service

import (
	"context"
	"fmt"

	"travelapproval/internal/model"
	"travelapproval/internal/repository"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const defaultRecentAuditLimit = 100

type AuditLogResponse struct {
	ID         string                 `json:"id"`
	UserID     string                 `json:"user_id"`
	UserName   string                 `json:"user_name"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Details    map[string]interface{} `json:"details"`
	Timestamp  string                 `json:"timestamp"`
}

// AuditService records and reads the append-only audit trail. Writes join the
// caller's transaction when ctx carries one.
type AuditService interface {
	LogAction(ctx context.Context, actorID uuid.UUID, action, entityType, entityID string, details map[string]interface{}) (*model.AuditLog, error)
	GetLogsForEntity(ctx context.Context, entityType, entityID string, limit int) ([]AuditLogResponse, error)
	GetLogsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]AuditLogResponse, error)
	GetRecentLogs(ctx context.Context, limit int) ([]AuditLogResponse, error)
	ListLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) LogAction(ctx context.Context, actorID uuid.UUID, action, entityType, entityID string, details map[string]interface{}) (*model.AuditLog, error) {
	entry := &model.AuditLog{
		UserID:     actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    datatypes.JSONMap(details),
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to write audit log: %w", err)
	}
	return entry, nil
}

func (s *auditService) GetLogsForEntity(ctx context.Context, entityType, entityID string, limit int) ([]AuditLogResponse, error) {
	logs, err := s.repo.ListByEntity(ctx, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return toAuditLogResponses(logs), nil
}

func (s *auditService) GetLogsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]AuditLogResponse, error) {
	logs, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return toAuditLogResponses(logs), nil
}

func (s *auditService) GetRecentLogs(ctx context.Context, limit int) ([]AuditLogResponse, error) {
	if limit <= 0 {
		limit = defaultRecentAuditLimit
	}
	logs, _, err := s.repo.List(ctx, 1, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return toAuditLogResponses(logs), nil
}

// ListLogs retrieves paginated records with users pre-loaded
func (s *auditService) ListLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	logs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return toAuditLogResponses(logs), total, nil
}

func toAuditLogResponses(logs []model.AuditLog) []AuditLogResponse {
	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		userName := "System"
		if l.User != nil {
			userName = l.User.FullName
		}
		res = append(res, AuditLogResponse{
			ID:         l.ID.String(),
			UserID:     l.UserID.String(),
			UserName:   userName,
			Action:     l.Action,
			EntityType: l.EntityType,
			EntityID:   l.EntityID,
			Details:    map[string]interface{}(l.Details),
			Timestamp:  l.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return res
}
