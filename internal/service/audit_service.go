package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"
)

type AuditEntry struct {
	ID         string `json:"id"`
	ActorName  string `json:"actor_name"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

type AuditService interface {
	ListAuditLogs(ctx context.Context, page, limit int) ([]AuditEntry, int64, error)
}

type auditService struct {
	audit repository.AuditRepository
}

// NewAuditService returns a new instance of AuditService
func NewAuditService(audit repository.AuditRepository) AuditService {
	return &auditService{audit: audit}
}

func (s *auditService) ListAuditLogs(ctx context.Context, page, limit int) ([]AuditEntry, int64, error) {
	logs, total, err := s.audit.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	out := make([]AuditEntry, 0, len(logs))
	for i := range logs {
		out = append(out, toAuditEntry(&logs[i]))
	}
	return out, total, nil
}

func toAuditEntry(l *model.AuditLog) AuditEntry {
	actor := "system"
	if l.Profile != nil {
		actor = l.Profile.DisplayName
	}
	return AuditEntry{
		ID:         l.ID.String(),
		ActorName:  actor,
		Action:     l.Action,
		EntityID:   l.EntityID,
		EntityName: l.EntityName,
		Details:    l.Details,
		CreatedAt:  l.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
