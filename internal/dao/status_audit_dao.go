package dao

import (
	"context"
	"fmt"

	"github.com/lendops/query-management-api/internal/database"
	"github.com/lendops/query-management-api/internal/models"
)

// StatusAuditDAO handles database operations for the status audit trail
type StatusAuditDAO struct {
	db *database.DB
}

// NewStatusAuditDAO creates a new StatusAuditDAO instance
func NewStatusAuditDAO(db *database.DB) *StatusAuditDAO {
	return &StatusAuditDAO{db: db}
}

// Create inserts an audit record
func (dao *StatusAuditDAO) Create(ctx context.Context, audit *models.QueryStatusAudit) error {
	query := `
		INSERT INTO QUERY_STATUS_AUDIT (
			AUDIT_ID, QUERY_ID, GROUP_ID, PREVIOUS_STATUS, CURRENT_STATUS,
			ACTION_BY, REASON, ACTION_TIME
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := dao.db.ExecContext(
		ctx,
		query,
		audit.AuditID,
		audit.QueryID,
		audit.GroupID,
		audit.PreviousStatus,
		audit.CurrentStatus,
		audit.ActionBy,
		audit.Reason,
		audit.ActionTime,
	)

	if err != nil {
		return fmt.Errorf("failed to create status audit record: %w", err)
	}

	return nil
}

// ListByQueryID retrieves the audit trail for a sub-query, oldest first
func (dao *StatusAuditDAO) ListByQueryID(ctx context.Context, queryID string) ([]models.QueryStatusAudit, error) {
	query := `
		SELECT AUDIT_ID, QUERY_ID, GROUP_ID, PREVIOUS_STATUS, CURRENT_STATUS,
		       ACTION_BY, REASON, ACTION_TIME
		FROM QUERY_STATUS_AUDIT
		WHERE QUERY_ID = ?
		ORDER BY ACTION_TIME ASC
	`

	records := []models.QueryStatusAudit{}
	err := dao.db.SelectContext(ctx, &records, query, queryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list status audit records: %w", err)
	}

	return records, nil
}
