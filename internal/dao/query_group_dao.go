package dao

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lendops/query-management-api/internal/database"
	"github.com/lendops/query-management-api/internal/models"
)

const queryGroupColumns = `
	GROUP_ID, APP_NO, CUSTOMER_NAME, BRANCH, BRANCH_CODE, STATUS,
	MARKED_FOR_TEAM, SEND_TO, SEND_TO_SALES, SEND_TO_CREDIT, RAISED_BY,
	CREATED_AT, SUBMITTED_AT, LAST_UPDATED, RESOLVED_AT, RESOLVED_BY,
	RESOLUTION_REASON, APPROVER_COMMENT, APPROVED_BY, APPROVED_AT,
	APPROVAL_STATUS`

// QueryGroupDAO handles database operations for query groups
type QueryGroupDAO struct {
	db *database.DB
}

// NewQueryGroupDAO creates a new QueryGroupDAO instance
func NewQueryGroupDAO(db *database.DB) *QueryGroupDAO {
	return &QueryGroupDAO{db: db}
}

// CreateWithTx inserts a new query group using a transaction
func (dao *QueryGroupDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, group *models.QueryGroup) error {
	query := `
		INSERT INTO QUERY_GROUP (
			GROUP_ID, APP_NO, CUSTOMER_NAME, BRANCH, BRANCH_CODE, STATUS,
			MARKED_FOR_TEAM, SEND_TO, SEND_TO_SALES, SEND_TO_CREDIT, RAISED_BY,
			CREATED_AT, SUBMITTED_AT, LAST_UPDATED
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		group.GroupID,
		group.AppNo,
		group.CustomerName,
		group.Branch,
		group.BranchCode,
		group.Status,
		group.MarkedForTeam,
		group.SendTo,
		group.SendToSales,
		group.SendToCredit,
		group.RaisedBy,
		group.CreatedAt,
		group.SubmittedAt,
		group.LastUpdated,
	)

	if err != nil {
		return fmt.Errorf("failed to create query group: %w", err)
	}

	return nil
}

// GetByID retrieves a query group by its ID
func (dao *QueryGroupDAO) GetByID(ctx context.Context, groupID string) (*models.QueryGroup, error) {
	query := `SELECT ` + queryGroupColumns + ` FROM QUERY_GROUP WHERE GROUP_ID = ?`

	var group models.QueryGroup
	err := dao.db.GetContext(ctx, &group, query, groupID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("query group %s: %w", groupID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get query group: %w", err)
	}

	return &group, nil
}

// List retrieves query groups matching the given filters, newest first
func (dao *QueryGroupDAO) List(ctx context.Context, filters models.QueryListFilters) ([]models.QueryGroup, error) {
	query := `SELECT ` + queryGroupColumns + ` FROM QUERY_GROUP`

	var conditions []string
	var args []interface{}

	if filters.AppNo != "" {
		conditions = append(conditions, "APP_NO LIKE ?")
		args = append(args, "%"+filters.AppNo+"%")
	}

	if filters.Status != "" {
		conditions = append(conditions, "STATUS = ?")
		args = append(args, filters.Status)
	}

	switch filters.Team {
	case models.TeamSales:
		conditions = append(conditions, "SEND_TO_SALES = TRUE")
	case models.TeamCredit:
		conditions = append(conditions, "SEND_TO_CREDIT = TRUE")
	case models.TeamOperations, "":
		// Operations sees everything.
	default:
		conditions = append(conditions, "MARKED_FOR_TEAM = ?")
		args = append(args, filters.Team)
	}

	if len(filters.Branches) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filters.Branches)), ",")
		conditions = append(conditions, fmt.Sprintf("(LOWER(BRANCH) IN (%s) OR LOWER(BRANCH_CODE) IN (%s))", placeholders, placeholders))
		lowered := make([]interface{}, 0, len(filters.Branches))
		for _, b := range filters.Branches {
			lowered = append(lowered, strings.ToLower(strings.TrimSpace(b)))
		}
		args = append(args, lowered...)
		args = append(args, lowered...)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY SUBMITTED_AT DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	groups := []models.QueryGroup{}
	err := dao.db.SelectContext(ctx, &groups, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list query groups: %w", err)
	}

	return groups, nil
}

// UpdateResolutionWithTx writes the group's aggregated status and resolution
// metadata within a transaction
func (dao *QueryGroupDAO) UpdateResolutionWithTx(ctx context.Context, tx *database.Transaction, group *models.QueryGroup) error {
	query := `
		UPDATE QUERY_GROUP
		SET STATUS = ?, LAST_UPDATED = ?, RESOLVED_AT = ?, RESOLVED_BY = ?,
		    RESOLUTION_REASON = ?, APPROVER_COMMENT = ?, APPROVED_BY = ?,
		    APPROVED_AT = ?, APPROVAL_STATUS = ?
		WHERE GROUP_ID = ?
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		group.Status,
		group.LastUpdated,
		group.ResolvedAt,
		group.ResolvedBy,
		group.ResolutionReason,
		group.ApproverComment,
		group.ApprovedBy,
		group.ApprovedAt,
		group.ApprovalStatus,
		group.GroupID,
	)

	if err != nil {
		return fmt.Errorf("failed to update query group: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("query group %s: %w", group.GroupID, ErrNotFound)
	}

	return nil
}

// UnresolvedCountByAppNo counts groups for the application whose status is
// outside the resolved set. Used to decide the sanctioned-application cascade.
func (dao *QueryGroupDAO) UnresolvedCountByAppNo(ctx context.Context, appNo string, excludeGroupID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM QUERY_GROUP
		WHERE APP_NO = ? AND GROUP_ID <> ?
		  AND STATUS NOT IN (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var count int
	err := dao.db.GetContext(ctx, &count, query, appNo, excludeGroupID,
		models.StatusApproved, models.StatusDeferred, models.StatusOTC,
		models.StatusWaived, models.StatusResolved, models.StatusRequestApproved,
		models.StatusRequestDeferral, models.StatusRequestOTC)
	if err != nil {
		return 0, fmt.Errorf("failed to count unresolved query groups: %w", err)
	}

	return count, nil
}
