package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lendops/query-management-api/internal/database"
	"github.com/lendops/query-management-api/internal/models"
)

const queryItemColumns = `
	QUERY_ID, GROUP_ID, QUERY_TEXT, QUERY_NUMBER, STATUS, SENT_TO, TAT,
	RESOLVED_AT, RESOLVED_BY, RESOLUTION_REASON, APPROVER_COMMENT,
	APPROVED_BY, APPROVED_AT, APPROVAL_STATUS`

// QueryItemDAO handles database operations for sub-queries
type QueryItemDAO struct {
	db *database.DB
}

// NewQueryItemDAO creates a new QueryItemDAO instance
func NewQueryItemDAO(db *database.DB) *QueryItemDAO {
	return &QueryItemDAO{db: db}
}

// CreateWithTx inserts a new sub-query using a transaction
func (dao *QueryItemDAO) CreateWithTx(ctx context.Context, tx *database.Transaction, item *models.QueryItem) error {
	query := `
		INSERT INTO QUERY_ITEM (
			QUERY_ID, GROUP_ID, QUERY_TEXT, QUERY_NUMBER, STATUS, SENT_TO, TAT
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		item.QueryID,
		item.GroupID,
		item.Text,
		item.QueryNumber,
		item.Status,
		item.SentTo,
		item.TAT,
	)

	if err != nil {
		return fmt.Errorf("failed to create query item: %w", err)
	}

	return nil
}

// GetByID retrieves a sub-query by its ID
func (dao *QueryItemDAO) GetByID(ctx context.Context, queryID string) (*models.QueryItem, error) {
	query := `SELECT ` + queryItemColumns + ` FROM QUERY_ITEM WHERE QUERY_ID = ?`

	var item models.QueryItem
	err := dao.db.GetContext(ctx, &item, query, queryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("query item %s: %w", queryID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get query item: %w", err)
	}

	return &item, nil
}

// ListByGroupID retrieves all sub-queries of a group in creation order
func (dao *QueryItemDAO) ListByGroupID(ctx context.Context, groupID string) ([]models.QueryItem, error) {
	query := `SELECT ` + queryItemColumns + ` FROM QUERY_ITEM WHERE GROUP_ID = ? ORDER BY QUERY_NUMBER ASC`

	items := []models.QueryItem{}
	err := dao.db.SelectContext(ctx, &items, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list query items: %w", err)
	}

	return items, nil
}

// ListByGroupIDs retrieves the sub-queries of many groups in one query
func (dao *QueryItemDAO) ListByGroupIDs(ctx context.Context, groupIDs []string) ([]models.QueryItem, error) {
	if len(groupIDs) == 0 {
		return []models.QueryItem{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+queryItemColumns+` FROM QUERY_ITEM WHERE GROUP_ID IN (?) ORDER BY QUERY_NUMBER ASC`, groupIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build item lookup query: %w", err)
	}

	items := []models.QueryItem{}
	err = dao.db.SelectContext(ctx, &items, dao.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list query items: %w", err)
	}

	return items, nil
}

// UpdateStatusWithTx writes a sub-query's status and resolution metadata
// within a transaction
func (dao *QueryItemDAO) UpdateStatusWithTx(ctx context.Context, tx *database.Transaction, item *models.QueryItem) error {
	query := `
		UPDATE QUERY_ITEM
		SET STATUS = ?, RESOLVED_AT = ?, RESOLVED_BY = ?, RESOLUTION_REASON = ?,
		    APPROVER_COMMENT = ?, APPROVED_BY = ?, APPROVED_AT = ?, APPROVAL_STATUS = ?
		WHERE QUERY_ID = ?
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		item.Status,
		item.ResolvedAt,
		item.ResolvedBy,
		item.ResolutionReason,
		item.ApproverComment,
		item.ApprovedBy,
		item.ApprovedAt,
		item.ApprovalStatus,
		item.QueryID,
	)

	if err != nil {
		return fmt.Errorf("failed to update query item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("query item %s: %w", item.QueryID, ErrNotFound)
	}

	return nil
}

// MaxQueryNumber returns the highest assigned query number, 0 when the
// table is empty. Seeds the in-process allocator on first use.
func (dao *QueryItemDAO) MaxQueryNumber(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(MAX(QUERY_NUMBER), 0) FROM QUERY_ITEM`

	var max int64
	err := dao.db.GetContext(ctx, &max, query)
	if err != nil {
		return 0, fmt.Errorf("failed to get max query number: %w", err)
	}

	return max, nil
}
