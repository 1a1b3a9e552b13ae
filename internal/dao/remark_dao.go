package dao

import (
	"context"
	"fmt"

	"github.com/lendops/query-management-api/internal/database"
	"github.com/lendops/query-management-api/internal/models"
)

// RemarkDAO handles database operations for per-group remarks
type RemarkDAO struct {
	db *database.DB
}

// NewRemarkDAO creates a new RemarkDAO instance
func NewRemarkDAO(db *database.DB) *RemarkDAO {
	return &RemarkDAO{db: db}
}

// Create inserts a new remark
func (dao *RemarkDAO) Create(ctx context.Context, remark *models.Remark) error {
	query := `
		INSERT INTO QUERY_REMARK (
			REMARK_ID, GROUP_ID, REMARK_TEXT, AUTHOR, TEAM, CREATED_AT
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := dao.db.ExecContext(
		ctx,
		query,
		remark.RemarkID,
		remark.GroupID,
		remark.Text,
		remark.Author,
		remark.Team,
		remark.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create remark: %w", err)
	}

	return nil
}

// ListByGroupID retrieves all remarks on a group, oldest first
func (dao *RemarkDAO) ListByGroupID(ctx context.Context, groupID string) ([]models.Remark, error) {
	query := `
		SELECT REMARK_ID, GROUP_ID, REMARK_TEXT, AUTHOR, TEAM, CREATED_AT
		FROM QUERY_REMARK
		WHERE GROUP_ID = ?
		ORDER BY CREATED_AT ASC
	`

	remarks := []models.Remark{}
	err := dao.db.SelectContext(ctx, &remarks, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list remarks: %w", err)
	}

	return remarks, nil
}
