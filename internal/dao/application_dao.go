package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lendops/query-management-api/internal/database"
	"github.com/lendops/query-management-api/internal/models"
)

// ApplicationDAO handles database operations for upstream loan applications
// and the app-number prefix directory
type ApplicationDAO struct {
	db *database.DB
}

// NewApplicationDAO creates a new ApplicationDAO instance
func NewApplicationDAO(db *database.DB) *ApplicationDAO {
	return &ApplicationDAO{db: db}
}

// GetByAppNo retrieves a loan application by its application number
func (dao *ApplicationDAO) GetByAppNo(ctx context.Context, appNo string) (*models.LoanApplication, error) {
	query := `
		SELECT APP_NO, CUSTOMER_NAME, BRANCH, BRANCH_CODE
		FROM LOAN_APPLICATION
		WHERE APP_NO = ?
	`

	var app models.LoanApplication
	err := dao.db.GetContext(ctx, &app, query, appNo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("loan application %s: %w", appNo, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get loan application: %w", err)
	}

	return &app, nil
}

// BranchPrefix maps an application-number prefix to a branch
type BranchPrefix struct {
	Prefix     string `db:"PREFIX"`
	Branch     string `db:"BRANCH"`
	BranchCode string `db:"BRANCH_CODE"`
}

// GetBranchByPrefix looks up the branch directory by app-number prefix.
// The longest matching prefix wins.
func (dao *ApplicationDAO) GetBranchByPrefix(ctx context.Context, appNo string) (*BranchPrefix, error) {
	query := `
		SELECT PREFIX, BRANCH, BRANCH_CODE
		FROM APP_PREFIX
		WHERE ? LIKE CONCAT(PREFIX, '%')
		ORDER BY LENGTH(PREFIX) DESC
		LIMIT 1
	`

	var prefix BranchPrefix
	err := dao.db.GetContext(ctx, &prefix, query, appNo)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("branch prefix for %s: %w", appNo, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get branch prefix: %w", err)
	}

	return &prefix, nil
}
