package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lendops/query-management-api/internal/database"
	"github.com/lendops/query-management-api/internal/models"
)

const sanctionColumns = `
	APP_ID, CUSTOMER_NAME, BRANCH, SANCTIONED_AMOUNT, LOAN_TYPE,
	SALES_EXEC, STATUS, UPLOADED_AT`

// SanctionDAO handles database operations for sanctioned applications
type SanctionDAO struct {
	db *database.DB
}

// NewSanctionDAO creates a new SanctionDAO instance
func NewSanctionDAO(db *database.DB) *SanctionDAO {
	return &SanctionDAO{db: db}
}

// GetByAppID retrieves a sanctioned application by its application number
func (dao *SanctionDAO) GetByAppID(ctx context.Context, appID string) (*models.SanctionedApplication, error) {
	query := `SELECT ` + sanctionColumns + ` FROM SANCTIONED_APPLICATION WHERE APP_ID = ?`

	var app models.SanctionedApplication
	err := dao.db.GetContext(ctx, &app, query, appID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("sanctioned application %s: %w", appID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get sanctioned application: %w", err)
	}

	return &app, nil
}

// GetByAppIDs retrieves sanctioned applications for many application
// numbers in one query. Missing rows are simply absent from the result.
func (dao *SanctionDAO) GetByAppIDs(ctx context.Context, appIDs []string) ([]models.SanctionedApplication, error) {
	if len(appIDs) == 0 {
		return []models.SanctionedApplication{}, nil
	}

	query, args, err := sqlx.In(`SELECT `+sanctionColumns+` FROM SANCTIONED_APPLICATION WHERE APP_ID IN (?)`, appIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build sanction lookup query: %w", err)
	}

	apps := []models.SanctionedApplication{}
	err = dao.db.SelectContext(ctx, &apps, dao.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get sanctioned applications: %w", err)
	}

	return apps, nil
}

// DeleteByAppID removes a sanctioned application. Returns the number of
// rows deleted so the caller can log a no-op cascade.
func (dao *SanctionDAO) DeleteByAppID(ctx context.Context, appID string) (int64, error) {
	query := `DELETE FROM SANCTIONED_APPLICATION WHERE APP_ID = ?`

	result, err := dao.db.ExecContext(ctx, query, appID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sanctioned application: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}
