package dao

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendops/query-management-api/internal/database"
	"github.com/lendops/query-management-api/internal/models"
)

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	return database.NewWithDB(sqlx.NewDb(mockDB, "sqlmock"), logger), mock
}

func TestQueryItemGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewQueryItemDAO(db)

	rows := sqlmock.NewRows([]string{
		"QUERY_ID", "GROUP_ID", "QUERY_TEXT", "QUERY_NUMBER", "STATUS", "SENT_TO", "TAT",
		"RESOLVED_AT", "RESOLVED_BY", "RESOLUTION_REASON", "APPROVER_COMMENT",
		"APPROVED_BY", "APPROVED_AT", "APPROVAL_STATUS",
	}).AddRow(
		"QRY-i1", "QRY-g1", "Missing KYC", int64(7), models.StatusPending,
		models.TeamCredit, "24h", nil, nil, nil, nil, nil, nil, nil,
	)
	mock.ExpectQuery("FROM QUERY_ITEM WHERE QUERY_ID").
		WithArgs("QRY-i1").
		WillReturnRows(rows)

	item, err := dao.GetByID(context.Background(), "QRY-i1")
	require.NoError(t, err)

	assert.Equal(t, "QRY-i1", item.QueryID)
	assert.Equal(t, "QRY-g1", item.GroupID)
	assert.Equal(t, int64(7), item.QueryNumber)
	assert.Nil(t, item.ResolvedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryItemGetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewQueryItemDAO(db)

	mock.ExpectQuery("FROM QUERY_ITEM WHERE QUERY_ID").
		WithArgs("QRY-missing").
		WillReturnRows(sqlmock.NewRows([]string{"QUERY_ID"}))

	_, err := dao.GetByID(context.Background(), "QRY-missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMaxQueryNumber(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewQueryItemDAO(db)

	mock.ExpectQuery(`MAX\(QUERY_NUMBER\)`).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(99)))

	max, err := dao.MaxQueryNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(99), max)
}

func TestUpdateStatusWithTxReportsMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	dao := NewQueryItemDAO(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE QUERY_ITEM").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	err = dao.UpdateStatusWithTx(ctx, tx, &models.QueryItem{
		QueryID: "QRY-missing",
		Status:  models.StatusApproved,
	})
	assert.True(t, errors.Is(err, ErrNotFound))
}
