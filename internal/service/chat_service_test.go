package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendops/query-management-api/internal/dao"
	"github.com/lendops/query-management-api/internal/database"
	"github.com/lendops/query-management-api/internal/models"
	"github.com/lendops/query-management-api/internal/notify"
	"github.com/lendops/query-management-api/pkg/utils"
)

var chatColumns = []string{
	"MESSAGE_ID", "QUERY_ID", "MESSAGE", "SENDER", "SENDER_ROLE", "TEAM", "SENT_AT",
}

type chatServiceFixture struct {
	service *ChatService
	mock    sqlmock.Sqlmock
	hub     *notify.Hub
}

func newChatServiceFixture(t *testing.T) *chatServiceFixture {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	db := database.NewWithDB(sqlx.NewDb(mockDB, "sqlmock"), logger)
	hub := notify.NewHub(100, logger)

	svc := NewChatService(
		dao.NewChatDAO(db),
		dao.NewRemarkDAO(db),
		dao.NewQueryGroupDAO(db),
		hub,
		time.Second,
		5*time.Second,
		logger,
	)

	return &chatServiceFixture{service: svc, mock: mock, hub: hub}
}

func TestCollapseDuplicates(t *testing.T) {
	messages := []models.ChatMessage{
		{MessageID: "m1", Sender: "alice", Message: "hi", SentAt: 0},
		{MessageID: "m2", Sender: "alice", Message: "hi", SentAt: 500},
		{MessageID: "m3", Sender: "bob", Message: "hi", SentAt: 600},
		{MessageID: "m4", Sender: "alice", Message: "hi", SentAt: 1600},
		{MessageID: "m5", Sender: "alice", Message: "other", SentAt: 1700},
	}

	collapsed := CollapseDuplicates(messages, time.Second)

	ids := make([]string, 0, len(collapsed))
	for _, msg := range collapsed {
		ids = append(ids, msg.MessageID)
	}
	assert.Equal(t, []string{"m1", "m3", "m4", "m5"}, ids)

	assert.Empty(t, CollapseDuplicates(nil, time.Second))
}

func TestPostMessageValidation(t *testing.T) {
	fx := newChatServiceFixture(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		queryID string
		request models.ChatPostRequest
	}{
		{"empty query id", "  ", models.ChatPostRequest{Message: "hi", Sender: "alice"}},
		{"body id mismatch", "QRY-1", models.ChatPostRequest{QueryID: "QRY-2", Message: "hi", Sender: "alice"}},
		{"empty message", "QRY-1", models.ChatPostRequest{Sender: "alice"}},
		{"empty sender", "QRY-1", models.ChatPostRequest{Message: "hi"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := fx.service.PostMessage(ctx, tc.queryID, &tc.request)
			assert.Nil(t, resp)

			svcErr, ok := AsServiceError(err)
			require.True(t, ok)
			assert.Equal(t, models.ErrCodeValidationError, svcErr.Code)
		})
	}
}

func TestPostMessageSuppressesDuplicateWithinWindow(t *testing.T) {
	fx := newChatServiceFixture(t)
	ctx := context.Background()

	existing := sqlmock.NewRows(chatColumns).AddRow(
		"MSG-old", "QRY-1", "Any update?", "alice", "credit", "credit",
		utils.GetCurrentTimeMillis()-2000,
	)
	fx.mock.ExpectQuery("FROM CHAT_MESSAGE").WillReturnRows(existing)

	resp, err := fx.service.PostMessage(ctx, "QRY-1", &models.ChatPostRequest{
		Message: "Any update?",
		Sender:  "alice",
	})
	require.NoError(t, err)

	assert.True(t, resp.IsDuplicate)
	assert.Equal(t, "MSG-old", resp.Message.MessageID)
	assert.Empty(t, fx.hub.Since(0), "duplicates must not be broadcast")
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestPostMessageStoresAndMirrorsRemark(t *testing.T) {
	fx := newChatServiceFixture(t)
	ctx := context.Background()

	fx.mock.ExpectQuery("FROM CHAT_MESSAGE").
		WillReturnRows(sqlmock.NewRows(chatColumns))
	fx.mock.ExpectExec("INSERT INTO CHAT_MESSAGE").
		WillReturnResult(sqlmock.NewResult(1, 1))
	fx.mock.ExpectQuery("FROM QUERY_GROUP WHERE GROUP_ID").
		WillReturnRows(pendingGroupRow("QRY-1", "APP100"))
	fx.mock.ExpectExec("INSERT INTO QUERY_REMARK").
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp, err := fx.service.PostMessage(ctx, "QRY-1", &models.ChatPostRequest{
		QueryID: "QRY-1",
		Message: "Documents uploaded",
		Sender:  "alice",
		Team:    "Credit",
	})
	require.NoError(t, err)

	assert.False(t, resp.IsDuplicate)
	assert.Equal(t, "QRY-1", resp.Message.QueryID)
	assert.Equal(t, models.TeamCredit, resp.Message.Team)
	assert.NotEmpty(t, resp.Message.MessageID)

	events := fx.hub.Since(0)
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventChatMessage, events[0].Type)
	assert.Equal(t, "QRY-1", events[0].QueryID)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestPostMessageRemarkMirrorSkipsUnknownGroup(t *testing.T) {
	fx := newChatServiceFixture(t)
	ctx := context.Background()

	fx.mock.ExpectQuery("FROM CHAT_MESSAGE").
		WillReturnRows(sqlmock.NewRows(chatColumns))
	fx.mock.ExpectExec("INSERT INTO CHAT_MESSAGE").
		WillReturnResult(sqlmock.NewResult(1, 1))
	fx.mock.ExpectQuery("FROM QUERY_GROUP WHERE GROUP_ID").
		WillReturnRows(sqlmock.NewRows(groupColumns))

	resp, err := fx.service.PostMessage(ctx, "QRY-unknown", &models.ChatPostRequest{
		Message: "Hello",
		Sender:  "alice",
	})
	require.NoError(t, err)
	assert.False(t, resp.IsDuplicate)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestGetThreadCollapsesNearDuplicates(t *testing.T) {
	fx := newChatServiceFixture(t)
	ctx := context.Background()

	rows := sqlmock.NewRows(chatColumns).
		AddRow("m1", "QRY-1", "hi", "alice", "", "", int64(1000)).
		AddRow("m2", "QRY-1", "hi", "alice", "", "", int64(1400)).
		AddRow("m3", "QRY-1", "bye", "alice", "", "", int64(2000))
	fx.mock.ExpectQuery("FROM CHAT_MESSAGE").WillReturnRows(rows)

	messages, err := fx.service.GetThread(ctx, "QRY-1")
	require.NoError(t, err)

	require.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].MessageID)
	assert.Equal(t, "m3", messages[1].MessageID)
}

func TestGetThreadRequiresQueryID(t *testing.T) {
	fx := newChatServiceFixture(t)

	_, err := fx.service.GetThread(context.Background(), "  ")
	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodeValidationError, svcErr.Code)
}

func TestGetDebugThread(t *testing.T) {
	fx := newChatServiceFixture(t)
	ctx := context.Background()

	rows := sqlmock.NewRows(chatColumns).
		AddRow("m1", "QRY-1", "hi", "alice", "", "", int64(1000)).
		AddRow("m2", "QRY-1", "hi", "alice", "", "", int64(1200))
	fx.mock.ExpectQuery("FROM CHAT_MESSAGE").WillReturnRows(rows)

	debug, err := fx.service.GetDebugThread(ctx, "QRY-1")
	require.NoError(t, err)

	assert.Equal(t, 2, debug.RawCount)
	assert.Equal(t, 1, debug.ViewCount)
	assert.Equal(t, 1, debug.Suppressed)
}
