package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/lendops/query-management-api/internal/service"
)

// Validation in the chat service runs before any storage access, so a
// service without DAOs is enough to exercise the rejection paths.
func newValidationOnlyChatHandler() *ChatHandler {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	svc := service.NewChatService(nil, nil, nil, nil, time.Second, 5*time.Second, logger)
	return NewChatHandler(svc)
}

func TestDebugChatHistoryRequiresQueryID(t *testing.T) {
	router := gin.New()
	router.GET("/debug-chat-history", newValidationOnlyChatHandler().DebugChatHistory)

	req := httptest.NewRequest(http.MethodGet, "/debug-chat-history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostMessageRejectsBodyIDMismatch(t *testing.T) {
	router := gin.New()
	router.POST("/queries/:queryId/chat", newValidationOnlyChatHandler().PostMessage)

	body := `{"queryId":"QRY-other","message":"hi","sender":"alice"}`
	req := httptest.NewRequest(http.MethodPost, "/queries/QRY-1/chat", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostMessageRejectsMalformedBody(t *testing.T) {
	router := gin.New()
	router.POST("/queries/:queryId/chat", newValidationOnlyChatHandler().PostMessage)

	req := httptest.NewRequest(http.MethodPost, "/queries/QRY-1/chat", strings.NewReader("{oops"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
