package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendops/query-management-api/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newQueryTestRouter(handler *QueryHandler) *gin.Engine {
	router := gin.New()
	router.POST("/queries", handler.CreateQueries)
	router.GET("/queries", handler.ListQueries)
	return router
}

func TestCreateQueriesRequiresOperationsRole(t *testing.T) {
	router := newQueryTestRouter(NewQueryHandler(nil))
	body := `{"appNo":"APP100","queries":["Missing KYC"],"sendTo":"credit"}`

	cases := []struct {
		name string
		role string
	}{
		{"no role header", ""},
		{"sales role", "sales"},
		{"credit role", "Credit"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/queries", strings.NewReader(body))
			if tc.role != "" {
				req.Header.Set("X-User-Role", tc.role)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusForbidden, w.Code)

			var errResp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
			assert.Equal(t, models.ErrCodeForbidden, errResp.Code)
		})
	}
}

func TestCreateQueriesRejectsMalformedBody(t *testing.T) {
	router := newQueryTestRouter(NewQueryHandler(nil))

	req := httptest.NewRequest(http.MethodPost, "/queries", strings.NewReader("{not json"))
	req.Header.Set("X-User-Role", "operations")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListQueriesRejectsBadFilterValues(t *testing.T) {
	router := newQueryTestRouter(NewQueryHandler(nil))

	for _, target := range []string{
		"/queries?resolved=maybe",
		"/queries?limit=ten",
	} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestParseListFilters(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet,
		"/queries?team=credit&status=pending&resolved=true&limit=20&branches=Pune,%20Mumbai%20,&appNo=APP1", nil)

	filters, err := parseListFilters(c)
	require.NoError(t, err)

	assert.Equal(t, "credit", filters.Team)
	assert.Equal(t, "pending", filters.Status)
	assert.Equal(t, "APP1", filters.AppNo)
	assert.Equal(t, 20, filters.Limit)
	require.NotNil(t, filters.Resolved)
	assert.True(t, *filters.Resolved)
	assert.Equal(t, []string{"Pune", "Mumbai"}, filters.Branches)
}

func TestParseListFiltersDefaults(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/queries", nil)

	filters, err := parseListFilters(c)
	require.NoError(t, err)

	assert.Empty(t, filters.Team)
	assert.Nil(t, filters.Resolved)
	assert.Zero(t, filters.Limit)
	assert.Empty(t, filters.Branches)
}
