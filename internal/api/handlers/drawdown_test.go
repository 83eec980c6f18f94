package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"drawdown-service/internal/api/middleware"
	"drawdown-service/internal/config"
	"drawdown-service/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Get(ctx context.Context, category string) (model.DrawdownSeries, bool, error) {
	args := m.Called(ctx, category)
	series, _ := args.Get(0).(model.DrawdownSeries)
	return series, args.Bool(1), args.Error(2)
}

func (m *mockStore) Put(ctx context.Context, category string, series model.DrawdownSeries) error {
	args := m.Called(ctx, category, series)
	return args.Error(0)
}

func (m *mockStore) Close() error { return nil }

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func setupRouter(st *mockStore) *gin.Engine {
	h := NewDrawdownHandler(st, config.Default())
	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/:category/upload_csv", h.UploadCSV)
	r.GET("/:category/data", h.GetData)
	r.GET("/:category/summary", h.GetSummary)
	r.GET("/:category/chart", h.GetChart)
	return r
}

func TestStoreReadFailureIsGeneric500(t *testing.T) {
	for _, path := range []string{"/nifty/data", "/nifty/summary", "/nifty/chart"} {
		t.Run(path, func(t *testing.T) {
			st := new(mockStore)
			st.On("Get", mock.Anything, "nifty").Return(nil, false, errors.New("disk on fire")).Once()

			w := httptest.NewRecorder()
			setupRouter(st).ServeHTTP(w, httptest.NewRequest(http.MethodGet, path+"?asset_type=nifty", nil))

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Contains(t, w.Body.String(), "Internal Server Error")
			assert.Contains(t, w.Body.String(), "STORE_ERROR")
			assert.NotContains(t, w.Body.String(), "disk on fire")
			st.AssertExpectations(t)
		})
	}
}

func TestStoreWriteFailure(t *testing.T) {
	st := new(mockStore)
	st.On("Put", mock.Anything, "nifty", mock.AnythingOfType("model.DrawdownSeries")).Return(errors.New("locked")).Once()

	body := "Date,Nifty_price\n2024-01-01,100\n2024-01-02,90\n"
	req := httptest.NewRequest(http.MethodPost, "/nifty/upload_csv?asset_type=nifty", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	setupRouter(st).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to process CSV file")
	assert.NotContains(t, w.Body.String(), "locked")
	st.AssertExpectations(t)
}

func TestUploadStoresFiniteSeriesOnly(t *testing.T) {
	st := new(mockStore)
	st.On("Put", mock.Anything, "nifty", mock.MatchedBy(func(s model.DrawdownSeries) bool {
		return len(s) == 2 && s[0].Drawdown == 0 && s[1].Drawdown < 0
	})).Return(nil).Once()

	body := "Date,Nifty_price\n2024-01-01,100\n2024-01-02,120\n2024-01-03,90\n"
	req := httptest.NewRequest(http.MethodPost, "/nifty/upload_csv?asset_type=nifty", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	setupRouter(st).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	st.AssertExpectations(t)
}

func TestInvalidCategorySkipsStore(t *testing.T) {
	st := new(mockStore)

	w := httptest.NewRecorder()
	setupRouter(st).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/crypto/data", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please select either 'nifty' or 'multi_asset'.")
	st.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestInvalidCategoryMessage(t *testing.T) {
	assert.Equal(t,
		"Invalid asset type. Please select either 'nifty' or 'multi_asset'.",
		invalidCategoryMessage([]string{"nifty", "multi_asset"}))
	assert.Equal(t,
		"Invalid asset type. Please select one of 'a', 'b', 'c'.",
		invalidCategoryMessage([]string{"a", "b", "c"}))
}
