package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"drawdown-service/internal/analysis"
	"drawdown-service/internal/api/middleware"
	"drawdown-service/internal/api/models"
	"drawdown-service/internal/chart"
	"drawdown-service/internal/config"
	"drawdown-service/internal/drawdown"
	"drawdown-service/internal/ingest"
	"drawdown-service/internal/metrics"
	"drawdown-service/internal/model"
	"drawdown-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	statusSuccess = "success"

	msgCalculated = "Drawdown calculated successfully"
	msgNoRecords  = "No records found for the specified asset type"

	msgInvalidData   = "Invalid data encountered"
	msgUploadFailed  = "Failed to process CSV file"
	msgInternalError = "Internal Server Error"
)

// DrawdownHandler serves uploads and queries for per-category drawdown series
type DrawdownHandler struct {
	store          store.Store
	cfg            *config.Config
	ingestOpts     ingest.Options
	maxUploadBytes int64
}

// NewDrawdownHandler creates a new drawdown handler
func NewDrawdownHandler(st store.Store, cfg *config.Config) *DrawdownHandler {
	return &DrawdownHandler{
		store:          st,
		cfg:            cfg,
		ingestOpts:     ingest.Options{DateLayouts: cfg.DateLayouts},
		maxUploadBytes: cfg.Server.MaxUploadBytes,
	}
}

// UploadCSV handles POST /:category/upload_csv
func (h *DrawdownHandler) UploadCSV(c *gin.Context) {
	start := time.Now()

	cat, ok := h.resolveCategory(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	body, closeBody, err := openUpload(c)
	if err != nil {
		h.uploadFailed(c, cat.Name, err)
		return
	}
	defer closeBody()

	series, stats, err := ingest.ParseCSVWithStats(body, cat, h.ingestOpts)
	if err != nil {
		h.uploadFailed(c, cat.Name, err)
		return
	}

	result := drawdown.DropNonFinite(drawdown.Compute(series))

	if err := h.store.Put(c.Request.Context(), cat.Name, result); err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("put").Inc()
		h.uploadFailed(c, cat.Name, fmt.Errorf("store put: %w", err))
		return
	}

	metrics.UploadsTotal.WithLabelValues(cat.Name, "ok").Inc()
	metrics.UploadRows.WithLabelValues(cat.Name).Observe(float64(len(series)))
	metrics.UploadDuration.WithLabelValues(cat.Name).Observe(time.Since(start).Seconds())

	log.Info().
		Str("request_id", middleware.GetRequestID(c)).
		Str("category", cat.Name).
		Int("rows", stats.Rows).
		Int("dropped_missing", stats.DroppedMissing).
		Int("dropped_price", stats.DroppedPrice).
		Int("points", len(result)).
		Msg("drawdown computed")

	c.JSON(http.StatusOK, models.DrawdownResponse{
		Status:  statusSuccess,
		Data:    toRecords(result),
		Message: msgCalculated,
	})
}

// GetData handles GET /:category/data
func (h *DrawdownHandler) GetData(c *gin.Context) {
	cat, ok := h.resolveCategory(c)
	if !ok {
		return
	}

	series, found, ok := h.load(c, cat.Name)
	if !ok {
		return
	}
	if !found {
		c.JSON(http.StatusOK, models.DrawdownResponse{
			Status:  statusSuccess,
			Data:    []models.DrawdownRecord{},
			Message: msgNoRecords,
		})
		return
	}

	c.JSON(http.StatusOK, models.DrawdownResponse{
		Status: statusSuccess,
		Data:   toRecords(series),
	})
}

// GetSummary handles GET /:category/summary
func (h *DrawdownHandler) GetSummary(c *gin.Context) {
	cat, ok := h.resolveCategory(c)
	if !ok {
		return
	}

	series, found, ok := h.load(c, cat.Name)
	if !ok {
		return
	}
	if !found {
		c.JSON(http.StatusOK, models.SummaryResponse{
			Status:   statusSuccess,
			Category: cat.Name,
			Message:  msgNoRecords,
		})
		return
	}

	s := analysis.Summarize(series)
	c.JSON(http.StatusOK, models.SummaryResponse{
		Status:   statusSuccess,
		Category: cat.Name,
		Summary: &models.SummaryInfo{
			Count:           s.Count,
			Start:           fmtDate(s.Start),
			End:             fmtDate(s.End),
			MaxDrawdown:     s.MaxDrawdown,
			MaxDrawdownDate: fmtDate(s.MaxDrawdownDate),
			CurrentDrawdown: s.CurrentDrawdown,
			LastPeakDate:    fmtDate(s.LastPeakDate),
			Underwater:      s.Underwater(),
		},
	})
}

// GetChart handles GET /:category/chart
func (h *DrawdownHandler) GetChart(c *gin.Context) {
	cat, ok := h.resolveCategory(c)
	if !ok {
		return
	}

	series, found, ok := h.load(c, cat.Name)
	if !ok {
		return
	}
	if !found || len(series) == 0 {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NO_DATA",
				Message: msgNoRecords,
			},
		})
		return
	}

	img, err := chart.RenderDrawdown(cat.Name, series)
	if err != nil {
		h.internalError(c, cat.Name, err, "CHART_ERROR", msgInternalError)
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

// resolveCategory picks the category from asset_type, falling back to the
// path segment, and writes a 400 when it is not configured.
func (h *DrawdownHandler) resolveCategory(c *gin.Context) (model.Category, bool) {
	var q models.CategoryQuery
	_ = c.ShouldBindQuery(&q)

	name := strings.TrimSpace(q.AssetType)
	if name == "" {
		name = c.Param("category")
	}

	cat, ok := h.cfg.Category(name)
	if !ok {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_ASSET_TYPE",
				Message: invalidCategoryMessage(h.cfg.CategoryNames()),
			},
		})
		return model.Category{}, false
	}
	return cat, true
}

// load reads a category from the store, writing a 500 on failure.
func (h *DrawdownHandler) load(c *gin.Context, category string) (model.DrawdownSeries, bool, bool) {
	series, found, err := h.store.Get(c.Request.Context(), category)
	if err != nil {
		metrics.StoreErrorsTotal.WithLabelValues("get").Inc()
		h.internalError(c, category, err, "STORE_ERROR", msgInternalError)
		return nil, false, false
	}
	return series, found, true
}

func (h *DrawdownHandler) uploadFailed(c *gin.Context, category string, err error) {
	metrics.UploadsTotal.WithLabelValues(category, "error").Inc()

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		log.Warn().
			Str("request_id", middleware.GetRequestID(c)).
			Str("category", category).
			Int64("limit", tooLarge.Limit).
			Msg("upload rejected: too large")
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "UPLOAD_TOO_LARGE",
				Message: fmt.Sprintf("Upload exceeds %d bytes", tooLarge.Limit),
			},
		})
	case errors.Is(err, ingest.ErrInvalidData):
		h.internalError(c, category, err, "INVALID_DATA", msgInvalidData)
	default:
		h.internalError(c, category, err, "PROCESSING_FAILED", msgUploadFailed)
	}
}

// internalError logs the full error and returns only a generic message.
func (h *DrawdownHandler) internalError(c *gin.Context, category string, err error, code, message string) {
	log.Error().
		Str("request_id", middleware.GetRequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("category", category).
		Err(err).
		Msg("request failed")

	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// openUpload returns the CSV body: the multipart "file" field when the request
// is a form upload, the raw request body otherwise.
func openUpload(c *gin.Context) (io.Reader, func(), error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return c.Request.Body, func() {}, nil
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("read form file: %w", err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open form file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func invalidCategoryMessage(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	if len(quoted) == 2 {
		return fmt.Sprintf("Invalid asset type. Please select either %s or %s.", quoted[0], quoted[1])
	}
	return fmt.Sprintf("Invalid asset type. Please select one of %s.", strings.Join(quoted, ", "))
}

func toRecords(series model.DrawdownSeries) []models.DrawdownRecord {
	out := make([]models.DrawdownRecord, len(series))
	for i, pt := range series {
		out[i] = models.DrawdownRecord{
			Date:     pt.Date.Format(model.DateLayout),
			Drawdown: pt.Drawdown,
		}
	}
	return out
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}
