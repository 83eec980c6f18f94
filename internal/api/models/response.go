package models

// DrawdownRecord is one row of a drawdown series on the wire.
type DrawdownRecord struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Drawdown float64 `json:"drawdown"`
}

// DrawdownResponse is returned by the upload and data endpoints.
type DrawdownResponse struct {
	Status  string           `json:"status"`
	Data    []DrawdownRecord `json:"data"`
	Message string           `json:"message,omitempty"`
}

// SummaryResponse is returned by the summary endpoint.
// Summary is null when nothing has been uploaded for the category.
type SummaryResponse struct {
	Status   string       `json:"status"`
	Category string       `json:"category"`
	Summary  *SummaryInfo `json:"summary"`
	Message  string       `json:"message,omitempty"`
}

// SummaryInfo contains the headline figures of a stored drawdown series
type SummaryInfo struct {
	Count           int     `json:"count"`
	Start           string  `json:"start,omitempty"`
	End             string  `json:"end,omitempty"`
	MaxDrawdown     float64 `json:"max_drawdown"`
	MaxDrawdownDate string  `json:"max_drawdown_date,omitempty"`
	CurrentDrawdown float64 `json:"current_drawdown"`
	LastPeakDate    string  `json:"last_peak_date,omitempty"`
	Underwater      bool    `json:"underwater"`
}

// CategoryInfo describes an accepted asset category
type CategoryInfo struct {
	Name        string `json:"name"`
	DateColumn  string `json:"date_column"`
	PriceColumn string `json:"price_column"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
