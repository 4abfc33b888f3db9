package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// ExportRequest represents the query string of GET /api/leads/export
type ExportRequest struct {
	Format  string `query:"format" validate:"omitempty,oneof=csv xlsx"`
	Sort    string `query:"sort"`
	Dir     string `query:"dir"`
	Filters string `query:"filters"`
}

// ExportResponse is returned when an export is stored remotely
type ExportResponse struct {
	Key  string `json:"key"`
	URL  string `json:"url"`
	Rows int    `json:"rows"`
}

// ValidatePhoneRequest represents the body of POST /api/leads/phone/validate
type ValidatePhoneRequest struct {
	Phone   string `json:"phone" validate:"required"`
	Country string `json:"country,omitempty"`
}
