package responses

import "hospital-service/internal/pkg/exceptions"

type ResponseDTO struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Total    int    `json:"total"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	NextURL  string `json:"next_url,omitempty"`
	PrevURL  string `json:"prev_url,omitempty"`
}

// ErrorDTO keeps the success envelope shape with a nil data field.
type ErrorDTO struct {
	StatusCode int                   `json:"status_code"`
	Success    bool                  `json:"success"`
	Message    string                `json:"message"`
	Data       interface{}           `json:"data"`
	DevMessage string                `json:"dev_message,omitempty"`
	Locations  []exceptions.Location `json:"locations,omitempty"`
}
