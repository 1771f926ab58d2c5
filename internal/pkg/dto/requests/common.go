package requests

type Pagination struct {
	Page     int
	PageSize int
}

func (p *Pagination) Skip() int64 {
	return int64((p.Page - 1) * p.PageSize)
}

func (p *Pagination) Limit() int64 {
	return int64(p.PageSize)
}

// DateRange is an optional window taken from startDate and endDate query params.
type DateRange struct {
	StartDate string `json:"startDate" validate:"omitempty,date_value"`
	EndDate   string `json:"endDate" validate:"omitempty,date_value"`
}
