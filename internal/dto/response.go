package dto

// ── shared brief shapes ──

// EmployeeBrief is the employee summary embedded in workflow responses.
type EmployeeBrief struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ShiftBrief is the shift summary embedded in assignment responses.
type ShiftBrief struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShiftType string `json:"shift_type"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// ── pagination ──

// PaginationRequest carries the common paging query parameters.
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage returns the page number with its default applied.
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize returns the page size with its default applied.
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset computes the query offset.
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
