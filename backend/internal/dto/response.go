package dto

// ── pagination ──

// PaginationRequest common page/limit query parameters.
type PaginationRequest struct {
	Page  int `form:"page"  binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// GetPage returns the page number, defaulting to 1.
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetLimit returns the page size, defaulting to 50.
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return 50
	}
	return p.Limit
}

// GetOffset computes the row offset.
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetLimit()
}
