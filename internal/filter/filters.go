package filter

import "github.com/inkwellcms/inkwell/internal/validator"

type Filter struct {
	Limit  int64
	Offset int64
}

func NewFilter(limit, offset int64) Filter {
	return Filter{
		Limit:  limit,
		Offset: offset,
	}
}

func ValidateFilters(filters Filter, v *validator.Validator) {
	v.Check(filters.Limit > 0, "limit", "must be greater than 0")
	v.Check(filters.Limit <= 100, "limit", "must be a maximum of 100")
	v.Check(filters.Offset >= 0, "offset", "must be greater than or equal to 0")
	v.Check(filters.Offset <= 10_000_000, "offset", "must be a maximum of 10_000_000")
}

type Pagination struct {
	Page       int64 `json:"page"`
	Offset     int64 `json:"-"`
	TotalPages int64 `json:"totalPages"`
}

// Paginate derives page metadata from a requested page number and a total
// item count. A page below 1 falls back to page 1. A page beyond the last one
// is not an error: the resulting offset simply lands past the available rows
// and list queries come back empty.
func Paginate(requestedPage, perPage, totalItems int64) Pagination {
	page := requestedPage
	if page < 1 {
		page = 1
	}

	var totalPages int64
	if totalItems > 0 {
		totalPages = (totalItems + perPage - 1) / perPage
	}

	return Pagination{
		Page:       page,
		Offset:     (page - 1) * perPage,
		TotalPages: totalPages,
	}
}

// Filter converts the pagination result into the limit/offset pair the
// repository queries take.
func (p Pagination) Filter(perPage int64) Filter {
	return NewFilter(perPage, p.Offset)
}
