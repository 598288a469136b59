package filter

import (
	"testing"

	"github.com/inkwellcms/inkwell/internal/validator"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name       string
		page       int64
		perPage    int64
		totalItems int64
		want       Pagination
	}{
		{"first page", 1, 10, 25, Pagination{Page: 1, Offset: 0, TotalPages: 3}},
		{"middle page", 2, 10, 25, Pagination{Page: 2, Offset: 10, TotalPages: 3}},
		{"last page", 3, 10, 25, Pagination{Page: 3, Offset: 20, TotalPages: 3}},
		{"page zero defaults to one", 0, 10, 0, Pagination{Page: 1, Offset: 0, TotalPages: 0}},
		{"negative page defaults to one", -5, 10, 25, Pagination{Page: 1, Offset: 0, TotalPages: 3}},
		{"page beyond the end", 9, 10, 25, Pagination{Page: 9, Offset: 80, TotalPages: 3}},
		{"exact multiple", 1, 10, 30, Pagination{Page: 1, Offset: 0, TotalPages: 3}},
		{"single item", 1, 10, 1, Pagination{Page: 1, Offset: 0, TotalPages: 1}},
		{"no items", 1, 10, 0, Pagination{Page: 1, Offset: 0, TotalPages: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(tt.page, tt.perPage, tt.totalItems)
			if got != tt.want {
				t.Errorf("Paginate(%d, %d, %d) = %+v, want %+v", tt.page, tt.perPage, tt.totalItems, got, tt.want)
			}
		})
	}
}

func TestValidateFilters(t *testing.T) {
	v := validator.New()
	ValidateFilters(NewFilter(20, 0), v)
	if !v.IsValid() {
		t.Errorf("expected a sane filter to validate, got %v", v.Errors)
	}

	v = validator.New()
	ValidateFilters(NewFilter(0, -1), v)
	if v.IsValid() {
		t.Error("expected zero limit and negative offset to be rejected")
	}
	if _, ok := v.Errors["limit"]; !ok {
		t.Error("expected a limit error")
	}
	if _, ok := v.Errors["offset"]; !ok {
		t.Error("expected an offset error")
	}
}
