package validate

import "time"

// Pagination is the parsed page window. Out-of-range input is rejected, not
// clamped.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Sort is the parsed ordering request.
type Sort struct {
	SortBy    string `json:"sortBy,omitempty"`
	SortOrder string `json:"sortOrder"`
}

// Filter is the parsed free-form list filter.
type Filter struct {
	Search   string     `json:"search,omitempty"`
	Status   string     `json:"status,omitempty"`
	FromDate *time.Time `json:"fromDate,omitempty"`
	ToDate   *time.Time `json:"toDate,omitempty"`
}

// ListQuery combines pagination, sorting and filtering.
type ListQuery struct {
	Pagination
	Sort
	Filter
}

func paginationFields() []FieldSpec {
	return []FieldSpec{
		Field("page", Int(1, 1<<31-1)).Default(1),
		Field("pageSize", Int(1, 100)).Default(20),
	}
}

func sortFields() []FieldSpec {
	return []FieldSpec{
		Field("sortBy", String()),
		Field("sortOrder", Enum("asc", "desc")).Default("asc"),
	}
}

func filterFields() []FieldSpec {
	return []FieldSpec{
		Field("search", String(MaxLen(200))),
		Field("status", String(MaxLen(50))),
		Field("fromDate", Date()),
		Field("toDate", Date()),
	}
}

// PaginationSchema validates page/pageSize with their documented defaults.
func PaginationSchema() *Schema { return New(paginationFields()...) }

// SortSchema validates sortBy/sortOrder.
func SortSchema() *Schema { return New(sortFields()...) }

// FilterSchema validates search/status/date-range filters.
func FilterSchema() *Schema { return New(filterFields()...) }

// ListQuerySchema is the union of pagination, sort and filter fields.
func ListQuerySchema() *Schema {
	fields := paginationFields()
	fields = append(fields, sortFields()...)
	fields = append(fields, filterFields()...)
	return New(fields...)
}

// NewListQuerySchema extends the list-query base with endpoint-specific
// fields without re-declaring the base.
func NewListQuerySchema(extra ...FieldSpec) *Schema {
	return ListQuerySchema().Extend(extra...)
}

// EntityEnvelope prepends the standard stored-entity fields (id, tenantId,
// createdAt, updatedAt) to caller-supplied fields. Used for response-shape
// validation and documentation.
func EntityEnvelope(custom ...FieldSpec) *Schema {
	fields := []FieldSpec{
		Field("id", UUID()).Require(),
		Field("tenantId", String(MinLen(1))).Require(),
		Field("createdAt", Date()).Require(),
		Field("updatedAt", Date()).Require(),
	}
	return New(append(fields, custom...)...)
}
