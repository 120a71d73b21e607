// Package catalog defines the campus catalog entities: courses, their
// scheduled runs, enrollments into runs, and marketing leads.
package catalog

import "time"

// Course is a sellable unit of teaching offered by a tenant.
type Course struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Slug        string    `json:"slug,omitempty"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CourseRun is a scheduled instance of a course with a fixed capacity.
type CourseRun struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	CourseID  string    `json:"courseId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Capacity  int       `json:"capacity"`
	Enrolled  int       `json:"enrolled"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Enrollment places a student into a course run.
type Enrollment struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenantId"`
	CourseRunID  string    `json:"courseRunId"`
	StudentEmail string    `json:"studentEmail"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Lead is a marketing contact captured from a public form. GDPRConsent is
// always true for stored leads; capture without consent is rejected upstream.
type Lead struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	Email       string    `json:"email"`
	Name        string    `json:"name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Message     string    `json:"message,omitempty"`
	GDPRConsent bool      `json:"gdprConsent"`
	Source      string    `json:"source"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ListFilter narrows a course listing. Zero values mean "no restriction".
type ListFilter struct {
	Search   string
	Status   string
	FromDate *time.Time
	ToDate   *time.Time
	SortBy   string
	SortDesc bool
	Page     int
	PageSize int
}
