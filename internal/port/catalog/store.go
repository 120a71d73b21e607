// Package catalog defines the catalog store port (interface).
package catalog

import (
	"context"

	"github.com/campuskit/campuskit/internal/domain/catalog"
)

// Store is the port interface for catalog persistence. Every operation is
// scoped to a tenant; implementations must never leak rows across tenants.
type Store interface {
	// Courses
	ListCourses(ctx context.Context, tenantID string, f catalog.ListFilter) ([]catalog.Course, int, error)
	GetCourse(ctx context.Context, tenantID, id string) (*catalog.Course, error)
	CreateCourse(ctx context.Context, c catalog.Course) (*catalog.Course, error)

	// Course runs
	GetCourseRun(ctx context.Context, tenantID, id string) (*catalog.CourseRun, error)
	CreateCourseRun(ctx context.Context, r catalog.CourseRun) (*catalog.CourseRun, error)

	// Enrollments
	CreateEnrollment(ctx context.Context, e catalog.Enrollment) (*catalog.Enrollment, error)

	// Leads
	CreateLead(ctx context.Context, l catalog.Lead) (*catalog.Lead, error)
}
