package http

import (
	"context"
	"net/http"

	"github.com/campuskit/campuskit/internal/apictx"
	"github.com/campuskit/campuskit/internal/domain/catalog"
	"github.com/campuskit/campuskit/internal/handler"
	catalogport "github.com/campuskit/campuskit/internal/port/catalog"
	"github.com/campuskit/campuskit/internal/ratelimit"
	"github.com/campuskit/campuskit/internal/validate"
)

// Handlers builds the catalog API handlers through a shared factory.
type Handlers struct {
	factory *handler.Factory
	store   catalogport.Store
}

// NewHandlers creates the catalog handler set.
func NewHandlers(f *handler.Factory, store catalogport.Store) *Handlers {
	return &Handlers{factory: f, store: store}
}

// ListCourses serves GET /courses: a public, filterable, paginated listing.
func (h *Handlers) ListCourses() http.HandlerFunc {
	return Bind(handler.Handle(h.factory, handler.Config{
		Schema:    validate.ListQuerySchema(),
		RateLimit: &ratelimit.PresetPublic,
	}, func(ctx context.Context, q validate.ListQuery, c *apictx.Context) (*handler.Response, error) {
		courses, total, err := h.store.ListCourses(ctx, c.Tenant.ID, catalog.ListFilter{
			Search:   q.Search,
			Status:   q.Status,
			FromDate: q.FromDate,
			ToDate:   q.ToDate,
			SortBy:   q.SortBy,
			SortDesc: q.SortOrder == "desc",
			Page:     q.Page,
			PageSize: q.PageSize,
		})
		if err != nil {
			return nil, err
		}
		return handler.Paged(courses, q.Page, q.PageSize, total), nil
	}))
}

// CreateCourse serves POST /courses. Only admins and instructors may create
// courses.
func (h *Handlers) CreateCourse() http.HandlerFunc {
	return Bind(handler.HandleAuthed(h.factory, handler.Config{
		Schema:    validate.CreateCourseSchema(),
		RateLimit: &ratelimit.PresetStandard,
	}, func(ctx context.Context, in validate.CreateCourse, ac *apictx.Authenticated) (*handler.Response, error) {
		course, err := h.store.CreateCourse(ctx, catalog.Course{
			TenantID:    ac.Tenant.ID,
			Title:       in.Title,
			Description: in.Description,
			Slug:        in.Slug,
			Price:       in.Price,
			Currency:    in.Currency,
			Status:      in.Status,
		})
		if err != nil {
			return nil, err
		}
		return handler.Created(course), nil
	}))
}

// CreateCourseRun serves POST /course-runs.
func (h *Handlers) CreateCourseRun() http.HandlerFunc {
	return Bind(handler.HandleAuthed(h.factory, handler.Config{
		Schema:    validate.CreateCourseRunSchema(),
		RateLimit: &ratelimit.PresetStandard,
	}, func(ctx context.Context, in validate.CreateCourseRun, ac *apictx.Authenticated) (*handler.Response, error) {
		run, err := h.store.CreateCourseRun(ctx, catalog.CourseRun{
			TenantID:  ac.Tenant.ID,
			CourseID:  in.CourseID,
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
			Capacity:  in.Capacity,
			Location:  in.Location,
		})
		if err != nil {
			return nil, err
		}
		return handler.Created(run), nil
	}))
}

// CreateEnrollment serves POST /enrollments.
func (h *Handlers) CreateEnrollment() http.HandlerFunc {
	return Bind(handler.HandleAuthed(h.factory, handler.Config{
		Schema:    validate.CreateEnrollmentSchema(),
		RateLimit: &ratelimit.PresetStandard,
	}, func(ctx context.Context, in validate.CreateEnrollment, ac *apictx.Authenticated) (*handler.Response, error) {
		enrollment, err := h.store.CreateEnrollment(ctx, catalog.Enrollment{
			TenantID:     ac.Tenant.ID,
			CourseRunID:  in.CourseRunID,
			StudentEmail: in.StudentEmail,
			Status:       in.Status,
		})
		if err != nil {
			return nil, err
		}
		return handler.Created(enrollment), nil
	}))
}

// CreateLead serves POST /leads: the anonymous marketing-capture endpoint.
func (h *Handlers) CreateLead() http.HandlerFunc {
	return Bind(handler.Handle(h.factory, handler.Config{
		Schema:    validate.CreateLeadSchema(),
		RateLimit: &ratelimit.PresetPublic,
	}, func(ctx context.Context, in validate.CreateLead, c *apictx.Context) (*handler.Response, error) {
		lead, err := h.store.CreateLead(ctx, catalog.Lead{
			TenantID:    c.Tenant.ID,
			Email:       in.Email,
			Name:        in.Name,
			Phone:       in.Phone,
			Message:     in.Message,
			GDPRConsent: in.GDPRConsent,
			Source:      in.Source,
			Tags:        in.Tags,
		})
		if err != nil {
			return nil, err
		}
		return handler.Created(lead), nil
	}))
}

// Health serves GET /health with no middleware in front of it.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
