package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/campuskit/campuskit/internal/apictx"
	"github.com/campuskit/campuskit/internal/middleware"
)

// MountRoutes registers the catalog API on the given chi router. The API
// group runs behind the context middleware so logs carry tenant and request
// ids; the handlers themselves re-check nothing that middleware already
// established.
func MountRoutes(r chi.Router, h *Handlers, verifier apictx.TokenVerifier) {
	r.Get("/health", Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Context(verifier))

		r.Get("/courses", h.ListCourses())
		r.With(middleware.RequireRole(apictx.RoleAdmin, apictx.RoleInstructor)).
			Post("/courses", h.CreateCourse())
		r.With(middleware.RequireRole(apictx.RoleAdmin, apictx.RoleInstructor)).
			Post("/course-runs", h.CreateCourseRun())
		r.Post("/enrollments", h.CreateEnrollment())
		r.Post("/leads", h.CreateLead())
	})
}
