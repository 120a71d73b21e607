// Package memcatalog implements the catalog store port in memory. It is the
// only shipped implementation; the port keeps a database-backed store
// swappable without touching handlers.
package memcatalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campuskit/campuskit/internal/apierror"
	"github.com/campuskit/campuskit/internal/domain/catalog"
	"github.com/campuskit/campuskit/internal/validate"
)

// Store is a mutex-protected in-memory catalog. Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	courses     map[string]catalog.Course
	runs        map[string]catalog.CourseRun
	enrollments map[string]catalog.Enrollment
	leads       map[string]catalog.Lead

	now func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		courses:     make(map[string]catalog.Course),
		runs:        make(map[string]catalog.CourseRun),
		enrollments: make(map[string]catalog.Enrollment),
		leads:       make(map[string]catalog.Lead),
		now:         time.Now,
	}
}

// ListCourses returns one page of a tenant's courses plus the total match
// count. Filtering and sorting happen before pagination.
func (s *Store) ListCourses(_ context.Context, tenantID string, f catalog.ListFilter) ([]catalog.Course, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]catalog.Course, 0)
	for _, c := range s.courses {
		if c.TenantID != tenantID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.Title), strings.ToLower(f.Search)) {
			continue
		}
		if f.FromDate != nil && c.CreatedAt.Before(*f.FromDate) {
			continue
		}
		if f.ToDate != nil && c.CreatedAt.After(*f.ToDate) {
			continue
		}
		matched = append(matched, c)
	}

	sortCourses(matched, f.SortBy, f.SortDesc)

	total := len(matched)
	page, size := f.Page, f.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	start := (page - 1) * size
	if start >= total {
		return []catalog.Course{}, total, nil
	}
	end := start + size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func sortCourses(cs []catalog.Course, by string, desc bool) {
	less := func(a, b catalog.Course) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch by {
	case "title":
		less = func(a, b catalog.Course) bool { return a.Title < b.Title }
	case "price":
		less = func(a, b catalog.Course) bool { return a.Price < b.Price }
	case "updatedAt":
		less = func(a, b catalog.Course) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	}
	sort.SliceStable(cs, func(i, j int) bool {
		if desc {
			return less(cs[j], cs[i])
		}
		return less(cs[i], cs[j])
	})
}

// GetCourse returns a tenant's course by id.
func (s *Store) GetCourse(_ context.Context, tenantID, id string) (*catalog.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courses[id]
	if !ok || c.TenantID != tenantID {
		return nil, apierror.NotFound("course", id)
	}
	return &c, nil
}

// CreateCourse stores a new course. Slugs are unique per tenant.
func (s *Store) CreateCourse(_ context.Context, c catalog.Course) (*catalog.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Slug != "" {
		for _, existing := range s.courses {
			if existing.TenantID == c.TenantID && existing.Slug == c.Slug {
				return nil, apierror.New(apierror.CodeDuplicate, "course slug already in use").
					WithDetails(apierror.Detail{Field: "slug", Constraint: "must be unique"})
			}
		}
	}

	now := s.now().UTC()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	s.courses[c.ID] = c
	return &c, nil
}

// GetCourseRun returns a tenant's course run by id.
func (s *Store) GetCourseRun(_ context.Context, tenantID, id string) (*catalog.CourseRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok || r.TenantID != tenantID {
		return nil, apierror.NotFound("course run", id)
	}
	return &r, nil
}

// CreateCourseRun stores a scheduled run. The referenced course must exist
// in the same tenant.
func (s *Store) CreateCourseRun(_ context.Context, r catalog.CourseRun) (*catalog.CourseRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	course, ok := s.courses[r.CourseID]
	if !ok || course.TenantID != r.TenantID {
		return nil, apierror.NotFound("course", r.CourseID)
	}

	now := s.now().UTC()
	r.ID = uuid.NewString()
	r.Enrolled = 0
	r.CreatedAt = now
	r.UpdatedAt = now
	s.runs[r.ID] = r
	return &r, nil
}

// CreateEnrollment places a student into a run, enforcing closing date,
// capacity, and one enrollment per student per run.
func (s *Store) CreateEnrollment(_ context.Context, e catalog.Enrollment) (*catalog.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[e.CourseRunID]
	if !ok || run.TenantID != e.TenantID {
		return nil, apierror.NotFound("course run", e.CourseRunID)
	}
	if s.now().After(run.EndDate) {
		return nil, apierror.New(apierror.CodeEnrollmentClosed, "course run has ended")
	}
	if run.Enrolled >= run.Capacity {
		return nil, apierror.New(apierror.CodeCapacityExceeded, "course run is full")
	}
	for _, existing := range s.enrollments {
		if existing.CourseRunID == e.CourseRunID && existing.StudentEmail == e.StudentEmail &&
			existing.Status != validate.EnrollmentStatusCancelled {
			return nil, apierror.New(apierror.CodeDuplicate, "student already enrolled in this run")
		}
	}

	now := s.now().UTC()
	e.ID = uuid.NewString()
	e.CreatedAt = now
	e.UpdatedAt = now
	s.enrollments[e.ID] = e

	run.Enrolled++
	run.UpdatedAt = now
	s.runs[run.ID] = run
	return &e, nil
}

// CreateLead stores a marketing lead.
func (s *Store) CreateLead(_ context.Context, l catalog.Lead) (*catalog.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l.ID = uuid.NewString()
	l.CreatedAt = s.now().UTC()
	if l.Tags == nil {
		l.Tags = []string{}
	}
	s.leads[l.ID] = l
	return &l, nil
}
