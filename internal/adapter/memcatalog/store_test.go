package memcatalog

import (
	"context"
	"testing"
	"time"

	"github.com/campuskit/campuskit/internal/apierror"
	"github.com/campuskit/campuskit/internal/domain/catalog"
)

func newCourse(t *testing.T, s *Store, tenant, title, status string) *catalog.Course {
	t.Helper()
	c, err := s.CreateCourse(context.Background(), catalog.Course{
		TenantID: tenant, Title: title, Currency: "EUR", Status: status,
	})
	if err != nil {
		t.Fatalf("CreateCourse(%s): %v", title, err)
	}
	return c
}

func newRun(t *testing.T, s *Store, tenant, courseID string, capacity int, end time.Time) *catalog.CourseRun {
	t.Helper()
	r, err := s.CreateCourseRun(context.Background(), catalog.CourseRun{
		TenantID: tenant, CourseID: courseID,
		StartDate: end.Add(-30 * 24 * time.Hour), EndDate: end,
		Capacity: capacity,
	})
	if err != nil {
		t.Fatalf("CreateCourseRun: %v", err)
	}
	return r
}

func wantCode(t *testing.T, err error, code apierror.Code) {
	t.Helper()
	e, ok := apierror.IsError(err)
	if !ok {
		t.Fatalf("error = %v, want *apierror.Error", err)
	}
	if e.Code != code {
		t.Fatalf("code = %s, want %s", e.Code, code)
	}
}

func TestCoursesAreTenantScoped(t *testing.T) {
	s := New()
	c := newCourse(t, s, "acme", "Go Basics", "published")
	newCourse(t, s, "other", "Go Basics", "published")

	if _, err := s.GetCourse(context.Background(), "other", c.ID); err == nil {
		t.Fatal("cross-tenant GetCourse succeeded")
	}

	courses, total, err := s.ListCourses(context.Background(), "acme", catalog.ListFilter{})
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if total != 1 || len(courses) != 1 || courses[0].ID != c.ID {
		t.Errorf("got %d courses (total %d)", len(courses), total)
	}
}

func TestListCoursesFilterSortPaginate(t *testing.T) {
	s := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"Advanced Go", "Basic Go", "Calculus"} {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		newCourse(t, s, "acme", title, "published")
	}
	s.now = time.Now
	newCourse(t, s, "acme", "Drafted", "draft")

	courses, total, err := s.ListCourses(context.Background(), "acme", catalog.ListFilter{
		Status: "published", Search: "go", SortBy: "title",
	})
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if courses[0].Title != "Advanced Go" || courses[1].Title != "Basic Go" {
		t.Errorf("order = %q, %q", courses[0].Title, courses[1].Title)
	}

	page2, total, err := s.ListCourses(context.Background(), "acme", catalog.ListFilter{
		Page: 2, PageSize: 3,
	})
	if err != nil {
		t.Fatalf("ListCourses page 2: %v", err)
	}
	if total != 4 || len(page2) != 1 {
		t.Errorf("page 2: len = %d, total = %d", len(page2), total)
	}
}

func TestCreateCourseDuplicateSlug(t *testing.T) {
	s := New()
	if _, err := s.CreateCourse(context.Background(), catalog.Course{
		TenantID: "acme", Title: "A", Slug: "go-basics",
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := s.CreateCourse(context.Background(), catalog.Course{
		TenantID: "acme", Title: "B", Slug: "go-basics",
	})
	wantCode(t, err, apierror.CodeDuplicate)

	// Same slug under another tenant is fine.
	if _, err := s.CreateCourse(context.Background(), catalog.Course{
		TenantID: "other", Title: "C", Slug: "go-basics",
	}); err != nil {
		t.Fatalf("other tenant create: %v", err)
	}
}

func TestCreateCourseRunUnknownCourse(t *testing.T) {
	s := New()
	_, err := s.CreateCourseRun(context.Background(), catalog.CourseRun{
		TenantID: "acme", CourseID: "missing", Capacity: 10,
	})
	wantCode(t, err, apierror.CodeNotFound)
}

func TestEnrollmentRules(t *testing.T) {
	s := New()
	c := newCourse(t, s, "acme", "Go Basics", "published")
	run := newRun(t, s, "acme", c.ID, 2, time.Now().Add(24*time.Hour))

	enroll := func(email string) error {
		_, err := s.CreateEnrollment(context.Background(), catalog.Enrollment{
			TenantID: "acme", CourseRunID: run.ID, StudentEmail: email, Status: "pending",
		})
		return err
	}

	if err := enroll("a@example.com"); err != nil {
		t.Fatalf("first enrollment: %v", err)
	}
	wantCode(t, enroll("a@example.com"), apierror.CodeDuplicate)

	if err := enroll("b@example.com"); err != nil {
		t.Fatalf("second enrollment: %v", err)
	}
	wantCode(t, enroll("c@example.com"), apierror.CodeCapacityExceeded)

	got, err := s.GetCourseRun(context.Background(), "acme", run.ID)
	if err != nil {
		t.Fatalf("GetCourseRun: %v", err)
	}
	if got.Enrolled != 2 {
		t.Errorf("enrolled = %d, want 2", got.Enrolled)
	}
}

func TestEnrollmentClosedRun(t *testing.T) {
	s := New()
	c := newCourse(t, s, "acme", "Go Basics", "published")
	run := newRun(t, s, "acme", c.ID, 10, time.Now().Add(-time.Hour))

	_, err := s.CreateEnrollment(context.Background(), catalog.Enrollment{
		TenantID: "acme", CourseRunID: run.ID, StudentEmail: "a@example.com",
	})
	wantCode(t, err, apierror.CodeEnrollmentClosed)
}

func TestCreateLeadDefaultsTags(t *testing.T) {
	s := New()
	l, err := s.CreateLead(context.Background(), catalog.Lead{
		TenantID: "acme", Email: "lead@example.com", GDPRConsent: true, Source: "website",
	})
	if err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	if l.ID == "" || l.Tags == nil {
		t.Errorf("lead = %+v", l)
	}
}
