package validate

import (
	"time"

	"github.com/campuskit/campuskit/internal/apierror"
)

// Course lifecycle states.
const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

// Enrollment lifecycle states.
const (
	EnrollmentStatusPending   = "pending"
	EnrollmentStatusConfirmed = "confirmed"
	EnrollmentStatusCancelled = "cancelled"
)

// CreateCourse is the validated course-creation payload.
type CreateCourse struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Slug        string  `json:"slug,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
}

// CreateCourseSchema validates course creation. Currency defaults to EUR,
// status to draft.
func CreateCourseSchema() *Schema {
	return New(
		Field("title", String(MinLen(1), MaxLen(200))).Require(),
		Field("description", String(MaxLen(5000))),
		Field("slug", Slug()),
		Field("price", Float(0)).Default(0.0),
		Field("currency", Enum("EUR", "USD", "GBP", "CHF")).Default("EUR"),
		Field("status", Enum(CourseStatusDraft, CourseStatusPublished, CourseStatusArchived)).Default(CourseStatusDraft),
	)
}

// CreateCourseRun is the validated course-run payload.
type CreateCourseRun struct {
	CourseID  string    `json:"courseId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Capacity  int       `json:"capacity"`
	Location  string    `json:"location,omitempty"`
}

// CreateCourseRunSchema validates a scheduled run of a course. The start
// date must not be after the end date.
func CreateCourseRunSchema() *Schema {
	return New(
		Field("courseId", UUID()).Require(),
		Field("startDate", Date()).Require(),
		Field("endDate", Date()).Require(),
		Field("capacity", Int(1, 100000)).Require(),
		Field("location", String(MaxLen(200))),
	).Check(func(vals map[string]any) *apierror.Detail {
		start, _ := vals["startDate"].(time.Time)
		end, _ := vals["endDate"].(time.Time)
		if start.After(end) {
			return &apierror.Detail{Field: "startDate", Constraint: "must not be after endDate"}
		}
		return nil
	})
}

// CreateEnrollment is the validated enrollment payload.
type CreateEnrollment struct {
	CourseRunID  string `json:"courseRunId"`
	StudentEmail string `json:"studentEmail"`
	Status       string `json:"status"`
}

// CreateEnrollmentSchema validates an enrollment; status defaults pending.
func CreateEnrollmentSchema() *Schema {
	return New(
		Field("courseRunId", UUID()).Require(),
		Field("studentEmail", Email()).Require(),
		Field("status", Enum(EnrollmentStatusPending, EnrollmentStatusConfirmed, EnrollmentStatusCancelled)).Default(EnrollmentStatusPending),
	)
}

// CreateLead is the validated marketing-lead payload.
type CreateLead struct {
	Email       string   `json:"email"`
	Name        string   `json:"name,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Message     string   `json:"message,omitempty"`
	GDPRConsent bool     `json:"gdprConsent"`
	Source      string   `json:"source"`
	Tags        []string `json:"tags"`
}

// CreateLeadSchema validates a lead. GDPR consent is mandatory and must be
// affirmative; source defaults to website and tags to an empty list.
func CreateLeadSchema() *Schema {
	return New(
		Field("email", Email()).Require(),
		Field("name", String(MaxLen(200))),
		Field("phone", Phone()),
		Field("message", String(MaxLen(5000))),
		Field("gdprConsent", True()).Require(),
		Field("source", String(MinLen(1), MaxLen(50))).Default("website"),
		Field("tags", Strings()).Default([]string{}),
	)
}
