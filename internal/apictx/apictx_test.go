package apictx_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/campuskit/campuskit/internal/apictx"
	"github.com/campuskit/campuskit/internal/apierror"
)

type stubVerifier struct {
	claims *apictx.Claims
	err    error
}

func (s *stubVerifier) Verify(_ context.Context, _ string) (*apictx.Claims, error) {
	return s.claims, s.err
}

func headers(h map[string]string) func(string) string {
	return func(name string) string {
		for k, v := range h {
			if strings.EqualFold(k, name) {
				return v
			}
		}
		return ""
	}
}

func TestExtractTenantFromHeader(t *testing.T) {
	c, err := apictx.Extract(context.Background(), apictx.Input{
		Header: headers(map[string]string{"X-Tenant-ID": "acme"}),
		Host:   "api.campuskit.io",
	}, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if c.Tenant.ID != "acme" {
		t.Errorf("tenant = %q, want acme", c.Tenant.ID)
	}
	if c.User != nil {
		t.Error("anonymous request should have no user")
	}
	if c.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestExtractTenantFromSubdomain(t *testing.T) {
	cases := []struct {
		host string
		want string
	}{
		{"acme.campuskit.io", "acme"},
		{"acme.campuskit.io:8443", "acme"},
		{"www.campuskit.io", ""},
		{"campuskit.io", ""},
		{"localhost:8080", ""},
		{"127.0.0.1:8080", ""},
	}
	for _, tc := range cases {
		c, err := apictx.Extract(context.Background(), apictx.Input{
			Header: headers(nil),
			Host:   tc.host,
		}, nil)
		if tc.want == "" {
			if err == nil {
				t.Errorf("host %q: expected tenant resolution failure, got tenant %q", tc.host, c.Tenant.ID)
			}
			e, ok := apierror.IsError(err)
			if !ok || e.Status() != 400 {
				t.Errorf("host %q: error = %v, want 400 INVALID_INPUT", tc.host, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("host %q: %v", tc.host, err)
			continue
		}
		if c.Tenant.ID != tc.want {
			t.Errorf("host %q: tenant = %q, want %q", tc.host, c.Tenant.ID, tc.want)
		}
	}
}

func TestExtractBearerToken(t *testing.T) {
	v := &stubVerifier{claims: &apictx.Claims{
		Subject:  "u-1",
		Email:    "ana@acme.edu",
		TenantID: "acme",
		Roles:    []string{"instructor"},
	}}

	c, err := apictx.Extract(context.Background(), apictx.Input{
		Header: headers(map[string]string{
			"X-Tenant-ID":   "acme",
			"Authorization": "Bearer tok",
		}),
	}, v)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if c.User == nil || c.User.ID != "u-1" || c.User.Email != "ana@acme.edu" {
		t.Fatalf("user = %+v", c.User)
	}
}

func TestExtractInvalidToken(t *testing.T) {
	v := &stubVerifier{err: errors.New("bad signature")}
	_, err := apictx.Extract(context.Background(), apictx.Input{
		Header: headers(map[string]string{
			"X-Tenant-ID":   "acme",
			"Authorization": "Bearer tok",
		}),
	}, v)
	e, ok := apierror.IsError(err)
	if !ok || e.Code != apierror.CodeAuthInvalidToken {
		t.Fatalf("error = %v, want AUTH_INVALID_TOKEN", err)
	}
}

func TestExtractMalformedAuthorizationHeader(t *testing.T) {
	_, err := apictx.Extract(context.Background(), apictx.Input{
		Header: headers(map[string]string{
			"X-Tenant-ID":   "acme",
			"Authorization": "Basic dXNlcjpwdw==",
		}),
	}, &stubVerifier{})
	e, ok := apierror.IsError(err)
	if !ok || e.Code != apierror.CodeAuthInvalidToken {
		t.Fatalf("error = %v, want AUTH_INVALID_TOKEN", err)
	}
}

func TestExtractTenantMismatch(t *testing.T) {
	v := &stubVerifier{claims: &apictx.Claims{Subject: "u-1", TenantID: "other"}}
	_, err := apictx.Extract(context.Background(), apictx.Input{
		Header: headers(map[string]string{
			"X-Tenant-ID":   "acme",
			"Authorization": "Bearer tok",
		}),
	}, v)
	e, ok := apierror.IsError(err)
	if !ok || e.Code != apierror.CodeTenantMismatch {
		t.Fatalf("error = %v, want TENANT_MISMATCH", err)
	}
}

func TestRequireAuthentication(t *testing.T) {
	anon := &apictx.Context{Tenant: apictx.Tenant{ID: "acme"}}
	_, err := apictx.RequireAuthentication(anon)
	e, ok := apierror.IsError(err)
	if !ok || e.Code != apierror.CodeAuthRequired || e.Status() != 401 {
		t.Fatalf("error = %v, want 401 AUTH_REQUIRED", err)
	}

	authed := &apictx.Context{
		Tenant: apictx.Tenant{ID: "acme"},
		User:   &apictx.User{ID: "u-1"},
	}
	a, err := apictx.RequireAuthentication(authed)
	if err != nil {
		t.Fatalf("RequireAuthentication: %v", err)
	}
	if a.Context != authed {
		t.Error("narrowing should not copy the context")
	}
	if a.AuthUser().ID != "u-1" {
		t.Errorf("user = %+v", a.AuthUser())
	}
}

func TestClientIPPrecedence(t *testing.T) {
	cases := []struct {
		name   string
		h      map[string]string
		remote string
		want   string
	}{
		{"forwarded first hop", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, "10.0.0.2:123", "203.0.113.9"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.7"}, "10.0.0.2:123", "203.0.113.7"},
		{"remote addr", nil, "198.51.100.4:5555", "198.51.100.4"},
		{"nothing", nil, "", apictx.UnknownIP},
	}
	for _, tc := range cases {
		tc.h = mergeTenant(tc.h)
		c, err := apictx.Extract(context.Background(), apictx.Input{
			Header:     headers(tc.h),
			RemoteAddr: tc.remote,
		}, nil)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if c.IP != tc.want {
			t.Errorf("%s: ip = %q, want %q", tc.name, c.IP, tc.want)
		}
	}
}

func mergeTenant(h map[string]string) map[string]string {
	if h == nil {
		h = map[string]string{}
	}
	h["X-Tenant-ID"] = "acme"
	return h
}

func TestRequestID(t *testing.T) {
	c, err := apictx.Extract(context.Background(), apictx.Input{
		Header: headers(map[string]string{"X-Tenant-ID": "acme", "X-Request-ID": "req_given"}),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if c.RequestID != "req_given" {
		t.Errorf("request id = %q, want the supplied one", c.RequestID)
	}

	seen := map[string]bool{}
	for range 1000 {
		id := apictx.NewRequestID()
		if !strings.HasPrefix(id, "req_") {
			t.Fatalf("id %q missing prefix", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestRolePredicates(t *testing.T) {
	c := &apictx.Context{
		Tenant: apictx.Tenant{ID: "acme"},
		User:   &apictx.User{ID: "u-1", Roles: []string{"instructor", "student"}},
	}

	if !apictx.HasRole(c, "instructor") || apictx.HasRole(c, "admin") {
		t.Error("HasRole mismatch")
	}
	if !apictx.HasAnyRole(c, "admin", "student") {
		t.Error("HasAnyRole should match student")
	}
	if apictx.HasAllRoles(c, "instructor", "admin") {
		t.Error("HasAllRoles should require every role")
	}
	if !apictx.HasAllRoles(c, "instructor", "student") {
		t.Error("HasAllRoles should hold")
	}
	if apictx.HasAllRoles(c) {
		t.Error("empty role set should not match")
	}
	if apictx.IsAdmin(c) || !apictx.IsInstructor(c) || !apictx.IsStudent(c) {
		t.Error("named predicates mismatch")
	}

	var anon *apictx.Context
	if apictx.HasRole(anon, "admin") || apictx.IsAdmin(&apictx.Context{}) {
		t.Error("anonymous contexts hold no roles")
	}
}

func TestContextRoundTrip(t *testing.T) {
	c := &apictx.Context{Tenant: apictx.Tenant{ID: "acme"}}
	ctx := apictx.WithContext(context.Background(), c)
	if got := apictx.FromContext(ctx); got != c {
		t.Errorf("FromContext = %v, want %v", got, c)
	}
	if apictx.FromContext(context.Background()) != nil {
		t.Error("empty context should yield nil")
	}
}
