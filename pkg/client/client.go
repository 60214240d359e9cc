// Package client is a typed gateway over the enrollment portal API. It
// covers the four resource groups (auth, courses, students, requests),
// attaches the session's bearer token to every call, and maps error
// envelopes back to Go errors. A 401 from any call clears the session.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// Account mirrors a student account as returned by the API.
type Account struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	Age           int       `json:"age"`
	City          string    `json:"city"`
	ContactNumber string    `json:"contactNumber"`
	FatherName    string    `json:"fatherName"`
	ERPNumber     string    `json:"erpNumber"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Course mirrors a catalog entry.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Request mirrors an enrollment request with its joined context. The
/// joined fields are pointers: either side may reference a deleted record.
type Request struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"studentId"`
	CourseID    string     `json:"courseId"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	DecidedAt   *time.Time `json:"decidedAt,omitempty"`
	StudentName *string    `json:"studentName,omitempty"`
	StudentERP  *string    `json:"studentErpNumber,omitempty"`
	CourseTitle *string    `json:"courseTitle,omitempty"`
}

// AuthResult is the payload of a successful login or registration.
type AuthResult struct {
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expires_in"`
	Account   Identity `json:"account"`
}

// Overview mirrors the admin analytics rollup.
type Overview struct {
	TotalStudents   int `json:"totalStudents"`
	TotalCourses    int `json:"totalCourses"`
	EnrollmentStats struct {
		Pending  int `json:"pending"`
		Approved int `json:"approved"`
		Rejected int `json:"rejected"`
	} `json:"enrollmentStats"`
	CourseEnrollments []struct {
		CourseID      string `json:"courseId"`
		CourseTitle   string `json:"courseTitle"`
		EnrolledCount int    `json:"enrolledCount"`
	} `json:"courseEnrollments"`
	RecentEnrollments []struct {
		RequestID   string `json:"requestId"`
		StudentName string `json:"studentName"`
		CourseTitle string `json:"courseTitle"`
		CreatedAt   string `json:"createdAt"`
	} `json:"recentEnrollments"`
}

// RegisterForm is the public registration payload.
type RegisterForm struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Age           int    `json:"age"`
	City          string `json:"city"`
	ContactNumber string `json:"contactNumber"`
	FatherName    string `json:"fatherName"`
	ERPNumber     string `json:"erpNumber"`
}

// CourseForm is the payload for creating or updating a course.
type CourseForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ProfileForm is the payload for updating student profile fields.
type ProfileForm struct {
	Name          string `json:"name"`
	Age           int    `json:"age"`
	City          string `json:"city"`
	ContactNumber string `json:"contactNumber"`
	FatherName    string `json:"fatherName"`
}

// APIError is an error envelope returned by the server. Message carries
// the server-provided text verbatim when present.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// IsUnauthorized reports whether the error is a 401.
func (e *APIError) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// Client calls the enrollment portal API. All calls share one fixed
// timeout; there are no retries.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// New returns a Client rooted at baseURL (including the API prefix,
// e.g. "http://localhost:8080/api") bound to the given session.
func New(baseURL string, session *Session, opts ...Option) *Client {
	if session == nil {
		session = NewSession()
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		session: session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the client is bound to.
func (c *Client) Session() *Session {
	return c.session
}

// Login authenticates and initializes the session.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &result, "login failed"); err != nil {
		return nil, err
	}
	c.session.Set(result.Token, result.Account)
	return &result, nil
}

// Register creates a student account and initializes the session.
func (c *Client) Register(ctx context.Context, form RegisterForm) (*AuthResult, error) {
	var result AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", form, &result, "registration failed"); err != nil {
		return nil, err
	}
	c.session.Set(result.Token, result.Account)
	return &result, nil
}

// Logout tears down the session. Purely client-side: tokens are
// stateless and expire on their own.
func (c *Client) Logout() {
	c.session.Clear()
}

// Courses lists the course catalog.
func (c *Client) Courses(ctx context.Context) ([]Course, error) {
	var courses []Course
	err := c.do(ctx, http.MethodGet, "/courses", nil, &courses, "failed to load courses")
	return courses, err
}

// Course fetches a single course.
func (c *Client) Course(ctx context.Context, id string) (*Course, error) {
	var course Course
	if err := c.do(ctx, http.MethodGet, "/courses/"+id, nil, &course, "failed to load course"); err != nil {
		return nil, err
	}
	return &course, nil
}

// CreateCourse adds a course to the catalog. Admin only.
func (c *Client) CreateCourse(ctx context.Context, form CourseForm) (*Course, error) {
	var course Course
	if err := c.do(ctx, http.MethodPost, "/courses", form, &course, "failed to create course"); err != nil {
		return nil, err
	}
	return &course, nil
}

// UpdateCourse replaces a course's title and description. Admin only.
func (c *Client) UpdateCourse(ctx context.Context, id string, form CourseForm) (*Course, error) {
	var course Course
	if err := c.do(ctx, http.MethodPut, "/courses/"+id, form, &course, "failed to update course"); err != nil {
		return nil, err
	}
	return &course, nil
}

// DeleteCourse removes a course. Admin only.
func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/courses/"+id, nil, nil, "failed to delete course")
}

// Students lists student accounts. Admin only.
func (c *Client) Students(ctx context.Context) ([]Account, error) {
	var students []Account
	err := c.do(ctx, http.MethodGet, "/students", nil, &students, "failed to load students")
	return students, err
}

// Student fetches a student record. Admin only.
func (c *Client) Student(ctx context.Context, id string) (*Account, error) {
	var student Account
	if err := c.do(ctx, http.MethodGet, "/students/"+id, nil, &student, "failed to load student"); err != nil {
		return nil, err
	}
	return &student, nil
}

// Profile fetches the signed-in student's record.
func (c *Client) Profile(ctx context.Context) (*Account, error) {
	var student Account
	if err := c.do(ctx, http.MethodGet, "/students/profile", nil, &student, "failed to load profile"); err != nil {
		return nil, err
	}
	return &student, nil
}

// UpdateProfile updates the signed-in student's profile fields.
func (c *Client) UpdateProfile(ctx context.Context, form ProfileForm) (*Account, error) {
	var student Account
	if err := c.do(ctx, http.MethodPut, "/students/profile", form, &student, "failed to update profile"); err != nil {
		return nil, err
	}
	return &student, nil
}

// UpdateStudent updates a student's profile fields. Admin only.
func (c *Client) UpdateStudent(ctx context.Context, id string, form ProfileForm) (*Account, error) {
	var student Account
	if err := c.do(ctx, http.MethodPut, "/students/"+id, form, &student, "failed to update student"); err != nil {
		return nil, err
	}
	return &student, nil
}

// DeleteStudent removes a student account. Admin only.
func (c *Client) DeleteStudent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/students/"+id, nil, nil, "failed to delete student")
}

// StudentCourses lists the courses a student is enrolled in.
func (c *Client) StudentCourses(ctx context.Context, id string) ([]Course, error) {
	var courses []Course
	err := c.do(ctx, http.MethodGet, "/students/"+id+"/courses", nil, &courses, "failed to load enrolled courses")
	return courses, err
}

// MyCourses lists the signed-in student's enrolled courses.
func (c *Client) MyCourses(ctx context.Context) ([]Course, error) {
	var courses []Course
	err := c.do(ctx, http.MethodGet, "/students/my-courses", nil, &courses, "failed to load enrolled courses")
	return courses, err
}

// MyRequests lists the signed-in student's enrollment requests.
func (c *Client) MyRequests(ctx context.Context) ([]Request, error) {
	var requests []Request
	err := c.do(ctx, http.MethodGet, "/students/my-requests", nil, &requests, "failed to load requests")
	return requests, err
}

// SubmitRequest applies for enrollment into a course.
func (c *Client) SubmitRequest(ctx context.Context, courseID string) (*Request, error) {
	var request Request
	if err := c.do(ctx, http.MethodPost, "/request/"+courseID, nil, &request, "failed to submit request"); err != nil {
		return nil, err
	}
	return &request, nil
}

// Requests lists every enrollment request. Admin only.
func (c *Client) Requests(ctx context.Context) ([]Request, error) {
	var requests []Request
	err := c.do(ctx, http.MethodGet, "/requests", nil, &requests, "failed to load requests")
	return requests, err
}

// ApproveRequest marks a pending request approved. Admin only.
func (c *Client) ApproveRequest(ctx context.Context, id string) (*Request, error) {
	var request Request
	if err := c.do(ctx, http.MethodPut, "/request/"+id+"/approve", nil, &request, "failed to approve request"); err != nil {
		return nil, err
	}
	return &request, nil
}

// RejectRequest marks a request rejected. Admin only.
func (c *Client) RejectRequest(ctx context.Context, id string) (*Request, error) {
	var request Request
	if err := c.do(ctx, http.MethodPut, "/request/"+id+"/reject", nil, &request, "failed to reject request"); err != nil {
		return nil, err
	}
	return &request, nil
}

// AnalyticsOverview fetches the admin dashboard rollup. Admin only.
func (c *Client) AnalyticsOverview(ctx context.Context) (*Overview, error) {
	var overview Overview
	if err := c.do(ctx, http.MethodGet, "/analytics/overview", nil, &overview, "failed to load analytics"); err != nil {
		return nil, err
	}
	return &overview, nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, fallback string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: %w", fallback, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Clear()
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{Status: resp.StatusCode, Code: "UNKNOWN", Message: fallback}
		}
		return fmt.Errorf("%s: %w", fallback, err)
	}

	if resp.StatusCode >= 400 {
		apiErr := env.Error
		if apiErr == nil {
			apiErr = &APIError{Code: "UNKNOWN"}
		}
		apiErr.Status = resp.StatusCode
		if apiErr.Message == "" {
			apiErr.Message = fallback
		}
		return apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s: %w", fallback, err)
		}
	}
	return nil
}
