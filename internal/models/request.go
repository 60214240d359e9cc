package models

import "time"

// RequestStatus represents the lifecycle of an enrollment request.
type RequestStatus string

// Possible enrollment request statuses.
const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Valid reports whether the status is one of the three known values.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// EnrollmentRequest is a student's application to join a course. An
// approved request is the sole signal of enrollment; there is no
// separate enrollment row.
type EnrollmentRequest struct {
	ID        string        `db:"id" json:"id"`
	StudentID string        `db:"student_id" json:"studentId"`
	CourseID  string        `db:"course_id" json:"courseId"`
	Status    RequestStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
	DecidedAt *time.Time    `db:"decided_at" json:"decidedAt,omitempty"`
}

// EnrollmentRequestDetail enriches a request with student and course
// context for display. Fields are pointers because either side of the
// join can reference a deleted record; dangling references stay nil
// instead of failing the whole listing.
type EnrollmentRequestDetail struct {
	EnrollmentRequest
	StudentName *string `db:"student_name" json:"studentName,omitempty"`
	StudentERP  *string `db:"student_erp_number" json:"studentErpNumber,omitempty"`
	CourseTitle *string `db:"course_title" json:"courseTitle,omitempty"`
}
