package dto

// OverviewResponse captures the aggregated admin analytics payload.
type OverviewResponse struct {
	TotalStudents     int                     `json:"totalStudents"`
	TotalCourses      int                     `json:"totalCourses"`
	EnrollmentStats   EnrollmentStats         `json:"enrollmentStats"`
	CourseEnrollments []CourseEnrollmentEntry `json:"courseEnrollments"`
	RecentEnrollments []RecentEnrollmentEntry `json:"recentEnrollments"`
}

// EnrollmentStats counts requests per status. All three buckets are
// always present, zero-filled when empty.
type EnrollmentStats struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// Total returns the sum across the three buckets.
func (s EnrollmentStats) Total() int {
	return s.Pending + s.Approved + s.Rejected
}

// CourseEnrollmentEntry ranks a course by its approved request count.
type CourseEnrollmentEntry struct {
	CourseID      string `json:"courseId"`
	CourseTitle   string `json:"courseTitle"`
	EnrolledCount int    `json:"enrolledCount"`
}

// RecentEnrollmentEntry is one of the latest approvals shown on the
// admin dashboard.
type RecentEnrollmentEntry struct {
	RequestID   string `json:"requestId"`
	StudentName string `json:"studentName"`
	CourseTitle string `json:"courseTitle"`
	CreatedAt   string `json:"createdAt"`
}
