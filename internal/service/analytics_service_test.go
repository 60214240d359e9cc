package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rahi-Raushan/stu-mag-api/internal/models"
	appErrors "github.com/Rahi-Raushan/stu-mag-api/pkg/errors"
)

type fakeStudentCounter struct {
	count int
	calls int
	err   error
}

func (f *fakeStudentCounter) CountByRole(context.Context, models.AccountRole) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.count, nil
}

type fakeCourseLister struct {
	courses []models.Course
	err     error
}

func (f *fakeCourseLister) List(context.Context) ([]models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.courses, nil
}

type fakeRequestLister struct {
	requests []models.EnrollmentRequestDetail
	err      error
}

func (f *fakeRequestLister) ListDetails(context.Context) ([]models.EnrollmentRequestDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.requests, nil
}

type stubCacheRepo struct {
	store    map[string][]byte
	deleted  []string
	setCalls int
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.store == nil {
		return appErrors.ErrCacheMiss
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	s.setCalls++
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.deleted = append(s.deleted, pattern)
	s.store = nil
	return nil
}

func stringPtr(s string) *string { return &s }

func approvedDetail(id, studentID, courseID, studentName, courseTitle string, createdAt time.Time) models.EnrollmentRequestDetail {
	return models.EnrollmentRequestDetail{
		EnrollmentRequest: models.EnrollmentRequest{
			ID:        id,
			StudentID: studentID,
			CourseID:  courseID,
			Status:    models.RequestStatusApproved,
			CreatedAt: createdAt,
		},
		StudentName: stringPtr(studentName),
		CourseTitle: stringPtr(courseTitle),
	}
}

func TestComputeOverviewEmptySnapshot(t *testing.T) {
	overview := ComputeOverview(Snapshot{}, 5)

	assert.Equal(t, 0, overview.TotalStudents)
	assert.Equal(t, 0, overview.TotalCourses)
	assert.Equal(t, 0, overview.EnrollmentStats.Pending)
	assert.Equal(t, 0, overview.EnrollmentStats.Approved)
	assert.Equal(t, 0, overview.EnrollmentStats.Rejected)
	assert.NotNil(t, overview.CourseEnrollments)
	assert.Empty(t, overview.CourseEnrollments)
	assert.NotNil(t, overview.RecentEnrollments)
	assert.Empty(t, overview.RecentEnrollments)
}

func TestComputeOverviewBucketsAndRanking(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	snapshot := Snapshot{
		TotalStudents: 4,
		Courses: []models.Course{
			{ID: "course-a", Title: "Algorithms"},
			{ID: "course-b", Title: "Databases"},
			{ID: "course-c", Title: "Networks"},
		},
		Requests: []models.EnrollmentRequestDetail{
			approvedDetail("r1", "s1", "course-b", "Amit", "Databases", base),
			approvedDetail("r2", "s2", "course-a", "Bela", "Algorithms", base.Add(time.Minute)),
			approvedDetail("r3", "s3", "course-b", "Chris", "Databases", base.Add(2*time.Minute)),
			approvedDetail("r4", "s4", "course-a", "Dina", "Algorithms", base.Add(3*time.Minute)),
			{EnrollmentRequest: models.EnrollmentRequest{ID: "r5", CourseID: "course-c", Status: models.RequestStatusPending, CreatedAt: base}},
			{EnrollmentRequest: models.EnrollmentRequest{ID: "r6", CourseID: "course-c", Status: models.RequestStatusRejected, CreatedAt: base}},
		},
	}

	overview := ComputeOverview(snapshot, 5)

	assert.Equal(t, 4, overview.TotalStudents)
	assert.Equal(t, 3, overview.TotalCourses)
	assert.Equal(t, 1, overview.EnrollmentStats.Pending)
	assert.Equal(t, 4, overview.EnrollmentStats.Approved)
	assert.Equal(t, 1, overview.EnrollmentStats.Rejected)
	assert.Equal(t, 6, overview.EnrollmentStats.Total())

	// Equal counts tie-break on course id ascending.
	require.Len(t, overview.CourseEnrollments, 2)
	assert.Equal(t, "course-a", overview.CourseEnrollments[0].CourseID)
	assert.Equal(t, "Algorithms", overview.CourseEnrollments[0].CourseTitle)
	assert.Equal(t, 2, overview.CourseEnrollments[0].EnrolledCount)
	assert.Equal(t, "course-b", overview.CourseEnrollments[1].CourseID)
	assert.Equal(t, 2, overview.CourseEnrollments[1].EnrolledCount)

	// Newest approval first.
	require.Len(t, overview.RecentEnrollments, 4)
	assert.Equal(t, "r4", overview.RecentEnrollments[0].RequestID)
	assert.Equal(t, "Dina", overview.RecentEnrollments[0].StudentName)
	assert.Equal(t, "r1", overview.RecentEnrollments[3].RequestID)
}

func TestComputeOverviewRecentLimitAndDangling(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	var requests []models.EnrollmentRequestDetail
	for i := 0; i < 7; i++ {
		requests = append(requests, approvedDetail(
			string(rune('a'+i)), "s1", "course-a", "Student", "Course", base.Add(time.Duration(i)*time.Minute)))
	}
	// Dangling student reference: counted in stats, hidden from the feed.
	dangling := models.EnrollmentRequestDetail{
		EnrollmentRequest: models.EnrollmentRequest{
			ID: "dangling", CourseID: "course-a",
			Status: models.RequestStatusApproved, CreatedAt: base.Add(time.Hour),
		},
		CourseTitle: stringPtr("Course"),
	}
	requests = append(requests, dangling)

	overview := ComputeOverview(Snapshot{Requests: requests}, 5)

	assert.Equal(t, 8, overview.EnrollmentStats.Approved)
	require.Len(t, overview.RecentEnrollments, 5)
	for _, entry := range overview.RecentEnrollments {
		assert.NotEqual(t, "dangling", entry.RequestID)
	}
	assert.Equal(t, "g", overview.RecentEnrollments[0].RequestID)
}

func TestAnalyticsServiceOverviewCaching(t *testing.T) {
	accounts := &fakeStudentCounter{count: 2}
	courses := &fakeCourseLister{courses: []models.Course{{ID: "course-a", Title: "Algorithms"}}}
	requests := &fakeRequestLister{requests: []models.EnrollmentRequestDetail{
		approvedDetail("r1", "s1", "course-a", "Amit", "Algorithms", time.Now().UTC()),
	}}
	cacheRepo := &stubCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(accounts, courses, requests, cacheSvc, zap.NewNop(), AnalyticsServiceConfig{})

	ctx := context.Background()

	first, hit, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, accounts.calls)
	assert.Equal(t, 2, first.TotalStudents)

	second, hit2, err := svc.Overview(ctx)
	require.NoError(t, err)
	assert.True(t, hit2)
	assert.Equal(t, 1, accounts.calls)
	assert.Equal(t, first, second)
}

func TestAnalyticsServiceOverviewErrorPassthrough(t *testing.T) {
	accounts := &fakeStudentCounter{err: assert.AnError}
	svc := NewAnalyticsService(accounts, &fakeCourseLister{}, &fakeRequestLister{}, nil, zap.NewNop(), AnalyticsServiceConfig{})

	_, _, err := svc.Overview(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
}
