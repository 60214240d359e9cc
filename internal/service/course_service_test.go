package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rahi-Raushan/stu-mag-api/internal/models"
	appErrors "github.com/Rahi-Raushan/stu-mag-api/pkg/errors"
)

type fakeCourseRepo struct {
	courses map[string]*models.Course
	listErr error
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: make(map[string]*models.Course)}
}

func (f *fakeCourseRepo) List(context.Context) ([]models.Course, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var result []models.Course
	for _, course := range f.courses {
		result = append(result, *course)
	}
	return result, nil
}

func (f *fakeCourseRepo) FindByID(_ context.Context, id string) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *course
	return &copied, nil
}

func (f *fakeCourseRepo) Create(_ context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = "generated"
	}
	copied := *course
	f.courses[course.ID] = &copied
	return nil
}

func (f *fakeCourseRepo) Update(_ context.Context, course *models.Course) error {
	copied := *course
	f.courses[course.ID] = &copied
	return nil
}

func (f *fakeCourseRepo) Delete(_ context.Context, id string) error {
	delete(f.courses, id)
	return nil
}

func testCourseService(repo *fakeCourseRepo, cacheRepo *stubCacheRepo) (*CourseService, *recordingAuditWriter) {
	audit := &recordingAuditWriter{}
	var cacheSvc *CacheService
	if cacheRepo != nil {
		cacheSvc = NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	}
	return NewCourseService(repo, audit, cacheSvc, validator.New(), zap.NewNop()), audit
}

func TestCourseServiceListNeverNil(t *testing.T) {
	svc, _ := testCourseService(newFakeCourseRepo(), nil)

	courses, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
}

func TestCourseServiceCreate(t *testing.T) {
	repo := newFakeCourseRepo()
	cacheRepo := &stubCacheRepo{}
	svc, audit := testCourseService(repo, cacheRepo)

	course, err := svc.Create(context.Background(), CourseRequest{Title: "Algorithms", Description: "Sorting and graphs"}, "admin-1")
	require.NoError(t, err)
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, "Algorithms", course.Title)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionCourseCreate, audit.logs[0].Action)
	assert.Contains(t, cacheRepo.deleted, "analytics:*")
}

func TestCourseServiceCreateValidation(t *testing.T) {
	svc, _ := testCourseService(newFakeCourseRepo(), nil)

	_, err := svc.Create(context.Background(), CourseRequest{Title: "Algorithms"}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceUpdate(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.courses["course-1"] = &models.Course{ID: "course-1", Title: "Old", Description: "Old"}
	svc, audit := testCourseService(repo, nil)

	course, err := svc.Update(context.Background(), "course-1", CourseRequest{Title: "New", Description: "Fresh"}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "New", course.Title)
	assert.Equal(t, "Fresh", repo.courses["course-1"].Description)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionCourseUpdate, audit.logs[0].Action)
}

func TestCourseServiceUpdateNotFound(t *testing.T) {
	svc, _ := testCourseService(newFakeCourseRepo(), nil)

	_, err := svc.Update(context.Background(), "absent", CourseRequest{Title: "New", Description: "Fresh"}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceDelete(t *testing.T) {
	repo := newFakeCourseRepo()
	repo.courses["course-1"] = &models.Course{ID: "course-1", Title: "Algorithms"}
	cacheRepo := &stubCacheRepo{}
	svc, audit := testCourseService(repo, cacheRepo)

	require.NoError(t, svc.Delete(context.Background(), "course-1", "admin-1"))
	assert.Empty(t, repo.courses)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionCourseDelete, audit.logs[0].Action)
	assert.Contains(t, cacheRepo.deleted, "analytics:*")
}
