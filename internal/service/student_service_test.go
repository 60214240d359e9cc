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

type fakeAccountRepo struct {
	accounts   map[string]*models.Account
	lastFilter models.AccountFilter
	auditLogs  []*models.AuditLog
	deleted    []string
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*models.Account)}
}

func (f *fakeAccountRepo) List(_ context.Context, filter models.AccountFilter) ([]models.Account, int, error) {
	f.lastFilter = filter
	var result []models.Account
	for _, account := range f.accounts {
		if filter.Role != nil && account.Role != *filter.Role {
			continue
		}
		result = append(result, *account)
	}
	return result, len(result), nil
}

func (f *fakeAccountRepo) FindByID(_ context.Context, id string) (*models.Account, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

func (f *fakeAccountRepo) Update(_ context.Context, account *models.Account) error {
	copied := *account
	f.accounts[account.ID] = &copied
	return nil
}

func (f *fakeAccountRepo) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.accounts, id)
	return nil
}

func (f *fakeAccountRepo) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	f.auditLogs = append(f.auditLogs, log)
	return nil
}

type fakeEnrolledReader struct {
	courses []models.Course
	err     error
}

func (f *fakeEnrolledReader) ApprovedCoursesByStudent(context.Context, string) ([]models.Course, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.courses, nil
}

func testStudentService(repo *fakeAccountRepo, enrolled *fakeEnrolledReader, cacheRepo *stubCacheRepo) *StudentService {
	if enrolled == nil {
		enrolled = &fakeEnrolledReader{}
	}
	var cacheSvc *CacheService
	if cacheRepo != nil {
		cacheSvc = NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	}
	return NewStudentService(repo, enrolled, cacheSvc, validator.New(), zap.NewNop())
}

func TestStudentServiceListDefaultsToStudentRole(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.accounts["s1"] = &models.Account{ID: "s1", Role: models.RoleStudent}
	repo.accounts["a1"] = &models.Account{ID: "a1", Role: models.RoleAdmin}
	svc := testStudentService(repo, nil, nil)

	students, pagination, err := svc.List(context.Background(), models.AccountFilter{})
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.Role)
	assert.Equal(t, models.RoleStudent, *repo.lastFilter.Role)
	require.Len(t, students, 1)
	assert.Equal(t, "s1", students[0].ID)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
}

func TestStudentServiceGetNotFound(t *testing.T) {
	svc := testStudentService(newFakeAccountRepo(), nil, nil)

	_, err := svc.Get(context.Background(), "absent")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceUpdateKeepsRoleAndEmail(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.accounts["s1"] = &models.Account{
		ID: "s1", Name: "Old Name", Email: "old@example.com",
		Role: models.RoleStudent, Age: 20, City: "Pune",
	}
	svc := testStudentService(repo, nil, nil)

	updated, err := svc.Update(context.Background(), "s1", UpdateStudentRequest{
		Name: "New Name", Age: 22, City: "Mumbai",
		ContactNumber: "9876543210", FatherName: "Father",
	}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, 22, updated.Age)
	assert.Equal(t, "old@example.com", updated.Email)
	assert.Equal(t, models.RoleStudent, updated.Role)

	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionStudentUpdate, repo.auditLogs[0].Action)
}

func TestStudentServiceUpdateValidation(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.accounts["s1"] = &models.Account{ID: "s1"}
	svc := testStudentService(repo, nil, nil)

	_, err := svc.Update(context.Background(), "s1", UpdateStudentRequest{Name: "Only Name"}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceDeleteInvalidatesAnalytics(t *testing.T) {
	repo := newFakeAccountRepo()
	repo.accounts["s1"] = &models.Account{ID: "s1", Role: models.RoleStudent}
	cacheRepo := &stubCacheRepo{}
	svc := testStudentService(repo, nil, cacheRepo)

	require.NoError(t, svc.Delete(context.Background(), "s1", "admin-1"))
	assert.Equal(t, []string{"s1"}, repo.deleted)
	assert.Contains(t, cacheRepo.deleted, "analytics:*")
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionStudentDelete, repo.auditLogs[0].Action)
}

func TestStudentServiceDeleteNotFound(t *testing.T) {
	svc := testStudentService(newFakeAccountRepo(), nil, nil)

	err := svc.Delete(context.Background(), "absent", "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceCoursesProjection(t *testing.T) {
	enrolled := &fakeEnrolledReader{courses: []models.Course{{ID: "course-1", Title: "Algorithms"}}}
	svc := testStudentService(newFakeAccountRepo(), enrolled, nil)

	courses, err := svc.Courses(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Algorithms", courses[0].Title)
}

func TestStudentServiceCoursesNeverNil(t *testing.T) {
	svc := testStudentService(newFakeAccountRepo(), &fakeEnrolledReader{}, nil)

	courses, err := svc.Courses(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
}
