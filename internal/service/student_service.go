package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Rahi-Raushan/stu-mag-api/internal/models"
	appErrors "github.com/Rahi-Raushan/stu-mag-api/pkg/errors"
)

type accountRepository interface {
	List(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type enrolledCoursesReader interface {
	ApprovedCoursesByStudent(ctx context.Context, studentID string) ([]models.Course, error)
}

// UpdateStudentRequest is the payload for profile edits, either by the
// student or by an admin. Role and email stay immutable.
type UpdateStudentRequest struct {
	Name          string `json:"name" validate:"required"`
	Age           int    `json:"age" validate:"required,gt=0"`
	City          string `json:"city" validate:"required"`
	ContactNumber string `json:"contactNumber" validate:"required"`
	FatherName    string `json:"fatherName" validate:"required"`
}

// StudentService handles student record workflows.
type StudentService struct {
	repo      accountRepository
	enrolled  enrolledCoursesReader
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService creates an instance of StudentService.
func NewStudentService(repo accountRepository, enrolled enrolledCoursesReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, enrolled: enrolled, cache: cache, validator: validate, logger: logger}
}

// List returns student accounts with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, *models.Pagination, error) {
	if filter.Role == nil {
		role := models.RoleStudent
		filter.Role = &role
	}
	accounts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	pagination := &models.Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}

	return accounts, pagination, nil
}

// Get returns a student account by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return account, nil
}

// Update applies profile changes to a student account.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest, actorID string) (*models.Account, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	account.Name = req.Name
	account.Age = req.Age
	account.City = req.City
	account.ContactNumber = req.ContactNumber
	account.FatherName = req.FatherName

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	payload, _ := json.Marshal(req)
	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		AccountID:  &actorID,
		Action:     models.AuditActionStudentUpdate,
		Resource:   "students",
		ResourceID: &id,
		NewValues:  payload,
	}); err != nil {
		s.logger.Warn("failed to record student update audit log", zap.Error(err))
	}

	return account, nil
}

// Delete removes a student account. Its enrollment requests are
// orphaned; listings and analytics tolerate the dangling reference.
func (s *StudentService) Delete(ctx context.Context, id string, actorID string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, analyticsCachePattern); err != nil {
			s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
		}
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		AccountID:  &actorID,
		Action:     models.AuditActionStudentDelete,
		Resource:   "students",
		ResourceID: &id,
	}); err != nil {
		s.logger.Warn("failed to record student delete audit log", zap.Error(err))
	}

	return nil
}

// Courses returns the courses a student is enrolled in, computed as a
// projection over approved requests.
func (s *StudentService) Courses(ctx context.Context, studentID string) ([]models.Course, error) {
	courses, err := s.enrolled.ApprovedCoursesByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrolled courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}
