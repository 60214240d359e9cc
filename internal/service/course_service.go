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

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type courseAuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CourseRequest is the payload for creating or updating a course.
type CourseRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// CourseService handles course listing workflows.
type CourseService struct {
	repo      courseRepository
	audit     courseAuditWriter
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService creates an instance of CourseService.
func NewCourseService(repo courseRepository, audit courseAuditWriter, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, audit: audit, cache: cache, validator: validate, logger: logger}
}

// List returns every course.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// Get returns a course by ID.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create adds a new course listing.
func (s *CourseService) Create(ctx context.Context, req CourseRequest, actorID string) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.invalidateAnalytics(ctx)
	s.recordAudit(ctx, actorID, models.AuditActionCourseCreate, course.ID, req)

	return course, nil
}

// Update edits title and description of an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req CourseRequest, actorID string) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	course.Title = req.Title
	course.Description = req.Description
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.invalidateAnalytics(ctx)
	s.recordAudit(ctx, actorID, models.AuditActionCourseUpdate, id, req)

	return course, nil
}

// Delete removes a course. Requests referencing it are orphaned.
func (s *CourseService) Delete(ctx context.Context, id string, actorID string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}

	s.invalidateAnalytics(ctx)
	s.recordAudit(ctx, actorID, models.AuditActionCourseDelete, id, nil)

	return nil
}

func (s *CourseService) invalidateAnalytics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, analyticsCachePattern); err != nil {
		s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
	}
}

func (s *CourseService) recordAudit(ctx context.Context, actorID, action, resourceID string, payload interface{}) {
	if s.audit == nil {
		return
	}
	var data []byte
	if payload != nil {
		data, _ = json.Marshal(payload)
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		AccountID:  &actorID,
		Action:     action,
		Resource:   "courses",
		ResourceID: &resourceID,
		NewValues:  data,
	}); err != nil {
		s.logger.Warn("failed to record course audit log", zap.Error(err))
	}
}
