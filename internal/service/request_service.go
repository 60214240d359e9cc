package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Rahi-Raushan/stu-mag-api/internal/models"
	"github.com/Rahi-Raushan/stu-mag-api/internal/repository"
	appErrors "github.com/Rahi-Raushan/stu-mag-api/pkg/errors"
)

type requestRepository interface {
	ListDetails(ctx context.Context) ([]models.EnrollmentRequestDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentRequestDetail, error)
	FindByID(ctx context.Context, id string) (*models.EnrollmentRequest, error)
	FindDetailByID(ctx context.Context, id string) (*models.EnrollmentRequestDetail, error)
	ExistsOpen(ctx context.Context, studentID, courseID string) (bool, error)
	Create(ctx context.Context, request *models.EnrollmentRequest) error
	UpdateStatus(ctx context.Context, id string, status models.RequestStatus, decidedAt *time.Time) error
}

type courseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type requestAuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// RequestService orchestrates the enrollment request pipeline:
// submit, list, approve, reject. The status machine is
//
//	(none) --submit--> pending --approve--> approved
//	            pending --reject--> rejected
//	            approved --reject--> rejected   (revoke)
//
// A rejected request cannot be re-approved; the student submits a
// fresh request instead.
type RequestService struct {
	repo    requestRepository
	courses courseReader
	audit   requestAuditWriter
	cache   *CacheService
	logger  *zap.Logger
	now     func() time.Time
}

// NewRequestService constructs RequestService.
func NewRequestService(repo requestRepository, courses courseReader, audit requestAuditWriter, cache *CacheService, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{repo: repo, courses: courses, audit: audit, cache: cache, logger: logger, now: time.Now}
}

// Submit files a new pending request for the student and course. The
// duplicate guard is enforced here and by the database's partial
// unique index, so concurrent submissions from separate sessions
// cannot slip through.
func (s *RequestService) Submit(ctx context.Context, studentID, courseID string) (*models.EnrollmentRequestDetail, error) {
	if studentID == "" || courseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student and course are required")
	}

	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	exists, err := s.repo.ExistsOpen(ctx, studentID, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate request")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "request already pending or approved for this course")
	}

	request := &models.EnrollmentRequest{
		StudentID: studentID,
		CourseID:  courseID,
		Status:    models.RequestStatusPending,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, request); err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "request already pending for this course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}

	s.invalidateAnalytics(ctx)
	s.recordAudit(ctx, studentID, models.AuditActionRequestSubmit, request.ID)

	detail, err := s.repo.FindDetailByID(ctx, request.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request detail")
	}
	return detail, nil
}

// ListAll returns every request across students and courses, resolved
// for display. Dangling student or course references stay absent.
func (s *RequestService) ListAll(ctx context.Context) ([]models.EnrollmentRequestDetail, error) {
	details, err := s.repo.ListDetails(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	if details == nil {
		details = []models.EnrollmentRequestDetail{}
	}
	return details, nil
}

// ListByStudent returns the student's own requests.
func (s *RequestService) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentRequestDetail, error) {
	details, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	if details == nil {
		details = []models.EnrollmentRequestDetail{}
	}
	return details, nil
}

// Approve transitions a pending request to approved. Approving an
// already approved request is a no-op, and a rejected request cannot
// be approved.
func (s *RequestService) Approve(ctx context.Context, id string, actorID string) (*models.EnrollmentRequestDetail, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch request.Status {
	case models.RequestStatusApproved:
		// Idempotent: the enrollment signal already exists.
		return s.detail(ctx, id)
	case models.RequestStatusRejected:
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "rejected request cannot be approved; a new request is required")
	}

	decidedAt := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, id, models.RequestStatusApproved, &decidedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve request")
	}

	s.invalidateAnalytics(ctx)
	s.recordAudit(ctx, actorID, models.AuditActionRequestApprove, id)

	return s.detail(ctx, id)
}

// Reject transitions a request to rejected. It covers both denying a
// pending request and revoking an approved one; rejecting an already
// rejected request is a no-op.
func (s *RequestService) Reject(ctx context.Context, id string, actorID string) (*models.EnrollmentRequestDetail, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if request.Status == models.RequestStatusRejected {
		return s.detail(ctx, id)
	}

	decidedAt := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, id, models.RequestStatusRejected, &decidedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject request")
	}

	s.invalidateAnalytics(ctx)
	s.recordAudit(ctx, actorID, models.AuditActionRequestReject, id)

	return s.detail(ctx, id)
}

func (s *RequestService) load(ctx context.Context, id string) (*models.EnrollmentRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return request, nil
}

func (s *RequestService) detail(ctx context.Context, id string) (*models.EnrollmentRequestDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request detail")
	}
	return detail, nil
}

func (s *RequestService) invalidateAnalytics(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, analyticsCachePattern); err != nil {
		s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
	}
}

func (s *RequestService) recordAudit(ctx context.Context, actorID, action, requestID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		AccountID:  &actorID,
		Action:     action,
		Resource:   "requests",
		ResourceID: &requestID,
	}); err != nil {
		s.logger.Warn("failed to record request audit log", zap.Error(err))
	}
}
