package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Rahi-Raushan/stu-mag-api/internal/models"
)

// ErrDuplicatePending is returned when the partial unique index on
// (student_id, course_id) WHERE status = 'pending' rejects an insert.
// The index is the authoritative duplicate guard; any client-side check
// is only a UX optimisation.
var ErrDuplicatePending = errors.New("pending request already exists for student and course")

const requestDetailColumns = `r.id, r.student_id, r.course_id, r.status, r.created_at, r.decided_at,
        a.name AS student_name, a.erp_number AS student_erp_number, c.title AS course_title`

const requestDetailJoins = `FROM enrollment_requests r
        LEFT JOIN accounts a ON a.id = r.student_id
        LEFT JOIN courses c ON c.id = r.course_id`

// RequestRepository handles persistence of enrollment requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// ListDetails returns every request resolved with student and course
// context, newest first. Dangling references come back as NULLs.
func (r *RequestRepository) ListDetails(ctx context.Context) ([]models.EnrollmentRequestDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s ORDER BY r.created_at DESC`, requestDetailColumns, requestDetailJoins)
	var details []models.EnrollmentRequestDetail
	if err := r.db.SelectContext(ctx, &details, query); err != nil {
		return nil, fmt.Errorf("list request details: %w", err)
	}
	return details, nil
}

// ListByStudent returns a student's own requests with course context.
func (r *RequestRepository) ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentRequestDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE r.student_id = $1 ORDER BY r.created_at DESC`, requestDetailColumns, requestDetailJoins)
	var details []models.EnrollmentRequestDetail
	if err := r.db.SelectContext(ctx, &details, query, studentID); err != nil {
		return nil, fmt.Errorf("list student requests: %w", err)
	}
	return details, nil
}

// FindByID returns a request by its ID.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.EnrollmentRequest, error) {
	const query = `SELECT id, student_id, course_id, status, created_at, decided_at FROM enrollment_requests WHERE id = $1`
	var request models.EnrollmentRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// FindDetailByID returns a request with student and course context.
func (r *RequestRepository) FindDetailByID(ctx context.Context, id string) (*models.EnrollmentRequestDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE r.id = $1`, requestDetailColumns, requestDetailJoins)
	var detail models.EnrollmentRequestDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsOpen checks whether the student already holds a pending or
// approved request for the course.
func (r *RequestRepository) ExistsOpen(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT 1 FROM enrollment_requests WHERE student_id = $1 AND course_id = $2 AND status IN ($3, $4) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, courseID, models.RequestStatusPending, models.RequestStatusApproved); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check open request: %w", err)
	}
	return true, nil
}

// Create persists a new request in pending state.
func (r *RequestRepository) Create(ctx context.Context, request *models.EnrollmentRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	if request.Status == "" {
		request.Status = models.RequestStatusPending
	}
	const query = `INSERT INTO enrollment_requests (id, student_id, course_id, status, created_at, decided_at)
        VALUES (:id, :student_id, :course_id, :status, :created_at, :decided_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicatePending
		}
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// UpdateStatus updates status and decided_at for a request.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id string, status models.RequestStatus, decidedAt *time.Time) error {
	const query = `UPDATE enrollment_requests SET status = $2, decided_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, decidedAt); err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	return nil
}

// ApprovedCoursesByStudent returns the courses a student is enrolled
// in. Enrollment is a projection over approved requests; there is no
// separate enrollment table.
func (r *RequestRepository) ApprovedCoursesByStudent(ctx context.Context, studentID string) ([]models.Course, error) {
	const query = `SELECT c.id, c.title, c.description, c.created_at, c.updated_at
        FROM enrollment_requests r
        JOIN courses c ON c.id = r.course_id
        WHERE r.student_id = $1 AND r.status = $2
        ORDER BY r.created_at DESC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, studentID, models.RequestStatusApproved); err != nil {
		return nil, fmt.Errorf("list approved courses: %w", err)
	}
	return courses, nil
}
