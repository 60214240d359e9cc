package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rahi-Raushan/stu-mag-api/internal/models"
)

func newRequestMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func requestDetailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_id", "course_id", "status", "created_at", "decided_at",
		"student_name", "student_erp_number", "course_title",
	})
}

func TestRequestRepositoryListDetails(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	now := time.Now().UTC()
	rows := requestDetailRows().
		AddRow("r1", "s1", "c1", "approved", now, now, "Rahul Sharma", "ERP-1001", "Algorithms").
		AddRow("r2", "s2", "c1", "pending", now, nil, nil, nil, "Algorithms")
	mock.ExpectQuery("FROM enrollment_requests r").WillReturnRows(rows)

	details, err := repo.ListDetails(context.Background())
	require.NoError(t, err)
	require.Len(t, details, 2)
	require.NotNil(t, details[0].StudentName)
	assert.Equal(t, "Rahul Sharma", *details[0].StudentName)
	// Orphaned student: join columns stay nil.
	assert.Nil(t, details[1].StudentName)
	assert.Nil(t, details[1].StudentERP)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	rows := requestDetailRows().
		AddRow("r1", "s1", "c1", "pending", time.Now(), nil, "Rahul Sharma", "ERP-1001", "Algorithms")
	mock.ExpectQuery("WHERE r.student_id").WithArgs("s1").WillReturnRows(rows)

	details, err := repo.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "s1", details[0].StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryExistsOpen(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectQuery("SELECT 1 FROM enrollment_requests").
		WithArgs("s1", "c1", models.RequestStatusPending, models.RequestStatusApproved).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err := repo.ExistsOpen(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery("SELECT 1 FROM enrollment_requests").
		WithArgs("s1", "c2", models.RequestStatusPending, models.RequestStatusApproved).
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsOpen(context.Background(), "s1", "c2")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec("INSERT INTO enrollment_requests").
		WithArgs(sqlmock.AnyArg(), "s1", "c1", "pending", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	request := &models.EnrollmentRequest{StudentID: "s1", CourseID: "c1"}
	require.NoError(t, repo.Create(context.Background(), request))
	assert.NotEmpty(t, request.ID)
	assert.Equal(t, models.RequestStatusPending, request.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryCreateDuplicatePending(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec("INSERT INTO enrollment_requests").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_requests_pending_once"})

	err := repo.Create(context.Background(), &models.EnrollmentRequest{StudentID: "s1", CourseID: "c1"})
	assert.ErrorIs(t, err, ErrDuplicatePending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	decidedAt := time.Now().UTC()
	mock.ExpectExec("UPDATE enrollment_requests SET status").
		WithArgs("r1", models.RequestStatusApproved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "r1", models.RequestStatusApproved, &decidedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryApprovedCoursesByStudent(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "title", "description", "created_at", "updated_at"}).
		AddRow("c1", "Algorithms", "Sorting and graphs", now, now)
	mock.ExpectQuery("JOIN courses c ON").
		WithArgs("s1", models.RequestStatusApproved).
		WillReturnRows(rows)

	courses, err := repo.ApprovedCoursesByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "Algorithms", courses[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}
