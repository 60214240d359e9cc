package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rahi-Raushan/stu-mag-api/internal/dto"
	appErrors "github.com/Rahi-Raushan/stu-mag-api/pkg/errors"
)

type fakeAnalytics struct {
	overview *dto.OverviewResponse
	hit      bool
	err      error
}

func (f *fakeAnalytics) Overview(context.Context) (*dto.OverviewResponse, bool, error) {
	return f.overview, f.hit, f.err
}

func TestAnalyticsHandlerOverview(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAnalyticsHandler(&fakeAnalytics{
		overview: &dto.OverviewResponse{
			TotalStudents:     3,
			TotalCourses:      2,
			EnrollmentStats:   dto.EnrollmentStats{Approved: 1},
			CourseEnrollments: []dto.CourseEnrollmentEntry{},
			RecentEnrollments: []dto.RecentEnrollmentEntry{},
		},
		hit: true,
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/analytics/overview", nil)

	handler.Overview(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cache_hit"])

	var overview dto.OverviewResponse
	require.NoError(t, json.Unmarshal(envelope.Data, &overview))
	assert.Equal(t, 3, overview.TotalStudents)
	assert.NotNil(t, overview.CourseEnrollments)
}

func TestAnalyticsHandlerOverviewError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAnalyticsHandler(&fakeAnalytics{err: appErrors.Clone(appErrors.ErrInternal, "failed to count students")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/analytics/overview", nil)

	handler.Overview(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
