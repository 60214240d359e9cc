package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rahi-Raushan/stu-mag-api/internal/models"
	"github.com/Rahi-Raushan/stu-mag-api/pkg/response"
)

type requestPipeline interface {
	Submit(ctx context.Context, studentID, courseID string) (*models.EnrollmentRequestDetail, error)
	ListAll(ctx context.Context) ([]models.EnrollmentRequestDetail, error)
	Approve(ctx context.Context, id, actorID string) (*models.EnrollmentRequestDetail, error)
	Reject(ctx context.Context, id, actorID string) (*models.EnrollmentRequestDetail, error)
}

// RequestHandler exposes the enrollment request pipeline endpoints.
type RequestHandler struct {
	requests requestPipeline
}

// NewRequestHandler constructs RequestHandler.
func NewRequestHandler(requests requestPipeline) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// Submit godoc
// @Summary Submit an enrollment request for a course
// @Tags Requests
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /request/{courseId} [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	detail, err := h.requests.Submit(c.Request.Context(), claims.AccountID, c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// List godoc
// @Summary List all enrollment requests
// @Tags Requests
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	details, err := h.requests.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// Approve godoc
// @Summary Approve a pending enrollment request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /request/{id}/approve [put]
func (h *RequestHandler) Approve(c *gin.Context) {
	claims := claimsFromContext(c)
	detail, err := h.requests.Approve(c.Request.Context(), c.Param("id"), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Reject godoc
// @Summary Reject a pending or approved enrollment request
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /request/{id}/reject [put]
func (h *RequestHandler) Reject(c *gin.Context) {
	claims := claimsFromContext(c)
	detail, err := h.requests.Reject(c.Request.Context(), c.Param("id"), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}
