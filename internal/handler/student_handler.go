package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Rahi-Raushan/stu-mag-api/internal/models"
	"github.com/Rahi-Raushan/stu-mag-api/internal/service"
	appErrors "github.com/Rahi-Raushan/stu-mag-api/pkg/errors"
	"github.com/Rahi-Raushan/stu-mag-api/pkg/response"
)

type studentRequestLister interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.EnrollmentRequestDetail, error)
}

// StudentHandler exposes student record endpoints.
type StudentHandler struct {
	students *service.StudentService
	requests studentRequestLister
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService, requests studentRequestLister) *StudentHandler {
	return &StudentHandler{students: students, requests: requests}
}

// List godoc
// @Summary List student accounts
// @Tags Students
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param search query string false "Search by name, email or ERP number"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	filter := models.AccountFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Profile godoc
// @Summary Get the authenticated student's profile
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/profile [get]
func (h *StudentHandler) Profile(c *gin.Context) {
	claims := claimsFromContext(c)
	student, err := h.students.Get(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// UpdateProfile godoc
// @Summary Update the authenticated student's profile
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.UpdateStudentRequest true "Profile fields"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/profile [put]
func (h *StudentHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	claims := claimsFromContext(c)
	student, err := h.students.Update(c.Request.Context(), claims.AccountID, req, claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// MyCourses godoc
// @Summary List the authenticated student's enrolled courses
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/my-courses [get]
func (h *StudentHandler) MyCourses(c *gin.Context) {
	claims := claimsFromContext(c)
	courses, err := h.students.Courses(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// MyRequests godoc
// @Summary List the authenticated student's enrollment requests
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/my-requests [get]
func (h *StudentHandler) MyRequests(c *gin.Context) {
	claims := claimsFromContext(c)
	requests, err := h.requests.ListByStudent(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Get godoc
// @Summary Get a student by id
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Courses godoc
// @Summary List a student's enrolled courses
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/courses [get]
func (h *StudentHandler) Courses(c *gin.Context) {
	courses, err := h.students.Courses(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Update godoc
// @Summary Update a student's profile fields
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body service.UpdateStudentRequest true "Profile fields"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	claims := claimsFromContext(c)
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req, claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete a student account
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 204
// @Security BearerAuth
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if err := h.students.Delete(c.Request.Context(), c.Param("id"), claims.AccountID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
