package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ahmedbilal-7191/sre-bootcamp/internal/model"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/response"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/service"
)

// StudentHandler exposes the student CRUD operations. It only parses
// requests and shapes responses; all business rules live in the service.
type StudentHandler struct {
	studentService service.StudentService
}

// NewStudentHandler creates a StudentHandler.
func NewStudentHandler(studentService service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// Create handles POST /students.
func (h *StudentHandler) Create(c *gin.Context) {
	var in model.StudentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid JSON payload", nil)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Student created successfully", student)
}

// List handles GET /students.
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.studentService.List(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", students)
}

// Get handles GET /students/:id.
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}

	student, err := h.studentService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "", student)
}

// Update handles PUT /students/:id.
func (h *StudentHandler) Update(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}

	var in model.StudentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid JSON payload", nil)
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Student updated successfully", student)
}

// Delete handles DELETE /students/:id.
func (h *StudentHandler) Delete(c *gin.Context) {
	id, ok := studentID(c)
	if !ok {
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, fmt.Sprintf("Student %d deleted successfully", id), nil)
}

// studentID parses the :id path segment. A non-integer id is treated as a
// routing miss, not a validation failure.
func studentID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, "Resource not found", nil)
		return 0, false
	}
	return id, true
}
