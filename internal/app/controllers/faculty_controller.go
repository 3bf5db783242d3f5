package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/collegeapi/internal/app/models/dto"
	"github.com/yigit/collegeapi/internal/app/services"
	"github.com/yigit/collegeapi/internal/middleware"
)

// FacultyController handles faculty-related operations
type FacultyController struct {
	facultyService services.FacultyService
}

// NewFacultyController creates a new FacultyController
func NewFacultyController(facultyService services.FacultyService) *FacultyController {
	return &FacultyController{
		facultyService: facultyService,
	}
}

// CreateFaculty handles faculty creation
// @Summary Create a new faculty
// @Description Creates a user and its faculty profile in one step. The nested user may be sent as an object or as a JSON string.
// @Tags faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateFacultyRequest true "Faculty information"
// @Success 201 {object} dto.APIResponse{data=dto.FacultyResponse} "Faculty created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Only faculty members"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /faculty/ [post]
func (c *FacultyController) CreateFaculty(ctx *gin.Context) {
	var req dto.CreateFacultyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	faculty, err := c.facultyService.CreateFaculty(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewFacultyResponse(faculty), "Faculty created successfully"))
}

// GetFacultyByID retrieves a faculty by ID
// @Summary Get faculty details
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.FacultyResponse} "Faculty retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid faculty ID format"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Faculty not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /faculty/{id}/ [get]
func (c *FacultyController) GetFacultyByID(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", "Faculty")
	if !ok {
		return
	}

	faculty, err := c.facultyService.GetFacultyByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewFacultyResponse(faculty), ""))
}

// GetAllFaculties retrieves all faculties
// @Summary Get all faculties
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.FacultyResponse} "Faculties retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /faculty/ [get]
func (c *FacultyController) GetAllFaculties(ctx *gin.Context) {
	faculties, err := c.facultyService.GetAllFaculties(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewFacultyListResponse(faculties), ""))
}

// UpdateFaculty updates an existing faculty
// @Summary Update a faculty
// @Description Partially updates the caller's own faculty profile, including the nested user's name and email.
// @Tags faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty ID" Format(int64) minimum(1)
// @Param request body dto.UpdateFacultyRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.FacultyResponse} "Faculty updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not your profile"
// @Failure 404 {object} dto.ErrorResponse "Faculty not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /faculty/{id}/ [put]
func (c *FacultyController) UpdateFaculty(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", "Faculty")
	if !ok {
		return
	}
	identity, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	var req dto.UpdateFacultyRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	faculty, err := c.facultyService.UpdateFaculty(ctx.Request.Context(), identity, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewFacultyResponse(faculty), "Faculty updated successfully"))
}

// DeleteFaculty deletes a faculty
// @Summary Delete a faculty
// @Description Deletes the caller's own faculty profile together with its user and enrollments.
// @Tags faculty
// @Security BearerAuth
// @Param id path int true "Faculty ID" Format(int64) minimum(1)
// @Success 204 "Faculty deleted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not your profile"
// @Failure 404 {object} dto.ErrorResponse "Faculty not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /faculty/{id}/ [delete]
func (c *FacultyController) DeleteFaculty(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", "Faculty")
	if !ok {
		return
	}
	identity, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	if err := c.facultyService.DeleteFaculty(ctx.Request.Context(), identity, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// GetDashboard returns the faculty dashboard
// @Summary Faculty dashboard
// @Description Faculty details and the students enrolled with the faculty.
// @Tags faculty
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.FacultyDashboardResponse} "Dashboard"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Faculty not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /faculty/{id}/dashboard/ [get]
func (c *FacultyController) GetDashboard(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", "Faculty")
	if !ok {
		return
	}

	dashboard, err := c.facultyService.GetDashboard(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dashboard, ""))
}

// AddStudent enrolls a student with the faculty
// @Summary Enroll a student
// @Description Enrolls a student into the caller's class. Enrolling the same student again is a no-op.
// @Tags faculty
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Faculty ID" Format(int64) minimum(1)
// @Param request body dto.AddStudentRequest true "Student to enroll"
// @Success 200 {object} dto.APIResponse{data=dto.StatusResponse} "Student enrolled"
// @Failure 400 {object} dto.ErrorResponse "student_id is required"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Not your class"
// @Failure 404 {object} dto.ErrorResponse "Faculty or student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /faculty/{id}/add_student/ [post]
func (c *FacultyController) AddStudent(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", "Faculty")
	if !ok {
		return
	}
	identity, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	var req dto.AddStudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	message, err := c.facultyService.AddStudent(ctx.Request.Context(), identity, id, req.StudentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.StatusResponse{Status: "success", Message: message}, message))
}
