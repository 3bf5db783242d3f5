package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/collegeapi/internal/app/models/dto"
	"github.com/yigit/collegeapi/internal/app/services"
	"github.com/yigit/collegeapi/internal/middleware"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
	"github.com/yigit/collegeapi/internal/pkg/helpers"
)

// profilePicField is the multipart field carrying the picture
const profilePicField = "profile_pic"

// StudentController handles student-related operations
type StudentController struct {
	studentService services.StudentService
	publicURL      string
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController. publicURL, when set,
// is used instead of the request host to build picture URLs.
func NewStudentController(studentService services.StudentService, publicURL string, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		publicURL:      publicURL,
		logger:         logger,
	}
}

// resolver builds absolute picture URLs for this request
func (c *StudentController) resolver(ctx *gin.Context) dto.URLResolver {
	return func(relPath string) string {
		return helpers.AbsoluteURL(ctx.Request, c.publicURL, c.studentService.PictureURL(relPath))
	}
}

// pictureFromForm returns the uploaded picture, or nil when the field is absent
func pictureFromForm(ctx *gin.Context) (*services.PictureFile, error) {
	fh, err := ctx.FormFile(profilePicField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, apperrors.NewCustomError(apperrors.ErrBadRequest, "invalid multipart form")
	}
	return services.PictureFromFileHeader(fh), nil
}

// CreateStudent handles student creation
// @Summary Create a new student
// @Description Creates a user and its student profile. Send JSON, or multipart form data with the user as a JSON string in the "user" field and an optional "profile_pic" file.
// @Tags students
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=dto.StudentResponse} "Student created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or picture"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Only faculty members"
// @Failure 413 {object} dto.ErrorResponse "Request body too large"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/ [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	var picture *services.PictureFile

	if middleware.IsMultipart(ctx) {
		if !middleware.BindForm(ctx, &req) {
			return
		}
		user, err := dto.ParseUserInput(ctx.PostForm("user"))
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		req.User = user

		if picture, err = pictureFromForm(ctx); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
	} else if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.CreateStudent(ctx.Request.Context(), &req, picture)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewStudentResponse(student, c.resolver(ctx)), "Student created successfully"))
}

// GetAllStudents lists students
// @Summary List students
// @Description Faculty see every student ordered by name, a student sees only their own record.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentResponse} "Students"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/ [get]
func (c *StudentController) GetAllStudents(ctx *gin.Context) {
	identity, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	students, err := c.studentService.GetAllStudents(ctx.Request.Context(), identity)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentListResponse(students, c.resolver(ctx)), ""))
}

// GetStudentByID retrieves a student
// @Summary Get student details
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/ [get]
func (c *StudentController) GetStudentByID(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", "Student")
	if !ok {
		return
	}
	identity, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	student, err := c.studentService.GetStudentByID(ctx.Request.Context(), identity, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentResponse(student, c.resolver(ctx)), ""))
}

// UpdateStudent updates a student
// @Summary Update a student
// @Description Partially updates a student. Faculty may change profile fields and the picture, only the student may change the nested user. Accepts JSON or multipart with an optional "profile_pic".
// @Tags students
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Param request body dto.UpdateStudentRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data or picture"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 413 {object} dto.ErrorResponse "Request body too large"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/ [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", "Student")
	if !ok {
		return
	}
	identity, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	var picture *services.PictureFile

	if middleware.IsMultipart(ctx) {
		if !middleware.BindForm(ctx, &req) {
			return
		}
		if raw, present := ctx.GetPostForm("user"); present && raw != "" {
			var user dto.UserUpdateInput
			if err := user.UnmarshalJSON([]byte(raw)); err != nil {
				middleware.HandleAPIError(ctx, err)
				return
			}
			req.User = &user
		}

		var err error
		if picture, err = pictureFromForm(ctx); err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
	} else if !middleware.BindJSON(ctx, &req) {
		return
	}

	student, err := c.studentService.UpdateStudent(ctx.Request.Context(), identity, id, &req, picture)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentResponse(student, c.resolver(ctx)), "Student updated successfully"))
}

// DeleteStudent deletes a student
// @Summary Delete a student
// @Description Deletes the student, its user and its stored picture.
// @Tags students
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Success 204 "Student deleted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/ [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", "Student")
	if !ok {
		return
	}
	identity, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	if err := c.studentService.DeleteStudent(ctx.Request.Context(), identity, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// GetDashboard returns the student dashboard
// @Summary Student dashboard
// @Description Student details and the faculties the student is enrolled with.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.StudentDashboardResponse} "Dashboard"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/dashboard/ [get]
func (c *StudentController) GetDashboard(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", "Student")
	if !ok {
		return
	}
	identity, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	dashboard, err := c.studentService.GetDashboard(ctx.Request.Context(), identity, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dashboard, ""))
}

// UploadProfilePic replaces the student's picture
// @Summary Upload a profile picture
// @Description Stores a JPEG, PNG or GIF (at most 5 MiB and 4096x4096) as the student's picture, replacing the previous one.
// @Tags students
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID" Format(int64) minimum(1)
// @Param profile_pic formData file true "Picture"
// @Success 200 {object} dto.APIResponse{data=dto.UploadProfilePicResponse} "Picture stored"
// @Failure 400 {object} dto.ErrorResponse "No file provided or invalid picture"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 413 {object} dto.ErrorResponse "Request body too large"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/{id}/upload_profile_pic/ [post]
func (c *StudentController) UploadProfilePic(ctx *gin.Context) {
	id, ok := parseID(ctx, "id", "Student")
	if !ok {
		return
	}
	identity, ok := currentIdentity(ctx)
	if !ok {
		return
	}

	picture, err := pictureFromForm(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	student, err := c.studentService.UploadProfilePic(ctx.Request.Context(), identity, id, picture)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("studentID", student.ID).Int64("userID", identity.UserID).Msg("Profile picture uploaded")

	const message = "Profile picture updated successfully"
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.UploadProfilePicResponse{
		Status:        "success",
		Message:       message,
		ProfilePic:    *student.ProfilePic,
		ProfilePicURL: c.resolver(ctx)(*student.ProfilePic),
	}, message))
}
