package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/collegeapi/internal/app/controllers"
	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/middleware"
)

// SetupRouter configures all application routes. Paths keep their trailing
// slash; gin redirects the bare form.
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	facultyController *controllers.FacultyController,
	studentController *controllers.StudentController,
	authMiddleware *middleware.AuthMiddleware,
) {
	api := router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Public token routes ---
	token := api.Group("/token")
	{
		token.POST("/", authController.Login)
		token.POST("/refresh/", authController.RefreshToken)
	}

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	facultyOnly := authMiddleware.RoleRequired(models.RoleFaculty)

	faculty := authenticated.Group("/faculty")
	{
		faculty.GET("/", facultyController.GetAllFaculties)
		faculty.POST("/", facultyOnly, facultyController.CreateFaculty)
		faculty.GET("/:id/", facultyController.GetFacultyByID)
		faculty.PUT("/:id/", facultyController.UpdateFaculty)
		faculty.DELETE("/:id/", facultyController.DeleteFaculty)
		faculty.GET("/:id/dashboard/", facultyController.GetDashboard)
		faculty.POST("/:id/add_student/", facultyController.AddStudent)
	}

	students := authenticated.Group("/students")
	{
		students.GET("/", studentController.GetAllStudents)
		students.POST("/", facultyOnly, studentController.CreateStudent)
		students.GET("/:id/", studentController.GetStudentByID)
		students.PUT("/:id/", studentController.UpdateStudent)
		students.DELETE("/:id/", studentController.DeleteStudent)
		students.GET("/:id/dashboard/", studentController.GetDashboard)
		students.POST("/:id/upload_profile_pic/", studentController.UploadProfilePic)
	}
}
