package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/app/models/dto"
	"github.com/yigit/collegeapi/internal/app/services"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubStudentService struct {
	services.StudentService

	created     *dto.CreateStudentRequest
	createdPic  *services.PictureFile
	uploadedPic *services.PictureFile
	deletedID   int64
	updated     *dto.UpdateStudentRequest
	err         error
}

func sampleStudent(id int64, pic string) *models.Student {
	s := &models.Student{
		ID:            id,
		UserID:        id + 100,
		DateOfBirth:   time.Date(2004, 5, 17, 0, 0, 0, 0, time.UTC),
		Gender:        models.GenderFemale,
		BloodGroup:    "O+",
		ContactNumber: "5551234567",
		Address:       "42 Campus Road",
		User:          &models.User{ID: id + 100, Username: "jane", FirstName: "Jane", LastName: "Roe"},
	}
	if pic != "" {
		s.ProfilePic = &pic
	}
	return s
}

func (s *stubStudentService) CreateStudent(ctx context.Context, req *dto.CreateStudentRequest, picture *services.PictureFile) (*models.Student, error) {
	s.created = req
	s.createdPic = picture
	if s.err != nil {
		return nil, s.err
	}
	pic := ""
	if picture != nil {
		pic = "profile_pics/profile_pic_105.png"
	}
	return sampleStudent(5, pic), nil
}

func (s *stubStudentService) UpdateStudent(ctx context.Context, actor models.Identity, id int64, req *dto.UpdateStudentRequest, picture *services.PictureFile) (*models.Student, error) {
	s.updated = req
	if s.err != nil {
		return nil, s.err
	}
	return sampleStudent(id, ""), nil
}

func (s *stubStudentService) DeleteStudent(ctx context.Context, actor models.Identity, id int64) error {
	s.deletedID = id
	return s.err
}

func (s *stubStudentService) UploadProfilePic(ctx context.Context, actor models.Identity, id int64, picture *services.PictureFile) (*models.Student, error) {
	s.uploadedPic = picture
	if picture == nil {
		return nil, apperrors.ErrPictureMissing
	}
	if s.err != nil {
		return nil, s.err
	}
	return sampleStudent(id, "profile_pics/profile_pic_105.png"), nil
}

func (s *stubStudentService) PictureURL(relPath string) string {
	return "/media/" + relPath
}

type stubFacultyService struct {
	services.FacultyService
	added [2]int64
	err   error
}

func (s *stubFacultyService) AddStudent(ctx context.Context, actor models.Identity, facultyID, studentID int64) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.added = [2]int64{facultyID, studentID}
	return "Student jane added to Computer Science class", nil
}

// withIdentity stands in for the JWT middleware
func withIdentity(identity models.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("identity", identity)
		c.Next()
	}
}

func studentRouter(svc *stubStudentService) *gin.Engine {
	ctrl := NewStudentController(svc, "", zerolog.Nop())
	r := gin.New()
	g := r.Group("/students", withIdentity(models.Identity{UserID: 1, Username: "faculty1", Role: models.FacultyRole(1)}))
	g.POST("/", ctrl.CreateStudent)
	g.PUT("/:id/", ctrl.UpdateStudent)
	g.DELETE("/:id/", ctrl.DeleteStudent)
	g.POST("/:id/upload_profile_pic/", ctrl.UploadProfilePic)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data interface{}) dto.APIResponse {
	t.Helper()
	var env struct {
		dto.APIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env.APIResponse
}

const studentFields = `"date_of_birth":"2004-05-17","gender":"F","blood_group":"O+","contact_number":"5551234567","address":"42 Campus Road"`

func TestCreateStudentJSON(t *testing.T) {
	svc := &stubStudentService{}
	router := studentRouter(svc)

	body := `{"user":{"username":"jane","password":"Secret@123"},` + studentFields + `}`
	req := httptest.NewRequest(http.MethodPost, "/students/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, svc.created)
	assert.Equal(t, "jane", svc.created.User.Username)
	assert.Equal(t, "O+", svc.created.BloodGroup)
	assert.Nil(t, svc.createdPic)

	var student dto.StudentResponse
	env := decodeEnvelope(t, w, &student)
	assert.True(t, env.Success)
	assert.Equal(t, int64(5), student.ID)
	assert.Nil(t, student.ProfilePicURL)
}

func TestCreateStudentMultipart(t *testing.T) {
	svc := &stubStudentService{}
	router := studentRouter(svc)

	fields := map[string]string{
		"user":           `{"username":"jane","password":"Secret@123","first_name":"Jane"}`,
		"date_of_birth":  "2004-05-17",
		"gender":         "F",
		"blood_group":    "O+",
		"contact_number": "5551234567",
		"address":        "42 Campus Road",
	}
	body, contentType := multipartBody(t, fields, "profile_pic", "me.png", []byte("fake png bytes"))
	req := httptest.NewRequest(http.MethodPost, "/students/", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "jane", svc.created.User.Username)
	assert.Equal(t, "Jane", svc.created.User.FirstName)
	require.NotNil(t, svc.createdPic)
	assert.Equal(t, "me.png", svc.createdPic.Filename)

	rc, err := svc.createdPic.Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "fake png bytes", string(content))

	var student dto.StudentResponse
	decodeEnvelope(t, w, &student)
	require.NotNil(t, student.ProfilePicURL)
	assert.Equal(t, "http://example.com/media/profile_pics/profile_pic_105.png", *student.ProfilePicURL)
}

func TestCreateStudentMultipartRejectsBadUser(t *testing.T) {
	for name, user := range map[string]string{
		"missing":   "",
		"malformed": "not json",
	} {
		t.Run(name, func(t *testing.T) {
			svc := &stubStudentService{}
			router := studentRouter(svc)

			fields := map[string]string{
				"date_of_birth":  "2004-05-17",
				"gender":         "F",
				"blood_group":    "O+",
				"contact_number": "5551234567",
				"address":        "42 Campus Road",
			}
			if user != "" {
				fields["user"] = user
			}
			body, contentType := multipartBody(t, fields, "", "", nil)
			req := httptest.NewRequest(http.MethodPost, "/students/", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Nil(t, svc.created)
		})
	}
}

func TestUpdateStudentMultipartUser(t *testing.T) {
	svc := &stubStudentService{}
	router := studentRouter(svc)

	body, contentType := multipartBody(t, map[string]string{
		"user":    `{"first_name":"Janet"}`,
		"address": "7 New Street",
	}, "", "", nil)
	req := httptest.NewRequest(http.MethodPut, "/students/5/", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, svc.updated)
	require.NotNil(t, svc.updated.User)
	require.NotNil(t, svc.updated.User.FirstName)
	assert.Equal(t, "Janet", *svc.updated.User.FirstName)
	require.NotNil(t, svc.updated.Address)
	assert.Equal(t, "7 New Street", *svc.updated.Address)
	assert.Nil(t, svc.updated.Gender)
}

func TestDeleteStudent(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		svc := &stubStudentService{}
		w := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/students/9/", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, int64(9), svc.deletedID)
	})

	t.Run("invalid id", func(t *testing.T) {
		svc := &stubStudentService{}
		w := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/students/abc/", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, svc.deletedID)
	})

	t.Run("forbidden", func(t *testing.T) {
		svc := &stubStudentService{err: apperrors.NewForbiddenError("not allowed")}
		w := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/students/9/", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestUploadProfilePic(t *testing.T) {
	t.Run("stores and returns absolute url", func(t *testing.T) {
		svc := &stubStudentService{}
		body, contentType := multipartBody(t, nil, "profile_pic", "me.png", []byte("png"))
		req := httptest.NewRequest(http.MethodPost, "/students/5/upload_profile_pic/", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp dto.UploadProfilePicResponse
		env := decodeEnvelope(t, w, &resp)
		assert.Equal(t, "Profile picture updated successfully", env.Message)
		assert.Equal(t, "success", resp.Status)
		assert.Equal(t, "profile_pics/profile_pic_105.png", resp.ProfilePic)
		assert.Equal(t, "http://example.com/media/profile_pics/profile_pic_105.png", resp.ProfilePicURL)
	})

	t.Run("missing file", func(t *testing.T) {
		svc := &stubStudentService{}
		body, contentType := multipartBody(t, map[string]string{"note": "x"}, "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/students/5/upload_profile_pic/", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var env dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		require.NotNil(t, env.Error)
		assert.Equal(t, dto.ErrorCodeInvalidFile, env.Error.Code)
		assert.Equal(t, "no file provided", env.Error.Message)
	})

	t.Run("invalid picture", func(t *testing.T) {
		svc := &stubStudentService{err: apperrors.ErrPictureBadMimeType}
		body, contentType := multipartBody(t, nil, "profile_pic", "me.png", []byte("not an image"))
		req := httptest.NewRequest(http.MethodPost, "/students/5/upload_profile_pic/", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		studentRouter(svc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAddStudent(t *testing.T) {
	newRouter := func(svc *stubFacultyService) *gin.Engine {
		ctrl := NewFacultyController(svc)
		r := gin.New()
		r.POST("/faculty/:id/add_student/",
			withIdentity(models.Identity{UserID: 1, Username: "faculty1", Role: models.FacultyRole(1)}),
			ctrl.AddStudent)
		return r
	}
	send := func(r *gin.Engine, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/faculty/1/add_student/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("enrolls", func(t *testing.T) {
		svc := &stubFacultyService{}
		w := send(newRouter(svc), `{"student_id":5}`)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, [2]int64{1, 5}, svc.added)
		var status dto.StatusResponse
		decodeEnvelope(t, w, &status)
		assert.Equal(t, "success", status.Status)
		assert.Equal(t, "Student jane added to Computer Science class", status.Message)
	})

	t.Run("student id required", func(t *testing.T) {
		svc := &stubFacultyService{}
		w := send(newRouter(svc), `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, svc.added)
	})

	t.Run("unknown student", func(t *testing.T) {
		svc := &stubFacultyService{err: apperrors.ErrStudentNotFound}
		w := send(newRouter(svc), `{"student_id":99}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandlersRequireIdentity(t *testing.T) {
	ctrl := NewStudentController(&stubStudentService{}, "", zerolog.Nop())
	r := gin.New()
	r.DELETE("/students/:id/", ctrl.DeleteStudent)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/students/1/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
