package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
	"github.com/yigit/collegeapi/internal/pkg/auth"
	"github.com/yigit/collegeapi/internal/pkg/filestorage"
	"golang.org/x/crypto/bcrypt"
)

type memToken struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

// memStore is an in-memory record store implementing every repository
// interface. Deleting a user cascades to its profile and enrollments.
type memStore struct {
	mu          sync.Mutex
	nextID      int64
	users       map[int64]*models.User
	faculties   map[int64]*models.Faculty
	students    map[int64]*models.Student
	enrollments map[[2]int64]bool
	tokens      map[string]*memToken

	failCreateStudent    error
	failUpdateProfilePic error
	failDeleteUser       error
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[int64]*models.User{},
		faculties:   map[int64]*models.Faculty{},
		students:    map[int64]*models.Student{},
		enrollments: map[[2]int64]bool{},
		tokens:      map[string]*memToken{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

// --- users

func (m *memStore) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return 0, apperrors.ErrUsernameTaken
		}
	}
	user.ID = m.id()
	m.users[user.ID] = copyUser(user)
	return user.ID, nil
}

func (m *memStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return copyUser(u), nil
}

func (m *memStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memStore) UpdateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateUserLocked(user)
}

func (m *memStore) updateUserLocked(user *models.User) error {
	u, ok := m.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.FirstName, u.LastName, u.Email = user.FirstName, user.LastName, user.Email
	return nil
}

func (m *memStore) DeleteUser(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDeleteUser != nil {
		return m.failDeleteUser
	}
	return m.deleteUserLocked(id)
}

func (m *memStore) deleteUserLocked(id int64) error {
	if _, ok := m.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(m.users, id)
	for fid, f := range m.faculties {
		if f.UserID == id {
			delete(m.faculties, fid)
		}
	}
	for sid, s := range m.students {
		if s.UserID == id {
			delete(m.students, sid)
		}
	}
	for key := range m.enrollments {
		_, facultyAlive := m.faculties[key[0]]
		_, studentAlive := m.students[key[1]]
		if !facultyAlive || !studentAlive {
			delete(m.enrollments, key)
		}
	}
	return nil
}

func (m *memStore) ResolveRole(ctx context.Context, userID int64) (models.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.faculties {
		if f.UserID == userID {
			return models.FacultyRole(f.ID), nil
		}
	}
	for _, s := range m.students {
		if s.UserID == userID {
			return models.StudentRole(s.ID), nil
		}
	}
	return models.NoRole(), nil
}

// --- faculties

func (m *memStore) facultyView(f *models.Faculty) *models.Faculty {
	c := *f
	c.User = copyUser(m.users[f.UserID])
	return &c
}

func (m *memStore) CreateFaculty(ctx context.Context, faculty *models.Faculty) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[faculty.UserID]; !ok {
		return 0, apperrors.ErrUserNotFound
	}
	faculty.ID = m.id()
	stored := *faculty
	stored.User = nil
	m.faculties[faculty.ID] = &stored
	return faculty.ID, nil
}

func (m *memStore) GetFacultyByID(ctx context.Context, id int64) (*models.Faculty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.faculties[id]
	if !ok {
		return nil, apperrors.ErrFacultyNotFound
	}
	return m.facultyView(f), nil
}

func (m *memStore) GetFacultyByUserID(ctx context.Context, userID int64) (*models.Faculty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.faculties {
		if f.UserID == userID {
			return m.facultyView(f), nil
		}
	}
	return nil, apperrors.ErrFacultyNotFound
}

func (m *memStore) GetAllFaculties(ctx context.Context) ([]*models.Faculty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Faculty, 0, len(m.faculties))
	for _, f := range m.faculties {
		out = append(out, m.facultyView(f))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateFaculty(ctx context.Context, faculty *models.Faculty) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.faculties[faculty.ID]
	if !ok {
		return apperrors.ErrFacultyNotFound
	}
	f.Subject, f.ContactNumber, f.Address = faculty.Subject, faculty.ContactNumber, faculty.Address
	if faculty.User != nil {
		return m.updateUserLocked(faculty.User)
	}
	return nil
}

func (m *memStore) DeleteFaculty(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.faculties[id]
	if !ok {
		return apperrors.ErrFacultyNotFound
	}
	return m.deleteUserLocked(f.UserID)
}

func (m *memStore) AddStudent(ctx context.Context, facultyID, studentID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.faculties[facultyID]; !ok {
		return apperrors.ErrFacultyNotFound
	}
	if _, ok := m.students[studentID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	m.enrollments[[2]int64{facultyID, studentID}] = true
	return nil
}

func (m *memStore) GetStudents(ctx context.Context, facultyID int64) ([]*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Student
	for key := range m.enrollments {
		if key[0] == facultyID {
			out = append(out, m.studentView(m.students[key[1]]))
		}
	}
	sortStudents(out)
	return out, nil
}

// --- students

func (m *memStore) studentView(s *models.Student) *models.Student {
	c := *s
	c.User = copyUser(m.users[s.UserID])
	if s.ProfilePic != nil {
		p := *s.ProfilePic
		c.ProfilePic = &p
	}
	return &c
}

func sortStudents(students []*models.Student) {
	sort.Slice(students, func(i, j int) bool {
		a, b := students[i].User, students[j].User
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return students[i].ID < students[j].ID
	})
}

func (m *memStore) CreateStudent(ctx context.Context, student *models.Student) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateStudent != nil {
		return 0, m.failCreateStudent
	}
	if _, ok := m.users[student.UserID]; !ok {
		return 0, apperrors.ErrUserNotFound
	}
	student.ID = m.id()
	stored := *student
	stored.User = nil
	m.students[student.ID] = &stored
	return student.ID, nil
}

func (m *memStore) GetStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return m.studentView(s), nil
}

func (m *memStore) GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.UserID == userID {
			return m.studentView(s), nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (m *memStore) GetAllStudents(ctx context.Context) ([]*models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, m.studentView(s))
	}
	sortStudents(out)
	return out, nil
}

func (m *memStore) UpdateStudent(ctx context.Context, student *models.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[student.ID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	s.DateOfBirth, s.Gender, s.BloodGroup = student.DateOfBirth, student.Gender, student.BloodGroup
	s.ContactNumber, s.Address = student.ContactNumber, student.Address
	if student.User != nil {
		return m.updateUserLocked(student.User)
	}
	return nil
}

func (m *memStore) UpdateProfilePic(ctx context.Context, studentID int64, path *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdateProfilePic != nil {
		return m.failUpdateProfilePic
	}
	s, ok := m.students[studentID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	if path == nil {
		s.ProfilePic = nil
		return nil
	}
	p := *path
	s.ProfilePic = &p
	return nil
}

func (m *memStore) DeleteStudent(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	return m.deleteUserLocked(s.UserID)
}

func (m *memStore) GetFaculties(ctx context.Context, studentID int64) ([]*models.Faculty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Faculty
	for key := range m.enrollments {
		if key[1] == studentID {
			out = append(out, m.facultyView(m.faculties[key[0]]))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- refresh tokens

func (m *memStore) CreateToken(ctx context.Context, token string, userID int64, expiryDate time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = &memToken{userID: userID, expiry: expiryDate}
	return nil
}

func (m *memStore) GetTokenByValue(ctx context.Context, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	switch {
	case !ok:
		return 0, apperrors.ErrTokenNotFound
	case t.revoked:
		return 0, apperrors.ErrTokenRevoked
	case t.expiry.Before(time.Now()):
		return 0, apperrors.ErrTokenExpired
	}
	return t.userID, nil
}

func (m *memStore) RotateToken(ctx context.Context, oldToken, newToken string, userID int64, expiryDate time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[oldToken]
	if !ok || t.revoked {
		return apperrors.ErrTokenRevoked
	}
	t.revoked = true
	m.tokens[newToken] = &memToken{userID: userID, expiry: expiryDate}
	return nil
}

func (m *memStore) RevokeToken(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok || t.revoked {
		return apperrors.ErrTokenRevoked
	}
	t.revoked = true
	return nil
}

func (m *memStore) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, t := range m.tokens {
		if t.expiry.Before(time.Now()) {
			delete(m.tokens, k)
			n++
		}
	}
	return n, nil
}

// --- media

// failingStorage wraps a real store and fails writes on demand
type failingStorage struct {
	filestorage.FileStorage
	saveErr error
}

func (f *failingStorage) Save(relPath string, r io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.FileStorage.Save(relPath, r)
}

func encodeImage(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.White, color.Black})
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	}
	require.NoError(t, err)
	return buf.Bytes()
}

func pictureOf(filename, contentType string, content []byte) *PictureFile {
	return &PictureFile{
		Filename:    filename,
		Size:        int64(len(content)),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

// --- wiring

type testEnv struct {
	store    *memStore
	media    *filestorage.LocalStorage
	storage  *failingStorage
	pictures *ProfilePictureManager
	creator  *AccountCreator
	faculty  FacultyService
	student  StudentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	media, err := filestorage.NewLocalStorage(t.TempDir(), "/media")
	require.NoError(t, err)

	storage := &failingStorage{FileStorage: media}
	pictures := NewProfilePictureManager(storage, store, PictureConfig{}, zerolog.Nop())
	creator := NewAccountCreator(store, store, store, pictures, auth.NewHasher(bcrypt.MinCost), zerolog.Nop())

	return &testEnv{
		store:    store,
		media:    media,
		storage:  storage,
		pictures: pictures,
		creator:  creator,
		faculty:  NewFacultyService(store, store, creator, zerolog.Nop()),
		student:  NewStudentService(store, creator, pictures, zerolog.Nop()),
	}
}

func identityOf(userID int64, username string, role models.Role) models.Identity {
	return models.Identity{UserID: userID, Username: username, Role: role}
}
