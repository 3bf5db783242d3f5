package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // registers GIF for image.DecodeConfig
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
	"github.com/yigit/collegeapi/internal/pkg/filestorage"
)

// PictureFile is an uploaded image waiting to be validated and stored
type PictureFile struct {
	Filename    string
	Size        int64
	ContentType string // as declared by the client, may be empty
	Open        func() (io.ReadCloser, error)
}

// PictureFromFileHeader adapts a multipart upload; nil stays nil
func PictureFromFileHeader(fh *multipart.FileHeader) *PictureFile {
	if fh == nil {
		return nil
	}
	return &PictureFile{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// PictureConfig holds the upload limits
type PictureConfig struct {
	Dir               string
	MaxBytes          int64
	MaxDimension      int
	AllowedTypes      []string
	AllowedExtensions []string
}

// DefaultPictureConfig returns the stock limits: 5 MiB, 4096px, jpg/jpeg/png/gif
func DefaultPictureConfig() PictureConfig {
	return PictureConfig{
		Dir:               "profile_pics",
		MaxBytes:          5 * 1024 * 1024,
		MaxDimension:      4096,
		AllowedTypes:      []string{"image/jpeg", "image/png", "image/gif"},
		AllowedExtensions: []string{"jpg", "jpeg", "png", "gif"},
	}
}

// ProfilePicStore reads and persists the picture reference of a student
type ProfilePicStore interface {
	GetStudentByID(ctx context.Context, id int64) (*models.Student, error)
	UpdateProfilePic(ctx context.Context, studentID int64, path *string) error
}

// ProfilePictureManager owns the mapping between a student's picture field
// and the file in media storage. It is the only writer of profile pictures.
type ProfilePictureManager struct {
	storage filestorage.FileStorage
	records ProfilePicStore
	cfg     PictureConfig
	logger  zerolog.Logger
	locks   keyedMutex
}

// NewProfilePictureManager creates a manager; zero config fields take the defaults
func NewProfilePictureManager(storage filestorage.FileStorage, records ProfilePicStore, cfg PictureConfig, logger zerolog.Logger) *ProfilePictureManager {
	def := DefaultPictureConfig()
	if cfg.Dir == "" {
		cfg.Dir = def.Dir
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = def.MaxBytes
	}
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = def.MaxDimension
	}
	if len(cfg.AllowedTypes) == 0 {
		cfg.AllowedTypes = def.AllowedTypes
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = def.AllowedExtensions
	}

	return &ProfilePictureManager{
		storage: storage,
		records: records,
		cfg:     cfg,
		logger:  logger.With().Str("component", "profile_pictures").Logger(),
	}
}

// PathFor returns profile_pics/profile_pic_<userID>.<ext> with the extension
// lower-cased, so every upload of a user lands in the same slot.
func (m *ProfilePictureManager) PathFor(userID int64, filename string) string {
	name := fmt.Sprintf("profile_pic_%d", userID)
	if ext := extensionOf(filename); ext != "" {
		name += "." + ext
	}
	return path.Join(m.cfg.Dir, name)
}

// URL returns the public path of a stored picture
func (m *ProfilePictureManager) URL(relPath string) string {
	return m.storage.URL(relPath)
}

func extensionOf(filename string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
}

// Validate checks size, extension, declared and sniffed type, and pixel dimensions
func (m *ProfilePictureManager) Validate(file *PictureFile) error {
	_, err := m.readValidated(file)
	return err
}

// readValidated runs every check and returns the file content on success.
// Cheap metadata checks come first so oversized uploads are never read.
func (m *ProfilePictureManager) readValidated(file *PictureFile) ([]byte, error) {
	if file == nil || file.Open == nil {
		return nil, apperrors.ErrPictureMissing
	}

	if file.Size > m.cfg.MaxBytes {
		return nil, apperrors.ErrPictureTooLarge
	}

	if !contains(m.cfg.AllowedExtensions, extensionOf(file.Filename)) {
		return nil, apperrors.ErrPictureBadExtension.WithDetails(map[string]interface{}{
			"allowed": m.cfg.AllowedExtensions,
		})
	}

	if declared := declaredType(file.ContentType); declared != "" && !contains(m.cfg.AllowedTypes, declared) {
		return nil, m.badType()
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open uploaded file: %v", apperrors.ErrStorageFault, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, m.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read uploaded file: %v", apperrors.ErrStorageFault, err)
	}
	if int64(len(content)) > m.cfg.MaxBytes {
		return nil, apperrors.ErrPictureTooLarge
	}

	if detected := mimetype.Detect(content); !mimetype.EqualsAny(detected.String(), m.cfg.AllowedTypes...) {
		return nil, m.badType()
	}

	imgCfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return nil, m.badType()
	}
	if imgCfg.Width > m.cfg.MaxDimension || imgCfg.Height > m.cfg.MaxDimension {
		return nil, apperrors.ErrPictureBadDimensions.WithDetails(map[string]interface{}{
			"max":    m.cfg.MaxDimension,
			"width":  imgCfg.Width,
			"height": imgCfg.Height,
		})
	}

	return content, nil
}

func (m *ProfilePictureManager) badType() error {
	return apperrors.ErrPictureBadMimeType.WithDetails(map[string]interface{}{
		"allowed": m.cfg.AllowedTypes,
	})
}

// declaredType normalizes a client content type. Generic binary is treated
// as undeclared and left to sniffing.
func declaredType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	if mediaType == "application/octet-stream" {
		return ""
	}
	return mediaType
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

// Replace stores file as the student's picture. The new file is written
// before the record points at it, and the previous file is removed only
// after the record moved away from it. The previous path is read from the
// record store under the student's lock, so a caller holding a stale copy
// cannot leave a file behind. Cleanup failures are logged, never returned.
// On success student.ProfilePic holds the new path.
func (m *ProfilePictureManager) Replace(ctx context.Context, student *models.Student, file *PictureFile) error {
	content, err := m.readValidated(file)
	if err != nil {
		return err
	}

	unlock := m.locks.Lock(student.ID)
	defer unlock()

	current, err := m.records.GetStudentByID(ctx, student.ID)
	if err != nil {
		return err
	}

	newPath := m.PathFor(student.UserID, file.Filename)
	oldPath := ""
	if current.HasProfilePic() {
		oldPath = *current.ProfilePic
	}

	if err := m.storage.Save(newPath, bytes.NewReader(content)); err != nil {
		m.logger.Error().Err(err).Int64("studentID", student.ID).Str("path", newPath).Msg("Failed to store profile picture")
		return fmt.Errorf("%w: failed to store profile picture: %v", apperrors.ErrStorageFault, err)
	}

	if err := m.records.UpdateProfilePic(ctx, student.ID, &newPath); err != nil {
		// The old slot, when shared, must stay: the record still points at it
		if newPath != oldPath {
			m.removeQuietly(newPath, student.ID)
		}
		return err
	}

	if oldPath != "" && oldPath != newPath {
		m.removeQuietly(oldPath, student.ID)
	}

	student.ProfilePic = &newPath
	m.logger.Info().Int64("studentID", student.ID).Str("path", newPath).Msg("Profile picture stored")
	return nil
}

// Delete removes the stored picture of a student whose record is being
// destroyed. student must be the copy loaded before the record was removed.
// A missing file, or any failure to remove it, is logged and ignored.
func (m *ProfilePictureManager) Delete(ctx context.Context, student *models.Student) {
	if !student.HasProfilePic() {
		return
	}

	unlock := m.locks.Lock(student.ID)
	defer unlock()

	m.removeQuietly(*student.ProfilePic, student.ID)
}

func (m *ProfilePictureManager) removeQuietly(relPath string, studentID int64) {
	if err := m.storage.Delete(relPath); err != nil {
		m.logger.Warn().Err(err).Int64("studentID", studentID).Str("path", relPath).Msg("Failed to remove profile picture, leaving it behind")
	}
}

// keyedMutex serializes work per student id. Entries are dropped once no
// goroutine holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

// Lock acquires the mutex of key and returns its release function
func (k *keyedMutex) Lock(key int64) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[int64]*refMutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &refMutex{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
