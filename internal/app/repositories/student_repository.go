package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/db"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
	"github.com/yigit/collegeapi/internal/pkg/dberrors"
	"github.com/yigit/collegeapi/internal/pkg/logger"
)

// IStudentRepository defines the interface for student database operations
type IStudentRepository interface {
	CreateStudent(ctx context.Context, student *models.Student) (int64, error)
	GetStudentByID(ctx context.Context, id int64) (*models.Student, error)
	GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error)
	// GetAllStudents lists students ordered by first and last name
	GetAllStudents(ctx context.Context) ([]*models.Student, error)
	// UpdateStudent saves the profile fields and, when student.User is set, its identity fields.
	// The picture reference is not touched; see UpdateProfilePic.
	UpdateStudent(ctx context.Context, student *models.Student) error
	UpdateProfilePic(ctx context.Context, studentID int64, path *string) error
	// DeleteStudent removes the profile together with its user
	DeleteStudent(ctx context.Context, id int64) error

	GetFaculties(ctx context.Context, studentID int64) ([]*models.Faculty, error)
}

var (
	studentColumns = []string{"s.id", "s.user_id", "s.date_of_birth", "s.gender", "s.blood_group", "s.contact_number", "s.address", "s.profile_pic"}
	studentOrder   = []string{"u.first_name ASC", "u.last_name ASC", "s.id ASC"}
)

// StudentRepository handles student database operations
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// selectStudents starts a student query joined with its user
func selectStudents(sb squirrel.StatementBuilderType) squirrel.SelectBuilder {
	return sb.Select(append(append([]string{}, studentColumns...), userColumns...)...).
		From("students s").
		Join("users u ON u.id = s.user_id")
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	s := &models.Student{User: &models.User{}}
	u := s.User
	var gender string
	err := row.Scan(&s.ID, &s.UserID, &s.DateOfBirth, &gender, &s.BloodGroup, &s.ContactNumber, &s.Address, &s.ProfilePic,
		&u.ID, &u.Username, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Gender = models.Gender(gender)
	return s, nil
}

func collectStudents(rows pgx.Rows) ([]*models.Student, error) {
	defer rows.Close()

	students := make([]*models.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// CreateStudent creates a new student profile for an existing user
func (r *StudentRepository) CreateStudent(ctx context.Context, student *models.Student) (int64, error) {
	sql, args, err := r.sb.Insert("students").
		Columns("user_id", "date_of_birth", "gender", "blood_group", "contact_number", "address", "profile_pic").
		Values(student.UserID, student.DateOfBirth, string(student.Gender), student.BloodGroup,
			student.ContactNumber, student.Address, student.ProfilePic).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return 0, fmt.Errorf("failed to build create student query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_user_id_key") {
			return 0, apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "user already has a student profile")
		}
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", student.UserID).Msg("Error executing create student query")
		return 0, fmt.Errorf("%w: error creating student: %v", apperrors.ErrStorageFault, err)
	}

	student.ID = id
	return id, nil
}

func (r *StudentRepository) getStudentWhere(ctx context.Context, pred squirrel.Sqlizer) (*models.Student, error) {
	sql, args, err := selectStudents(r.sb).Where(pred).Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get student SQL")
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	s, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Msg("Error scanning student row")
		return nil, fmt.Errorf("%w: error retrieving student: %v", apperrors.ErrStorageFault, err)
	}
	return s, nil
}

// GetStudentByID retrieves a student by ID
func (r *StudentRepository) GetStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	return r.getStudentWhere(ctx, squirrel.Eq{"s.id": id})
}

// GetStudentByUserID retrieves the student profile of a user
func (r *StudentRepository) GetStudentByUserID(ctx context.Context, userID int64) (*models.Student, error) {
	return r.getStudentWhere(ctx, squirrel.Eq{"s.user_id": userID})
}

// GetAllStudents retrieves all students ordered by name
func (r *StudentRepository) GetAllStudents(ctx context.Context) ([]*models.Student, error) {
	sql, args, err := selectStudents(r.sb).OrderBy(studentOrder...).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get all students SQL")
		return nil, fmt.Errorf("failed to build get all students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get all students query")
		return nil, fmt.Errorf("%w: error retrieving students: %v", apperrors.ErrStorageFault, err)
	}

	students, err := collectStudents(rows)
	if err != nil {
		logger.Error().Err(err).Msg("Error scanning student rows")
		return nil, fmt.Errorf("%w: error retrieving students: %v", apperrors.ErrStorageFault, err)
	}
	return students, nil
}

// UpdateStudent updates a student and its user in one transaction
func (r *StudentRepository) UpdateStudent(ctx context.Context, student *models.Student) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Update("students").
			Set("date_of_birth", student.DateOfBirth).
			Set("gender", string(student.Gender)).
			Set("blood_group", student.BloodGroup).
			Set("contact_number", student.ContactNumber).
			Set("address", student.Address).
			Where(squirrel.Eq{"id": student.ID}).
			ToSql()
		if err != nil {
			logger.Error().Err(err).Msg("Error building update student SQL")
			return fmt.Errorf("failed to build update student query: %w", err)
		}

		cmdTag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			logger.Error().Err(err).Int64("studentID", student.ID).Msg("Error executing update student query")
			return fmt.Errorf("%w: error updating student: %v", apperrors.ErrStorageFault, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrStudentNotFound
		}

		if student.User != nil {
			return updateUser(ctx, tx, r.sb, student.User)
		}
		return nil
	})
}

// UpdateProfilePic sets or clears the stored picture path of a student
func (r *StudentRepository) UpdateProfilePic(ctx context.Context, studentID int64, path *string) error {
	sql, args, err := r.sb.Update("students").
		Set("profile_pic", path).
		Where(squirrel.Eq{"id": studentID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update profile pic SQL")
		return fmt.Errorf("failed to build update profile pic query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing update profile pic query")
		return fmt.Errorf("%w: error updating profile picture: %v", apperrors.ErrStorageFault, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// DeleteStudent deletes the student's user; the profile and its enrollments cascade
func (r *StudentRepository) DeleteStudent(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("users").
		Where("id = (SELECT user_id FROM students WHERE id = ?)", id).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete student SQL")
		return fmt.Errorf("failed to build delete student query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing delete student query")
		return fmt.Errorf("%w: error deleting student: %v", apperrors.ErrStorageFault, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// GetFaculties lists the faculties a student is enrolled with
func (r *StudentRepository) GetFaculties(ctx context.Context, studentID int64) ([]*models.Faculty, error) {
	sql, args, err := selectFaculties(r.sb).
		Join("faculty_students fs ON fs.faculty_id = f.id").
		Where(squirrel.Eq{"fs.student_id": studentID}).
		OrderBy("u.first_name ASC", "u.last_name ASC", "f.id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get student faculties SQL")
		return nil, fmt.Errorf("failed to build get student faculties query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing get student faculties query")
		return nil, fmt.Errorf("%w: error retrieving faculties: %v", apperrors.ErrStorageFault, err)
	}

	faculties, err := collectFaculties(rows)
	if err != nil {
		logger.Error().Err(err).Msg("Error scanning faculty rows")
		return nil, fmt.Errorf("%w: error retrieving faculties: %v", apperrors.ErrStorageFault, err)
	}
	return faculties, nil
}
