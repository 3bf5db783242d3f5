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

// IFacultyRepository defines the interface for faculty database operations
type IFacultyRepository interface {
	CreateFaculty(ctx context.Context, faculty *models.Faculty) (int64, error)
	GetFacultyByID(ctx context.Context, id int64) (*models.Faculty, error)
	GetFacultyByUserID(ctx context.Context, userID int64) (*models.Faculty, error)
	GetAllFaculties(ctx context.Context) ([]*models.Faculty, error)
	// UpdateFaculty saves the profile fields and, when faculty.User is set, its identity fields
	UpdateFaculty(ctx context.Context, faculty *models.Faculty) error
	// DeleteFaculty removes the profile together with its user
	DeleteFaculty(ctx context.Context, id int64) error

	// AddStudent links a student; adding an existing link is a no-op
	AddStudent(ctx context.Context, facultyID, studentID int64) error
	GetStudents(ctx context.Context, facultyID int64) ([]*models.Student, error)
}

var facultyColumns = []string{"f.id", "f.user_id", "f.subject", "f.contact_number", "f.address"}

// FacultyRepository handles faculty database operations
type FacultyRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewFacultyRepository creates a new FacultyRepository
func NewFacultyRepository(db *pgxpool.Pool) *FacultyRepository {
	return &FacultyRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// selectFaculties starts a faculty query joined with its user
func selectFaculties(sb squirrel.StatementBuilderType) squirrel.SelectBuilder {
	return sb.Select(append(append([]string{}, facultyColumns...), userColumns...)...).
		From("faculties f").
		Join("users u ON u.id = f.user_id")
}

func scanFaculty(row pgx.Row) (*models.Faculty, error) {
	f := &models.Faculty{User: &models.User{}}
	u := f.User
	err := row.Scan(&f.ID, &f.UserID, &f.Subject, &f.ContactNumber, &f.Address,
		&u.ID, &u.Username, &u.Email, &u.Password, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func collectFaculties(rows pgx.Rows) ([]*models.Faculty, error) {
	defer rows.Close()

	faculties := make([]*models.Faculty, 0)
	for rows.Next() {
		f, err := scanFaculty(rows)
		if err != nil {
			return nil, err
		}
		faculties = append(faculties, f)
	}
	return faculties, rows.Err()
}

// CreateFaculty creates a new faculty profile for an existing user
func (r *FacultyRepository) CreateFaculty(ctx context.Context, faculty *models.Faculty) (int64, error) {
	sql, args, err := r.sb.Insert("faculties").
		Columns("user_id", "subject", "contact_number", "address").
		Values(faculty.UserID, faculty.Subject, faculty.ContactNumber, faculty.Address).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create faculty SQL")
		return 0, fmt.Errorf("failed to build create faculty query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "faculties_user_id_key") {
			return 0, apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists, "user already has a faculty profile")
		}
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", faculty.UserID).Msg("Error executing create faculty query")
		return 0, fmt.Errorf("%w: error creating faculty: %v", apperrors.ErrStorageFault, err)
	}

	faculty.ID = id
	return id, nil
}

func (r *FacultyRepository) getFacultyWhere(ctx context.Context, pred squirrel.Sqlizer) (*models.Faculty, error) {
	sql, args, err := selectFaculties(r.sb).Where(pred).Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get faculty SQL")
		return nil, fmt.Errorf("failed to build get faculty query: %w", err)
	}

	f, err := scanFaculty(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrFacultyNotFound
		}
		logger.Error().Err(err).Msg("Error scanning faculty row")
		return nil, fmt.Errorf("%w: error retrieving faculty: %v", apperrors.ErrStorageFault, err)
	}
	return f, nil
}

// GetFacultyByID retrieves a faculty by ID
func (r *FacultyRepository) GetFacultyByID(ctx context.Context, id int64) (*models.Faculty, error) {
	return r.getFacultyWhere(ctx, squirrel.Eq{"f.id": id})
}

// GetFacultyByUserID retrieves the faculty profile of a user
func (r *FacultyRepository) GetFacultyByUserID(ctx context.Context, userID int64) (*models.Faculty, error) {
	return r.getFacultyWhere(ctx, squirrel.Eq{"f.user_id": userID})
}

// GetAllFaculties retrieves all faculties
func (r *FacultyRepository) GetAllFaculties(ctx context.Context) ([]*models.Faculty, error) {
	sql, args, err := selectFaculties(r.sb).OrderBy("f.id ASC").ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get all faculties SQL")
		return nil, fmt.Errorf("failed to build get all faculties query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get all faculties query")
		return nil, fmt.Errorf("%w: error retrieving faculties: %v", apperrors.ErrStorageFault, err)
	}

	faculties, err := collectFaculties(rows)
	if err != nil {
		logger.Error().Err(err).Msg("Error scanning faculty rows")
		return nil, fmt.Errorf("%w: error retrieving faculties: %v", apperrors.ErrStorageFault, err)
	}
	return faculties, nil
}

// UpdateFaculty updates a faculty and its user in one transaction
func (r *FacultyRepository) UpdateFaculty(ctx context.Context, faculty *models.Faculty) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Update("faculties").
			Set("subject", faculty.Subject).
			Set("contact_number", faculty.ContactNumber).
			Set("address", faculty.Address).
			Where(squirrel.Eq{"id": faculty.ID}).
			ToSql()
		if err != nil {
			logger.Error().Err(err).Msg("Error building update faculty SQL")
			return fmt.Errorf("failed to build update faculty query: %w", err)
		}

		cmdTag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			logger.Error().Err(err).Int64("facultyID", faculty.ID).Msg("Error executing update faculty query")
			return fmt.Errorf("%w: error updating faculty: %v", apperrors.ErrStorageFault, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrFacultyNotFound
		}

		if faculty.User != nil {
			return updateUser(ctx, tx, r.sb, faculty.User)
		}
		return nil
	})
}

// DeleteFaculty deletes the faculty's user; the profile and its enrollments cascade
func (r *FacultyRepository) DeleteFaculty(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("users").
		Where("id = (SELECT user_id FROM faculties WHERE id = ?)", id).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete faculty SQL")
		return fmt.Errorf("failed to build delete faculty query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("facultyID", id).Msg("Error executing delete faculty query")
		return fmt.Errorf("%w: error deleting faculty: %v", apperrors.ErrStorageFault, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrFacultyNotFound
	}
	return nil
}

// AddStudent links a student to a faculty. The join's primary key turns a
// repeated link into a no-op.
func (r *FacultyRepository) AddStudent(ctx context.Context, facultyID, studentID int64) error {
	sql, args, err := r.sb.Insert("faculty_students").
		Columns("faculty_id", "student_id").
		Values(facultyID, studentID).
		Suffix("ON CONFLICT (faculty_id, student_id) DO NOTHING").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building add student SQL")
		return fmt.Errorf("failed to build add student query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("facultyID", facultyID).Int64("studentID", studentID).Msg("Error executing add student query")
		return fmt.Errorf("%w: error adding student: %v", apperrors.ErrStorageFault, err)
	}
	return nil
}

// GetStudents lists the students enrolled with a faculty, ordered by name
func (r *FacultyRepository) GetStudents(ctx context.Context, facultyID int64) ([]*models.Student, error) {
	sql, args, err := selectStudents(r.sb).
		Join("faculty_students fs ON fs.student_id = s.id").
		Where(squirrel.Eq{"fs.faculty_id": facultyID}).
		OrderBy(studentOrder...).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get faculty students SQL")
		return nil, fmt.Errorf("failed to build get faculty students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("facultyID", facultyID).Msg("Error executing get faculty students query")
		return nil, fmt.Errorf("%w: error retrieving students: %v", apperrors.ErrStorageFault, err)
	}

	students, err := collectStudents(rows)
	if err != nil {
		logger.Error().Err(err).Msg("Error scanning student rows")
		return nil, fmt.Errorf("%w: error retrieving students: %v", apperrors.ErrStorageFault, err)
	}
	return students, nil
}
