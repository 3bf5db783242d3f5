package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/collegeapi/internal/app/models"
	"github.com/yigit/collegeapi/internal/pkg/apperrors"
	"github.com/yigit/collegeapi/internal/pkg/dberrors"
	"github.com/yigit/collegeapi/internal/pkg/logger"
)

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	CreateUser(ctx context.Context, user *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error

	// ResolveRole reports which profile, if any, is linked to the user
	ResolveRole(ctx context.Context, userID int64) (models.Role, error)
}

var userColumns = []string{"u.id", "u.username", "u.email", "u.password", "u.first_name", "u.last_name", "u.created_at", "u.updated_at"}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// scanUser reads userColumns, in order, from row
func scanUser(row pgx.Row, user *models.User) error {
	return row.Scan(&user.ID, &user.Username, &user.Email, &user.Password,
		&user.FirstName, &user.LastName, &user.CreatedAt, &user.UpdatedAt)
}

// CreateUser creates a new user. A taken username yields apperrors.ErrUsernameTaken.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	now := time.Now()
	sql, args, err := r.sb.Insert("users").
		Columns("username", "email", "password", "first_name", "last_name", "created_at", "updated_at").
		Values(user.Username, user.Email, user.Password, user.FirstName, user.LastName, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return 0, fmt.Errorf("failed to build create user query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "users_username_key") {
			return 0, apperrors.ErrUsernameTaken
		}
		logger.Error().Err(err).Str("username", user.Username).Msg("Error executing create user query")
		return 0, fmt.Errorf("%w: error creating user: %v", apperrors.ErrStorageFault, err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return id, nil
}

func (r *UserRepository) getUserWhere(ctx context.Context, pred squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).
		From("users u").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get user SQL")
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user := &models.User{}
	if err := scanUser(r.db.QueryRow(ctx, sql, args...), user); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("%w: error retrieving user: %v", apperrors.ErrStorageFault, err)
	}
	return user, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"u.id": id})
}

// GetUserByUsername retrieves a user by username
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUserWhere(ctx, squirrel.Eq{"u.username": username})
}

// UpdateUser updates the editable identity fields of a user
func (r *UserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return updateUser(ctx, r.db, r.sb, user)
}

func updateUser(ctx context.Context, db querier, sb squirrel.StatementBuilderType, user *models.User) error {
	user.UpdatedAt = time.Now()
	sql, args, err := sb.Update("users").
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("email", user.Email).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update user SQL")
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	cmdTag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", user.ID).Msg("Error executing update user query")
		return fmt.Errorf("%w: error updating user: %v", apperrors.ErrStorageFault, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// DeleteUser deletes a user; linked profiles and tokens go with it (ON DELETE CASCADE)
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete user SQL")
		return fmt.Errorf("failed to build delete user query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error executing delete user query")
		return fmt.Errorf("%w: error deleting user: %v", apperrors.ErrStorageFault, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// ResolveRole looks up the faculty and student profiles of a user. A faculty
// profile wins when, against the schema's intent, both exist.
func (r *UserRepository) ResolveRole(ctx context.Context, userID int64) (models.Role, error) {
	sql, args, err := r.sb.Select("f.id", "s.id").
		From("users u").
		LeftJoin("faculties f ON f.user_id = u.id").
		LeftJoin("students s ON s.user_id = u.id").
		Where(squirrel.Eq{"u.id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building resolve role SQL")
		return models.NoRole(), fmt.Errorf("failed to build resolve role query: %w", err)
	}

	var facultyID, studentID *int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&facultyID, &studentID); err != nil {
		if dberrors.IsNoRows(err) {
			return models.NoRole(), apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error scanning role row")
		return models.NoRole(), fmt.Errorf("%w: error resolving role: %v", apperrors.ErrStorageFault, err)
	}

	switch {
	case facultyID != nil:
		return models.FacultyRole(*facultyID), nil
	case studentID != nil:
		return models.StudentRole(*studentID), nil
	default:
		return models.NoRole(), nil
	}
}
