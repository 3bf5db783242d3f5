package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so helpers can run
// standalone or as part of a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository    *UserRepository
	FacultyRepository *FacultyRepository
	StudentRepository *StudentRepository
	TokenRepository   *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:    NewUserRepository(db),
		FacultyRepository: NewFacultyRepository(db),
		StudentRepository: NewStudentRepository(db),
		TokenRepository:   NewTokenRepository(db),
	}
}
