package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/udaykiran8062/schoolManagement/internal/core/domain"
	"github.com/udaykiran8062/schoolManagement/internal/core/port"
	"github.com/udaykiran8062/schoolManagement/internal/repository"
)

var userColumns = []string{
	"id",
	"uuid",
	"username",
	"full_name",
	"mobile",
	"email",
	"password_hash",
	"user_type",
	"role",
	"status",
}

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new user row and returns it with generated identifiers.
func (r *UserRepository) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	stmt, args, err := r.builder.Insert("users").
		Columns(
			"uuid",
			"username",
			"full_name",
			"mobile",
			"email",
			"password_hash",
			"user_type",
			"role",
			"status",
		).
		Values(
			user.UUID,
			user.Username,
			user.FullName,
			user.Mobile,
			user.Email,
			user.PasswordHash,
			user.UserType,
			user.Role,
			user.Status,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert user sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&user.ID); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &user, nil
}

// GetByID retrieves a user by numeric identifier.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return user, nil
}

// FindByIdentifier returns every user whose username, email, or mobile
// matches the identifier, optionally narrowed by user type and id.
// Multiple rows are possible; the caller decides how to disambiguate.
func (r *UserRepository) FindByIdentifier(ctx context.Context, query port.IdentifierQuery) ([]domain.User, error) {
	builder := r.builder.
		Select(userColumns...).
		From("users").
		Where(squirrel.Or{
			squirrel.Eq{"username": query.Identifier},
			squirrel.Eq{"email": query.Identifier},
			squirrel.Eq{"mobile": query.Identifier},
		}).
		OrderBy("id ASC")

	if query.UserType != nil {
		builder = builder.Where(squirrel.Eq{"user_type": *query.UserType})
	}
	if query.ID != nil {
		builder = builder.Where(squirrel.Eq{"id": *query.ID})
	}

	stmt, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select users by identifier sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query users by identifier: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// ExistsByContact reports whether a user already registered with the
// same email, mobile, and user type combination.
func (r *UserRepository) ExistsByContact(ctx context.Context, email, mobile string, userType domain.UserType) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		From("users").
		Where(squirrel.Eq{
			"email":     email,
			"mobile":    mobile,
			"user_type": userType,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build select user by contact sql: %w", err)
	}

	var one int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("scan user by contact: %w", err)
	}

	return true, nil
}

// List returns users matching the filter, newest first.
func (r *UserRepository) List(ctx context.Context, filter port.UserFilter) ([]domain.User, error) {
	builder := r.builder.
		Select(userColumns...).
		From("users").
		OrderBy("id DESC")

	if filter.UserType != nil {
		builder = builder.Where(squirrel.Eq{"user_type": *filter.UserType})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	stmt, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.UUID,
		&user.Username,
		&user.FullName,
		&user.Mobile,
		&user.Email,
		&user.PasswordHash,
		&user.UserType,
		&user.Role,
		&user.Status,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

var _ port.UserRepository = (*UserRepository)(nil)
