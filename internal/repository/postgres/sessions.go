package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/udaykiran8062/schoolManagement/internal/core/domain"
	"github.com/udaykiran8062/schoolManagement/internal/core/port"
	"github.com/udaykiran8062/schoolManagement/internal/repository"
)

var sessionColumns = []string{
	"id",
	"user_id",
	"access_token",
	"refresh_token",
	"ip_address",
	"device_info",
	"expires_at",
	"created_at",
}

// SessionRepository implements port.SessionRepository backed by the
// sessions table, which holds at most one row per user.
type SessionRepository struct {
	db      pgBeginner
	builder squirrel.StatementBuilderType
}

// NewSessionRepository constructs a PostgreSQL-backed session registry.
func NewSessionRepository(db pgBeginner) *SessionRepository {
	return &SessionRepository{
		db:      db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Replace deletes every session row for the user and inserts the new
// one inside a single transaction, so concurrent logins for the same
// user can never leave two live rows behind.
func (r *SessionRepository) Replace(ctx context.Context, session domain.Session) (*domain.Session, error) {
	deleteStmt, deleteArgs, err := r.builder.Delete("sessions").
		Where(squirrel.Eq{"user_id": session.UserID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete sessions sql: %w", err)
	}

	insertStmt, insertArgs, err := r.builder.Insert("sessions").
		Columns(
			"user_id",
			"access_token",
			"refresh_token",
			"ip_address",
			"device_info",
			"expires_at",
			"created_at",
		).
		Values(
			session.UserID,
			session.AccessToken,
			session.RefreshToken,
			session.IP,
			session.Device,
			session.ExpiresAt,
			session.CreatedAt,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert session sql: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin session replace: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, deleteStmt, deleteArgs...); err != nil {
		return nil, fmt.Errorf("delete prior sessions: %w", err)
	}

	if err := tx.QueryRow(ctx, insertStmt, insertArgs...).Scan(&session.ID); err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit session replace: %w", err)
	}

	return &session, nil
}

// GetByRefreshToken retrieves the session owning the refresh token.
func (r *SessionRepository) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	stmt, args, err := r.builder.
		Select(sessionColumns...).
		From("sessions").
		Where(squirrel.Eq{"refresh_token": refreshToken}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select session sql: %w", err)
	}

	return r.scanOne(ctx, stmt, args)
}

// GetByAccessToken retrieves the session owning the access token.
func (r *SessionRepository) GetByAccessToken(ctx context.Context, accessToken string) (*domain.Session, error) {
	stmt, args, err := r.builder.
		Select(sessionColumns...).
		From("sessions").
		Where(squirrel.Eq{"access_token": accessToken}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select session by access token sql: %w", err)
	}

	return r.scanOne(ctx, stmt, args)
}

// GetByTokens retrieves the session matching both the access and the
// refresh token, confirming the presented pair is still live.
func (r *SessionRepository) GetByTokens(ctx context.Context, accessToken, refreshToken string) (*domain.Session, error) {
	stmt, args, err := r.builder.
		Select(sessionColumns...).
		From("sessions").
		Where(squirrel.Eq{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select session by tokens sql: %w", err)
	}

	return r.scanOne(ctx, stmt, args)
}

// DeleteByRefreshToken removes the matching session row. Removing an
// already absent row is treated as success.
func (r *SessionRepository) DeleteByRefreshToken(ctx context.Context, refreshToken string) error {
	stmt, args, err := r.builder.Delete("sessions").
		Where(squirrel.Eq{"refresh_token": refreshToken}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete session sql: %w", err)
	}

	if _, err := r.db.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// UpdateAccessToken replaces the access token on an existing session row.
func (r *SessionRepository) UpdateAccessToken(ctx context.Context, sessionID int64, accessToken string, expiresAt time.Time) error {
	stmt, args, err := r.builder.Update("sessions").
		Set("access_token", accessToken).
		Set("expires_at", expiresAt).
		Where(squirrel.Eq{"id": sessionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update session sql: %w", err)
	}

	ct, err := r.db.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update session access token: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *SessionRepository) scanOne(ctx context.Context, stmt string, args []any) (*domain.Session, error) {
	row := r.db.QueryRow(ctx, stmt, args...)

	var session domain.Session
	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.AccessToken,
		&session.RefreshToken,
		&session.IP,
		&session.Device,
		&session.ExpiresAt,
		&session.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	return &session, nil
}

var _ port.SessionRepository = (*SessionRepository)(nil)
