package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mzajac/examflow/internal/app/models"
	"github.com/mzajac/examflow/internal/db"
	"github.com/mzajac/examflow/internal/pkg/apperrors"
	"github.com/mzajac/examflow/internal/pkg/logger"
)

// ExamSessionRepository handles exam session database operations
type ExamSessionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewExamSessionRepository creates a new ExamSessionRepository
func NewExamSessionRepository(pool *pgxpool.Pool) *ExamSessionRepository {
	return &ExamSessionRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new exam session after checking that its calendar window
// does not overlap an existing session.
func (r *ExamSessionRepository) Create(ctx context.Context, session *models.ExamSession) (int64, error) {
	overlaps, err := r.Overlaps(ctx, session)
	if err != nil {
		return 0, err
	}
	if overlaps {
		return 0, apperrors.ErrSessionOverlap
	}

	sql, args, err := r.sb.Insert("exam_sessions").
		Columns("name", "academic_year", "start_date", "end_date").
		Values(session.Name, session.AcademicYear, session.StartDate, session.EndDate).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create exam session SQL")
		return 0, fmt.Errorf("failed to build create exam session query: %w", err)
	}

	var id int64
	if err := db.QuerierFrom(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing create exam session query")
		return 0, fmt.Errorf("error creating exam session: %w", err)
	}

	return id, nil
}

// Overlaps reports whether any existing session's window intersects the
// given session's window. The session's own id is excluded so updates can
// re-check themselves.
func (r *ExamSessionRepository) Overlaps(ctx context.Context, session *models.ExamSession) (bool, error) {
	builder := r.sb.Select("1").
		From("exam_sessions").
		Where(squirrel.LtOrEq{"start_date": session.EndDate}).
		Where(squirrel.GtOrEq{"end_date": session.StartDate}).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1)
	if session.ID != 0 {
		builder = builder.Where(squirrel.NotEq{"id": session.ID})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build session overlap query: %w", err)
	}

	var exists bool
	err = db.QuerierFrom(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("error checking session overlap: %w", err)
	}

	return exists, nil
}

// GetByID retrieves an exam session by id
func (r *ExamSessionRepository) GetByID(ctx context.Context, id int64) (*models.ExamSession, error) {
	sql, args, err := r.sb.Select("id", "name", "academic_year", "start_date", "end_date", "created_at").
		From("exam_sessions").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get exam session query: %w", err)
	}

	session := &models.ExamSession{}
	err = db.QuerierFrom(ctx, r.db).QueryRow(ctx, sql, args...).
		Scan(&session.ID, &session.Name, &session.AcademicYear, &session.StartDate, &session.EndDate, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		logger.Error().Err(err).Int64("sessionID", id).Msg("Error scanning exam session row")
		return nil, fmt.Errorf("error getting exam session by ID: %w", err)
	}

	return session, nil
}

// List retrieves all exam sessions ordered by start date
func (r *ExamSessionRepository) List(ctx context.Context) ([]*models.ExamSession, error) {
	sql, args, err := r.sb.Select("id", "name", "academic_year", "start_date", "end_date", "created_at").
		From("exam_sessions").
		OrderBy("start_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list exam sessions query: %w", err)
	}

	rows, err := db.QuerierFrom(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list exam sessions query")
		return nil, fmt.Errorf("error querying exam sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*models.ExamSession{}
	for rows.Next() {
		session := &models.ExamSession{}
		if err := rows.Scan(&session.ID, &session.Name, &session.AcademicYear,
			&session.StartDate, &session.EndDate, &session.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning exam session row: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exam session rows: %w", err)
	}

	return sessions, nil
}

// Update persists session metadata and bounds. Overlap with other sessions
// is re-checked; bound immutability is enforced by the service layer.
func (r *ExamSessionRepository) Update(ctx context.Context, session *models.ExamSession) error {
	overlaps, err := r.Overlaps(ctx, session)
	if err != nil {
		return err
	}
	if overlaps {
		return apperrors.ErrSessionOverlap
	}

	sql, args, err := r.sb.Update("exam_sessions").
		SetMap(map[string]interface{}{
			"name":          session.Name,
			"academic_year": session.AcademicYear,
			"start_date":    session.StartDate,
			"end_date":      session.EndDate,
		}).
		Where(squirrel.Eq{"id": session.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update exam session query: %w", err)
	}

	cmdTag, err := db.QuerierFrom(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("sessionID", session.ID).Msg("Error executing update exam session query")
		return fmt.Errorf("error updating exam session: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}

	return nil
}

// LockForScheduling takes a row-level lock on the session for the duration
// of the surrounding transaction, serializing conflict detection across
// concurrent operations on the same session. Must run inside a transaction.
func (r *ExamSessionRepository) LockForScheduling(ctx context.Context, id int64) error {
	var lockedID int64
	err := db.QuerierFrom(ctx, r.db).
		QueryRow(ctx, "SELECT id FROM exam_sessions WHERE id = $1 FOR UPDATE", id).
		Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrSessionNotFound
		}
		return fmt.Errorf("error locking exam session: %w", err)
	}
	return nil
}
