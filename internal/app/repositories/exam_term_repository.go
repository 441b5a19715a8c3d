package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mzajac/examflow/internal/app/models"
	"github.com/mzajac/examflow/internal/app/scheduling"
	"github.com/mzajac/examflow/internal/db"
	"github.com/mzajac/examflow/internal/pkg/apperrors"
	"github.com/mzajac/examflow/internal/pkg/logger"
)

// termColumns is the column list scanned into models.ExamTerm.
var termColumns = []string{
	"id", "course_id", "session_id", "group_id", "room_id", "created_by",
	"date", "start_minute", "end_minute", "term_type", "status",
	"rejection_reason", "version", "created_at", "updated_at",
}

// ExamTermRepository handles exam term database operations
type ExamTermRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewExamTermRepository creates a new ExamTermRepository
func NewExamTermRepository(pool *pgxpool.Pool) *ExamTermRepository {
	return &ExamTermRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanTerm(row pgx.Row) (*models.ExamTerm, error) {
	term := &models.ExamTerm{}
	err := row.Scan(
		&term.ID, &term.CourseID, &term.SessionID, &term.GroupID, &term.RoomID,
		&term.CreatedBy, &term.Date, &term.StartMinute, &term.EndMinute,
		&term.TermType, &term.Status, &term.RejectionReason, &term.Version,
		&term.CreatedAt, &term.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return term, nil
}

// Create inserts a new exam term and returns its id. Version starts at 1.
func (r *ExamTermRepository) Create(ctx context.Context, term *models.ExamTerm) (int64, error) {
	sql, args, err := r.sb.Insert("exam_terms").
		Columns("course_id", "session_id", "group_id", "room_id", "created_by",
			"date", "start_minute", "end_minute", "term_type", "status", "rejection_reason", "version").
		Values(term.CourseID, term.SessionID, term.GroupID, term.RoomID, term.CreatedBy,
			term.Date, term.StartMinute, term.EndMinute, term.TermType, term.Status, term.RejectionReason, 1).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create exam term SQL")
		return 0, fmt.Errorf("failed to build create exam term query: %w", err)
	}

	var id int64
	if err := db.QuerierFrom(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing create exam term query")
		return 0, fmt.Errorf("error creating exam term: %w", err)
	}

	return id, nil
}

// GetByID retrieves an exam term by id
func (r *ExamTermRepository) GetByID(ctx context.Context, id int64) (*models.ExamTerm, error) {
	sql, args, err := r.sb.Select(termColumns...).
		From("exam_terms").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get exam term query: %w", err)
	}

	term, err := scanTerm(db.QuerierFrom(ctx, r.db).QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTermNotFound
		}
		logger.Error().Err(err).Int64("termID", id).Msg("Error scanning exam term row")
		return nil, fmt.Errorf("error getting exam term by ID: %w", err)
	}

	return term, nil
}

// ListBySession retrieves terms within a session, optionally filtered by
// status, newest proposals first.
func (r *ExamTermRepository) ListBySession(ctx context.Context, sessionID int64, status *models.TermStatus, offset uint64, limit int) ([]*models.ExamTerm, error) {
	builder := r.sb.Select(termColumns...).
		From("exam_terms").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("date ASC", "start_minute ASC", "id ASC").
		Offset(offset).
		Limit(uint64(limit))
	if status != nil {
		builder = builder.Where(squirrel.Eq{"status": *status})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list exam terms query: %w", err)
	}

	rows, err := db.QuerierFrom(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("sessionID", sessionID).Msg("Error executing list exam terms query")
		return nil, fmt.Errorf("error querying exam terms: %w", err)
	}
	defer rows.Close()

	terms := []*models.ExamTerm{}
	for rows.Next() {
		term, err := scanTerm(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning exam term row: %w", err)
		}
		terms = append(terms, term)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exam term rows: %w", err)
	}

	return terms, nil
}

// CountBySession counts terms within a session, optionally filtered by status.
func (r *ExamTermRepository) CountBySession(ctx context.Context, sessionID int64, status *models.TermStatus) (int64, error) {
	builder := r.sb.Select("COUNT(*)").
		From("exam_terms").
		Where(squirrel.Eq{"session_id": sessionID})
	if status != nil {
		builder = builder.Where(squirrel.Eq{"status": *status})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count exam terms query: %w", err)
	}

	var count int64
	if err := db.QuerierFrom(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting exam terms: %w", err)
	}
	return count, nil
}

// ListActiveSlots returns the conflict-detection snapshots of every term in
// the session that still occupies its slot (everything but rejected terms),
// with the lecturer key joined in from the owning course.
func (r *ExamTermRepository) ListActiveSlots(ctx context.Context, sessionID int64) ([]scheduling.TermSlot, error) {
	sql, args, err := r.sb.Select(
		"t.id", "t.date", "t.start_minute", "t.end_minute",
		"t.room_id", "t.group_id", "c.lecturer_id", "t.status").
		From("exam_terms t").
		Join("courses c ON c.id = t.course_id").
		Where(squirrel.Eq{"t.session_id": sessionID}).
		Where(squirrel.NotEq{"t.status": models.StatusRejected}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build active slots query: %w", err)
	}

	rows, err := db.QuerierFrom(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("sessionID", sessionID).Msg("Error executing active slots query")
		return nil, fmt.Errorf("error querying active slots: %w", err)
	}
	defer rows.Close()

	slots := []scheduling.TermSlot{}
	for rows.Next() {
		var slot scheduling.TermSlot
		if err := rows.Scan(&slot.TermID, &slot.Date, &slot.StartMin, &slot.EndMin,
			&slot.RoomID, &slot.GroupID, &slot.LecturerID, &slot.Status); err != nil {
			return nil, fmt.Errorf("error scanning active slot row: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active slot rows: %w", err)
	}

	return slots, nil
}

// Update persists a term transition guarded by an optimistic version check.
// The row is updated only when its version still equals expectedVersion;
// otherwise the term changed concurrently and the caller should retry.
func (r *ExamTermRepository) Update(ctx context.Context, term *models.ExamTerm, expectedVersion int) error {
	sql, args, err := r.sb.Update("exam_terms").
		SetMap(map[string]interface{}{
			"room_id":          term.RoomID,
			"date":             term.Date,
			"start_minute":     term.StartMinute,
			"end_minute":       term.EndMinute,
			"status":           term.Status,
			"rejection_reason": term.RejectionReason,
			"version":          expectedVersion + 1,
			"updated_at":       squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": term.ID, "version": expectedVersion}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update exam term query: %w", err)
	}

	cmdTag, err := db.QuerierFrom(ctx, r.db).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("termID", term.ID).Msg("Error executing update exam term query")
		return fmt.Errorf("error updating exam term: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		// Distinguish a stale version from a missing row.
		if _, getErr := r.GetByID(ctx, term.ID); getErr != nil {
			return getErr
		}
		return apperrors.ErrConcurrentModification
	}

	term.Version = expectedVersion + 1
	return nil
}

// ExistsForSession reports whether any term references the session.
func (r *ExamTermRepository) ExistsForSession(ctx context.Context, sessionID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("exam_terms").
		Where(squirrel.Eq{"session_id": sessionID}).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var exists bool
	err = db.QuerierFrom(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("error checking terms for session: %w", err)
	}

	return exists, nil
}
