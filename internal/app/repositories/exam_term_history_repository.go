package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mzajac/examflow/internal/app/models"
	"github.com/mzajac/examflow/internal/db"
	"github.com/mzajac/examflow/internal/pkg/logger"
)

// ExamTermHistoryRepository handles the append-only audit trail of term
// transitions. There is deliberately no update or delete: history records
// are immutable once written.
type ExamTermHistoryRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewExamTermHistoryRepository creates a new ExamTermHistoryRepository
func NewExamTermHistoryRepository(pool *pgxpool.Pool) *ExamTermHistoryRepository {
	return &ExamTermHistoryRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append inserts one audit record and returns its id.
func (r *ExamTermHistoryRepository) Append(ctx context.Context, entry *models.ExamTermHistory) (int64, error) {
	sql, args, err := r.sb.Insert("exam_term_history").
		Columns("exam_term_id", "changed_by", "changed_at", "previous_status", "new_status",
			"previous_date", "new_date", "previous_start", "new_start", "previous_end", "new_end", "comment").
		Values(entry.ExamTermID, entry.ChangedBy, entry.ChangedAt, entry.PreviousStatus, entry.NewStatus,
			entry.PreviousDate, entry.NewDate, entry.PreviousStart, entry.NewStart, entry.PreviousEnd, entry.NewEnd, entry.Comment).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building append history SQL")
		return 0, fmt.Errorf("failed to build append history query: %w", err)
	}

	var id int64
	if err := db.QuerierFrom(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Int64("termID", entry.ExamTermID).Msg("Error executing append history query")
		return 0, fmt.Errorf("error appending history record: %w", err)
	}

	return id, nil
}

// ListByTerm retrieves the audit trail of a term in chronological insertion
// order for audit display.
func (r *ExamTermHistoryRepository) ListByTerm(ctx context.Context, termID int64) ([]*models.ExamTermHistory, error) {
	sql, args, err := r.sb.Select("id", "exam_term_id", "changed_by", "changed_at", "previous_status", "new_status",
		"previous_date", "new_date", "previous_start", "new_start", "previous_end", "new_end", "comment").
		From("exam_term_history").
		Where(squirrel.Eq{"exam_term_id": termID}).
		OrderBy("changed_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list history query: %w", err)
	}

	rows, err := db.QuerierFrom(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("termID", termID).Msg("Error executing list history query")
		return nil, fmt.Errorf("error querying history records: %w", err)
	}
	defer rows.Close()

	entries := []*models.ExamTermHistory{}
	for rows.Next() {
		entry := &models.ExamTermHistory{}
		if err := rows.Scan(&entry.ID, &entry.ExamTermID, &entry.ChangedBy, &entry.ChangedAt,
			&entry.PreviousStatus, &entry.NewStatus,
			&entry.PreviousDate, &entry.NewDate, &entry.PreviousStart, &entry.NewStart,
			&entry.PreviousEnd, &entry.NewEnd, &entry.Comment); err != nil {
			return nil, fmt.Errorf("error scanning history row: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}

	return entries, nil
}
