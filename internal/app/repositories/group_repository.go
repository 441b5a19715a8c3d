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
	"github.com/mzajac/examflow/internal/pkg/dberrors"
)

// GroupRepository handles student group database operations
type GroupRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new student group and returns its id
func (r *GroupRepository) Create(ctx context.Context, group *models.StudentGroup) (int64, error) {
	sql, args, err := r.sb.Insert("student_groups").
		Columns("name", "starosta_id").
		Values(group.Name, group.StarostaID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create group query: %w", err)
	}

	var id int64
	if err := db.QuerierFrom(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrResourceAlreadyExists
		}
		return 0, fmt.Errorf("error creating student group: %w", err)
	}

	return id, nil
}

// GetByID retrieves a student group by id
func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*models.StudentGroup, error) {
	sql, args, err := r.sb.Select("id", "name", "starosta_id").
		From("student_groups").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get group query: %w", err)
	}

	group := &models.StudentGroup{}
	err = db.QuerierFrom(ctx, r.db).QueryRow(ctx, sql, args...).
		Scan(&group.ID, &group.Name, &group.StarostaID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, fmt.Errorf("error getting student group by ID: %w", err)
	}

	return group, nil
}

// List retrieves all student groups ordered by name
func (r *GroupRepository) List(ctx context.Context) ([]*models.StudentGroup, error) {
	sql, args, err := r.sb.Select("id", "name", "starosta_id").
		From("student_groups").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list groups query: %w", err)
	}

	rows, err := db.QuerierFrom(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying student groups: %w", err)
	}
	defer rows.Close()

	groups := []*models.StudentGroup{}
	for rows.Next() {
		group := &models.StudentGroup{}
		if err := rows.Scan(&group.ID, &group.Name, &group.StarostaID); err != nil {
			return nil, fmt.Errorf("error scanning group row: %w", err)
		}
		groups = append(groups, group)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}

	return groups, nil
}
