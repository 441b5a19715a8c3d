package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mzajac/examflow/internal/app/models"
	"github.com/mzajac/examflow/internal/pkg/apperrors"
	"github.com/mzajac/examflow/internal/pkg/logger"
)

// SessionCatalog is the persistence surface for exam sessions.
type SessionCatalog interface {
	Create(ctx context.Context, session *models.ExamSession) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ExamSession, error)
	List(ctx context.Context) ([]*models.ExamSession, error)
	Update(ctx context.Context, session *models.ExamSession) error
}

// TermPresence reports whether a session already owns terms.
type TermPresence interface {
	ExistsForSession(ctx context.Context, sessionID int64) (bool, error)
}

// SessionService defines the interface for exam session operations
type SessionService interface {
	CreateSession(ctx context.Context, session *models.ExamSession, actor models.Actor) (int64, error)
	UpdateSession(ctx context.Context, session *models.ExamSession, actor models.Actor) error
	GetSessionByID(ctx context.Context, id int64) (*models.ExamSession, error)
	GetAllSessions(ctx context.Context) ([]*models.ExamSession, error)
}

// sessionServiceImpl implements the SessionService interface
type sessionServiceImpl struct {
	sessions SessionCatalog
	terms    TermPresence
}

// NewSessionService creates a new session service instance
func NewSessionService(sessions SessionCatalog, terms TermPresence) SessionService {
	return &sessionServiceImpl{sessions: sessions, terms: terms}
}

// validateSession validates session data before database operations
func (s *sessionServiceImpl) validateSession(session *models.ExamSession) error {
	if session == nil {
		return fmt.Errorf("%w: session is nil", apperrors.ErrValidationFailed)
	}
	if strings.TrimSpace(session.Name) == "" {
		return fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidationFailed)
	}
	if session.EndDate.Before(session.StartDate) {
		return fmt.Errorf("%w: end date cannot be before start date", apperrors.ErrValidationFailed)
	}
	return nil
}

// CreateSession creates a new exam session. Only the dean's office defines
// session windows; overlap with an existing session is refused.
func (s *sessionServiceImpl) CreateSession(ctx context.Context, session *models.ExamSession, actor models.Actor) (int64, error) {
	if actor.Role != models.RoleDeanOffice {
		return 0, apperrors.NewForbiddenError("only the dean's office can create exam sessions")
	}
	if err := s.validateSession(session); err != nil {
		return 0, err
	}

	id, err := s.sessions.Create(ctx, session)
	if err != nil {
		return 0, err
	}

	logger.Info().Int64("sessionID", id).Str("name", session.Name).Msg("Exam session created")
	return id, nil
}

// UpdateSession changes a session's metadata and bounds. Bounds are frozen
// once the session owns terms that depend on them.
func (s *sessionServiceImpl) UpdateSession(ctx context.Context, session *models.ExamSession, actor models.Actor) error {
	if actor.Role != models.RoleDeanOffice {
		return apperrors.NewForbiddenError("only the dean's office can update exam sessions")
	}
	if err := s.validateSession(session); err != nil {
		return err
	}

	existing, err := s.sessions.GetByID(ctx, session.ID)
	if err != nil {
		return err
	}

	boundsChanged := !existing.StartDate.Equal(session.StartDate) || !existing.EndDate.Equal(session.EndDate)
	if boundsChanged {
		hasTerms, err := s.terms.ExistsForSession(ctx, session.ID)
		if err != nil {
			return err
		}
		if hasTerms {
			return apperrors.ErrSessionImmutable
		}
	}

	return s.sessions.Update(ctx, session)
}

// GetSessionByID retrieves an exam session by ID
func (s *sessionServiceImpl) GetSessionByID(ctx context.Context, id int64) (*models.ExamSession, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid session ID", apperrors.ErrValidationFailed)
	}
	return s.sessions.GetByID(ctx, id)
}

// GetAllSessions retrieves all exam sessions
func (s *sessionServiceImpl) GetAllSessions(ctx context.Context) ([]*models.ExamSession, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving sessions: %w", err)
	}
	return sessions, nil
}
