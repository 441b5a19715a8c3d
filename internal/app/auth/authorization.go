package auth

import (
	"context"
	"fmt"

	"github.com/mzajac/examflow/internal/app/models"
	"github.com/mzajac/examflow/internal/app/repositories"
	"github.com/mzajac/examflow/internal/pkg/apperrors"
)

// AuthorizationService resolves the relationship proofs the scheduling
// engine relies on: whether a user is the lecturer of a course, the starosta
// of a student group, or a dean's office member. The engine receives the
// resolved capability, not the JWT or HTTP context it came from.
type AuthorizationService struct {
	userRepo   *repositories.UserRepository
	courseRepo *repositories.CourseRepository
	groupRepo  *repositories.GroupRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo *repositories.UserRepository, courseRepo *repositories.CourseRepository, groupRepo *repositories.GroupRepository) *AuthorizationService {
	return &AuthorizationService{
		userRepo:   userRepo,
		courseRepo: courseRepo,
		groupRepo:  groupRepo,
	}
}

// AssertCanActFor verifies that the actor is entitled to act on a term of
// the given course and group: the course's lecturer, the group's starosta,
// or any dean's office member. The actor's role decides which relationship
// must hold.
func (s *AuthorizationService) AssertCanActFor(ctx context.Context, actor models.Actor, courseID, groupID int64) error {
	switch actor.Role {
	case models.RoleDeanOffice:
		user, err := s.userRepo.GetByID(ctx, actor.ID)
		if err != nil {
			return err
		}
		if user.RoleType != models.RoleDeanOffice {
			return apperrors.NewForbiddenError("user is not a dean's office member")
		}
		return nil

	case models.RoleLecturer:
		course, err := s.courseRepo.GetByID(ctx, courseID)
		if err != nil {
			return err
		}
		if course.LecturerID != actor.ID {
			return apperrors.NewForbiddenError(
				fmt.Sprintf("user %d is not the lecturer of course %d", actor.ID, courseID))
		}
		return nil

	case models.RoleStarosta:
		group, err := s.groupRepo.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		if group.StarostaID != actor.ID {
			return apperrors.NewForbiddenError(
				fmt.Sprintf("user %d is not the starosta of group %d", actor.ID, groupID))
		}
		return nil
	}

	return apperrors.NewForbiddenError("unknown actor role")
}
