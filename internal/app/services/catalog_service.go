package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mzajac/examflow/internal/app/models"
	"github.com/mzajac/examflow/internal/app/repositories"
	"github.com/mzajac/examflow/internal/pkg/apperrors"
)

// CatalogService serves the reference data exam terms point at: rooms,
// courses and student groups.
type CatalogService interface {
	CreateRoom(ctx context.Context, room *models.Room, actor models.Actor) (int64, error)
	GetRoomByID(ctx context.Context, id int64) (*models.Room, error)
	GetAllRooms(ctx context.Context) ([]*models.Room, error)
	GetAllCourses(ctx context.Context) ([]*models.Course, error)
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
	GetAllGroups(ctx context.Context) ([]*models.StudentGroup, error)
	GetGroupByID(ctx context.Context, id int64) (*models.StudentGroup, error)
}

// catalogServiceImpl implements the CatalogService interface
type catalogServiceImpl struct {
	roomRepo   *repositories.RoomRepository
	courseRepo *repositories.CourseRepository
	groupRepo  *repositories.GroupRepository
}

// NewCatalogService creates a new catalog service instance
func NewCatalogService(roomRepo *repositories.RoomRepository, courseRepo *repositories.CourseRepository, groupRepo *repositories.GroupRepository) CatalogService {
	return &catalogServiceImpl{
		roomRepo:   roomRepo,
		courseRepo: courseRepo,
		groupRepo:  groupRepo,
	}
}

// CreateRoom creates a new room; dean's office only
func (s *catalogServiceImpl) CreateRoom(ctx context.Context, room *models.Room, actor models.Actor) (int64, error) {
	if actor.Role != models.RoleDeanOffice {
		return 0, apperrors.NewForbiddenError("only the dean's office can manage rooms")
	}
	if strings.TrimSpace(room.Name) == "" {
		return 0, fmt.Errorf("%w: room name cannot be empty", apperrors.ErrValidationFailed)
	}
	return s.roomRepo.Create(ctx, room)
}

// GetRoomByID retrieves a room by ID
func (s *catalogServiceImpl) GetRoomByID(ctx context.Context, id int64) (*models.Room, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid room ID", apperrors.ErrValidationFailed)
	}
	return s.roomRepo.GetByID(ctx, id)
}

// GetAllRooms retrieves all rooms
func (s *catalogServiceImpl) GetAllRooms(ctx context.Context) ([]*models.Room, error) {
	return s.roomRepo.List(ctx)
}

// GetAllCourses retrieves all courses
func (s *catalogServiceImpl) GetAllCourses(ctx context.Context) ([]*models.Course, error) {
	return s.courseRepo.List(ctx)
}

// GetCourseByID retrieves a course by ID
func (s *catalogServiceImpl) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid course ID", apperrors.ErrValidationFailed)
	}
	return s.courseRepo.GetByID(ctx, id)
}

// GetAllGroups retrieves all student groups
func (s *catalogServiceImpl) GetAllGroups(ctx context.Context) ([]*models.StudentGroup, error) {
	return s.groupRepo.List(ctx)
}

// GetGroupByID retrieves a student group by ID
func (s *catalogServiceImpl) GetGroupByID(ctx context.Context, id int64) (*models.StudentGroup, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: invalid group ID", apperrors.ErrValidationFailed)
	}
	return s.groupRepo.GetByID(ctx, id)
}
