package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        *UserRepository
	TokenRepository       *TokenRepository
	RoomRepository        *RoomRepository
	CourseRepository      *CourseRepository
	GroupRepository       *GroupRepository
	ExamSessionRepository *ExamSessionRepository
	ExamTermRepository    *ExamTermRepository
	HistoryRepository     *ExamTermHistoryRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(db),
		TokenRepository:       NewTokenRepository(db),
		RoomRepository:        NewRoomRepository(db),
		CourseRepository:      NewCourseRepository(db),
		GroupRepository:       NewGroupRepository(db),
		ExamSessionRepository: NewExamSessionRepository(db),
		ExamTermRepository:    NewExamTermRepository(db),
		HistoryRepository:     NewExamTermHistoryRepository(db),
	}
}
