package dto

import "github.com/mzajac/examflow/internal/app/models"

// CreateRoomRequest represents the request to create a room
type CreateRoomRequest struct {
	Name     string `json:"name" binding:"required,max=50" example:"A1"`
	Building string `json:"building" binding:"required,max=100" example:"Main"`
	Capacity int    `json:"capacity" binding:"required,min=1" example:"120"`
}

// RoomResponse represents a room
type RoomResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Building string `json:"building"`
	Capacity int    `json:"capacity"`
}

// CourseResponse represents a course
type CourseResponse struct {
	ID         int64  `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	LecturerID int64  `json:"lecturerId"`
}

// GroupResponse represents a student group
type GroupResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	StarostaID int64  `json:"starostaId"`
}

// FromRoom converts a models.Room to a RoomResponse
func FromRoom(room *models.Room) RoomResponse {
	if room == nil {
		return RoomResponse{}
	}
	return RoomResponse{ID: room.ID, Name: room.Name, Building: room.Building, Capacity: room.Capacity}
}

// FromRooms converts a slice of rooms
func FromRooms(rooms []*models.Room) []RoomResponse {
	out := make([]RoomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, FromRoom(r))
	}
	return out
}

// FromCourse converts a models.Course to a CourseResponse
func FromCourse(course *models.Course) CourseResponse {
	if course == nil {
		return CourseResponse{}
	}
	return CourseResponse{ID: course.ID, Code: course.Code, Name: course.Name, LecturerID: course.LecturerID}
}

// FromCourses converts a slice of courses
func FromCourses(courses []*models.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, FromCourse(c))
	}
	return out
}

// FromGroup converts a models.StudentGroup to a GroupResponse
func FromGroup(group *models.StudentGroup) GroupResponse {
	if group == nil {
		return GroupResponse{}
	}
	return GroupResponse{ID: group.ID, Name: group.Name, StarostaID: group.StarostaID}
}

// FromGroups converts a slice of student groups
func FromGroups(groups []*models.StudentGroup) []GroupResponse {
	out := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, FromGroup(g))
	}
	return out
}
