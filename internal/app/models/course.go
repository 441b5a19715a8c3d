package models

// Course defines the course model based on the 'courses' table.
// LecturerID references the user responsible for proposing and accepting
// exam terms on the teaching side.
type Course struct {
	ID         int64  `json:"id" db:"id"`
	Code       string `json:"code" db:"code" example:"INF-301"`
	Name       string `json:"name" db:"name" example:"Operating Systems"`
	LecturerID int64  `json:"lecturerId" db:"lecturer_id"`
}

// StudentGroup defines a student group based on the 'student_groups' table.
// StarostaID references the elected representative who proposes and accepts
// exam terms on behalf of the group.
type StudentGroup struct {
	ID         int64  `json:"id" db:"id"`
	Name       string `json:"name" db:"name" example:"INF-3-1"`
	StarostaID int64  `json:"starostaId" db:"starosta_id"`
}
