package seed

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	appModels "github.com/mzajac/examflow/internal/app/models"
	appRepos "github.com/mzajac/examflow/internal/app/repositories"
	"github.com/mzajac/examflow/internal/pkg/apperrors"
)

// CreateDefaultData seeds the accounts, catalog entries and session window a
// fresh deployment needs to exercise the scheduling flow. Every step is
// idempotent; already-exists errors are skipped.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)
	roomRepo := appRepos.NewRoomRepository(dbPool)
	courseRepo := appRepos.NewCourseRepository(dbPool)
	groupRepo := appRepos.NewGroupRepository(dbPool)
	sessionRepo := appRepos.NewExamSessionRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	deanID := ensureUser(ctx, userRepo, lgr, &finalErr, &appModels.User{
		Email:     "dean@examflow.edu.pl",
		FirstName: "Dean's",
		LastName:  "Office",
		RoleType:  appModels.RoleDeanOffice,
	}, "Dean123!")

	lecturerID := ensureUser(ctx, userRepo, lgr, &finalErr, &appModels.User{
		Email:     "j.kowalski@examflow.edu.pl",
		FirstName: "Jan",
		LastName:  "Kowalski",
		RoleType:  appModels.RoleLecturer,
	}, "Lecturer123!")

	starostaID := ensureUser(ctx, userRepo, lgr, &finalErr, &appModels.User{
		Email:     "a.nowak@examflow.edu.pl",
		FirstName: "Anna",
		LastName:  "Nowak",
		RoleType:  appModels.RoleStarosta,
	}, "Starosta123!")

	for _, room := range []*appModels.Room{
		{Name: "A1", Building: "Main", Capacity: 120},
		{Name: "B204", Building: "Informatics", Capacity: 40},
	} {
		if _, err := roomRepo.Create(ctx, room); err != nil && !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			lgr.Error().Err(err).Str("room", room.Name).Msg("Error creating default room")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if lecturerID > 0 {
		course := &appModels.Course{Code: "INF-301", Name: "Operating Systems", LecturerID: lecturerID}
		if _, err := courseRepo.Create(ctx, course); err != nil && !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			lgr.Error().Err(err).Str("course", course.Code).Msg("Error creating default course")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if starostaID > 0 {
		group := &appModels.StudentGroup{Name: "INF-3-1", StarostaID: starostaID}
		if _, err := groupRepo.Create(ctx, group); err != nil && !errors.Is(err, apperrors.ErrResourceAlreadyExists) {
			lgr.Error().Err(err).Str("group", group.Name).Msg("Error creating default group")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if deanID > 0 {
		now := time.Now()
		session := &appModels.ExamSession{
			Name:         "Summer Session",
			AcademicYear: academicYear(now),
			StartDate:    time.Date(now.Year(), time.June, 10, 0, 0, 0, 0, time.UTC),
			EndDate:      time.Date(now.Year(), time.June, 30, 0, 0, 0, 0, time.UTC),
		}
		if _, err := sessionRepo.Create(ctx, session); err != nil && !errors.Is(err, apperrors.ErrSessionOverlap) {
			lgr.Error().Err(err).Str("session", session.Name).Msg("Error creating default session")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

// ensureUser creates the account when its email is free and resolves the
// existing id otherwise. Returns 0 only on a hard failure.
func ensureUser(ctx context.Context, userRepo *appRepos.UserRepository, lgr zerolog.Logger, finalErr *error, user *appModels.User, password string) int64 {
	existing, err := userRepo.GetByEmail(ctx, user.Email)
	if err == nil {
		return existing.ID
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		lgr.Error().Err(err).Str("email", user.Email).Msg("Error checking default user")
		*finalErr = errors.Join(*finalErr, err)
		return 0
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		lgr.Error().Err(err).Str("email", user.Email).Msg("Error hashing default user password")
		*finalErr = errors.Join(*finalErr, err)
		return 0
	}

	user.Password = string(hashed)
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	id, err := userRepo.Create(ctx, user)
	if err != nil {
		lgr.Error().Err(err).Str("email", user.Email).Msg("Error creating default user")
		*finalErr = errors.Join(*finalErr, err)
		return 0
	}
	lgr.Info().Int64("userID", id).Str("role", string(user.RoleType)).Msg("Default user created")
	return id
}

// academicYear renders "2024/2025" style labels; the academic year rolls
// over in October.
func academicYear(now time.Time) string {
	year := now.Year()
	if now.Month() < time.October {
		year--
	}
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006") + "/" +
		time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006")
}
