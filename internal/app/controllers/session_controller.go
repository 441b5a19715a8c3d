package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mzajac/examflow/internal/app/models"
	"github.com/mzajac/examflow/internal/app/models/dto"
	"github.com/mzajac/examflow/internal/app/services"
	"github.com/mzajac/examflow/internal/middleware"
	"github.com/mzajac/examflow/internal/pkg/apperrors"
	"github.com/mzajac/examflow/internal/pkg/helpers"
)

// SessionController handles exam session operations
type SessionController struct {
	sessionService services.SessionService
}

// NewSessionController creates a new SessionController
func NewSessionController(sessionService services.SessionService) *SessionController {
	return &SessionController{sessionService: sessionService}
}

// CreateSession handles creating an exam session
// @Summary Create an exam session
// @Description Defines a bounded calendar window that owns exam terms; dean's office only
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body dto.CreateSessionRequest true "Session window"
// @Success 201 {object} dto.APIResponse{data=dto.SessionResponse} "Session created"
// @Failure 409 {object} dto.ErrorResponse "Session overlaps an existing session"
// @Router /sessions [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidCredentials)
		return
	}

	var req dto.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError(err.Error()))
		return
	}

	session, err := sessionFromRequest(0, req.Name, req.AcademicYear, req.StartDate, req.EndDate)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	id, err := c.sessionService.CreateSession(ctx.Request.Context(), session, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	session.ID = id

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromExamSession(session)))
}

// UpdateSession handles updating an exam session
// @Summary Update an exam session
// @Description Changes session metadata; bounds are frozen once the session owns terms
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path int true "Session ID"
// @Param request body dto.UpdateSessionRequest true "Session window"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Session updated"
// @Failure 409 {object} dto.ErrorResponse "Session bounds are frozen"
// @Router /sessions/{id} [put]
func (c *SessionController) UpdateSession(ctx *gin.Context) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidCredentials)
		return
	}

	sessionID, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError(err.Error()))
		return
	}

	session, err := sessionFromRequest(sessionID, req.Name, req.AcademicYear, req.StartDate, req.EndDate)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.sessionService.UpdateSession(ctx.Request.Context(), session, actor); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromExamSession(session)))
}

// GetSession handles retrieving a single exam session
// @Summary Get an exam session
// @Tags sessions
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse} "Session retrieved"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	sessionID, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	session, err := c.sessionService.GetSessionByID(ctx.Request.Context(), sessionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromExamSession(session)))
}

// ListSessions handles listing all exam sessions
// @Summary List exam sessions
// @Tags sessions
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.SessionListResponse} "Sessions retrieved"
// @Router /sessions [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	sessions, err := c.sessionService.GetAllSessions(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.SessionListResponse{
		Sessions: dto.FromExamSessions(sessions),
	}))
}

func sessionFromRequest(id int64, name, academicYear, startDate, endDate string) (*models.ExamSession, error) {
	start, err := helpers.ParseDate(startDate)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	end, err := helpers.ParseDate(endDate)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	return &models.ExamSession{
		ID:           id,
		Name:         name,
		AcademicYear: academicYear,
		StartDate:    start,
		EndDate:      end,
	}, nil
}
