package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mzajac/examflow/internal/app/models"
	"github.com/mzajac/examflow/internal/app/models/dto"
	"github.com/mzajac/examflow/internal/app/services"
	"github.com/mzajac/examflow/internal/middleware"
	"github.com/mzajac/examflow/internal/pkg/apperrors"
	"github.com/mzajac/examflow/internal/pkg/helpers"
)

// TermController handles exam term scheduling operations
type TermController struct {
	termService services.TermService
}

// NewTermController creates a new TermController
func NewTermController(termService services.TermService) *TermController {
	return &TermController{termService: termService}
}

// ProposeTerm handles proposing a new exam term
// @Summary Propose an exam term
// @Description Proposes a new exam term slot; the term lands in the proposer's pending status, or CONFLICT when the slot overlaps a confirmed term
// @Tags terms
// @Accept json
// @Produce json
// @Param request body dto.ProposeTermRequest true "Term proposal"
// @Success 201 {object} dto.APIResponse{data=dto.TermOutcomeResponse} "Term proposed"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 403 {object} dto.ErrorResponse "Actor cannot act for this course or group"
// @Router /terms [post]
func (c *TermController) ProposeTerm(ctx *gin.Context) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidCredentials)
		return
	}

	var req dto.ProposeTermRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError(err.Error()))
		return
	}

	input, err := proposeInput(req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	outcome, err := c.termService.ProposeTerm(ctx.Request.Context(), input, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(toOutcomeResponse(outcome)))
}

// RespondToProposal handles the counter-party's decision on a pending proposal
// @Summary Respond to a term proposal
// @Description Accepts, rejects or reschedules a pending proposal. Accept lands in APPROVED unless an overlap is detected; reschedule flips the proposal to the responder's side
// @Tags terms
// @Accept json
// @Produce json
// @Param id path int true "Term ID"
// @Param request body dto.RespondToProposalRequest true "Decision"
// @Success 200 {object} dto.APIResponse{data=dto.TermOutcomeResponse} "Decision applied"
// @Failure 404 {object} dto.ErrorResponse "Term not found"
// @Failure 422 {object} dto.ErrorResponse "Illegal status transition"
// @Router /terms/{id}/decision [post]
func (c *TermController) RespondToProposal(ctx *gin.Context) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidCredentials)
		return
	}

	termID, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.RespondToProposalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError(err.Error()))
		return
	}

	decision := services.Decision{
		Type:    services.DecisionType(req.Decision),
		Reason:  req.Reason,
		Comment: req.Comment,
	}
	if req.NewSlot != nil {
		slot, err := slotInput(*req.NewSlot)
		if err != nil {
			middleware.HandleAPIError(ctx, err)
			return
		}
		decision.NewSlot = slot
	}

	outcome, err := c.termService.RespondToProposal(ctx.Request.Context(), termID, actor, decision)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(toOutcomeResponse(outcome)))
}

// FinalizeTerm handles finalizing an approved term
// @Summary Finalize an exam term
// @Description Locks an approved term into its immutable final state; dean's office only
// @Tags terms
// @Produce json
// @Param id path int true "Term ID"
// @Success 200 {object} dto.APIResponse{data=dto.TermResponse} "Term finalized"
// @Failure 422 {object} dto.ErrorResponse "Term is not approved"
// @Router /terms/{id}/finalize [post]
func (c *TermController) FinalizeTerm(ctx *gin.Context) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidCredentials)
		return
	}

	termID, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	term, err := c.termService.Finalize(ctx.Request.Context(), termID, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromExamTerm(term)))
}

// RejectTerm handles rejecting a term
// @Summary Reject an exam term
// @Description Moves any non-terminal term to REJECTED; a reason is mandatory
// @Tags terms
// @Accept json
// @Produce json
// @Param id path int true "Term ID"
// @Param request body dto.RejectTermRequest true "Rejection reason"
// @Success 200 {object} dto.APIResponse{data=dto.TermResponse} "Term rejected"
// @Failure 400 {object} dto.ErrorResponse "Reason missing"
// @Router /terms/{id}/reject [post]
func (c *TermController) RejectTerm(ctx *gin.Context) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidCredentials)
		return
	}

	termID, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.RejectTermRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.ErrRejectionReasonRequired)
		return
	}

	term, err := c.termService.Reject(ctx.Request.Context(), termID, actor, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromExamTerm(term)))
}

// GetTerm handles retrieving a single exam term
// @Summary Get an exam term
// @Tags terms
// @Produce json
// @Param id path int true "Term ID"
// @Success 200 {object} dto.APIResponse{data=dto.TermResponse} "Term retrieved"
// @Failure 404 {object} dto.ErrorResponse "Term not found"
// @Router /terms/{id} [get]
func (c *TermController) GetTerm(ctx *gin.Context) {
	termID, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	term, err := c.termService.GetTerm(ctx.Request.Context(), termID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromExamTerm(term)))
}

// ListTerms handles listing a session's terms
// @Summary List exam terms
// @Description Retrieves a page of a session's terms, optionally filtered by status
// @Tags terms
// @Produce json
// @Param sessionId query int true "Session ID"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20)"
// @Success 200 {object} dto.APIResponse{data=dto.TermListResponse} "Terms retrieved"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /terms [get]
func (c *TermController) ListTerms(ctx *gin.Context) {
	sessionID, err := strconv.ParseInt(ctx.Query("sessionId"), 10, 64)
	if err != nil || sessionID <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("sessionId query parameter is required"))
		return
	}

	var status *models.TermStatus
	if s := ctx.Query("status"); s != "" {
		st := models.TermStatus(s)
		status = &st
	}

	page, size := helpers.ParsePaginationParams(ctx)

	terms, total, err := c.termService.ListTerms(ctx.Request.Context(), sessionID, status, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.TermListResponse{
		Terms:      dto.FromExamTerms(terms),
		Pagination: helpers.NewPaginationInfo(total, page, size),
	}))
}

// GetHistory handles retrieving a term's audit trail
// @Summary Get a term's history
// @Description Retrieves the term's audit trail in chronological order
// @Tags terms
// @Produce json
// @Param id path int true "Term ID"
// @Success 200 {object} dto.APIResponse{data=dto.TermHistoryResponse} "History retrieved"
// @Failure 404 {object} dto.ErrorResponse "Term not found"
// @Router /terms/{id}/history [get]
func (c *TermController) GetHistory(ctx *gin.Context) {
	termID, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	entries, err := c.termService.GetHistory(ctx.Request.Context(), termID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromHistoryEntries(termID, entries)))
}

func pathID(ctx *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewBadRequestError("invalid " + name + " path parameter")
	}
	return id, nil
}

func proposeInput(req dto.ProposeTermRequest) (services.ProposeTermInput, error) {
	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		return services.ProposeTermInput{}, apperrors.NewBadRequestError(err.Error())
	}
	start, err := helpers.ParseMinuteOfDay(req.StartTime)
	if err != nil {
		return services.ProposeTermInput{}, apperrors.NewBadRequestError(err.Error())
	}
	end, err := helpers.ParseMinuteOfDay(req.EndTime)
	if err != nil {
		return services.ProposeTermInput{}, apperrors.NewBadRequestError(err.Error())
	}

	return services.ProposeTermInput{
		CourseID:    req.CourseID,
		SessionID:   req.SessionID,
		GroupID:     req.GroupID,
		RoomID:      req.RoomID,
		Date:        date,
		StartMinute: start,
		EndMinute:   end,
		TermType:    models.TermType(req.TermType),
		Comment:     req.Comment,
	}, nil
}

func slotInput(req dto.RescheduleSlot) (*services.SlotInput, error) {
	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	start, err := helpers.ParseMinuteOfDay(req.StartTime)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	end, err := helpers.ParseMinuteOfDay(req.EndTime)
	if err != nil {
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	return &services.SlotInput{
		RoomID:      req.RoomID,
		Date:        date,
		StartMinute: start,
		EndMinute:   end,
	}, nil
}

func toOutcomeResponse(outcome *services.TermOutcome) dto.TermOutcomeResponse {
	resp := dto.TermOutcomeResponse{Term: dto.FromExamTerm(outcome.Term)}
	if outcome.Conflict != nil {
		resp.Conflict = &dto.ConflictResponse{
			Dimensions: outcome.Conflict.Dimensions,
			TermIDs:    outcome.Conflict.TermIDs,
		}
	}
	return resp
}
