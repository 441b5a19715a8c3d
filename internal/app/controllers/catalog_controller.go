package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mzajac/examflow/internal/app/models"
	"github.com/mzajac/examflow/internal/app/models/dto"
	"github.com/mzajac/examflow/internal/app/services"
	"github.com/mzajac/examflow/internal/middleware"
	"github.com/mzajac/examflow/internal/pkg/apperrors"
)

// CatalogController serves rooms, courses and student groups
type CatalogController struct {
	catalogService services.CatalogService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalogService services.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// CreateRoom handles creating a room
// @Summary Create a room
// @Description Adds a room to the catalog; dean's office only
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body dto.CreateRoomRequest true "Room"
// @Success 201 {object} dto.APIResponse{data=dto.RoomResponse} "Room created"
// @Router /rooms [post]
func (c *CatalogController) CreateRoom(ctx *gin.Context) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrInvalidCredentials)
		return
	}

	var req dto.CreateRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError(err.Error()))
		return
	}

	room := &models.Room{Name: req.Name, Building: req.Building, Capacity: req.Capacity}
	id, err := c.catalogService.CreateRoom(ctx.Request.Context(), room, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	room.ID = id

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.FromRoom(room)))
}

// GetRoom handles retrieving a single room
// @Summary Get a room
// @Tags catalog
// @Produce json
// @Param id path int true "Room ID"
// @Success 200 {object} dto.APIResponse{data=dto.RoomResponse} "Room retrieved"
// @Router /rooms/{id} [get]
func (c *CatalogController) GetRoom(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	room, err := c.catalogService.GetRoomByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromRoom(room)))
}

// ListRooms handles listing all rooms
// @Summary List rooms
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.RoomResponse} "Rooms retrieved"
// @Router /rooms [get]
func (c *CatalogController) ListRooms(ctx *gin.Context) {
	rooms, err := c.catalogService.GetAllRooms(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromRooms(rooms)))
}

// ListCourses handles listing all courses
// @Summary List courses
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CourseResponse} "Courses retrieved"
// @Router /courses [get]
func (c *CatalogController) ListCourses(ctx *gin.Context) {
	courses, err := c.catalogService.GetAllCourses(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromCourses(courses)))
}

// GetCourse handles retrieving a single course
// @Summary Get a course
// @Tags catalog
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Course retrieved"
// @Router /courses/{id} [get]
func (c *CatalogController) GetCourse(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	course, err := c.catalogService.GetCourseByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromCourse(course)))
}

// ListGroups handles listing all student groups
// @Summary List student groups
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.GroupResponse} "Groups retrieved"
// @Router /groups [get]
func (c *CatalogController) ListGroups(ctx *gin.Context) {
	groups, err := c.catalogService.GetAllGroups(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromGroups(groups)))
}

// GetGroup handles retrieving a single student group
// @Summary Get a student group
// @Tags catalog
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} dto.APIResponse{data=dto.GroupResponse} "Group retrieved"
// @Router /groups/{id} [get]
func (c *CatalogController) GetGroup(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	group, err := c.catalogService.GetGroupByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.FromGroup(group)))
}
