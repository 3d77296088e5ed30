package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/studyshare/backend/internal/app/models"
	"github.com/studyshare/backend/internal/app/models/dto"
	"github.com/studyshare/backend/internal/app/services"
	"github.com/studyshare/backend/internal/middleware"
	"github.com/studyshare/backend/internal/pkg/helpers"
)

// MaterialController handles study material operations
type MaterialController struct {
	materialService services.MaterialService
	logger          zerolog.Logger
}

// NewMaterialController creates a new MaterialController
func NewMaterialController(materialService services.MaterialService, logger zerolog.Logger) *MaterialController {
	return &MaterialController{
		materialService: materialService,
		logger:          logger,
	}
}

// Upload handles a material upload
// @Summary Upload a study material
// @Description Uploads a file with metadata. The material awaits admin review before it becomes public.
// @Tags materials
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param branch formData string true "Branch"
// @Param year formData int true "Year"
// @Param subject formData string true "Subject"
// @Param type formData string false "Material type (NOTES, QUESTION_PAPER, LAB_MANUAL, PROJECT)"
// @Param file formData file true "File (max 10 MiB)"
// @Success 201 {object} dto.APIResponse{data=dto.MaterialResponse} "Material uploaded"
// @Failure 400 {object} dto.ErrorResponse "Invalid request, file type or size"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /materials [post]
func (c *MaterialController) Upload(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.CreateMaterialRequest
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "A file is required")))
		return
	}

	material, err := c.materialService.Upload(ctx.Request.Context(), userID, &req, file)
	if err != nil {
		c.logger.Warn().Err(err).Int64("userID", userID).Msg("Material upload rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: dto.ToMaterialResponse(material),
	})
}

// List returns the public approved listing
// @Summary List approved materials
// @Description Lists approved materials, filterable by branch, year, subject and type, newest first
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param branch query string false "Branch filter"
// @Param year query int false "Year filter"
// @Param subject query string false "Subject filter"
// @Param type query string false "Type filter"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.MaterialListResponse} "Approved materials"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /materials [get]
func (c *MaterialController) List(ctx *gin.Context) {
	userID, _ := currentUserID(ctx)

	var req dto.MaterialFilterRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	materials, bookmarked, pagination, err := c.materialService.ListApproved(ctx.Request.Context(), &req, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.MaterialResponse, 0, len(materials))
	for _, m := range materials {
		resp := dto.ToMaterialResponse(m)
		resp.Bookmarked = bookmarked[m.ID]
		responses = append(responses, resp)
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.MaterialListResponse{
			Materials:  responses,
			Pagination: pagination,
		},
	})
}

// ListMine returns the caller's uploads
// @Summary List own uploads
// @Description Lists the caller's materials in every status, newest first
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.MaterialListResponse} "Own materials"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /materials/mine [get]
func (c *MaterialController) ListMine(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	materials, pagination, err := c.materialService.ListMine(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: materialListResponse(materials, pagination),
	})
}

// ListPending returns the moderation queue
// @Summary List pending materials
// @Description Lists materials awaiting a moderation decision. Admin only.
// @Tags materials, admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.MaterialListResponse} "Pending materials"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/materials/pending [get]
func (c *MaterialController) ListPending(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	materials, pagination, err := c.materialService.ListPending(ctx.Request.Context(), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: materialListResponse(materials, pagination),
	})
}

// UpdateStatus applies a moderation decision
// @Summary Moderate a material
// @Description Approves or rejects a pending material. Decisions are terminal. Admin only.
// @Tags materials, admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Param request body dto.UpdateMaterialStatusRequest true "Moderation decision"
// @Success 200 {object} dto.APIResponse{data=dto.MaterialResponse} "Updated material"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Material not found"
// @Failure 409 {object} dto.ErrorResponse "Material already decided"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/materials/{id}/status [patch]
func (c *MaterialController) UpdateStatus(ctx *gin.Context) {
	id, err := pathID(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid material ID")))
		return
	}

	var req dto.UpdateMaterialStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	material, err := c.materialService.UpdateStatus(ctx.Request.Context(), id, models.MaterialStatus(req.Status))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.ToMaterialResponse(material),
	})
}

// Delete removes a material
// @Summary Delete a material
// @Description Owners may delete their own pending materials, admins any material
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse{data=map[string]string} "Material deleted"
// @Failure 403 {object} dto.ErrorResponse "Not allowed"
// @Failure 404 {object} dto.ErrorResponse "Material not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /materials/{id} [delete]
func (c *MaterialController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, err := pathID(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid material ID")))
		return
	}

	if err := c.materialService.Delete(ctx.Request.Context(), id, userID, currentUserRole(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: map[string]string{"message": "Material deleted"},
	})
}

// Download returns base64-encoded file content
// @Summary Download a material
// @Description Returns the file content base64-encoded along with its name and MIME type
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse{data=dto.MaterialDownloadResponse} "File content"
// @Failure 404 {object} dto.ErrorResponse "Material not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /materials/{id}/download [get]
func (c *MaterialController) Download(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, err := pathID(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid material ID")))
		return
	}

	download, err := c.materialService.Download(ctx.Request.Context(), id, userID, currentUserRole(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: download,
	})
}

// ToggleBookmark flips bookmark membership
// @Summary Toggle a bookmark
// @Description Bookmarks the material if not bookmarked, removes the bookmark otherwise
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param id path int true "Material ID"
// @Success 200 {object} dto.APIResponse{data=dto.BookmarkToggleResponse} "Resulting bookmark state"
// @Failure 404 {object} dto.ErrorResponse "Material not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /materials/{id}/bookmark [post]
func (c *MaterialController) ToggleBookmark(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, err := pathID(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid material ID")))
		return
	}

	bookmarked, err := c.materialService.ToggleBookmark(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.BookmarkToggleResponse{
			MaterialID: id,
			Bookmarked: bookmarked,
		},
	})
}

// ListBookmarks returns the caller's bookmarked materials
// @Summary List bookmarks
// @Description Lists the caller's bookmarked materials that are still approved
// @Tags materials
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.MaterialListResponse} "Bookmarked materials"
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /materials/bookmarks [get]
func (c *MaterialController) ListBookmarks(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	materials, pagination, err := c.materialService.ListBookmarks(ctx.Request.Context(), userID, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp := materialListResponse(materials, pagination)
	for i := range resp.Materials {
		resp.Materials[i].Bookmarked = true
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: resp,
	})
}

func materialListResponse(materials []*models.Material, pagination dto.PaginationInfo) dto.MaterialListResponse {
	responses := make([]dto.MaterialResponse, 0, len(materials))
	for _, m := range materials {
		responses = append(responses, dto.ToMaterialResponse(m))
	}
	return dto.MaterialListResponse{
		Materials:  responses,
		Pagination: pagination,
	}
}
