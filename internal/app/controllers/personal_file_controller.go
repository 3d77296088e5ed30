package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/studyshare/backend/internal/app/models/dto"
	"github.com/studyshare/backend/internal/app/services"
	"github.com/studyshare/backend/internal/middleware"
)

// PersonalFileController handles the private file area
type PersonalFileController struct {
	fileService services.PersonalFileService
	logger      zerolog.Logger
}

// NewPersonalFileController creates a new PersonalFileController
func NewPersonalFileController(fileService services.PersonalFileService, logger zerolog.Logger) *PersonalFileController {
	return &PersonalFileController{
		fileService: fileService,
		logger:      logger,
	}
}

// optionalFolderID parses the folderId query parameter, nil meaning root.
func optionalFolderID(ctx *gin.Context) (*int64, error) {
	raw := ctx.Query("folderId")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// CreateFolder creates a folder
// @Summary Create a folder
// @Description Creates a personal folder, optionally under an existing parent
// @Tags personal-files
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateFolderRequest true "Folder name and optional parent"
// @Success 201 {object} dto.APIResponse{data=dto.FolderResponse} "Folder created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Parent folder not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /personal/folders [post]
func (c *PersonalFileController) CreateFolder(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	var req dto.CreateFolderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
		return
	}

	folder, err := c.fileService.CreateFolder(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: dto.ToFolderResponse(folder),
	})
}

// GetContents lists one folder level
// @Summary Browse the personal area
// @Description Returns the folder (nil at root), breadcrumb chain, subfolders and files for one level
// @Tags personal-files
// @Produce json
// @Security BearerAuth
// @Param folderId query int false "Folder ID, omitted for root"
// @Success 200 {object} dto.APIResponse{data=dto.FolderContentsResponse} "Folder contents"
// @Failure 404 {object} dto.ErrorResponse "Folder not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /personal/contents [get]
func (c *PersonalFileController) GetContents(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	folderID, err := optionalFolderID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid folder ID")))
		return
	}

	contents, err := c.fileService.GetFolderContents(ctx.Request.Context(), userID, folderID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: contents,
	})
}

// DeleteFolder removes an empty folder
// @Summary Delete a folder
// @Description Deletes an owned folder. The folder must be empty.
// @Tags personal-files
// @Produce json
// @Security BearerAuth
// @Param id path int true "Folder ID"
// @Success 200 {object} dto.APIResponse{data=map[string]string} "Folder deleted"
// @Failure 404 {object} dto.ErrorResponse "Folder not found"
// @Failure 409 {object} dto.ErrorResponse "Folder is not empty"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /personal/folders/{id} [delete]
func (c *PersonalFileController) DeleteFolder(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, err := pathID(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid folder ID")))
		return
	}

	if err := c.fileService.DeleteFolder(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: map[string]string{"message": "Folder deleted"},
	})
}

// UploadFile stores a private file
// @Summary Upload a personal file
// @Description Uploads a private file (max 25 MiB), optionally into a folder
// @Tags personal-files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param folderId query int false "Target folder ID, omitted for root"
// @Param file formData file true "File (max 25 MiB)"
// @Success 201 {object} dto.APIResponse{data=dto.PersonalFileResponse} "File uploaded"
// @Failure 400 {object} dto.ErrorResponse "Invalid file type or size"
// @Failure 404 {object} dto.ErrorResponse "Folder not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /personal/files [post]
func (c *PersonalFileController) UploadFile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	folderID, err := optionalFolderID(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid folder ID")))
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "A file is required")))
		return
	}

	personalFile, err := c.fileService.UploadFile(ctx.Request.Context(), userID, folderID, file)
	if err != nil {
		c.logger.Warn().Err(err).Int64("userID", userID).Msg("Personal file upload rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: dto.ToPersonalFileResponse(personalFile),
	})
}

// DownloadFile returns base64-encoded file content
// @Summary Download a personal file
// @Description Returns the file content base64-encoded
// @Tags personal-files
// @Produce json
// @Security BearerAuth
// @Param id path int true "File ID"
// @Success 200 {object} dto.APIResponse{data=dto.FileDownloadResponse} "File content"
// @Failure 404 {object} dto.ErrorResponse "File not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /personal/files/{id}/download [get]
func (c *PersonalFileController) DownloadFile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, err := pathID(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid file ID")))
		return
	}

	download, err := c.fileService.DownloadFile(ctx.Request.Context(), userID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: download,
	})
}

// DeleteFile removes a personal file
// @Summary Delete a personal file
// @Description Deletes an owned file and its stored content
// @Tags personal-files
// @Produce json
// @Security BearerAuth
// @Param id path int true "File ID"
// @Success 200 {object} dto.APIResponse{data=map[string]string} "File deleted"
// @Failure 404 {object} dto.ErrorResponse "File not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /personal/files/{id} [delete]
func (c *PersonalFileController) DeleteFile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return
	}

	id, err := pathID(ctx, "id")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid file ID")))
		return
	}

	if err := c.fileService.DeleteFile(ctx.Request.Context(), userID, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: map[string]string{"message": "File deleted"},
	})
}
