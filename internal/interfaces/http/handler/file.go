package handler

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appdocument "github.com/ledgerbook/backend/internal/application/document"
	"github.com/ledgerbook/backend/internal/interfaces/http/middleware"
)

// multipartOverhead is room for the multipart boundaries and form fields
// on top of the largest accepted file
const multipartOverhead = 64 << 10

// FileHandler handles stored file HTTP requests
type FileHandler struct {
	BaseHandler
	fileService *appdocument.FileService
}

// NewFileHandler creates a new FileHandler
func NewFileHandler(fileService *appdocument.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// BodyLimit is the request size the upload route accepts
func (h *FileHandler) BodyLimit() int64 {
	return h.fileService.MaxUploadSize() + multipartOverhead
}

// Upload godoc
// @ID           uploadFile
// @Summary      Upload a file
// @Description  Store a receipt or attachment. The content type is detected from the bytes.
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file        formData file   true  "File content"
// @Param        entity_type formData string false "Kind of record the file belongs to"
// @Param        entity_id   formData string false "ID of the record the file belongs to" format(uuid)
// @Success      201 {object} dto.Response{data=appdocument.FileResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      415 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /files [post]
func (h *FileHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			middleware.HandleValidationError(c, err)
			return
		}
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	input := appdocument.UploadInput{
		FileName:   header.Filename,
		Body:       file,
		Size:       header.Size,
		EntityType: c.PostForm("entity_type"),
	}
	if raw := c.PostForm("entity_id"); raw != "" {
		entityID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid entity_id format")
			return
		}
		input.EntityID = &entityID
	}

	stored, err := h.fileService.Upload(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, stored)
}

// List godoc
// @ID           listFiles
// @Summary      List files
// @Tags         files
// @Produce      json
// @Param        page         query int    false "Page number" default(1)
// @Param        page_size    query int    false "Page size" default(20) maximum(100)
// @Param        search       query string false "Search by file name"
// @Param        entity_type  query string false "Filter by owning record kind"
// @Param        entity_id    query string false "Filter by owning record" format(uuid)
// @Param        content_type query string false "Filter by content type"
// @Success      200 {object} dto.Response{data=[]appdocument.FileResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /files [get]
func (h *FileHandler) List(c *gin.Context) {
	var filter appdocument.FileListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.fileService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// GetByID godoc
// @ID           getFile
// @Summary      Get file metadata
// @Tags         files
// @Produce      json
// @Param        id path string true "File ID" format(uuid)
// @Success      200 {object} dto.Response{data=appdocument.FileResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /files/{id} [get]
func (h *FileHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "file")
	if !ok {
		return
	}

	f, err := h.fileService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, f)
}

// URL godoc
// @ID           getFileURL
// @Summary      Get a download link
// @Description  Return a presigned, time-limited link to the file content
// @Tags         files
// @Produce      json
// @Param        id path string true "File ID" format(uuid)
// @Success      200 {object} dto.Response{data=appdocument.DownloadURLResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /files/{id}/url [get]
func (h *FileHandler) URL(c *gin.Context) {
	id, ok := h.pathID(c, "file")
	if !ok {
		return
	}

	link, err := h.fileService.DownloadURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, link)
}

// Content godoc
// @ID           downloadFile
// @Summary      Download file content
// @Tags         files
// @Produce      octet-stream
// @Param        id path string true "File ID" format(uuid)
// @Success      200 {file} binary
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /files/{id}/content [get]
func (h *FileHandler) Content(c *gin.Context) {
	id, ok := h.pathID(c, "file")
	if !ok {
		return
	}

	body, meta, err := h.fileService.Download(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, meta.Size, meta.ContentType, body, map[string]string{
		"Content-Disposition": contentDisposition(meta.FileName),
		"X-Checksum-SHA256":   meta.Checksum,
		"Cache-Control":       "private, max-age=300",
	})
}

// Delete godoc
// @ID           deleteFile
// @Summary      Delete a file
// @Tags         files
// @Param        id path string true "File ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /files/{id} [delete]
func (h *FileHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "file")
	if !ok {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func contentDisposition(fileName string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": fileName}); v != "" {
		return v
	}
	return "attachment"
}
