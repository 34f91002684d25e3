package handler

import (
	"github.com/gin-gonic/gin"
	appcustomer "github.com/ledgerbook/backend/internal/application/customer"
)

// ProjectHandler handles project-related HTTP requests
type ProjectHandler struct {
	BaseHandler
	projectService *appcustomer.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *appcustomer.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// List godoc
// @ID           listProjects
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20) maximum(100)
// @Param        search      query string false "Search by name"
// @Param        customer_id query string false "Filter by customer" format(uuid)
// @Param        status      query string false "Filter by status" Enums(planned, active, completed, cancelled)
// @Success      200 {object} dto.Response{data=[]appcustomer.ProjectResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	var filter appcustomer.ProjectListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.projectService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, page)
}

// Create godoc
// @ID           createProject
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body appcustomer.CreateProjectRequest true "Project"
// @Success      201 {object} dto.Response{data=appcustomer.ProjectResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var req appcustomer.CreateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, project)
}

// GetByID godoc
// @ID           getProject
// @Summary      Get a project
// @Tags         projects
// @Produce      json
// @Param        id path string true "Project ID" format(uuid)
// @Success      200 {object} dto.Response{data=appcustomer.ProjectResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id} [get]
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c, "project")
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// Update godoc
// @ID           updateProject
// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id      path string                           true "Project ID" format(uuid)
// @Param        request body appcustomer.UpdateProjectRequest true "Fields to change"
// @Success      200 {object} dto.Response{data=appcustomer.ProjectResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "project")
	if !ok {
		return
	}
	var req appcustomer.UpdateProjectRequest
	if !h.bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// ChangeStatus godoc
// @ID           changeProjectStatus
// @Summary      Change project status
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id      path string                                 true "Project ID" format(uuid)
// @Param        request body appcustomer.ChangeProjectStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=appcustomer.ProjectResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id}/status [put]
func (h *ProjectHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.pathID(c, "project")
	if !ok {
		return
	}
	var req appcustomer.ChangeProjectStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, project)
}

// Delete godoc
// @ID           deleteProject
// @Summary      Delete a project
// @Description  Delete a project that no invoice or payment refers to
// @Tags         projects
// @Param        id path string true "Project ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "project")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
