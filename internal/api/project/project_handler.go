package project

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/devfolio/portfolio-api/internal/api"
	"github.com/devfolio/portfolio-api/internal/types"
	"github.com/devfolio/portfolio-api/internal/validate"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	GetByCategory(w http.ResponseWriter, r *http.Request)
	GetByStatus(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	projectService Service
	logger         *slog.Logger
	debug          bool
}

func NewHandlerImpl(projectService Service, logger *slog.Logger, debug bool) *HandlerImpl {
	return &HandlerImpl{
		projectService: projectService,
		logger:         logger,
		debug:          debug,
	}
}

// List godoc
// @Summary      List projects
// @Description  Returns all projects with technologies as a structured list.
// @Tags         Project
// @Produce      json
// @Success      200 {object} types.Response
// @Failure      500 {object} types.Response
// @Router       /project [get]
func (h *HandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "List"))

	projects, err := h.projectService.List(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list projects", slog.Any("error", err))
		api.ServerErrorResponse(w, r, "Error retrieving projects", err, h.debug)
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Projects retrieved successfully", projects)
}

// GetByID godoc
// @Summary      Fetch project
// @Tags         Project
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} types.Response
// @Failure      404 {object} types.Response "Project not found"
// @Router       /project/{id} [get]
func (h *HandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetByID"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Project not found")
		return
	}

	project, err := h.projectService.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Project not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get project", slog.Any("error", err), slog.String("id", id.String()))
		api.ServerErrorResponse(w, r, "Error retrieving project", err, h.debug)
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Project retrieved successfully", project)
}

// GetByCategory godoc
// @Summary      List projects by category
// @Tags         Project
// @Produce      json
// @Param        category path string true "Category"
// @Success      200 {object} types.Response
// @Router       /project/category/{category} [get]
func (h *HandlerImpl) GetByCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetByCategory"))

	category := chi.URLParam(r, "category")
	projects, err := h.projectService.GetByCategory(ctx, category)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list projects by category", slog.Any("error", err), slog.String("category", category))
		api.ServerErrorResponse(w, r, "Error retrieving projects", err, h.debug)
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Projects retrieved successfully", projects)
}

// GetByStatus godoc
// @Summary      List projects by status
// @Tags         Project
// @Produce      json
// @Param        status path string true "Status"
// @Success      200 {object} types.Response
// @Router       /project/status/{status} [get]
func (h *HandlerImpl) GetByStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetByStatus"))

	status := chi.URLParam(r, "status")
	projects, err := h.projectService.GetByStatus(ctx, status)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list projects by status", slog.Any("error", err), slog.String("status", status))
		api.ServerErrorResponse(w, r, "Error retrieving projects", err, h.debug)
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Projects retrieved successfully", projects)
}

// Create godoc
// @Summary      Create project
// @Tags         Project
// @Accept       json
// @Produce      json
// @Param        body body types.CreateProjectRequest true "Project fields"
// @Success      201 {object} types.Response
// @Failure      422 {object} types.Response "Validation failed"
// @Failure      500 {object} types.Response
// @Security     BearerAuth
// @Router       /project [post]
func (h *HandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Create"))

	var req types.CreateProjectRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	errs := validate.Errors{}
	errs.Required("title", req.Title)
	errs.MaxLen("title", req.Title, 255)
	errs.Required("description", req.Description)
	if len(req.Technologies) == 0 {
		errs.Add("technologies", "The technologies field is required.")
	}
	errs.Required("category", req.Category)
	errs.MaxLen("category", req.Category, 255)
	errs.Required("status", req.Status)
	if req.DemoURL != nil {
		errs.URL("demo_url", *req.DemoURL)
	}
	if req.GithubURL != nil {
		errs.URL("github_url", *req.GithubURL)
	}
	if errs.Any() {
		api.ValidationErrorResponse(w, r, errs)
		return
	}

	project, err := h.projectService.Create(ctx, req)
	if err != nil {
		if errors.Is(err, ErrBadImagePayload) {
			errs.Add("image", "The image payload could not be decoded.")
			api.ValidationErrorResponse(w, r, errs)
			return
		}
		l.ErrorContext(ctx, "Failed to create project", slog.Any("error", err))
		api.ServerErrorResponse(w, r, "Error creating project", err, h.debug)
		return
	}

	api.SuccessResponse(w, r, http.StatusCreated, "Project created successfully", project)
}

// Update godoc
// @Summary      Update project
// @Description  Partial update; only supplied fields change. Supplying image,
// @Description  demo_url or github_url as null clears the field; a cleared
// @Description  image also removes the stored file.
// @Tags         Project
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        body body types.UpdateProjectRequest true "Changed fields"
// @Success      200 {object} types.Response
// @Failure      404 {object} types.Response "Project not found"
// @Failure      422 {object} types.Response "Validation failed"
// @Security     BearerAuth
// @Router       /project/{id} [put]
func (h *HandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Update"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Project not found")
		return
	}

	var req types.UpdateProjectRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	errs := validate.Errors{}
	if req.Title != nil {
		errs.Required("title", *req.Title)
		errs.MaxLen("title", *req.Title, 255)
	}
	if req.Description != nil {
		errs.Required("description", *req.Description)
	}
	if req.Technologies != nil && len(*req.Technologies) == 0 {
		errs.Add("technologies", "The technologies field is required.")
	}
	if req.Category != nil {
		errs.Required("category", *req.Category)
		errs.MaxLen("category", *req.Category, 255)
	}
	if req.Status != nil {
		errs.Required("status", *req.Status)
	}
	if req.DemoURL.Present && req.DemoURL.Valid {
		errs.URL("demo_url", req.DemoURL.Value)
	}
	if req.GithubURL.Present && req.GithubURL.Valid {
		errs.URL("github_url", req.GithubURL.Value)
	}
	if errs.Any() {
		api.ValidationErrorResponse(w, r, errs)
		return
	}

	project, err := h.projectService.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Project not found")
			return
		}
		if errors.Is(err, ErrBadImagePayload) {
			errs.Add("image", "The image payload could not be decoded.")
			api.ValidationErrorResponse(w, r, errs)
			return
		}
		l.ErrorContext(ctx, "Failed to update project", slog.Any("error", err), slog.String("id", id.String()))
		api.ServerErrorResponse(w, r, "Error updating project", err, h.debug)
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Project updated successfully", project)
}

// Delete godoc
// @Summary      Delete project
// @Description  Removes the project and its stored image file.
// @Tags         Project
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} types.Response
// @Failure      404 {object} types.Response "Project not found"
// @Security     BearerAuth
// @Router       /project/{id} [delete]
func (h *HandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Delete"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Project not found")
		return
	}

	if err := h.projectService.Delete(ctx, id); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Project not found")
			return
		}
		l.ErrorContext(ctx, "Failed to delete project", slog.Any("error", err), slog.String("id", id.String()))
		api.ServerErrorResponse(w, r, "Error deleting project", err, h.debug)
		return
	}

	api.SuccessResponse(w, r, http.StatusOK, "Project deleted successfully", nil)
}
