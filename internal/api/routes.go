package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"storyreel/internal/compositor"
	"storyreel/internal/project"
	"storyreel/internal/scene"
)

const apiVersion = "0.1.0"

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Token))

		r.Get("/status", statusHandler(cfg))
		r.Get("/projects", listProjectsHandler(cfg))
		r.Post("/projects", createProjectHandler(cfg))
		r.Get("/projects/{id}", getProjectHandler(cfg))
		r.Get("/projects/{id}/scenes", listScenesHandler(cfg))
		r.Post("/projects/{id}/compose", composeHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: apiVersion,
			UptimeS: int64(time.Since(cfg.StartTime).Seconds()),
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, cfg.Composer.Status())
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Store.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}
		resp := ProjectsResponse{Projects: make([]ProjectResponse, len(projects))}
		for i, p := range projects {
			resp.Projects[i] = ProjectToResponse(p)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Title == "" {
			WriteError(w, http.StatusBadRequest, "title is required", "BAD_REQUEST")
			return
		}

		p, err := cfg.Store.Create(r.Context(), req.Title, req.Aspect)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		WriteJSON(w, http.StatusCreated, ProjectToResponse(p))
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := lookupProject(w, r, cfg)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(p))
	}
}

func listScenesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := lookupProject(w, r, cfg)
		if !ok {
			return
		}
		scenes, err := cfg.Store.ListScenes(r.Context(), p.ID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list scenes", "INTERNAL_ERROR")
			return
		}
		resp := ScenesResponse{Scenes: make([]SceneResponse, len(scenes))}
		for i, sc := range scenes {
			resp.Scenes[i] = SceneToResponse(sc)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func composeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := lookupProject(w, r, cfg)
		if !ok {
			return
		}
		if cfg.Composer.Running() {
			WriteError(w, http.StatusConflict, "a composition is already running", "COMPOSITION_ACTIVE")
			return
		}

		scenes, err := cfg.Store.ListScenes(r.Context(), p.ID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list scenes", "INTERNAL_ERROR")
			return
		}
		eligible := scene.Filter(scenes)
		if len(eligible) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "no eligible scenes", "NO_ELIGIBLE_SCENES")
			return
		}

		req := compositor.Request{
			ProjectID: p.ID,
			Title:     p.Title,
			Aspect:    p.Aspect,
			Scenes:    scenes,
		}
		go func() {
			// The job outlives the HTTP request.
			if _, err := cfg.Composer.Compose(context.Background(), req); err != nil {
				if errors.Is(err, compositor.ErrCompositionActive) {
					return
				}
				cfg.Logger.Error("composition failed", "project_id", p.ID, "error", err)
			}
		}()

		WriteJSON(w, http.StatusAccepted, ComposeResponse{
			ProjectID: p.ID,
			Accepted:  true,
			Scenes:    len(eligible),
		})
	}
}

func lookupProject(w http.ResponseWriter, r *http.Request, cfg ServerConfig) (*project.Project, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "invalid project id", "BAD_REQUEST")
		return nil, false
	}
	row, err := cfg.Store.GetByID(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to load project", "INTERNAL_ERROR")
		return nil, false
	}
	if row == nil {
		WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
		return nil, false
	}
	return row, true
}
