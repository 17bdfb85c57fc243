package api

import (
	"time"

	"storyreel/internal/project"
	"storyreel/internal/scene"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type CreateProjectRequest struct {
	Title  string `json:"title"`
	Aspect string `json:"aspect,omitempty"`
}

type ProjectResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Aspect     string `json:"aspect"`
	JobID      string `json:"job_id,omitempty"`
	JobState   string `json:"job_state"`
	JobPercent int    `json:"job_percent"`
	OutputPath string `json:"output_path,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type SceneResponse struct {
	ID             int64   `json:"id"`
	Sequence       int     `json:"sequence"`
	Title          string  `json:"title"`
	Narration      string  `json:"narration"`
	ImageRef       string  `json:"image_ref,omitempty"`
	ImageStatus    string  `json:"image_status"`
	AudioRef       string  `json:"audio_ref,omitempty"`
	AudioStatus    string  `json:"audio_status"`
	PlannedSeconds float64 `json:"planned_seconds"`
	ActualSeconds  float64 `json:"actual_seconds,omitempty"`
	Eligible       bool    `json:"eligible"`
}

type ScenesResponse struct {
	Scenes []SceneResponse `json:"scenes"`
}

type ComposeResponse struct {
	ProjectID int64  `json:"project_id"`
	Accepted  bool   `json:"accepted"`
	Scenes    int    `json:"scenes"`
	Message   string `json:"message,omitempty"`
}

func ProjectToResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:         p.ID,
		Title:      p.Title,
		Aspect:     p.Aspect,
		JobID:      p.JobID,
		JobState:   p.JobState,
		JobPercent: p.JobPercent,
		OutputPath: p.OutputPath,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
	}
}

func SceneToResponse(sc scene.Scene) SceneResponse {
	return SceneResponse{
		ID:             sc.ID,
		Sequence:       sc.Sequence,
		Title:          sc.Title,
		Narration:      sc.Narration,
		ImageRef:       sc.ImageRef,
		ImageStatus:    string(sc.ImageStatus),
		AudioRef:       sc.AudioRef,
		AudioStatus:    string(sc.AudioStatus),
		PlannedSeconds: sc.PlannedSeconds,
		ActualSeconds:  sc.ActualSeconds,
		Eligible:       sc.Eligible(),
	}
}
