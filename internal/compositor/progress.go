package compositor

import (
	"math"
	"sync"
	"time"
)

// State is the lifecycle phase of the compositor.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Status is a point-in-time snapshot of composition progress.
type Status struct {
	State        State     `json:"state"`
	JobID        string    `json:"job_id,omitempty"`
	ProjectID    int64     `json:"project_id,omitempty"`
	Title        string    `json:"title,omitempty"`
	Percent      int       `json:"percent"`
	SceneIndex   int       `json:"scene_index,omitempty"`
	SceneCount   int       `json:"scene_count,omitempty"`
	SceneTitle   string    `json:"scene_title,omitempty"`
	OutputPath   string    `json:"output_path,omitempty"`
	ErrorMessage string    `json:"error,omitempty"`
	StartedAt    time.Time `json:"started_at,omitempty"`
	FinishedAt   time.Time `json:"finished_at,omitempty"`
}

// tracker guards the status snapshot and enforces the progress contract:
// percent never decreases, stays at or below 99 while running, and reaches
// 100 only on completion.
type tracker struct {
	mu       sync.Mutex
	status   Status
	onChange func(Status)
}

func newTracker(onChange func(Status)) *tracker {
	return &tracker{
		status:   Status{State: StateIdle},
		onChange: onChange,
	}
}

func (t *tracker) snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *tracker) start(jobID string, projectID int64, title string, sceneCount int) {
	t.mu.Lock()
	t.status = Status{
		State:      StateRunning,
		JobID:      jobID,
		ProjectID:  projectID,
		Title:      title,
		SceneCount: sceneCount,
		StartedAt:  time.Now(),
	}
	t.notifyLocked()
	t.mu.Unlock()
}

func (t *tracker) beginScene(index int, title string) {
	t.mu.Lock()
	t.status.SceneIndex = index
	t.status.SceneTitle = title
	t.notifyLocked()
	t.mu.Unlock()
}

// setElapsed updates percent from elapsed wall-clock seconds against the
// planned total. The value is clamped monotonic and capped at 99.
func (t *tracker) setElapsed(elapsedSeconds, totalSeconds float64) {
	percent := 0
	if totalSeconds > 0 {
		percent = int(math.Floor(100 * elapsedSeconds / totalSeconds))
	}
	if percent > 99 {
		percent = 99
	}

	t.mu.Lock()
	if percent > t.status.Percent {
		t.status.Percent = percent
		t.notifyLocked()
	}
	t.mu.Unlock()
}

func (t *tracker) complete(outputPath string) {
	t.mu.Lock()
	t.status.State = StateCompleted
	t.status.Percent = 100
	t.status.OutputPath = outputPath
	t.status.FinishedAt = time.Now()
	t.notifyLocked()
	t.mu.Unlock()
}

func (t *tracker) fail(err error) {
	t.mu.Lock()
	t.status.State = StateFailed
	if err != nil {
		t.status.ErrorMessage = err.Error()
	}
	t.status.FinishedAt = time.Now()
	t.notifyLocked()
	t.mu.Unlock()
}

func (t *tracker) notifyLocked() {
	if t.onChange != nil {
		t.onChange(t.status)
	}
}
