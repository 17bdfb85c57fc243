package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storyreel/internal/scene"
)

const sceneColumns = "id, project_id, sequence, title, narration, image_ref, image_status, " +
	"audio_ref, audio_status, planned_seconds, actual_seconds, created_at, updated_at"

// AddScene appends a scene to a project. When sc.Sequence is zero the scene
// is placed after the project's current last scene.
func (s *Store) AddScene(ctx context.Context, sc scene.Scene) (*scene.Scene, error) {
	if sc.ProjectID == 0 {
		return nil, errors.New("scene requires a project id")
	}

	if sc.Sequence == 0 {
		var max sql.NullInt64
		err := s.db.QueryRowContext(ctx,
			`SELECT MAX(sequence) FROM scenes WHERE project_id = ?`, sc.ProjectID,
		).Scan(&max)
		if err != nil {
			return nil, fmt.Errorf("next sequence: %w", err)
		}
		sc.Sequence = int(max.Int64) + 1
	}

	if sc.ImageStatus == "" {
		sc.ImageStatus = scene.AssetPending
	}
	if sc.AudioStatus == "" {
		sc.AudioStatus = scene.AssetPending
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO scenes (
            project_id, sequence, title, narration, image_ref, image_status,
            audio_ref, audio_status, planned_seconds, actual_seconds, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.ProjectID, sc.Sequence, sc.Title, sc.Narration, sc.ImageRef, string(sc.ImageStatus),
		sc.AudioRef, string(sc.AudioStatus), sc.PlannedSeconds, sc.ActualSeconds, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert scene: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetScene(ctx, id)
}

// GetScene fetches a scene by identifier. Returns nil when no row matches.
func (s *Store) GetScene(ctx context.Context, id int64) (*scene.Scene, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sceneColumns+` FROM scenes WHERE id = ?`, id)
	sc, err := scanScene(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get scene: %w", err)
	}
	return sc, nil
}

// ListScenes returns a project's scenes in sequence order.
func (s *Store) ListScenes(ctx context.Context, projectID int64) ([]scene.Scene, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sceneColumns+` FROM scenes WHERE project_id = ? ORDER BY sequence`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer rows.Close()

	var scenes []scene.Scene
	for rows.Next() {
		sc, err := scanScene(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scene: %w", err)
		}
		scenes = append(scenes, *sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenes: %w", err)
	}
	return scenes, nil
}

// SetSceneAssets updates a scene's resource references and readiness.
func (s *Store) SetSceneAssets(ctx context.Context, sceneID int64, imageRef string, imageStatus scene.AssetStatus, audioRef string, audioStatus scene.AssetStatus) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`UPDATE scenes SET image_ref = ?, image_status = ?, audio_ref = ?, audio_status = ?, updated_at = ?
         WHERE id = ?`,
		imageRef, string(imageStatus), audioRef, string(audioStatus), timestamp, sceneID,
	)
	if err != nil {
		return fmt.Errorf("set scene assets: %w", err)
	}
	return nil
}

// SetSceneActualSeconds records the measured wall-clock duration of a scene
// after a composition run.
func (s *Store) SetSceneActualSeconds(ctx context.Context, sceneID int64, actualSeconds float64) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`UPDATE scenes SET actual_seconds = ?, updated_at = ? WHERE id = ?`,
		actualSeconds, timestamp, sceneID,
	)
	if err != nil {
		return fmt.Errorf("set scene actual seconds: %w", err)
	}
	return nil
}

func scanScene(row rowScanner) (*scene.Scene, error) {
	var (
		sc          scene.Scene
		imageStatus string
		audioStatus string
		createdAt   string
		updatedAt   string
	)
	if err := row.Scan(&sc.ID, &sc.ProjectID, &sc.Sequence, &sc.Title, &sc.Narration,
		&sc.ImageRef, &imageStatus, &sc.AudioRef, &audioStatus,
		&sc.PlannedSeconds, &sc.ActualSeconds, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	sc.ImageStatus = scene.AssetStatus(imageStatus)
	sc.AudioStatus = scene.AssetStatus(audioStatus)
	sc.CreatedAt = parseTimestamp(createdAt)
	sc.UpdatedAt = parseTimestamp(updatedAt)
	return &sc, nil
}
