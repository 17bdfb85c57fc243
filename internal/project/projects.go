package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const projectColumns = "id, title, aspect, job_id, job_state, job_percent, output_path, created_at, updated_at"

// Create inserts a new project.
func (s *Store) Create(ctx context.Context, title, aspect string) (*Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("project title is required")
	}
	if aspect = strings.TrimSpace(aspect); aspect == "" {
		aspect = "16:9"
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO projects (title, aspect, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		title, aspect, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a project by identifier. Returns nil when no row matches.
func (s *Store) GetByID(ctx context.Context, id int64) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// List returns all projects ordered by creation.
func (s *Store) List(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// SaveJobProgress records composition progress on the project row so status
// survives restarts and is visible to the CLI and API.
func (s *Store) SaveJobProgress(ctx context.Context, projectID int64, jobID, state string, percent int) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`UPDATE projects SET job_id = ?, job_state = ?, job_percent = ?, updated_at = ? WHERE id = ?`,
		nullableString(jobID), state, percent, timestamp, projectID,
	)
	if err != nil {
		return fmt.Errorf("save job progress: %w", err)
	}
	return nil
}

// SetOutputPath records the published output file for a project.
func (s *Store) SetOutputPath(ctx context.Context, projectID int64, outputPath string) error {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(
		ctx,
		`UPDATE projects SET output_path = ?, updated_at = ? WHERE id = ?`,
		nullableString(outputPath), timestamp, projectID,
	)
	if err != nil {
		return fmt.Errorf("set output path: %w", err)
	}
	return nil
}

// Delete removes a project and its scenes.
func (s *Store) Delete(ctx context.Context, projectID int64) error {
	if _, err := s.execWithRetry(ctx, `DELETE FROM projects WHERE id = ?`, projectID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*Project, error) {
	var (
		p          Project
		jobID      sql.NullString
		outputPath sql.NullString
		createdAt  string
		updatedAt  string
	)
	if err := row.Scan(&p.ID, &p.Title, &p.Aspect, &jobID, &p.JobState, &p.JobPercent,
		&outputPath, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.JobID = jobID.String
	p.OutputPath = outputPath.String
	p.CreatedAt = parseTimestamp(createdAt)
	p.UpdatedAt = parseTimestamp(updatedAt)
	return &p, nil
}

func parseTimestamp(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
