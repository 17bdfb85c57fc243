package project

import "time"

// Project groups an ordered set of scenes under one story title.
type Project struct {
	ID         int64
	Title      string
	Aspect     string
	JobID      string
	JobState   string
	JobPercent int
	OutputPath string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
