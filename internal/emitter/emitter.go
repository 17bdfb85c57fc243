// Package emitter publishes a finished composition into the output library
// under a filesystem-safe name derived from the project title.
package emitter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"storyreel/internal/fileutil"
	"storyreel/internal/services"
)

// SafeName converts a title into a filesystem-safe base name. Every run of
// characters outside [A-Za-z0-9] collapses to a single underscore.
func SafeName(title string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "composition"
	}
	return name
}

// Emit moves a staged composition file into outputDir under the title's safe
// name. Existing files are never overwritten; a numeric suffix is appended
// until the name is free. Returns the final path.
func Emit(stagedPath, outputDir, title string) (string, error) {
	if _, err := os.Stat(stagedPath); err != nil {
		return "", services.Wrap(services.ErrNotFound, "emitter", "stage lookup", stagedPath, err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "emitter", "create output directory", outputDir, err)
	}

	base := SafeName(title)
	finalPath := filepath.Join(outputDir, base+".mp4")
	for n := 2; ; n++ {
		if _, err := os.Stat(finalPath); os.IsNotExist(err) {
			break
		}
		finalPath = filepath.Join(outputDir, fmt.Sprintf("%s-%d.mp4", base, n))
	}

	if err := fileutil.MoveFile(stagedPath, finalPath); err != nil {
		return "", services.Wrap(services.ErrTransient, "emitter", "publish output", finalPath, err)
	}
	return finalPath, nil
}
