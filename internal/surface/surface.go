package surface

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// Frame dimensions per target aspect ratio.
const (
	LandscapeWidth  = 1280
	LandscapeHeight = 720
	PortraitWidth   = 720
	PortraitHeight  = 1280
)

// DimensionsForAspect maps a requested aspect ratio to frame dimensions.
func DimensionsForAspect(aspect string) (width, height int, err error) {
	switch strings.TrimSpace(aspect) {
	case "16:9", "":
		return LandscapeWidth, LandscapeHeight, nil
	case "9:16":
		return PortraitWidth, PortraitHeight, nil
	default:
		return 0, 0, fmt.Errorf("unsupported aspect ratio %q", aspect)
	}
}

// FitRect computes where an image of the given size lands on a surface of the
// given size under the fit policy: scale preserving aspect ratio, centered,
// with the overflowing axis cropped and the underfilled axis letterboxed.
func FitRect(imgWidth, imgHeight, surfWidth, surfHeight int) image.Rectangle {
	imageAspect := float64(imgWidth) / float64(imgHeight)
	targetAspect := float64(surfWidth) / float64(surfHeight)

	if imageAspect > targetAspect {
		// Relatively wider: full height, horizontal crop.
		drawWidth := int(float64(surfHeight) * imageAspect)
		x := (surfWidth - drawWidth) / 2
		return image.Rect(x, 0, x+drawWidth, surfHeight)
	}
	// Relatively taller or equal: full width, vertical letterbox.
	drawHeight := int(float64(surfWidth) / imageAspect)
	y := (surfHeight - drawHeight) / 2
	return image.Rect(0, y, surfWidth, y+drawHeight)
}

// Surface is the shared visual target frames are drawn onto before capture.
// The timeline driver is its only writer; the stream recorder reads snapshots
// at its own cadence. The internal lock covers only the pixel copy, so draws
// and captures interleave without tearing.
type Surface struct {
	mu     sync.Mutex
	frame  *image.RGBA
	width  int
	height int
	closed bool
}

// New allocates a surface of the given dimensions, cleared to opaque black.
func New(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("surface: invalid dimensions %dx%d", width, height)
	}
	s := &Surface{
		frame:  image.NewRGBA(image.Rect(0, 0, width, height)),
		width:  width,
		height: height,
	}
	s.clearLocked()
	return s, nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// DrawImage clears the surface to opaque black and paints img under the fit
// policy. The clear guarantees letterboxed margins are black rather than
// stale pixels from the previous scene.
func (s *Surface) DrawImage(img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return fmt.Errorf("surface: empty image %dx%d", bounds.Dx(), bounds.Dy())
	}

	target := FitRect(bounds.Dx(), bounds.Dy(), s.width, s.height)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("surface: draw after close")
	}
	s.clearLocked()
	xdraw.CatmullRom.Scale(s.frame, target, img, bounds, xdraw.Src, nil)
	return nil
}

// Snapshot copies the current frame pixels into dst, reusing it when large
// enough, and returns the RGBA byte slice of length Width*Height*4.
func (s *Surface) Snapshot(dst []byte) []byte {
	need := len(s.frame.Pix)
	if cap(dst) < need {
		dst = make([]byte, need)
	}
	dst = dst[:need]

	s.mu.Lock()
	copy(dst, s.frame.Pix)
	s.mu.Unlock()
	return dst
}

// Close releases the surface. Further draws fail; snapshots return the last
// frame, which keeps the recorder's final ticks harmless during teardown.
func (s *Surface) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Surface) clearLocked() {
	draw.Draw(s.frame, s.frame.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
}
