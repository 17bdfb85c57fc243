package surface_test

import (
	"image"
	"image/color"
	"testing"

	"storyreel/internal/surface"
)

func TestDimensionsForAspect(t *testing.T) {
	tests := []struct {
		aspect        string
		width, height int
		wantErr       bool
	}{
		{"16:9", 1280, 720, false},
		{"9:16", 720, 1280, false},
		{"", 1280, 720, false},
		{"4:3", 0, 0, true},
	}
	for _, tc := range tests {
		w, h, err := surface.DimensionsForAspect(tc.aspect)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("aspect %q: expected error", tc.aspect)
			}
			continue
		}
		if err != nil {
			t.Fatalf("aspect %q: %v", tc.aspect, err)
		}
		if w != tc.width || h != tc.height {
			t.Fatalf("aspect %q: expected %dx%d, got %dx%d", tc.aspect, tc.width, tc.height, w, h)
		}
	}
}

func TestFitRectWiderImageCropsSides(t *testing.T) {
	// 2:1 image onto a 16:9 surface: full height, width overflows and is
	// centered so both sides crop equally.
	rect := surface.FitRect(2000, 1000, 1280, 720)
	if rect.Dy() != 720 {
		t.Fatalf("expected full height 720, got %d", rect.Dy())
	}
	if rect.Dx() <= 1280 {
		t.Fatalf("expected draw width beyond surface, got %d", rect.Dx())
	}
	if rect.Min.X >= 0 {
		t.Fatalf("expected negative x offset for crop, got %d", rect.Min.X)
	}
	wantX := (1280 - rect.Dx()) / 2
	if rect.Min.X != wantX {
		t.Fatalf("expected centered offset %d, got %d", wantX, rect.Min.X)
	}
}

func TestFitRectTallerImageLetterboxes(t *testing.T) {
	// Square image onto a 16:9 surface: full width, height overflows below
	// and above equally. The fit rule scales to full width whenever
	// imageAspect <= targetAspect.
	rect := surface.FitRect(1000, 1000, 1280, 720)
	if rect.Dx() != 1280 {
		t.Fatalf("expected full width 1280, got %d", rect.Dx())
	}
	if rect.Dy() < 720 {
		t.Fatalf("expected draw height >= surface height, got %d", rect.Dy())
	}
}

func TestFitRectPortraitSurface(t *testing.T) {
	// Landscape image onto a 9:16 surface: full height with cropped sides.
	rect := surface.FitRect(1920, 1080, 720, 1280)
	if rect.Dy() != 1280 {
		t.Fatalf("expected full height 1280, got %d", rect.Dy())
	}
	if rect.Dx() <= 720 {
		t.Fatalf("expected horizontal overflow, got width %d", rect.Dx())
	}
}

func TestFitRectExactMatch(t *testing.T) {
	rect := surface.FitRect(1280, 720, 1280, 720)
	if rect != image.Rect(0, 0, 1280, 720) {
		t.Fatalf("expected exact cover, got %v", rect)
	}
}

func TestNewRejectsInvalidDimensions(t *testing.T) {
	if _, err := surface.New(0, 720); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestDrawImageClearsToBlack(t *testing.T) {
	s, err := surface.New(64, 36)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	white := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			white.Set(x, y, color.White)
		}
	}
	if err := s.DrawImage(white); err != nil {
		t.Fatalf("DrawImage: %v", err)
	}

	pix := s.Snapshot(nil)
	if len(pix) != 64*36*4 {
		t.Fatalf("expected %d snapshot bytes, got %d", 64*36*4, len(pix))
	}
	// Square image on a landscape surface scales to full width and crops
	// vertically, so the center must be white.
	center := ((36/2)*64 + 32) * 4
	if pix[center] < 200 {
		t.Fatalf("expected white center pixel, got %d", pix[center])
	}
}

func TestDrawAfterCloseFails(t *testing.T) {
	s, err := surface.New(16, 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Close()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := s.DrawImage(img); err == nil {
		t.Fatal("expected draw after close to fail")
	}
}

func TestSnapshotReusesBuffer(t *testing.T) {
	s, err := surface.New(8, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	buf := make([]byte, 8*8*4)
	got := s.Snapshot(buf)
	if &got[0] != &buf[0] {
		t.Fatal("expected snapshot to reuse the provided buffer")
	}
	// Fresh surface is opaque black.
	for i := 0; i < len(got); i += 4 {
		if got[i] != 0 || got[i+1] != 0 || got[i+2] != 0 || got[i+3] != 255 {
			t.Fatalf("expected opaque black at %d, got %v", i, got[i:i+4])
		}
	}
}
