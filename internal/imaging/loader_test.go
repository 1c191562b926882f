package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// writeTestPNG writes a small capture to dir and returns its path.
func writeTestPNG(t *testing.T, dir, name string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 20), B: 128, A: 255})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
	return path
}

func TestCacheLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "frame.png")

	cache := NewCache()
	img, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 12 {
		t.Errorf("loaded dimensions: got %dx%d, want 16x12", img.Bounds().Dx(), img.Bounds().Dy())
	}

	// Second load is served from cache: deleting the file must not matter.
	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}
	if _, err := cache.Load(path); err != nil {
		t.Errorf("cached Load failed after file removal: %v", err)
	}
}

func TestCacheLoad_MissingFile(t *testing.T) {
	cache := NewCache()
	if _, err := cache.Load(filepath.Join(t.TempDir(), "absent.png")); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

func TestCacheEvict(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "frame.png")

	cache := NewCache()
	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Evict(path)
	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}
	if _, err := cache.Load(path); err == nil {
		t.Error("Load after Evict should hit the disk and fail")
	}
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "frame.png")

	cache := NewCache()
	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cache.Clear()
	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}
	if _, err := cache.Load(path); err == nil {
		t.Error("Load after Clear should hit the disk and fail")
	}
}

func TestListCaptures(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, dir, "b.png")
	writeTestPNG(t, dir, "a.png")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write notes.txt: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("failed to create subdir: %v", err)
	}

	paths, err := ListCaptures(dir)
	if err != nil {
		t.Fatalf("ListCaptures failed: %v", err)
	}

	want := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")}
	if len(paths) != len(want) {
		t.Fatalf("got %d paths, want %d: %v", len(paths), len(want), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path %d: got %s, want %s", i, paths[i], want[i])
		}
	}
}

func TestListCaptures_MissingDir(t *testing.T) {
	if _, err := ListCaptures(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("ListCaptures should fail for a missing directory")
	}
}
