package audio

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeWAV(t *testing.T, dir, name string, buf []float64) {
	t.Helper()
	data, err := EncodeWAV(buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCacheEnsureLoaded(t *testing.T) {
	dir := t.TempDir()
	src := []float64{0.5, 0.25, -0.5, -0.25, 1.0, -1.0}
	writeWAV(t, dir, "k.wav", src)
	if err := os.WriteFile(filepath.Join(dir, "corrupt.wav"), []byte("not a wav"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCache(dir)
	c.EnsureLoaded(context.Background(), []string{"k.wav", "missing.wav", "corrupt.wav"})

	if c.Len() != 1 {
		t.Fatalf("want 1 resident sound, got %d", c.Len())
	}
	if c.Get("missing.wav") != nil || c.Get("corrupt.wav") != nil {
		t.Fatal("failed loads must not become resident")
	}

	snd := c.Get("k.wav")
	if snd == nil {
		t.Fatal("k.wav not resident")
	}
	if len(snd.buf) != len(src) {
		t.Fatalf("decoded %d samples, want %d", len(snd.buf), len(src))
	}
	// 16-bit quantization bounds the round-trip error
	for i, want := range src {
		if math.Abs(snd.buf[i]-want) > 1.0/32000 {
			t.Errorf("sample %d: %v, want about %v", i, snd.buf[i], want)
		}
	}
}

func TestCacheMemoizes(t *testing.T) {
	dir := t.TempDir()
	writeWAV(t, dir, "k.wav", []float64{1, 1})

	c := NewCache(dir)
	c.EnsureLoaded(context.Background(), []string{"k.wav"})
	first := c.Get("k.wav")

	// removing the file proves the second call never re-reads it
	if err := os.Remove(filepath.Join(dir, "k.wav")); err != nil {
		t.Fatal(err)
	}
	c.EnsureLoaded(context.Background(), []string{"k.wav"})
	if c.Get("k.wav") != first {
		t.Error("resident sound was reloaded")
	}
}

func TestCacheRetriesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir)

	c.EnsureLoaded(context.Background(), []string{"late.wav"})
	if c.Get("late.wav") != nil {
		t.Fatal("missing file must not be resident")
	}

	writeWAV(t, dir, "late.wav", []float64{1, 1})
	c.EnsureLoaded(context.Background(), []string{"late.wav"})
	if c.Get("late.wav") == nil {
		t.Error("a later EnsureLoaded call should retry the failed file")
	}
}
