package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"subcut/internal/media"
)

func writeClip(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("clip"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConcat(t *testing.T) {
	dir := t.TempDir()
	clips := []string{
		writeClip(t, dir, "clip_000.mp4"),
		writeClip(t, dir, "clip_001.mp4"),
		writeClip(t, dir, "clip_002.mp4"),
	}
	dst := filepath.Join(dir, "final.mp4")

	enc := &fakeEncoder{}
	c := &Concatenator{Encoder: enc}
	if err := c.Concat(context.Background(), clips, dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if enc.concatCalls != 1 {
		t.Errorf("concat calls = %d, want 1", enc.concatCalls)
	}
	if !fileNonEmpty(dst) {
		t.Error("output file missing or empty")
	}

	// manifest is removed once the join finishes
	if _, err := os.Stat(filepath.Join(dir, "final_list.txt")); !os.IsNotExist(err) {
		t.Error("manifest left behind after concat")
	}
}

func TestConcatRejectsEmptyClipList(t *testing.T) {
	c := &Concatenator{Encoder: &fakeEncoder{}}
	if err := c.Concat(context.Background(), nil, "out.mp4"); err == nil {
		t.Fatal("expected error for empty clip list")
	}
}

func TestConcatMissingClip(t *testing.T) {
	dir := t.TempDir()
	clips := []string{
		writeClip(t, dir, "clip_000.mp4"),
		filepath.Join(dir, "clip_001.mp4"), // never written
	}

	enc := &fakeEncoder{}
	c := &Concatenator{Encoder: enc}
	err := c.Concat(context.Background(), clips, filepath.Join(dir, "final.mp4"))
	if !errors.Is(err, ErrMissingArtifact) {
		t.Fatalf("err = %v, want ErrMissingArtifact", err)
	}
	if enc.concatCalls != 0 {
		t.Errorf("concat calls = %d, want 0 when a clip is missing", enc.concatCalls)
	}
}

func TestConcatEmptyClip(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "clip_000.mp4")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}

	c := &Concatenator{Encoder: &fakeEncoder{}}
	err := c.Concat(context.Background(), []string{empty}, filepath.Join(dir, "final.mp4"))
	if !errors.Is(err, ErrMissingArtifact) {
		t.Fatalf("err = %v, want ErrMissingArtifact", err)
	}
}

func TestConcatEncoderFailureNotRetried(t *testing.T) {
	dir := t.TempDir()
	clips := []string{writeClip(t, dir, "clip_000.mp4")}

	enc := &fakeEncoder{concatErr: errors.New("join failed")}
	c := &Concatenator{Encoder: enc}
	if err := c.Concat(context.Background(), clips, filepath.Join(dir, "final.mp4")); err == nil {
		t.Fatal("expected error from failing encoder")
	}
	if enc.concatCalls != 1 {
		t.Errorf("concat calls = %d, want exactly 1 (no retries)", enc.concatCalls)
	}
}

func TestConcatVerifiesOutput(t *testing.T) {
	dir := t.TempDir()
	clips := []string{writeClip(t, dir, "clip_000.mp4")}

	// encoder that claims success but writes nothing
	enc := encoderFunc(func(ctx context.Context, manifestPath, dst string) error {
		return nil
	})
	c := &Concatenator{Encoder: enc}
	err := c.Concat(context.Background(), clips, filepath.Join(dir, "final.mp4"))
	if !errors.Is(err, ErrMissingArtifact) {
		t.Fatalf("err = %v, want ErrMissingArtifact for absent output", err)
	}
}

// encoderFunc adapts a concat function to the Encoder interface for
// tests that only exercise the join step.
type encoderFunc func(ctx context.Context, manifestPath, dst string) error

func (encoderFunc) ExtractClip(context.Context, string, string, time.Duration, time.Duration) error {
	return nil
}

func (encoderFunc) BurnSubtitles(context.Context, string, string, string, media.BurnOptions) error {
	return nil
}

func (f encoderFunc) Concat(ctx context.Context, manifestPath, dst string) error {
	return f(ctx, manifestPath, dst)
}

func TestManifest(t *testing.T) {
	got := Manifest([]string{"/tmp/clip_000.mp4", "/tmp/it's.mp4"})
	want := "file '/tmp/clip_000.mp4'\nfile '/tmp/it'\\''s.mp4'\n"
	if got != want {
		t.Errorf("Manifest() = %q, want %q", got, want)
	}
}
