package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"subcut/internal/logging"
	"subcut/internal/media"
	"subcut/internal/render"
	"subcut/internal/retry"
	"subcut/internal/subtitle"
)

// fakeEncoder writes placeholder files for every encode step.
type fakeEncoder struct {
	mu           sync.Mutex
	extractCalls int
	failExtract  bool

	// blockExtract, when set, is closed by the test to let the first
	// extract call proceed; started is closed once that call begins.
	blockExtract chan struct{}
	started      chan struct{}
	startOnce    sync.Once
}

func (f *fakeEncoder) ExtractClip(ctx context.Context, src, dst string, start, duration time.Duration) error {
	f.mu.Lock()
	f.extractCalls++
	fail := f.failExtract
	f.mu.Unlock()

	if f.started != nil {
		f.startOnce.Do(func() { close(f.started) })
	}
	if f.blockExtract != nil {
		<-f.blockExtract
	}
	if fail {
		return errors.New("encoder busy")
	}
	return os.WriteFile(dst, []byte("slice"), 0644)
}

func (f *fakeEncoder) BurnSubtitles(ctx context.Context, src, srtPath, dst string, opts media.BurnOptions) error {
	return os.WriteFile(dst, []byte("clip"), 0644)
}

func (f *fakeEncoder) Concat(ctx context.Context, manifestPath, dst string) error {
	return os.WriteFile(dst, []byte("joined"), 0644)
}

func fastOrchestrator(enc render.Encoder) *Orchestrator {
	o := New(enc, logging.NewNop())
	o.Retry = retry.Policy{Attempts: 3, InitialDelay: time.Millisecond, Sleep: func(time.Duration) {}}
	return o
}

func writeTable(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "subtitles.csv")
	csv := "start,end,subtitles\n" +
		"0:00.000,0:02.000,\"a\"\n" +
		"0:02.500,0:04.000,\"b\"\n"
	if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunRendersAndFillsGaps(t *testing.T) {
	dir := t.TempDir()
	tablePath := writeTable(t, dir)
	output := filepath.Join(dir, "final.mp4")

	var states []State
	var progress []int
	job := &Job{
		Source:    filepath.Join(dir, "video.mp4"),
		TablePath: tablePath,
		Output:    output,
		OnState:   func(s State) { states = append(states, s) },
		Sink: render.ProgressFunc(func(current, total int, seg subtitle.Segment) {
			if total != 3 {
				t.Errorf("progress total = %d, want 3 (gap-filled)", total)
			}
			progress = append(progress, current)
		}),
	}

	got, err := fastOrchestrator(&fakeEncoder{}).Run(context.Background(), job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != output {
		t.Errorf("output path = %s, want %s", got, output)
	}
	if data, err := os.ReadFile(output); err != nil || len(data) == 0 {
		t.Errorf("final output missing or empty: %v", err)
	}

	want := []State{StateValidating, StateRendering, StateConcatenating, StateDone}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("state %d = %v, want %v", i, states[i], want[i])
		}
	}
	if job.State() != StateDone {
		t.Errorf("final state = %v, want done", job.State())
	}
	if len(progress) != 3 {
		t.Errorf("progress events = %v, want one per segment", progress)
	}

	// gap-filled table was written back with the inserted filler row
	f, err := os.Open(tablePath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	table, err := subtitle.ParseCSV(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Segments) != 3 {
		t.Fatalf("persisted table has %d segments, want 3", len(table.Segments))
	}
	filler := table.Segments[1]
	if filler.StartTime != 2*time.Second || filler.EndTime != 2500*time.Millisecond || filler.Text != " " {
		t.Errorf("filler row = %+v, want [2s, 2.5s] with single-space text", filler)
	}
}

func TestRunRejectsConcurrentDuplicate(t *testing.T) {
	dir := t.TempDir()
	tablePath := writeTable(t, dir)
	source := filepath.Join(dir, "video.mp4")

	enc := &fakeEncoder{
		blockExtract: make(chan struct{}),
		started:      make(chan struct{}),
	}
	o := fastOrchestrator(enc)

	firstDone := make(chan error, 1)
	go func() {
		_, err := o.Run(context.Background(), &Job{
			Source: source, TablePath: tablePath,
			Output: filepath.Join(dir, "a.mp4"),
		})
		firstDone <- err
	}()

	<-enc.started

	// identical pair while the first is rendering: immediate conflict
	_, err := o.Run(context.Background(), &Job{
		Source: source, TablePath: tablePath,
		Output: filepath.Join(dir, "b.mp4"),
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate err = %v, want ErrConflict", err)
	}

	close(enc.blockExtract)
	if err := <-firstDone; err != nil {
		t.Fatalf("first job failed: %v", err)
	}

	// key released: the same pair may run again
	if _, err := o.Run(context.Background(), &Job{
		Source: source, TablePath: tablePath,
		Output: filepath.Join(dir, "c.mp4"),
	}); err != nil {
		t.Errorf("rerun after completion failed: %v", err)
	}
}

func TestRunFailureReleasesKey(t *testing.T) {
	dir := t.TempDir()
	tablePath := writeTable(t, dir)
	output := filepath.Join(dir, "final.mp4")

	enc := &fakeEncoder{failExtract: true}
	o := fastOrchestrator(enc)

	job := &Job{Source: "video.mp4", TablePath: tablePath, Output: output}
	_, err := o.Run(context.Background(), job)
	if !errors.Is(err, render.ErrTransientEncode) {
		t.Fatalf("err = %v, want ErrTransientEncode", err)
	}
	if job.State() != StateFailed {
		t.Errorf("state = %v, want failed", job.State())
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("failed job left a final output behind")
	}

	// failure released the single-flight key, not left it stuck
	_, err = o.Run(context.Background(), &Job{
		Source: "video.mp4", TablePath: tablePath, Output: output,
	})
	if errors.Is(err, ErrConflict) {
		t.Error("retry after failure hit ErrConflict; key was not released")
	}
}

func TestRunMissingTable(t *testing.T) {
	job := &Job{
		Source:    "video.mp4",
		TablePath: filepath.Join(t.TempDir(), "absent.csv"),
		Output:    "out.mp4",
	}
	if _, err := fastOrchestrator(&fakeEncoder{}).Run(context.Background(), job); err == nil {
		t.Fatal("expected error for missing subtitle table")
	}
	if job.State() != StateFailed {
		t.Errorf("state = %v, want failed", job.State())
	}
}

func TestRegistryAcquire(t *testing.T) {
	r := NewRegistry()

	release, err := r.Acquire("a.mp4", "a.csv")
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	if _, err := r.Acquire("a.mp4", "a.csv"); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate acquire err = %v, want ErrConflict", err)
	}

	// a different pair is independent
	otherRelease, err := r.Acquire("b.mp4", "a.csv")
	if err != nil {
		t.Errorf("distinct key acquire: %v", err)
	}
	otherRelease()

	release()
	release() // idempotent

	release2, err := r.Acquire("a.mp4", "a.csv")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}

func TestStateString(t *testing.T) {
	pairs := map[State]string{
		StateIdle:          "idle",
		StateValidating:    "validating",
		StateRendering:     "rendering",
		StateConcatenating: "concatenating",
		StateDone:          "done",
		StateFailed:        "failed",
	}
	for s, want := range pairs {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(s), got, want)
		}
	}
	if !strings.HasPrefix(State(42).String(), "state(") {
		t.Errorf("unknown state string = %q", State(42).String())
	}
}
