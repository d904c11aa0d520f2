// Package pipeline sequences a full render: subtitle table validation
// and gap-filling, per-segment rendering, concatenation and cleanup,
// guarded by a single-flight registry.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"subcut/internal/config"
	"subcut/internal/logging"
	"subcut/internal/render"
	"subcut/internal/retry"
	"subcut/internal/subtitle"
)

// State is the lifecycle position of one render job.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateRendering
	StateConcatenating
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateRendering:
		return "rendering"
	case StateConcatenating:
		return "concatenating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Job is one render request: a source video, its subtitle table on
// disk, and the destination path for the finished file.
type Job struct {
	Source    string
	TablePath string
	Output    string

	// Profile selects the compression profile by name; unknown or
	// empty names fall back to the default with a warning.
	Profile  string
	Font     string
	FontSize int

	// Sink receives per-segment progress; nil drops it.
	Sink render.ProgressSink

	// OnState, when set, observes every state transition.
	OnState func(State)

	mu    sync.Mutex
	state State
}

// State reports the job's current lifecycle position.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

func (j *Job) setState(s State) {
	j.mu.Lock()
	j.state = s
	j.mu.Unlock()
	if j.OnState != nil {
		j.OnState(s)
	}
}

// Orchestrator runs render jobs against one encoder. Concurrent jobs
// for distinct source/table pairs are allowed; identical pairs are
// rejected with ErrConflict while the first is still running.
type Orchestrator struct {
	Encoder  render.Encoder
	Registry *Registry
	Logger   *logging.Logger

	// Retry applies to each segment's extract+burn pair.
	Retry retry.Policy
}

// New returns an orchestrator with its own registry and the default
// retry policy.
func New(enc render.Encoder, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		Encoder:  enc,
		Registry: NewRegistry(),
		Logger:   logger,
		Retry:    retry.Default(),
	}
}

// Run executes the job to completion and returns the final output
// path. The subtitle table is re-read from disk, gap-filled and
// written back before rendering starts, so the persisted table always
// matches what was burned in. All per-segment intermediates live in a
// private temporary directory removed on every exit path.
func (o *Orchestrator) Run(ctx context.Context, job *Job) (string, error) {
	release, err := o.Registry.Acquire(job.Source, job.TablePath)
	if err != nil {
		return "", err
	}
	defer release()

	out, err := o.run(ctx, job)
	if err != nil {
		job.setState(StateFailed)
		return "", err
	}
	job.setState(StateDone)
	return out, nil
}

func (o *Orchestrator) run(ctx context.Context, job *Job) (string, error) {
	job.setState(StateValidating)

	table, err := o.loadTable(job.TablePath)
	if err != nil {
		return "", err
	}
	if len(table.Segments) == 0 {
		return "", fmt.Errorf("subtitle table %s has no usable segments", job.TablePath)
	}

	segments := subtitle.FillGaps(table.Segments)
	if len(segments) != len(table.Segments) {
		o.Logger.Infow("filled subtitle gaps",
			"inserted", len(segments)-len(table.Segments))
		if err := os.WriteFile(job.TablePath, []byte(subtitle.Serialize(segments)), 0644); err != nil {
			return "", fmt.Errorf("writing gap-filled table: %w", err)
		}
	}

	profile, ok := config.LookupProfile(job.Profile)
	if !ok && job.Profile != "" {
		o.Logger.Warnw("unknown compression profile, using default",
			"profile", job.Profile, "default", config.DefaultProfile)
	}

	workDir := filepath.Join(os.TempDir(), "subcut_render_"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	renderer := render.NewRenderer(o.Encoder, profile)
	renderer.Font = job.Font
	renderer.FontSize = job.FontSize
	renderer.Retry = o.Retry

	job.setState(StateRendering)
	clips, err := renderer.RenderSegments(ctx, job.Source, segments, workDir, job.Sink)
	if err != nil {
		return "", err
	}

	job.setState(StateConcatenating)
	joined := filepath.Join(workDir, "final"+outputExt(job.Output))
	concat := &render.Concatenator{Encoder: o.Encoder}
	if err := concat.Concat(ctx, clips, joined); err != nil {
		return "", err
	}

	if err := moveFile(joined, job.Output); err != nil {
		return "", fmt.Errorf("placing final output: %w", err)
	}

	return job.Output, nil
}

func (o *Orchestrator) loadTable(path string) (*subtitle.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening subtitle table: %w", err)
	}
	defer f.Close()

	table, err := subtitle.ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parsing subtitle table: %w", err)
	}
	for _, line := range table.Skipped {
		o.Logger.Warnw("skipped malformed subtitle row", "file", path, "line", line)
	}
	return table, nil
}

func outputExt(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return ".mp4"
}

// moveFile renames src to dst, falling back to copy+remove across
// filesystem boundaries.
func moveFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
