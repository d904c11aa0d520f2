// Package project manages the working directory layout: one directory
// per project holding the source video, its subtitle table and the
// finished renders, with a small TOML metadata file.
package project

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

const (
	metadataFile = "project.toml"
	videoFile    = "video.mp4"
	tableFile    = "subtitles.csv"
	outputsDir   = "outputs"
)

// ErrNotFound reports a project id with no directory under the store.
var ErrNotFound = errors.New("project not found")

// Metadata is the persisted per-project record.
type Metadata struct {
	ID       string  `toml:"id"`
	Title    string  `toml:"title"`
	Profile  string  `toml:"profile"`
	Duration float64 `toml:"duration_seconds"`

	CreatedAt time.Time `toml:"created_at"`
	UpdatedAt time.Time `toml:"updated_at"`
}

// Project is one project directory plus its loaded metadata.
type Project struct {
	Dir  string
	Meta Metadata
}

// VideoPath is the project's source video location.
func (p *Project) VideoPath() string { return filepath.Join(p.Dir, videoFile) }

// TablePath is the project's subtitle CSV location.
func (p *Project) TablePath() string { return filepath.Join(p.Dir, tableFile) }

// OutputsDir holds the project's finished renders.
func (p *Project) OutputsDir() string { return filepath.Join(p.Dir, outputsDir) }

// Save writes the metadata file, bumping UpdatedAt.
func (p *Project) Save() error {
	p.Meta.UpdatedAt = time.Now().UTC()
	data, err := toml.Marshal(p.Meta)
	if err != nil {
		return fmt.Errorf("encoding project metadata: %w", err)
	}
	return os.WriteFile(filepath.Join(p.Dir, metadataFile), data, 0644)
}

// StoreOutput copies a finished render into the project's outputs
// directory and returns the stored path. Successive renders get
// distinct timestamped names.
func (p *Project) StoreOutput(src string) (string, error) {
	if err := os.MkdirAll(p.OutputsDir(), 0755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("render_%s%s",
		time.Now().UTC().Format("20060102_150405"), filepath.Ext(src))
	dst := filepath.Join(p.OutputsDir(), name)

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening render output: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("storing render output: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dst, nil
}

// Store locates projects under a single root directory, one
// uuid-named subdirectory each.
type Store struct {
	Root string
}

// NewStore returns a store rooted at dir; the directory is created on
// first use, not here.
func NewStore(dir string) *Store {
	return &Store{Root: dir}
}

// Create makes a new project directory with fresh metadata.
func (s *Store) Create(title string) (*Project, error) {
	id := uuid.NewString()
	dir := filepath.Join(s.Root, id)
	if err := os.MkdirAll(filepath.Join(dir, outputsDir), 0755); err != nil {
		return nil, fmt.Errorf("creating project directory: %w", err)
	}

	now := time.Now().UTC()
	p := &Project{
		Dir: dir,
		Meta: Metadata{
			ID:        id,
			Title:     title,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	if err := p.Save(); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return p, nil
}

// Open loads the project with the given id.
func (s *Store) Open(id string) (*Project, error) {
	dir := filepath.Join(s.Root, id)
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		return nil, err
	}

	var meta Metadata
	if err := toml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("reading project metadata: %w", err)
	}
	return &Project{Dir: dir, Meta: meta}, nil
}

// List returns every readable project under the root, newest first.
// Directories without a metadata file are skipped.
func (s *Store) List() ([]*Project, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var projects []*Project
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, err := s.Open(entry.Name())
		if err != nil {
			continue
		}
		projects = append(projects, p)
	}

	sort.Slice(projects, func(i, j int) bool {
		return projects[i].Meta.CreatedAt.After(projects[j].Meta.CreatedAt)
	})
	return projects, nil
}
