// Package seed loads an initial set of bookmarks from a YAML file.
package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/bookmarks/internal/domain"
	"github.com/MrSnakeDoc/bookmarks/internal/logger"
)

// Entry is a single bookmark in the seed file. Pointers keep a missing key
// distinguishable from an empty value, so validation reports it.
type Entry struct {
	Title       *string `yaml:"title"`
	URL         *string `yaml:"url"`
	Description *string `yaml:"description"`
	Rating      *int    `yaml:"rating"`
}

// File is the root structure of the seed file: a bare list of entries.
type File []Entry

// Loader handles loading and parsing of the seed file
type Loader struct {
	filePath string
}

// NewLoader creates a new seed loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the seed file
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	return file, nil
}

// Creator is the part of the bookmark service seeding needs.
type Creator interface {
	List(ctx context.Context) ([]domain.Bookmark, error)
	Create(ctx context.Context, in domain.NewBookmark) (domain.Bookmark, error)
}

// Apply creates every entry through svc, but only when the store holds no
// bookmarks yet. It returns how many bookmarks were created. The first
// invalid entry aborts the run.
func Apply(ctx context.Context, svc Creator, file File, log logger.Logger) (int, error) {
	existing, err := svc.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}
	if len(existing) > 0 {
		log.Info("store not empty, skipping seed", logger.Int("existing", len(existing)))
		return 0, nil
	}

	created := 0
	for i, e := range file {
		_, err := svc.Create(ctx, domain.NewBookmark{
			Title:       e.Title,
			URL:         e.URL,
			Description: e.Description,
			Rating:      e.Rating,
		})
		if err != nil {
			return created, fmt.Errorf("seed entry %d: %w", i, err)
		}
		created++
	}

	log.Info("seed applied", logger.Int("created", created))
	return created, nil
}
