package items

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/med-reminder/internal/config"
	domain "github.com/oshokin/med-reminder/internal/domain/reminder"
)

// Repository defines persistence operations for reminder items.
type Repository interface {
	Load(ctx context.Context) ([]*domain.Item, error)
	Get(ctx context.Context, id string) (*domain.Item, error)
	Save(ctx context.Context, items []*domain.Item) error
}

// FileRepository persists reminder items to a YAML file on disk.
type FileRepository struct {
	// path is the filesystem location of the YAML items file.
	path string
	// mu protects concurrent access to the items file.
	mu sync.Mutex
}

// document is the layout of the items file.
type document struct {
	Items []*domain.Item `yaml:"items"`
}

var (
	// ErrNotFound is returned when the items file or an item does not exist.
	ErrNotFound = errors.New("item not found")
	// ErrInvalidItems is returned when the file holds items without ids or with duplicate ids.
	ErrInvalidItems = errors.New("invalid items")
)

// NewFileRepository creates a repository that reads/writes YAML at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the items file location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads every item from disk. A missing file yields ErrNotFound.
func (r *FileRepository) Load(_ context.Context) ([]*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

func (r *FileRepository) load() ([]*domain.Item, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read items file: %w", err)
	}

	var doc document
	if err = yaml.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode items file: %w", err)
	}

	if err = validate(doc.Items); err != nil {
		return nil, err
	}

	return doc.Items, nil
}

// Get returns the item with the given id.
func (r *FileRepository) Get(_ context.Context, id string) (*domain.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := r.load()
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.ID == id {
			return item, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Save writes items to disk, replacing the file contents.
func (r *FileRepository) Save(_ context.Context, items []*domain.Item) error {
	if err := validate(items); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(document{Items: items})
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write items file: %w", err)
	}

	return nil
}

// validate rejects items without ids, with the test reminder id, or with duplicate ids.
func validate(items []*domain.Item) error {
	seen := make(map[string]struct{}, len(items))

	for i, item := range items {
		if item == nil || item.ID == "" {
			return fmt.Errorf("%w: item %d has no id", ErrInvalidItems, i+1)
		}

		if item.ID == domain.TestOwnerID {
			return fmt.Errorf("%w: id %q is reserved for test reminders", ErrInvalidItems, item.ID)
		}

		if _, ok := seen[item.ID]; ok {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidItems, item.ID)
		}

		seen[item.ID] = struct{}{}
	}

	return nil
}
