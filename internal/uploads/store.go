// Package uploads stores message attachments on local disk.
package uploads

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes attachment bytes under a base directory. Each file gets a
// fresh uuid prefix, so repeated uploads of the same filename never collide.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the data and returns the stored path.
func (s *Store) Save(data []byte, filename string) (string, error) {
	name := fmt.Sprintf("%s_%s", uuid.NewString(), filepath.Base(filename))
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save attachment: %w", err)
	}
	return path, nil
}
