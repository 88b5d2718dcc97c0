package specdoc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vasilisgee/api-doci/internal/domain"
)

// LocalSource reads the document from a file under the deployment root.
//
// Security: path traversal prevention is enforced in resolvePath().
type LocalSource struct {
	rootDir  string // Absolute deployment root
	location string // Location relative to the root
}

// NewLocalSource creates a LocalSource confined to rootDir.
func NewLocalSource(rootDir, location string) (*LocalSource, error) {
	if location == "" {
		return nil, ErrInvalidSource
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("specdoc: failed to resolve root: %w", err)
	}

	return &LocalSource{
		rootDir:  absRoot,
		location: normalizeLocation(location),
	}, nil
}

// Load reads the document file. The path is validated before any read so
// a traversal attempt never touches the filesystem.
func (s *LocalSource) Load(ctx context.Context) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	path, err := s.resolvePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, domain.Internal(err, "specdoc.local", fmt.Sprintf("failed to read %s", s.location))
	}
	return data, nil
}

// resolvePath converts the configured location to an absolute file path.
//
// Security: this prevents path traversal by:
// 1. Rejecting locations that are not local after cleaning (absolute
//    paths, "." and anything with leading ".." segments). Filenames that
//    merely contain dots, like "api..v2.json", stay valid.
// 2. Ensuring the joined path stays within the deployment root
func (s *LocalSource) resolvePath() (string, error) {
	clean := filepath.Clean(s.location)
	if clean == "." || !filepath.IsLocal(clean) {
		return "", ErrInvalidSource
	}

	abs := filepath.Join(s.rootDir, clean)

	// Defense-in-depth check against traversal after joining.
	if abs != s.rootDir && !strings.HasPrefix(abs, s.rootDir+string(filepath.Separator)) {
		return "", ErrInvalidSource
	}

	return abs, nil
}
