// Package uploads stores donation images on local disk and reconciles
// the stored file set against the comma-joined filename list persisted
// with each donation.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"pratocheio/internal/utils"

	"github.com/sirupsen/logrus"
)

type Store struct {
	dir    string
	logger *logrus.Logger
}

func NewStore(dir string, logger *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir %s: %w", dir, err)
	}

	return &Store{dir: dir, logger: logger}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save writes each uploaded file under a generated name, preserving the
// original extension, and returns the stored names in upload order.
func (s *Store) Save(files []*multipart.FileHeader) ([]string, error) {
	names := make([]string, 0, len(files))

	for _, header := range files {
		name := utils.NanoID() + strings.ToLower(filepath.Ext(header.Filename))

		if err := s.saveOne(header, name); err != nil {
			s.Remove(names)
			return nil, err
		}

		names = append(names, name)
	}

	return names, nil
}

func (s *Store) saveOne(header *multipart.FileHeader, name string) error {
	src, err := header.Open()
	if err != nil {
		return fmt.Errorf("open uploaded file %s: %w", header.Filename, err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("create upload %s: %w", name, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("write upload %s: %w", name, err)
	}

	return dst.Close()
}

// Remove deletes the named files from disk, best effort. Files already
// gone are skipped silently; other failures are logged and swallowed so
// a stale file never blocks the persistence operation that orphaned it.
func (s *Store) Remove(names []string) {
	for _, name := range names {
		if name == "" {
			continue
		}

		// Base strips any path segments a caller-supplied keep-list
		// could smuggle in.
		path := filepath.Join(s.dir, filepath.Base(name))

		if _, err := os.Stat(path); err != nil {
			continue
		}

		if err := os.Remove(path); err != nil {
			s.logger.WithError(err).WithField("file", name).Warn("failed to remove upload")
		}
	}
}

// Exists reports whether the named file is present in the store.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(s.dir, filepath.Base(name)))
	return err == nil
}

// Reconcile partitions current into the names that survive an update
// and the names to delete. A nil keep list means full replacement:
// nothing survives.
func Reconcile(current, keep []string) (kept, removed []string) {
	kept = make([]string, 0, len(current))
	removed = make([]string, 0, len(current))

	keepSet := make(map[string]struct{}, len(keep))
	for _, name := range keep {
		keepSet[name] = struct{}{}
	}

	for _, name := range current {
		if _, ok := keepSet[name]; ok {
			kept = append(kept, name)
		} else {
			removed = append(removed, name)
		}
	}

	return kept, removed
}

// Split breaks a stored comma-joined filename list into its names,
// dropping empty segments.
func Split(csv string) []string {
	parts := strings.Split(csv, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		names = append(names, part)
	}
	return names
}

// Join is the inverse of Split; an empty list persists as "".
func Join(names []string) string {
	return strings.Join(names, ",")
}

// PublicURLs expands a stored filename list into absolute URLs under
// <base>/uploads/.
func PublicURLs(base, csv string) []string {
	names := Split(csv)
	base = strings.TrimSuffix(base, "/")

	urls := make([]string, 0, len(names))
	for _, name := range names {
		urls = append(urls, fmt.Sprintf("%s/uploads/%s", base, name))
	}
	return urls
}
