// Package storage keeps uploaded challenge media on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// URLPrefix is the public path uploads are served under
const URLPrefix = "/uploads/"

// Uploads writes media files into a single directory
type Uploads struct {
	dir string
	now func() time.Time
}

// NewUploads creates the directory if needed
func NewUploads(dir string) (*Uploads, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Uploads{dir: dir, now: time.Now}, nil
}

// Dir returns the upload directory
func (u *Uploads) Dir() string {
	return u.dir
}

// Save stores src as "<unix-millis>-<basename>" and returns the public url.
// When that name is taken a uuid is inserted after the timestamp.
func (u *Uploads) Save(originalName string, src io.Reader) (string, error) {
	base := sanitizeName(originalName)
	prefix := strconv.FormatInt(u.now().UnixMilli(), 10)

	name := prefix + "-" + base
	f, err := u.create(name)
	if errors.Is(err, fs.ErrExist) {
		name = prefix + "-" + uuid.NewString() + "-" + base
		f, err = u.create(name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(filepath.Join(u.dir, name))
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(filepath.Join(u.dir, name))
		return "", fmt.Errorf("failed to close upload file: %w", err)
	}

	return URLPrefix + name, nil
}

func (u *Uploads) create(name string) (*os.File, error) {
	return os.OpenFile(filepath.Join(u.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// SweepOrphans removes files not present in referenced (public urls) whose
// modification time is older than grace. It returns the removed file names.
func (u *Uploads) SweepOrphans(referenced map[string]struct{}, grace time.Duration) ([]string, error) {
	entries, err := os.ReadDir(u.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload dir: %w", err)
	}

	cutoff := u.now().Add(-grace)
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, ok := referenced[URLPrefix+entry.Name()]; ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(u.dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("failed to remove %s: %w", entry.Name(), err)
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}

// sanitizeName keeps only the base name so a client cannot escape the directory
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." || name == "" {
		return "upload"
	}
	return name
}
