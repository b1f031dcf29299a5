package generator

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileWriter writes outputs below Dir. It is not transactional: files
// written before a failure stay in place.
type FileWriter struct {
	Dir     string
	Written []string
}

func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{Dir: dir}
}

// Prepare creates <dir>/<branch>. It succeeds if the directory exists.
func (w *FileWriter) Prepare(branch string) error {
	path := filepath.Join(w.Dir, branch)
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}

func (w *FileWriter) Write(out Output) error {
	path := filepath.Join(w.Dir, out.Filename)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, out.Content, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	w.Written = append(w.Written, path)
	return nil
}
