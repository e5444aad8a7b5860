package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivanzxc/go-ecg-analysis/internal/analysis"
)

// Ext is appended to the input stem to name the metrics document.
const Ext = ".json"

// ErrDestinationExists is returned instead of overwriting an existing file.
var ErrDestinationExists = fmt.Errorf("destination already exists: %w", fs.ErrExist)

// Name derives the output file name from the input path: the base name up
// to its first '.', followed by ext.
func Name(input, ext string) string {
	stem, _, _ := strings.Cut(filepath.Base(input), ".")
	return stem + ext
}

// Create opens dir/name for writing and fails if it already exists.
func Create(dir, name string) (*os.File, error) {
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrDestinationExists)
		}
		return nil, fmt.Errorf("failed to create file %s: %w", path, err)
	}
	return f, nil
}

// Available reports ErrDestinationExists if any of names is already
// present in dir. Create still enforces the rule at write time.
func Available(dir string, names ...string) error {
	for _, name := range names {
		path := filepath.Join(dir, name)
		_, err := os.Stat(path)
		switch {
		case err == nil:
			return fmt.Errorf("%s: %w", path, ErrDestinationExists)
		case !errors.Is(err, fs.ErrNotExist):
			return err
		}
	}
	return nil
}

// Encode writes m as an indented JSON document.
func Encode(w io.Writer, m analysis.Metrics) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// Write stores the metrics for input in dir and returns the path used.
func Write(dir, input string, m analysis.Metrics) (string, error) {
	f, err := Create(dir, Name(input, Ext))
	if err != nil {
		return "", err
	}

	if err := Encode(f, m); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("encode metrics: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}
