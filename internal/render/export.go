package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirSaver writes exported images into dir, creating it on first use.
func DirSaver(dir string) func(name string, data []byte) (string, error) {
	return func(name string, data []byte) (string, error) {
		name = filepath.Base(strings.TrimSpace(name))
		if name == "" || name == "." || name == string(filepath.Separator) {
			return "", fmt.Errorf("invalid snapshot name %q", name)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create snapshot dir: %w", err)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("write snapshot: %w", err)
		}
		return path, nil
	}
}
