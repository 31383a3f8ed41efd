package os

import (
	"fmt"
	"github.com/rs/zerolog/log"
	"os"
	"path/filepath"
	"strings"
)

// Exists function checks if the file/directory exists.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ClearDir deletes the directory contents and keeps the directory itself, creating it when missing.
func ClearDir(path string) error {
	path, err := filterPath(path)
	if err != nil {
		return err
	}
	log.Debug().Msg("Clear directory " + path)
	err = os.MkdirAll(path, 0755)
	if err != nil {
		return fmt.Errorf("clearDir -> cannot create directory: %w; dir=%s", err, path)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("clearDir -> cannot read directory: %w; dir=%s", err, path)
	}
	for _, e := range entries {
		err = os.RemoveAll(filepath.Join(path, e.Name()))
		if err != nil {
			return fmt.Errorf("clearDir -> cannot remove: %w; dir=%s; entry=%s", err, path, e.Name())
		}
	}
	return nil
}

// Within reports whether the path is located inside the root directory.
func Within(root, path string) bool {
	root, err := filterPath(root)
	if err != nil {
		return false
	}
	path, err = filterPath(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func filterPath(path string) (string, error) {
	path, err := filepath.Abs(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("filterDir -> invalid path: %w; dir=%s", err, path)
	}
	if path == "/" {
		return "", fmt.Errorf("filterDir -> are you kidding me")
	}
	return path, nil
}
