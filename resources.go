package template_installer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	rice "github.com/GeertJohan/go.rice"
)

var (
	resourcesBox     *rice.Box
	resourcesBoxErr  error
	resourcesBoxOnce sync.Once
)

// openBoxes opens the resources box containing config.yml, the language files and the
// GUI. For go.rice's 'append' mode to work, all calls to FindBox() have to be with a
// literal string parameter.
func openBoxes() error {
	resourcesBoxOnce.Do(func() {
		resourcesBox, resourcesBoxErr = rice.FindBox("resources")
	})
	return resourcesBoxErr
}

// GetResource returns the content of a single file in the resources box.
func GetResource(name string) (string, error) {
	if err := openBoxes(); err != nil {
		return "", fmt.Errorf("resources not available: %w", err)
	}
	text, err := resourcesBox.String(name)
	if err != nil {
		return "", fmt.Errorf("resource %s not found: %w", name, err)
	}
	return text, nil
}

// GetResourceFiltered returns the contents of all files directly inside dir whose name
// matches filter, keyed by their path inside the box.
func GetResourceFiltered(dir string, filter *regexp.Regexp) (map[string]string, error) {
	if err := openBoxes(); err != nil {
		return nil, fmt.Errorf("resources not available: %w", err)
	}
	contents := make(map[string]string)
	err := resourcesBox.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		path = boxPath(path)
		if info.IsDir() {
			if path != boxPath(dir) {
				return filepath.SkipDir
			}
			return nil
		}
		if !filter.MatchString(path) {
			return nil
		}
		text, err := resourcesBox.String(path)
		if err != nil {
			return err
		}
		contents[path] = text
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("resource dir %s not readable: %w", dir, err)
	}
	return contents, nil
}

// UnpackResourceDir writes the files of the box directory dir (non-recursive) into the
// target directory on disk, which is created if necessary.
func UnpackResourceDir(dir, target string) error {
	if err := openBoxes(); err != nil {
		return fmt.Errorf("resources not available: %w", err)
	}
	if err := os.MkdirAll(target, 0755); err != nil {
		return err
	}
	return resourcesBox.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		path = boxPath(path)
		if info.IsDir() {
			if path != boxPath(dir) {
				return filepath.SkipDir
			}
			return nil
		}
		data, err := resourcesBox.Bytes(path)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(target, filepath.Base(path)), data, 0755)
	})
}

// boxPath normalizes paths as handed out by rice.Box.Walk, which differ between
// embedded and on-disk boxes.
func boxPath(path string) string {
	return strings.Trim(filepath.ToSlash(path), "/")
}
