// Package cache inspects and tidies the local observation tree written by
// fetch runs.
package cache

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/glorpus-work/corsget/pkg/archive"
	"github.com/glorpus-work/corsget/pkg/download"
	"github.com/glorpus-work/corsget/pkg/errors"
)

// TempPatterns match the in-flight files of the download and decompression
// stages. They only survive a run that was killed outright.
var TempPatterns = []string{download.TempPattern, archive.TempPattern}

// Info summarises the local tree.
type Info struct {
	Directory string `json:"directory" yaml:"directory"`
	Days      int    `json:"days" yaml:"days"`
	Files     int    `json:"files" yaml:"files"`
	TotalSize int64  `json:"total_size" yaml:"total_size"`
	TempFiles int    `json:"temp_files" yaml:"temp_files"`
	TempSize  int64  `json:"temp_size" yaml:"temp_size"`
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	Removed    int   `json:"removed" yaml:"removed"`
	TotalFreed int64 `json:"total_freed" yaml:"total_freed"`
}

// Manager works on one output root.
type Manager struct {
	directory string
}

// NewManager creates a manager for the tree under directory.
func NewManager(directory string) *Manager {
	return &Manager{directory: directory}
}

// GetDirectory returns the tree root.
func (cm *Manager) GetDirectory() string {
	return cm.directory
}

// GetInfo walks the tree. A missing root is an empty tree.
func (cm *Manager) GetInfo() (*Info, error) {
	info := &Info{Directory: cm.directory}
	days := map[string]bool{}

	err := cm.walk(func(path string, size int64) {
		if isTemp(path) {
			info.TempFiles++
			info.TempSize += size
			return
		}
		info.Files++
		info.TotalSize += size
		days[filepath.Dir(path)] = true
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to inspect %s", cm.directory)
	}
	info.Days = len(days)
	return info, nil
}

// Clean removes leftover temp files and returns what was freed. Observation
// files are never touched.
func (cm *Manager) Clean() (*CleanResult, error) {
	var stale []string
	var sizes []int64
	err := cm.walk(func(path string, size int64) {
		if isTemp(path) {
			stale = append(stale, path)
			sizes = append(sizes, size)
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to scan %s", cm.directory)
	}

	result := &CleanResult{}
	for i, path := range stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return result, errors.Wrapf(err, "failed to remove %s", path)
		}
		result.Removed++
		result.TotalFreed += sizes[i]
	}
	return result, nil
}

func (cm *Manager) walk(fn func(path string, size int64)) error {
	if cm.directory == "" {
		return errors.ErrInvalidPath
	}
	if _, err := os.Stat(cm.directory); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(cm.directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		fn(path, fi.Size())
		return nil
	})
}

func isTemp(path string) bool {
	name := filepath.Base(path)
	for _, pattern := range TempPatterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// FormatBytes renders a size with a binary unit.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"K", "M", "G", "T", "P", "E"}
	if exp < len(units) {
		return fmt.Sprintf("%.1f %sB", float64(bytes)/float64(div), units[exp])
	}
	return fmt.Sprintf("%d B", bytes)
}
