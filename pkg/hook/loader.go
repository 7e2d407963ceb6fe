package hook

import (
	"os"
	"path/filepath"

	pkgerrors "github.com/glorpus-work/corsget/pkg/errors"
)

// HookFileExtensions lists the supported hook file extensions.
var HookFileExtensions = map[string]bool{
	".tengo": true,
}

// LoadFile reads a post-fetch script and registers it on a new executor.
// An unreadable or unsupported script is a configuration error.
func LoadFile(path string) (*TengoExecutor, error) {
	if !HookFileExtensions[filepath.Ext(path)] {
		return nil, pkgerrors.Configurationf("unsupported hook script %s (want .tengo)", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Configurationf("read hook script %s: %v", path, err)
	}

	executor := NewTengoExecutor()
	executor.AddScript(PostFetch, string(content))
	return executor, nil
}

// HookTemplate generates a starter script for a hook type.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PostFetch:
		return `// Post-fetch hook
// This script runs after each observation file is downloaded and converted.
// Available variables:
// - station: string - lowercase station identifier
// - year: string - four digit year
// - doy: string - three digit day of year
// - url: string - archive URL the file came from
// - path: string - local path of the final file
// Set err to a non-empty string to report a failure for this file.

// Example: reject empty files
/*
os := import("os")
info := os.stat(path)
if is_error(info) || info.size == 0 {
    err = "empty file: " + path
}
*/
err := ""`
	default:
		return "// Unknown hook type: " + string(hookType)
	}
}
