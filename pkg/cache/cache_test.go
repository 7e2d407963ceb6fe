package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel string, size int) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func setupTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "2025/101/corv1010.25o", 100)
	writeFile(t, root, "2025/101/p0411010.25o", 50)
	writeFile(t, root, "2025/102/corv1020.25o", 25)
	writeFile(t, root, "2025/102/dl-123.tmp", 10)
	writeFile(t, root, "2025/102/dz-456.tmp", 5)
	return root
}

func TestGetInfo(t *testing.T) {
	root := setupTree(t)

	info, err := NewManager(root).GetInfo()
	require.NoError(t, err)
	assert.Equal(t, &Info{
		Directory: root,
		Days:      2,
		Files:     3,
		TotalSize: 175,
		TempFiles: 2,
		TempSize:  15,
	}, info)
}

func TestGetInfo_MissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "daily")

	info, err := NewManager(root).GetInfo()
	require.NoError(t, err)
	assert.Equal(t, 0, info.Files)
	assert.Equal(t, root, info.Directory)
}

func TestGetInfo_EmptyDirectory(t *testing.T) {
	_, err := NewManager("").GetInfo()
	assert.Error(t, err)
}

func TestClean(t *testing.T) {
	root := setupTree(t)
	cm := NewManager(root)

	result, err := cm.Clean()
	require.NoError(t, err)
	assert.Equal(t, &CleanResult{Removed: 2, TotalFreed: 15}, result)

	assert.NoFileExists(t, filepath.Join(root, "2025", "102", "dl-123.tmp"))
	assert.NoFileExists(t, filepath.Join(root, "2025", "102", "dz-456.tmp"))
	assert.FileExists(t, filepath.Join(root, "2025", "102", "corv1020.25o"))

	result, err = cm.Clean()
	require.NoError(t, err)
	assert.Equal(t, 0, result.Removed)
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:               "0 B",
		1023:            "1023 B",
		1024:            "1.0 KB",
		1536:            "1.5 KB",
		5 * 1024 * 1024: "5.0 MB",
		3 << 30:         "3.0 GB",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatBytes(in), in)
	}
}
