// Package archive decompresses downloaded observation payloads.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/glorpus-work/corsget/pkg/errors"
	"github.com/glorpus-work/corsget/pkg/fsutil"
	"github.com/mholt/archives"
)

// TempPattern names in-flight decompression output next to the source.
const TempPattern = "dz-*.tmp"

// Manager handles decompression of single-file payloads such as corv1010.25o.gz.
type Manager struct {
	// KeepSource retains the compressed file next to the decompressed one.
	KeepSource bool
}

// NewManager creates a new Manager instance.
func NewManager(keepSource bool) *Manager {
	return &Manager{KeepSource: keepSource}
}

// Decompress identifies the compression of src and writes the decompressed
// stream next to it with the compression suffix removed. A file with no
// recognised compression is returned unchanged.
func (am *Manager) Decompress(ctx context.Context, src string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open %s: %v: %w", src, err, pkgerrors.ErrDecompress)
	}
	defer func() { _ = f.Close() }()

	format, stream, err := archives.Identify(ctx, filepath.Base(src), f)
	if errors.Is(err, archives.NoMatch) {
		return src, nil
	}
	if err != nil {
		return "", fmt.Errorf("identify %s: %v: %w", src, err, pkgerrors.ErrDecompress)
	}

	decomp, ok := format.(archives.Decompressor)
	if !ok {
		return "", fmt.Errorf("%s is a %s archive, not a compressed file: %w", src, format.Extension(), pkgerrors.ErrDecompress)
	}

	dst := strippedName(src, format.Extension())
	if err := writeDecompressed(decomp, stream, dst); err != nil {
		return "", err
	}

	if !am.KeepSource {
		if err := os.Remove(src); err != nil {
			return dst, fmt.Errorf("remove %s: %v: %w", src, err, pkgerrors.ErrDecompress)
		}
	}
	return dst, nil
}

func writeDecompressed(decomp archives.Decompressor, stream io.Reader, dst string) error {
	rc, err := decomp.OpenReader(stream)
	if err != nil {
		return fmt.Errorf("open decompressor: %v: %w", err, pkgerrors.ErrDecompress)
	}
	defer func() { _ = rc.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(dst), TempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %v: %w", err, pkgerrors.ErrDecompress)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, rc); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("decompress into %s: %v: %w", dst, err, pkgerrors.ErrDecompress)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close %s: %v: %w", tmpPath, err, pkgerrors.ErrDecompress)
	}
	if err := fsutil.Move(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("finalize %s: %v: %w", dst, err, pkgerrors.ErrDecompress)
	}
	return os.Chmod(dst, fsutil.FileModeDefault)
}

func strippedName(src, ext string) string {
	if ext != "" && strings.HasSuffix(strings.ToLower(src), strings.ToLower(ext)) {
		return src[:len(src)-len(ext)]
	}
	if e := filepath.Ext(src); e != "" {
		return strings.TrimSuffix(src, e)
	}
	return src + ".out"
}
